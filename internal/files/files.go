// Package files serves the owner-scoped file storage endpoints. File content
// is opaque; it is stored and returned byte for byte.
package files

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"todolist-api/internal/auth"
	"todolist-api/internal/models"
	"todolist-api/internal/storage"
)

// MaxNameLen is the longest accepted file name, in characters.
const MaxNameLen = 100

// FileResponse is the listing shape of a file.
type FileResponse struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

type ListResponse struct {
	Files []FileResponse `json:"files"`
}

// Register mounts the file routes on g, which must already be behind the
// auth gate.
func Register(g *echo.Group, files storage.Files) {
	g.GET("/files", ListHandler(files))
	g.POST("/files", UploadHandler(files))
	g.GET("/files/:name", DownloadHandler(files))
	g.DELETE("/files/:name", DeleteHandler(files))
}

func ListHandler(files storage.Files) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := owner(c)
		if err != nil {
			return err
		}
		list, err := files.ListFiles(c.Request().Context(), user.Name)
		if err != nil {
			return err
		}
		resp := ListResponse{Files: make([]FileResponse, 0, len(list))}
		for _, file := range list {
			resp.Files = append(resp.Files, FileResponse{ID: file.ID, FileName: file.FileName, FileSize: file.Size})
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// UploadHandler stores the multipart field "file" under its client-side name.
func UploadHandler(files storage.Files) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := owner(c)
		if err != nil {
			return err
		}
		header, err := c.FormFile("file")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "file required").SetInternal(err)
		}
		name := filepath.Base(header.Filename)
		if err = validateName(name); err != nil {
			return err
		}

		src, err := header.Open()
		if err != nil {
			return fmt.Errorf("failed to open upload: %w", err)
		}
		defer func() { _ = src.Close() }()
		content, err := io.ReadAll(src)
		if err != nil {
			return fmt.Errorf("failed to read upload: %w", err)
		}

		_, err = files.UploadFile(c.Request().Context(), user.Name, name, content)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "file already exists").SetInternal(err)
		} else if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "file uploaded successfully"})
	}
}

// DownloadHandler answers with the stored bytes as an attachment.
func DownloadHandler(files storage.Files) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := owner(c)
		if err != nil {
			return err
		}
		name, err := fileName(c)
		if err != nil {
			return err
		}
		file, err := files.GetFile(c.Request().Context(), user.Name, name)
		if err != nil {
			return notFound(err)
		}
		c.Response().Header().Set(
			echo.HeaderContentDisposition,
			mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}),
		)
		return c.Blob(http.StatusOK, contentType(file.FileName), file.Content)
	}
}

func DeleteHandler(files storage.Files) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := owner(c)
		if err != nil {
			return err
		}
		name, err := fileName(c)
		if err != nil {
			return err
		}
		if err = files.DeleteFile(c.Request().Context(), user.Name, name); err != nil {
			return notFound(err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "file deleted successfully"})
	}
}

func owner(c echo.Context) (models.User, error) {
	user, ok := auth.UserFromContext(c.Request().Context())
	if !ok {
		return user, echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
	}
	return user, nil
}

// fileName returns the path parameter. The router matches on the raw path
// only when the request path needs non-default escaping, and leaves the
// parameter escaped in that case.
func fileName(c echo.Context) (string, error) {
	name := c.Param("name")
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "invalid file name").SetInternal(err)
		}
		name = unescaped
	}
	return name, validateName(name)
}

func validateName(name string) error {
	switch {
	case name == "" || name == "." || name == "/":
		return echo.NewHTTPError(http.StatusBadRequest, "file name required")
	case utf8.RuneCountInString(name) > MaxNameLen:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("file name must be at most %d characters", MaxNameLen))
	}
	return nil
}

func contentType(name string) string {
	if typ := mime.TypeByExtension(filepath.Ext(name)); typ != "" {
		return typ
	}
	return echo.MIMEOctetStream
}

// notFound answers 401 for files that are missing or owned by someone else.
func notFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "file not found").SetInternal(err)
	}
	return err
}
