// Package todo serves the owner-scoped task endpoints.
package todo

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"todolist-api/internal/auth"
	"todolist-api/internal/models"
	"todolist-api/internal/storage"
)

// MaxTaskLen is the longest accepted task text, in characters.
const MaxTaskLen = 100

// TaskResponse is the listing shape of a task.
type TaskResponse struct {
	ID   int64  `json:"id"`
	Task string `json:"task"`
}

type ListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// Register mounts the task routes on g, which must already be behind the
// auth gate.
func Register(g *echo.Group, tasks storage.Tasks) {
	g.GET("/todo", ListHandler(tasks))
	g.POST("/todo", CreateHandler(tasks))
	g.PUT("/todo/:id", UpdateHandler(tasks))
	g.DELETE("/todo/:id", DeleteHandler(tasks))
}

func ListHandler(tasks storage.Tasks) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := owner(c)
		if err != nil {
			return err
		}
		list, err := tasks.ListTasks(c.Request().Context(), user.Name)
		if err != nil {
			return err
		}
		resp := ListResponse{Tasks: make([]TaskResponse, 0, len(list))}
		for _, task := range list {
			resp.Tasks = append(resp.Tasks, TaskResponse{ID: task.ID, Task: task.Text})
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func CreateHandler(tasks storage.Tasks) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := owner(c)
		if err != nil {
			return err
		}
		text, err := taskText(c)
		if err != nil {
			return err
		}
		if _, err = tasks.CreateTask(c.Request().Context(), user.Name, text); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "new task created"})
	}
}

func UpdateHandler(tasks storage.Tasks) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := owner(c)
		if err != nil {
			return err
		}
		id, err := taskID(c)
		if err != nil {
			return err
		}
		text, err := taskText(c)
		if err != nil {
			return err
		}
		if _, err = tasks.UpdateTask(c.Request().Context(), user.Name, id, text); err != nil {
			return notFound(err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "task updated"})
	}
}

func DeleteHandler(tasks storage.Tasks) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := owner(c)
		if err != nil {
			return err
		}
		id, err := taskID(c)
		if err != nil {
			return err
		}
		if err = tasks.DeleteTask(c.Request().Context(), user.Name, id); err != nil {
			return notFound(err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "task deleted"})
	}
}

func owner(c echo.Context) (models.User, error) {
	user, ok := auth.UserFromContext(c.Request().Context())
	if !ok {
		return user, echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
	}
	return user, nil
}

func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	return id, nil
}

func taskText(c echo.Context) (string, error) {
	text := c.FormValue("task")
	switch {
	case text == "":
		return "", echo.NewHTTPError(http.StatusBadRequest, "task required")
	case utf8.RuneCountInString(text) > MaxTaskLen:
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("task must be at most %d characters", MaxTaskLen))
	}
	return text, nil
}

// notFound answers 401 for tasks that are missing or owned by someone else.
func notFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "task not found").SetInternal(err)
	}
	return err
}
