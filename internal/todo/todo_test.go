package todo

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist-api/internal/auth"
	"todolist-api/internal/models"
	"todolist-api/internal/storage"
)

func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewSQLite(t.Context(), slog.Default(), storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, name := range []string{"alice", "bob"} {
		_, err = db.CreateUser(t.Context(), name, "hash")
		require.NoError(t, err)
	}
	return db
}

// serve runs handler for a request made by user. An empty user sends the
// request without an identity.
func serve(
	t *testing.T,
	handler echo.HandlerFunc,
	method, user, id string,
	form url.Values,
) (*httptest.ResponseRecorder, error) {
	t.Helper()
	req := httptest.NewRequest(method, "/todo", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if user != "" {
		req = req.WithContext(auth.WithUser(req.Context(), models.User{Name: user}))
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return rec, handler(c)
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, code, httpErr.Code)
}

func list(t *testing.T, db *storage.DB, user string) []TaskResponse {
	t.Helper()
	rec, err := serve(t, ListHandler(db), http.MethodGet, user, "", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Tasks
}

func TestCreateAndList(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	assert.Empty(t, list(t, db, "alice"))

	rec, err := serve(t, CreateHandler(db), http.MethodPost, "alice", "", url.Values{"task": {"buy milk"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"new task created"}`, rec.Body.String())

	tasks := list(t, db, "alice")
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Task)
	assert.Empty(t, list(t, db, "bob"))
}

func TestListHandler_EmptyIsArray(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	rec, err := serve(t, ListHandler(db), http.MethodGet, "bob", "", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())
}

func TestCreateHandler_Validation(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	_, err := serve(t, CreateHandler(db), http.MethodPost, "alice", "", url.Values{})
	requireStatus(t, err, http.StatusBadRequest)

	long := strings.Repeat("x", MaxTaskLen+1)
	_, err = serve(t, CreateHandler(db), http.MethodPost, "alice", "", url.Values{"task": {long}})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestHandlers_Unauthenticated(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	for name, handler := range map[string]echo.HandlerFunc{
		"list":   ListHandler(db),
		"create": CreateHandler(db),
		"update": UpdateHandler(db),
		"delete": DeleteHandler(db),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := serve(t, handler, http.MethodPost, "", "1", url.Values{"task": {"x"}})
			requireStatus(t, err, http.StatusUnauthorized)
		})
	}
}

func TestUpdateAndDelete_Ownership(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	task, err := db.CreateTask(t.Context(), "alice", "walk dog")
	require.NoError(t, err)
	id := strconv.FormatInt(task.ID, 10)

	_, err = serve(t, UpdateHandler(db), http.MethodPut, "bob", id, url.Values{"task": {"hijacked"}})
	requireStatus(t, err, http.StatusUnauthorized)
	_, err = serve(t, DeleteHandler(db), http.MethodDelete, "bob", id, nil)
	requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, "walk dog", list(t, db, "alice")[0].Task)

	rec, err := serve(t, UpdateHandler(db), http.MethodPut, "alice", id, url.Values{"task": {"walk cat"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"task updated"}`, rec.Body.String())
	assert.Equal(t, "walk cat", list(t, db, "alice")[0].Task)

	rec, err = serve(t, DeleteHandler(db), http.MethodDelete, "alice", id, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"task deleted"}`, rec.Body.String())
	assert.Empty(t, list(t, db, "alice"))

	_, err = serve(t, DeleteHandler(db), http.MethodDelete, "alice", id, nil)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestTaskID(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	for _, id := range []string{"abc", "0", "-4", ""} {
		_, err := serve(t, DeleteHandler(db), http.MethodDelete, "alice", id, nil)
		requireStatus(t, err, http.StatusBadRequest)
	}
}
