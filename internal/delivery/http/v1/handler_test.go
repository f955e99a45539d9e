package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/services"
	"github.com/adanyl0v/go-task-tracker/internal/storage/sqlite"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

type testResponse struct {
	Code int
	Body struct {
		Status  string              `json:"status"`
		Message string              `json:"message"`
		Data    json.RawMessage     `json:"data"`
		Meta    *paginationMeta     `json:"meta"`
		Errors  map[string][]string `json:"errors"`
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := sqlite.NewTestStorage(t)
	logger := zerolog.Nop()
	h := New(
		logger,
		services.NewAuthService(logger, store, store, "test", []byte("secret"), time.Hour),
		services.NewTaskService(logger, store),
		services.NewListService(logger, store, store),
	)

	router := gin.New()
	router.Use(Recovery(logger))
	router.NoRoute(HandleNotFound)
	RegisterRoutes(router, h)

	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body any) testResponse {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp testResponse
	resp.Code = rec.Code
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp.Body), rec.Body.String())
	return resp
}

func (s *testServer) register(email, role string) (string, int64) {
	s.t.Helper()

	resp := s.do(http.MethodPost, "/api/register", "", gin.H{
		"name":                  "User " + email,
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
		"role":                  role,
	})
	require.Equal(s.t, http.StatusCreated, resp.Code)

	var data struct {
		User      userResponse `json:"user"`
		Token     string       `json:"token"`
		TokenType string       `json:"token_type"`
	}
	decode(s.t, resp, &data)
	require.Equal(s.t, "Bearer", data.TokenType)
	return data.Token, data.User.ID
}

func (s *testServer) createTask(token, title string) taskResponse {
	s.t.Helper()

	resp := s.do(http.MethodPost, "/api/tasks", token, gin.H{"title": title, "description": "about " + title})
	require.Equal(s.t, http.StatusCreated, resp.Code)

	var task taskResponse
	decode(s.t, resp, &task)
	return task
}

func (s *testServer) createList(token string, taskID int64, title string) listResponse {
	s.t.Helper()

	resp := s.do(http.MethodPost, "/api/lists", token, gin.H{"title": title, "description": "d", "task_id": taskID})
	require.Equal(s.t, http.StatusCreated, resp.Code)

	var list listResponse
	decode(s.t, resp, &list)
	return list
}

func decode(t *testing.T, resp testResponse, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Data, dst))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "API is running", body.Message)
	assert.WithinDuration(t, time.Now(), body.Timestamp, time.Minute)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "error", resp.Body.Status)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.register("ann@example.com", models.RoleUser)

	t.Run("me", func(t *testing.T) {
		resp := s.do(http.MethodGet, "/api/me", token, nil)
		require.Equal(t, http.StatusOK, resp.Code)

		var data struct {
			User userResponse `json:"user"`
		}
		decode(t, resp, &data)
		assert.Equal(t, userID, data.User.ID)
		assert.Equal(t, models.RoleUser, data.User.Role)
	})

	t.Run("missing token", func(t *testing.T) {
		resp := s.do(http.MethodGet, "/api/tasks", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "Unauthenticated.", resp.Body.Message)
	})

	t.Run("duplicate email", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/register", "", gin.H{
			"name": "Ann", "email": "ann@example.com",
			"password": "password123", "password_confirmation": "password123", "role": "user",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The email has already been taken."}, resp.Body.Errors["email"])
	})

	t.Run("register validation", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/register", "", gin.H{
			"name": "Bob", "email": "not-an-email",
			"password": "password123", "password_confirmation": "different", "role": "root",
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, "Validation failed", resp.Body.Message)
		assert.Equal(t, []string{"The email field must be a valid email address."}, resp.Body.Errors["email"])
		assert.Equal(t, []string{"The password field confirmation does not match."}, resp.Body.Errors["password"])
		assert.Equal(t, []string{"The selected role is invalid."}, resp.Body.Errors["role"])
	})

	t.Run("login", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/login", "", gin.H{"email": "ann@example.com", "password": "password123"})
		require.Equal(t, http.StatusOK, resp.Code)

		resp = s.do(http.MethodPost, "/api/login", "", gin.H{"email": "ann@example.com", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "Invalid credentials", resp.Body.Message)
	})

	t.Run("logout", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/logout", token, nil)
		require.Equal(t, http.StatusOK, resp.Code)

		resp = s.do(http.MethodGet, "/api/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestTaskEndpoints(t *testing.T) {
	s := newTestServer(t)
	adminToken, adminID := s.register("admin@example.com", models.RoleAdmin)
	userToken, _ := s.register("user@example.com", models.RoleUser)

	task := s.createTask(adminToken, "Launch")

	t.Run("get joins creator", func(t *testing.T) {
		resp := s.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), userToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)

		var got taskResponse
		decode(t, resp, &got)
		assert.Equal(t, adminID, got.CreatedBy)
		require.NotNil(t, got.Creator)
		assert.Equal(t, adminID, got.Creator.ID)
	})

	t.Run("non-admin cannot create even with invalid payload", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/tasks", userToken, gin.H{"title": "x", "description": "y"})
		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, "Unauthorized access", resp.Body.Message)

		resp = s.do(http.MethodPost, "/api/tasks", userToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("non-admin cannot update or delete", func(t *testing.T) {
		path := fmt.Sprintf("/api/tasks/%d", task.ID)
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, path, userToken, gin.H{"title": "x", "description": "y"}).Code)
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, path, userToken, nil).Code)
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/tasks/999999", userToken, nil).Code)
	})

	t.Run("create validation", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/tasks", adminToken, nil)
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The title field is required."}, resp.Body.Errors["title"])
		assert.Equal(t, []string{"The description field is required."}, resp.Body.Errors["description"])

		long := make([]byte, 256)
		for i := range long {
			long[i] = 'a'
		}
		resp = s.do(http.MethodPost, "/api/tasks", adminToken, gin.H{"title": string(long), "description": "d"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The title field must not be greater than 255 characters."}, resp.Body.Errors["title"])

		resp = s.do(http.MethodPost, "/api/tasks", adminToken, gin.H{"title": 5, "description": "d"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The title field must be a string."}, resp.Body.Errors["title"])

		resp = s.do(http.MethodPost, "/api/tasks", adminToken, `{"title":`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("blank strings count as missing", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/tasks", adminToken, gin.H{"title": "   ", "description": " \t\n "})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The title field is required."}, resp.Body.Errors["title"])
		assert.Equal(t, []string{"The description field is required."}, resp.Body.Errors["description"])

		resp = s.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), adminToken, gin.H{"title": "  ", "description": "d"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The title field is required."}, resp.Body.Errors["title"])

		resp = s.do(http.MethodPost, "/api/tasks", adminToken, gin.H{"title": "  Padded  ", "description": " d "})
		require.Equal(t, http.StatusCreated, resp.Code)

		var got taskResponse
		decode(t, resp, &got)
		assert.Equal(t, "Padded", got.Title)
		assert.Equal(t, "d", got.Description)
	})

	t.Run("update checks existence before payload", func(t *testing.T) {
		resp := s.do(http.MethodPut, "/api/tasks/999999", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)

		resp = s.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), adminToken, gin.H{"title": ""})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("another admin may update", func(t *testing.T) {
		otherToken, _ := s.register("admin2@example.com", models.RoleAdmin)
		resp := s.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), otherToken,
			gin.H{"title": "Relaunch", "description": "again"})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Task updated successfully", resp.Body.Message)

		var got taskResponse
		decode(t, resp, &got)
		assert.Equal(t, "Relaunch", got.Title)
		assert.Equal(t, adminID, got.CreatedBy)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/tasks/abc", userToken, nil).Code)
	})

	t.Run("delete cascades", func(t *testing.T) {
		list := s.createList(userToken, task.ID, "Step one")

		resp := s.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), adminToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Task deleted successfully", resp.Body.Message)
		assert.Empty(t, resp.Body.Data)

		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("/api/lists/%d", list.ID), userToken, nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), userToken, nil).Code)
	})
}

func TestTaskPagination(t *testing.T) {
	s := newTestServer(t)
	adminToken, _ := s.register("admin@example.com", models.RoleAdmin)

	for i := 0; i < 15; i++ {
		s.createTask(adminToken, fmt.Sprintf("task %d", i))
	}

	tests := []struct {
		query     string
		wantItems int
		wantPage  int
	}{
		{query: "?page=2", wantItems: 5, wantPage: 2},
		{query: "", wantItems: 10, wantPage: 1},
		{query: "?page=abc", wantItems: 10, wantPage: 1},
		{query: "?page=-4", wantItems: 10, wantPage: 1},
		{query: "?page=3", wantItems: 0, wantPage: 3},
		{query: "?page=922337203685477582", wantItems: 0, wantPage: 922337203685477582},
	}

	for _, tt := range tests {
		t.Run("page"+tt.query, func(t *testing.T) {
			resp := s.do(http.MethodGet, "/api/tasks"+tt.query, adminToken, nil)
			require.Equal(t, http.StatusOK, resp.Code)

			var items []taskResponse
			decode(t, resp, &items)
			assert.Len(t, items, tt.wantItems)
			require.NotNil(t, resp.Body.Meta)
			assert.Equal(t, 15, resp.Body.Meta.Total)
			assert.Equal(t, 2, resp.Body.Meta.LastPage)
			assert.Equal(t, 10, resp.Body.Meta.PerPage)
			assert.Equal(t, tt.wantPage, resp.Body.Meta.CurrentPage)
		})
	}
}

func TestListEndpoints(t *testing.T) {
	s := newTestServer(t)
	adminToken, _ := s.register("admin@example.com", models.RoleAdmin)
	ownerToken, ownerID := s.register("owner@example.com", models.RoleUser)
	strangerToken, _ := s.register("stranger@example.com", models.RoleUser)

	task := s.createTask(adminToken, "Launch")
	list := s.createList(ownerToken, task.ID, "Buy cake")
	path := fmt.Sprintf("/api/lists/%d", list.ID)

	t.Run("create joins task and user", func(t *testing.T) {
		assert.Equal(t, ownerID, list.UserID)
		assert.False(t, list.Completed)
		require.NotNil(t, list.Task)
		assert.Equal(t, task.ID, list.Task.ID)
		require.NotNil(t, list.User)
		assert.Equal(t, ownerID, list.User.ID)
	})

	t.Run("missing task id", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/lists", ownerToken, gin.H{"title": "x", "task_id": 999999})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The selected task id is invalid."}, resp.Body.Errors["task_id"])

		resp = s.do(http.MethodPost, "/api/lists", ownerToken, gin.H{"title": "x"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The task id field is required."}, resp.Body.Errors["task_id"])

		resp = s.do(http.MethodPost, "/api/lists", ownerToken, gin.H{"title": "x", "task_id": "abc"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The task id field must be an integer."}, resp.Body.Errors["task_id"])

		resp = s.do(http.MethodPost, "/api/lists", ownerToken, gin.H{"title": "x", "task_id": 1.5})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The task id field must be an integer."}, resp.Body.Errors["task_id"])
	})

	t.Run("numeric string task id", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/lists", adminToken,
			gin.H{"title": "From a form", "task_id": fmt.Sprintf("%d", task.ID)})
		require.Equal(t, http.StatusCreated, resp.Code)

		var got listResponse
		decode(t, resp, &got)
		assert.Equal(t, task.ID, got.TaskID)
	})

	t.Run("blank title and description", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/api/lists", ownerToken, gin.H{"title": "   ", "task_id": task.ID})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The title field is required."}, resp.Body.Errors["title"])

		resp = s.do(http.MethodPost, "/api/lists", adminToken,
			gin.H{"title": " Trimmed ", "description": "   ", "task_id": task.ID})
		require.Equal(t, http.StatusCreated, resp.Code)

		var got listResponse
		decode(t, resp, &got)
		assert.Equal(t, "Trimmed", got.Title)
		assert.Nil(t, got.Description)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			resp := s.do(method, path, strangerToken, gin.H{"title": "hijack"})
			assert.Equal(t, http.StatusForbidden, resp.Code, method)
			assert.Empty(t, resp.Body.Data, method)
		}
	})

	t.Run("forbidden precedes validation", func(t *testing.T) {
		resp := s.do(http.MethodPut, path, strangerToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("index is scoped to caller", func(t *testing.T) {
		other := s.createTask(adminToken, "Other")
		s.createList(ownerToken, other.ID, "Elsewhere")

		resp := s.do(http.MethodGet, "/api/lists", strangerToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, "[]", string(resp.Body.Data))

		resp = s.do(http.MethodGet, "/api/lists", ownerToken, nil)
		var items []listResponse
		decode(t, resp, &items)
		assert.Len(t, items, 2)

		resp = s.do(http.MethodGet, fmt.Sprintf("/api/lists?task_id=%d", task.ID), ownerToken, nil)
		items = nil
		decode(t, resp, &items)
		require.Len(t, items, 1)
		assert.Equal(t, list.ID, items[0].ID)
	})

	t.Run("update is a full replace", func(t *testing.T) {
		resp := s.do(http.MethodPut, path, ownerToken, gin.H{"title": "Buy pie", "description": nil, "completed": true})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "List updated successfully", resp.Body.Message)

		resp = s.do(http.MethodGet, path, ownerToken, nil)
		var got listResponse
		decode(t, resp, &got)
		assert.Equal(t, "Buy pie", got.Title)
		assert.Nil(t, got.Description)
		assert.True(t, got.Completed)

		resp = s.do(http.MethodPut, path, ownerToken, gin.H{"title": "Buy pie"})
		require.Equal(t, http.StatusOK, resp.Code)
		decode(t, resp, &got)
		assert.False(t, got.Completed)
	})

	t.Run("completed coercion", func(t *testing.T) {
		resp := s.do(http.MethodPut, path, ownerToken, gin.H{"title": "t", "completed": "1"})
		require.Equal(t, http.StatusOK, resp.Code)
		var got listResponse
		decode(t, resp, &got)
		assert.True(t, got.Completed)

		resp = s.do(http.MethodPut, path, ownerToken, gin.H{"title": "t", "completed": "maybe"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, []string{"The completed field must be true or false."}, resp.Body.Errors["completed"])
	})

	t.Run("delete twice", func(t *testing.T) {
		resp := s.do(http.MethodDelete, path, ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "List deleted successfully", resp.Body.Message)

		resp = s.do(http.MethodDelete, path, ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestFlexibleBool(t *testing.T) {
	tests := []struct {
		raw     string
		want    bool
		wantErr bool
	}{
		{raw: `true`, want: true},
		{raw: `1`, want: true},
		{raw: `"1"`, want: true},
		{raw: `"true"`, want: true},
		{raw: `false`},
		{raw: `0`},
		{raw: `"0"`},
		{raw: `null`},
		{raw: `"yes"`, wantErr: true},
		{raw: `2`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var b flexibleBool
			err := b.UnmarshalJSON([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bool(b))
		})
	}
}

func TestFlexibleInt(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: `7`, want: 7},
		{raw: `"7"`, want: 7},
		{raw: `" 42 "`, want: 42},
		{raw: `-3`, want: -3},
		{raw: `"abc"`, wantErr: true},
		{raw: `""`, wantErr: true},
		{raw: `1.5`, wantErr: true},
		{raw: `true`, wantErr: true},
		{raw: `"9223372036854775808"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var i flexibleInt
			err := i.UnmarshalJSON([]byte(tt.raw))
			if tt.wantErr {
				var typeErr *json.UnmarshalTypeError
				require.ErrorAs(t, err, &typeErr)
				assert.Equal(t, reflect.Int64, typeErr.Type.Kind())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, int64(i))
		})
	}
}
