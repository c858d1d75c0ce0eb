package v1

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

func TestHandleRegister(t *testing.T) {
	auth := &fakeAuthService{
		register: func(params services.RegisterParams) (*services.AuthResult, error) {
			if params.Email == "taken@example.com" {
				return nil, services.ErrUserAlreadyExists
			}
			return &services.AuthResult{
				User:  &models.User{ID: "user-1", FullName: params.FullName, Email: params.Email},
				Token: "signed-token",
			}, nil
		},
	}
	s := newTestServer(t, auth, &fakeTaskService{})

	t.Run("created", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"fullName": "Alice",
			"email":    "alice@example.com",
			"password": "secret123",
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "signed-token", body["token"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "alice@example.com", user["email"])
		assert.NotContains(t, user, "password")
	})

	t.Run("email exists", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"fullName": "Alice",
			"email":    "taken@example.com",
			"password": "secret123",
		}, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email":    "not-an-email",
			"password": "123",
		}, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody(t, rec)
		fields := map[string]string{}
		for _, raw := range body["errors"].([]any) {
			fe := raw.(map[string]any)
			fields[fe["field"].(string)] = fe["message"].(string)
		}
		assert.Equal(t, "is required", fields["fullName"])
		assert.Equal(t, "must be a valid email", fields["email"])
		assert.Equal(t, "must be at least 6 characters", fields["password"])
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/register", "{", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid request body", decodeBody(t, rec)["error"])
	})
}

func TestHandleLogin(t *testing.T) {
	auth := &fakeAuthService{
		login: func(params services.LoginParams) (*services.AuthResult, error) {
			switch {
			case params.Email == "ghost@example.com":
				return nil, services.ErrUserNotFound
			case params.Password != "secret123":
				return nil, services.ErrUserPasswordMismatch
			}
			return &services.AuthResult{
				User:  &models.User{ID: "user-1", Email: params.Email},
				Token: "signed-token",
			}, nil
		},
	}
	s := newTestServer(t, auth, &fakeTaskService{})

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{name: "valid", email: "alice@example.com", password: "secret123", wantStatus: http.StatusOK},
		{name: "wrong password", email: "alice@example.com", password: "nope", wantStatus: http.StatusUnauthorized},
		{name: "unknown user", email: "ghost@example.com", password: "secret123", wantStatus: http.StatusUnauthorized},
		{name: "missing password", email: "alice@example.com", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			}, "")
			require.Equal(t, tt.wantStatus, rec.Code)

			body := decodeBody(t, rec)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "invalid credentials", body["error"])
				assert.NotContains(t, body, "token")
			}
		})
	}
}

func TestHandleMe(t *testing.T) {
	auth := &fakeAuthService{
		getUser: func(userID string) (*models.User, error) {
			if userID != "user-1" {
				return nil, services.ErrUserNotFound
			}
			return &models.User{ID: userID, Email: "alice@example.com"}, nil
		},
	}
	s := newTestServer(t, auth, &fakeTaskService{})

	rec := s.do(t, http.MethodGet, "/api/auth/me", nil, s.token(t, "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", decodeBody(t, rec)["user"].(map[string]any)["id"])

	rec = s.do(t, http.MethodGet, "/api/auth/me", nil, s.token(t, "deleted-user"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
