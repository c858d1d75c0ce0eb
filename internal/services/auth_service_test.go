package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() TokenService {
	return NewTokenService("taskboard", []byte("secret"), 7*24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	mock := newMockPool(t)
	tokens := newTestTokenService()
	s := newTestAuthService(t, mock, tokens)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "Alice Doe", "alice@example.com",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	result, err := s.Register(context.Background(), RegisterParams{
		FullName: "  Alice Doe ",
		Email:    " Alice@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.User.ID)
	assert.Equal(t, "Alice Doe", result.User.FullName)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Empty(t, result.User.Password)

	userID, err := tokens.Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	mock := newMockPool(t)
	s := newTestAuthService(t, mock, newTestTokenService())

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

	_, err := s.Register(context.Background(), RegisterParams{
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := argon2id.CreateHash("secret123", testArgon2Params)
	require.NoError(t, err)
	createdAt := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		password string
		rowErr   error
		wantErr  error
	}{
		{name: "valid credentials", password: "secret123"},
		{name: "wrong password", password: "wrong-password", wantErr: ErrUserPasswordMismatch},
		{name: "unknown email", password: "secret123", rowErr: pgx.ErrNoRows, wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			s := newTestAuthService(t, mock, newTestTokenService())

			expect := mock.ExpectQuery("SELECT id").WithArgs("alice@example.com")
			if tt.rowErr != nil {
				expect.WillReturnError(tt.rowErr)
			} else {
				expect.WillReturnRows(pgxmock.NewRows([]string{"id", "full_name", "password", "created_at", "updated_at"}).
					AddRow("0192f0a4-5c3e-7d2b-9f1a-1b2c3d4e5f60", "Alice", hash, createdAt, createdAt))
			}

			result, err := s.Login(context.Background(), LoginParams{
				Email:    "ALICE@example.com",
				Password: tt.password,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "0192f0a4-5c3e-7d2b-9f1a-1b2c3d4e5f60", result.User.ID)
			assert.Empty(t, result.User.Password)
			assert.NotEmpty(t, result.Token)
		})
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	const userID = "0192f0a4-5c3e-7d2b-9f1a-1b2c3d4e5f60"
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		s := newTestAuthService(t, mock, newTestTokenService())

		mock.ExpectQuery("SELECT full_name").WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"full_name", "email", "created_at", "updated_at"}).
				AddRow("Alice", "alice@example.com", now, now))

		user, err := s.GetUserByID(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMockPool(t)
		s := newTestAuthService(t, mock, newTestTokenService())

		mock.ExpectQuery("SELECT full_name").WithArgs(userID).WillReturnError(pgx.ErrNoRows)

		_, err := s.GetUserByID(context.Background(), userID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		mock := newMockPool(t)
		s := newTestAuthService(t, mock, newTestTokenService())

		_, err := s.GetUserByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("database failure", func(t *testing.T) {
		mock := newMockPool(t)
		s := newTestAuthService(t, mock, newTestTokenService())

		dbErr := errors.New("connection reset")
		mock.ExpectQuery("SELECT full_name").WithArgs(userID).WillReturnError(dbErr)

		_, err := s.GetUserByID(context.Background(), userID)
		assert.ErrorIs(t, err, dbErr)
	})
}
