package services

import (
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testArgon2Params = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func newTestAuthService(t *testing.T, db Querier, tokens TokenService) *authServiceImpl {
	t.Helper()
	s := NewAuthService(zerolog.Nop(), db, tokens).(*authServiceImpl)
	s.params = testArgon2Params
	return s
}
