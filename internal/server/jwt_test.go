package server

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/config"
)

func newJWTService(t *testing.T, secret string) *JWTService {
	t.Helper()
	t.Setenv("JWT_SECRET", secret)
	cfg, err := config.NewJWTConfig()
	require.NoError(t, err)
	return NewJWTService(cfg)
}

func TestJWT_GenerateAndValidate(t *testing.T) {
	service := newJWTService(t, "a-perfectly-fine-test-secret")
	userID := uuid.New()

	token, err := service.GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())
}

func TestJWT_RejectsEmptyToken(t *testing.T) {
	service := newJWTService(t, "a-perfectly-fine-test-secret")

	_, err := service.ValidateToken("")
	assert.Error(t, err)
}

func TestJWT_RejectsTamperedToken(t *testing.T) {
	service := newJWTService(t, "a-perfectly-fine-test-secret")

	token, err := service.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = service.ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestJWT_RejectsTokenSignedWithOtherSecret(t *testing.T) {
	issuer := newJWTService(t, "secret-one")
	token, err := issuer.GenerateToken(uuid.New())
	require.NoError(t, err)

	verifier := newJWTService(t, "secret-two")
	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
