package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
)

func signToken(t *testing.T, key *rsa.PrivateKey, claims *models.SupabaseClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerifyToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	kf := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	v := NewStaticVerifier(kf, slog.New(slog.NewTextHandler(io.Discard, nil)))

	userID := uuid.New()
	valid := &models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "analyst@example.com",
		Role:  "authenticated",
	}

	claims, err := v.VerifyToken(signToken(t, key, valid))
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	anon := *valid
	anon.Role = "anon"
	_, err = v.VerifyToken(signToken(t, key, &anon))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	expired := *valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	_, err = v.VerifyToken(signToken(t, key, &expired))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, valid).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.VerifyToken(hs)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
