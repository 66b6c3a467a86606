package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *memory.Store, *TokenIssuer, domain.User) {
	t.Helper()

	store := memory.NewStore()
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	user, err := store.CreateUser(context.Background(), domain.User{Email: "jordan@example.com", PasswordHash: hash})
	require.NoError(t, err)

	tokens, err := NewTokenIssuer("test-secret", time.Minute)
	require.NoError(t, err)
	authn, err := NewAuthenticator(store, hasher, tokens, nil)
	require.NoError(t, err)
	return authn, store, tokens, user
}

func TestLogin_IssuesTokenThatIdentifiesUser(t *testing.T) {
	authn, _, _, user := newTestAuthenticator(t)
	ctx := context.Background()

	token, err := authn.Login(ctx, "Jordan@Example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	userID, err := authn.Authenticate(ctx, "Bearer "+token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLogin_Failures(t *testing.T) {
	authn, _, _, _ := newTestAuthenticator(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "wrong password", email: "jordan@example.com", password: "nope", wantErr: domain.ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "correct horse", wantErr: domain.ErrInvalidCredentials},
		{name: "missing password", email: "jordan@example.com", wantErr: domain.ErrCredentialsRequired},
		{name: "missing email", email: "  ", password: "x", wantErr: domain.ErrCredentialsRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := authn.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, token.Value)
		})
	}
}

func TestAuthenticate_RejectsBadCredentials(t *testing.T) {
	authn, _, tokens, user := newTestAuthenticator(t)
	ctx := context.Background()

	valid, err := tokens.Issue(user.ID)
	require.NoError(t, err)

	foreign, err := NewTokenIssuer("another-secret", time.Minute)
	require.NoError(t, err)
	forged, err := foreign.Issue(user.ID)
	require.NoError(t, err)

	expiredIssuer, err := NewTokenIssuer("test-secret", time.Minute)
	require.NoError(t, err)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredIssuer.Issue(user.ID)
	require.NoError(t, err)

	ghost, err := tokens.Issue(user.ID + 100)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.StandardClaims{
		Subject: "1", Issuer: tokenIssuer, ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	headers := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic " + valid.Value,
		"empty token":    "Bearer ",
		"garbage":        "Bearer not.a.jwt",
		"foreign secret": "Bearer " + forged.Value,
		"expired":        "Bearer " + expired.Value,
		"deleted user":   "Bearer " + ghost.Value,
		"alg none":       "Bearer " + noneToken,
	}
	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			_, err := authn.Authenticate(ctx, header)
			assert.True(t, errors.Is(err, domain.ErrUnauthorized), "got %v", err)
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = BearerToken("abc")
	assert.False(t, ok)
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Minute)
	assert.Error(t, err)

	issuer, err := NewTokenIssuer("s", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, issuer.ttl)
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", hash)

	assert.NoError(t, hasher.Compare(hash, "secret-password"))
	assert.ErrorIs(t, hasher.Compare(hash, "other"), domain.ErrInvalidCredentials)

	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
}
