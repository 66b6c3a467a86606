package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const (
	// DefaultTokenTTL — время жизни access token по умолчанию.
	DefaultTokenTTL = 15 * time.Minute
	tokenIssuer     = "shop"
)

// Token — выданный bearer credential.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer выпускает и проверяет HS256 JWT, в subject которых лежит id пользователя.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer создаёт TokenIssuer. Пустой секрет недопустим.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue подписывает токен для пользователя.
func (i *TokenIssuer) Issue(userID int64) (Token, error) {
	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)

	claims := jwt.StandardClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    tokenIssuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC()}, nil
}

// Parse проверяет подпись и срок действия и возвращает id пользователя.
// Любая проблема с токеном сводится к ErrUnauthorized.
func (i *TokenIssuer) Parse(raw string) (int64, error) {
	if raw == "" {
		return 0, domain.ErrUnauthorized
	}

	// Срок действия проверяется ниже по i.now, а не по глобальному jwt.TimeFunc.
	parser := jwt.Parser{SkipClaimsValidation: true}
	var claims jwt.StandardClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	now := i.now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return 0, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
	}
	if !claims.VerifyIssuer(tokenIssuer, true) {
		return 0, fmt.Errorf("%w: unexpected issuer", domain.ErrUnauthorized)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: malformed subject", domain.ErrUnauthorized)
	}
	return userID, nil
}
