// Package auth проверяет учётные данные и выпускает bearer-токены.
package auth

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// UserLookup — часть хранилища пользователей, нужная аутентификации.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

// Authenticator связывает пароль, хранилище пользователей и выпуск токенов.
type Authenticator struct {
	users  UserLookup
	hasher PasswordHasher
	tokens *TokenIssuer
	logger *log.Entry

	// dummyHash сравнивается для неизвестных email, чтобы время ответа не выдавало их.
	dummyHash string
}

// NewAuthenticator создаёт Authenticator.
func NewAuthenticator(users UserLookup, hasher PasswordHasher, tokens *TokenIssuer, logger *log.Entry) (*Authenticator, error) {
	if logger == nil {
		logger = log.WithField("component", "auth")
	}
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &Authenticator{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Login проверяет пару email/пароль и выдаёт токен.
func (a *Authenticator) Login(ctx context.Context, email, password string) (Token, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Token{}, domain.ErrCredentialsRequired
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if domain.IsNotFound(err) {
		_ = a.hasher.Compare(a.dummyHash, password)
		return Token{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		return Token{}, err
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return Token{}, err
	}
	a.logger.WithField("user_id", user.ID).Debug("token issued")
	return token, nil
}

// Authenticate разбирает значение заголовка Authorization и возвращает id пользователя,
// который должен всё ещё существовать.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (int64, error) {
	raw, ok := BearerToken(header)
	if !ok {
		return 0, domain.ErrUnauthorized
	}

	userID, err := a.tokens.Parse(raw)
	if err != nil {
		return 0, err
	}

	if _, err := a.users.GetUser(ctx, userID); err != nil {
		if domain.IsNotFound(err) {
			return 0, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
		}
		return 0, fmt.Errorf("lookup user: %w", err)
	}
	return userID, nil
}

// BearerToken извлекает токен из "Bearer <token>"; схема нечувствительна к регистру.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
