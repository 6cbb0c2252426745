// Package auth is the credential collaborator: verify/create users and
// mint the session tokens the chat surface is guarded by. Passwords are
// bcrypt-hashed; tokens are locally signed HMAC JWTs carrying the
// username and the dialogue session id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ticketgenie/internal/models"
)

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type Service struct {
	Users    UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewService(users UserStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{Users: users, secret: []byte(secret), tokenTTL: tokenTTL}
}

// Verify reports whether the credentials match a stored user.
func (s *Service) Verify(ctx context.Context, username, password string) bool {
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// CreateUser registers a new user; false when the username is taken.
func (s *Service) CreateUser(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("username and password are required: %w", models.ErrValidation)
	}

	_, err := s.Users.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	if err := s.Users.Create(ctx, &models.User{Username: username, PasswordHash: string(hash)}); err != nil {
		return false, err
	}
	return true, nil
}

// IssueToken mints a session token tying the username to a dialogue
// session id.
func (s *Service) IssueToken(username, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates a token and returns its username and session id.
func (s *Service) ParseToken(tokenString string) (username, sessionID string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token claims")
	}

	username, ok = claims["sub"].(string)
	if !ok || username == "" {
		return "", "", errors.New("subject claim not found in token")
	}
	sessionID, ok = claims["sid"].(string)
	if !ok || sessionID == "" {
		return "", "", errors.New("session claim not found in token")
	}
	return username, sessionID, nil
}
