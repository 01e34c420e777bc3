package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/BuzzLyutic/taskflow-api/internal/auth"
	"github.com/BuzzLyutic/taskflow-api/internal/model"
	"github.com/BuzzLyutic/taskflow-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
	// Единый текст и для неизвестного email, и для неверного пароля,
	// чтобы не дать перебирать зарегистрированные адреса
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService struct {
	users  repo.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.JWTManager
}

func NewAuthService(users repo.UserRepository, hasher *auth.PasswordHasher, tokens *auth.JWTManager) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register создает пользователя и сразу выдает токен.
// Дубликат email ловится ограничением уникальности в БД.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (model.PublicUser, string, error) {
	if strings.TrimSpace(name) == "" || password == "" {
		return model.PublicUser{}, "", ErrValidation
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.PublicUser{}, "", ErrValidation
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.PublicUser{}, "", err
	}

	user, err := s.users.Create(ctx, model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return model.PublicUser{}, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return model.PublicUser{}, "", err
	}
	return user.Public(), token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (model.PublicUser, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrorNotFound) {
		return model.PublicUser{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return model.PublicUser{}, "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return model.PublicUser{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return model.PublicUser{}, "", err
	}
	return user.Public(), token, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}
