package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	serr "github.com/cestmoi1337/ScorePlayer/internal/shared/errors"
)

// AuthService реализует регистрацию и вход по email/паролю.
//
// Токены и сессии не выдаются: успешный вход возвращает только id пользователя.
type AuthService struct {
	users  UsersRepo
	hasher PasswordHasher

	// digest для сверки при несуществующем email,
	// чтобы время ответа не выдавало наличие аккаунта
	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService создаёт AuthService.
func NewAuthService(users UsersRepo, hasher PasswordHasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// NormalizeEmail приводит email к виду, в котором он хранится:
// без пробелов по краям и в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup регистрирует нового пользователя и возвращает его id.
//
// Ошибки:
//   - ErrInvalidInput — пустой email или пароль
//   - ErrPasswordTooLong — пароль не помещается в bcrypt
//   - ErrAlreadyExists — email уже занят
//   - ErrInternal — ошибка хранилища
//   - ErrUnexpectedError — всё остальное
func (s *AuthService) Signup(ctx context.Context, email, password string) (int64, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return 0, serr.ErrInvalidInput
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, serr.ErrPasswordTooLong) {
			return 0, serr.ErrPasswordTooLong
		}
		return 0, fmt.Errorf("%w: hash password: %w", serr.ErrUnexpectedError, err)
	}

	id, err := s.users.Create(ctx, email, digest)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) || errors.Is(err, serr.ErrInternal) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: create user: %w", serr.ErrUnexpectedError, err)
	}
	return id, nil
}

// Login проверяет email и пароль и возвращает id пользователя.
//
// Несуществующий email и неверный пароль неразличимы:
// оба дают ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (int64, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return 0, serr.ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			s.burnVerify(password)
			return 0, serr.ErrInvalidCredentials
		}
		return 0, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return 0, fmt.Errorf("%w: verify password: %w", serr.ErrInternal, err)
	}
	if !ok {
		return 0, serr.ErrInvalidCredentials
	}

	return user.ID, nil
}

// burnVerify тратит на несуществующий email столько же, сколько на неверный пароль.
func (s *AuthService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash("scoreplayer-dummy-password")
	})
	if s.dummyDigest == "" {
		return
	}
	_, _ = s.hasher.Verify(password, s.dummyDigest)
}
