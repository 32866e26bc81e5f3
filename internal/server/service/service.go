// Package service содержит бизнес-логику ScorePlayer.
// Это прослойка между HTTP-обработчиками (api) и хранилищами (repository).
package service

import (
	"context"
	"io"

	"github.com/cestmoi1337/ScorePlayer/internal/server/models"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

// Repositories — набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users  UsersRepo
	Files  FilesRepo
	Health HealthRepo
}

// Services — агрегатор всех сервисов приложения.
type Services struct {
	Auth    *AuthService
	Uploads *UploadService
	Health  *HealthService
}

// NewServices собирает все сервисы приложения.
func NewServices(repos Repositories, hasher PasswordHasher, dispatcher Dispatcher) *Services {
	return &Services{
		Auth:    NewAuthService(repos.Users, hasher),
		Uploads: NewUploadService(repos.Files, dispatcher),
		Health:  NewHealthService(repos.Health),
	}
}

// HealthRepo — минимально нужное для health-check.
type HealthRepo interface {
	Ping(ctx context.Context) error
}

// UsersRepo — хранилище учётных записей (signup/login).
type UsersRepo interface {
	Create(ctx context.Context, email, passwordHash string) (int64, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// FilesRepo — каталог загруженных файлов.
type FilesRepo interface {
	Save(ctx context.Context, name string, r io.Reader) (models.StoredFile, error)
	List(ctx context.Context) ([]string, error)
}

// PasswordHasher — одностороннее хэширование паролей (см. crypto.Hasher).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
}

// Dispatcher запускает распознавание нот для сохранённого файла.
// Вызов не блокирует и не возвращает ошибок: результат виден только в логах.
type Dispatcher interface {
	Dispatch(path, contentType string)
}
