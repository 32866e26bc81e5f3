// Package errors содержит общие доменные ошибки приложения.
//
// Эти ошибки используются в service и repository слоях
// и маппятся на HTTP-статусы и сообщения в api слое.
package errors

import "errors"

var (
	// Не заполнены обязательные поля (email/password)
	ErrInvalidInput = errors.New("invalid input")
	// Неверные учётные данные (и несуществующий email, и неверный пароль)
	ErrInvalidCredentials = errors.New("invalid credentials")
	// Ошибка хранилища (всё, кроме нарушения уникальности)
	ErrInternal = errors.New("internal error")
	// Полученные JSON данные с ошибками
	ErrBadJSON = errors.New("bad json")
	// Ресурс уже существует (например email уже занят)
	ErrAlreadyExists = errors.New("already exists")
	// Ресурс не найден
	ErrNotFound = errors.New("not found")
	// неожидаемая ошибка
	ErrUnexpectedError = errors.New("unexpected error")
)

// только для паролей
var (
	// bcrypt не принимает пароли длиннее 72 байт
	ErrPasswordTooLong = errors.New("password too long")
)

// только для загрузки файлов
var (
	ErrNoFile = errors.New("no file provided")
	// тело запроса больше server.max_body_bytes
	ErrFileTooLarge = errors.New("file too large")
	// ошибка чтения/записи каталога загрузок
	ErrFilesystem = errors.New("filesystem error")
)
