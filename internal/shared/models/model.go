// Package models содержит JSON-контракты HTTP API,
// общие для сервера (internal/server/api) и клиента (internal/agent/api).
package models

// CredentialsRequest — тело запросов регистрации и входа.
//
// Используется в:
//
//	POST /signup
//	POST /login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse — успешный ответ регистрации и входа.
//
// UserID — идентификатор пользователя в таблице users.
type AuthResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// UploadResponse — ответ на успешную загрузку файла.
//
// Filename — имя, под которым файл сохранён на сервере
// (<ms>-<random>-<исходное имя>). По нему файл доступен в /uploads/{filename}.
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// FilesResponse — список файлов каталога загрузок.
//
// Используется в:
//
//	GET /files
type FilesResponse struct {
	Files []string `json:"files"`
}

// MessageResponse — тело любого ответа с ошибкой.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse — ответ GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
