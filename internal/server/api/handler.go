// Package api реализует HTTP-слой сервера ScorePlayer.
//
// Пакет отвечает за:
//   - разбор входящих запросов (JSON, multipart);
//   - вызов сервисного слоя;
//   - маппинг доменных ошибок в HTTP-коды и сообщения.
//
// Любой ответ с ошибкой — JSON вида {"message": "..."}; внутренние
// подробности (текст ошибки БД, стек) пишутся только в лог.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/cestmoi1337/ScorePlayer/internal/server/middleware"
	"github.com/cestmoi1337/ScorePlayer/internal/server/service"
	"github.com/cestmoi1337/ScorePlayer/internal/shared/logger"
	"github.com/cestmoi1337/ScorePlayer/internal/shared/models"
)

// Каждый метод если будет возвращать ответ то будет это делать в JSON
const (
	JsonContentType string = "application/json"
	ContentType     string = "Content-Type"
)

// Сообщения ответов
const (
	MsgGreeting          = "Hello from ScorePlayer API!"
	MsgSignupOK          = "User registered successfully!"
	MsgLoginOK           = "Login successful!"
	MsgUploadOK          = "File uploaded successfully!"
	MsgFieldsRequired    = "Email and password required."
	MsgPasswordTooLong   = "Password too long."
	MsgEmailTaken        = "Email already registered."
	MsgInvalidLogin      = "Invalid email or password."
	MsgDatabaseError     = "Database error."
	MsgInternalError     = "Internal server error."
	MsgBadJSON           = "Invalid JSON body."
	MsgNoFile            = "No file uploaded."
	MsgFileTooLarge      = "File too large."
	MsgCouldNotSave      = "Could not save file."
	MsgCouldNotListFiles = "Could not list files."
)

// UploadOptions — параметры приёма файлов.
type UploadOptions struct {
	// FormField — имя поля multipart-формы с файлом
	FormField string
	// MaxBodyBytes — лимит тела запроса загрузки, 0 — без лимита
	MaxBodyBytes int64
}

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
type Handler struct {
	Svc     *service.Services
	Log     *logger.HTTPLogger
	Uploads UploadOptions
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
func NewHandler(svc *service.Services, log *logger.HTTPLogger, uploads UploadOptions) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	if uploads.FormField == "" {
		uploads.FormField = "file"
	}
	return &Handler{
		Svc:     svc,
		Log:     log,
		Uploads: uploads,
	}
}

// WriteError пишет JSON {"message": message} с кодом status.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.MessageResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logError пишет ошибку с идентификатором запроса.
func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.Log.Logger.Sugar().Errorw(msg,
		"error", err,
		"request_id", middleware.RequestIDFromContext(r.Context()),
	)
}
