// HTTP-хендлеры загрузки и списка файлов
package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/cestmoi1337/ScorePlayer/internal/server/service"
	serr "github.com/cestmoi1337/ScorePlayer/internal/shared/errors"
	"github.com/cestmoi1337/ScorePlayer/internal/shared/models"
)

// сколько multipart-данных держим в памяти, остальное уходит во временные файлы
const multipartMemory = 32 << 20

// Root отвечает приветствием (проверка, что сервер жив).
//
// @Summary      Greeting
// @Tags         meta
// @Produce      plain
// @Success      200 {string} string "Hello from ScorePlayer API!"
// @Router       / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(ContentType, "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(MsgGreeting))
}

// Upload принимает один файл из поля формы и сохраняет его под уникальным именем.
// PDF дополнительно отправляются на распознавание нот в фоне.
//
// @Summary      Upload file
// @Description  Stores one file under <ms>-<random>-<name>. PDFs are passed to OMR in the background.
// @Tags         files
// @Accept       mpfd
// @Produce      json
// @Param        file formData file true "File to upload"
// @Success      200 {object} models.UploadResponse
// @Failure      400 {object} models.MessageResponse "No file uploaded"
// @Failure      413 {object} models.MessageResponse "File too large"
// @Failure      500 {object} models.MessageResponse "Could not save file"
// @Router       /upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.Uploads.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.Uploads.MaxBodyBytes)
	}

	file, header, err := h.readUpload(r)
	if err != nil {
		switch {
		case errors.Is(err, serr.ErrFileTooLarge):
			WriteError(w, http.StatusRequestEntityTooLarge, MsgFileTooLarge)
		default:
			WriteError(w, http.StatusBadRequest, MsgNoFile)
		}
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	defer file.Close()

	name, err := h.Svc.Uploads.Upload(r.Context(), service.FileUpload{
		OriginalName: header.Filename,
		ContentType:  header.Header.Get(ContentType),
		Body:         file,
	})
	if err != nil {
		h.logError(r, "upload failed", err)
		WriteError(w, http.StatusInternalServerError, MsgCouldNotSave)
		return
	}

	writeJSON(w, http.StatusOK, models.UploadResponse{Message: MsgUploadOK, Filename: name})
}

// readUpload разбирает multipart-форму и достаёт файл из поля формы.
//
// Превышение лимита тела — serr.ErrFileTooLarge, битая форма или
// отсутствие поля — serr.ErrNoFile.
func (h *Handler) readUpload(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, fmt.Errorf("%w: %w", serr.ErrFileTooLarge, err)
		}
		return nil, nil, fmt.Errorf("%w: %w", serr.ErrNoFile, err)
	}

	file, header, err := r.FormFile(h.Uploads.FormField)
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		return nil, nil, fmt.Errorf("%w: %w", serr.ErrNoFile, err)
	}
	return file, header, nil
}

// ListFiles возвращает имена всех загруженных файлов.
//
// @Summary      List files
// @Tags         files
// @Produce      json
// @Success      200 {object} models.FilesResponse
// @Failure      500 {object} models.MessageResponse "Could not list files"
// @Router       /files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	names, err := h.Svc.Uploads.List(r.Context())
	if err != nil {
		h.logError(r, "list files failed", err)
		WriteError(w, http.StatusInternalServerError, MsgCouldNotListFiles)
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, models.FilesResponse{Files: names})
}

// Health проверяет доступность базы.
//
// @Summary      Health check
// @Tags         meta
// @Produce      json
// @Success      200 {object} models.HealthResponse
// @Failure      503 {object} models.HealthResponse
// @Router       /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Health.Check(r.Context()); err != nil {
		h.logError(r, "health check failed", err)
		writeJSON(w, http.StatusServiceUnavailable, models.HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}
