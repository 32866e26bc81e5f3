// Методы клиента для работы с файлами.
package api

import (
	"io"

	"github.com/cestmoi1337/ScorePlayer/internal/shared/models"
)

// UploadField — имя поля формы, которое ждёт сервер.
const UploadField = "file"

// Upload загружает файл (POST /upload) и возвращает имя, под которым он сохранён.
func (c *Client) Upload(filename, contentType string, content io.Reader) (models.UploadResponse, error) {
	var resp models.UploadResponse
	err := c.PostMultipart("/upload", UploadField, filename, contentType, content, &resp)
	return resp, err
}

// Files возвращает список загруженных файлов (GET /files).
func (c *Client) Files() ([]string, error) {
	var resp models.FilesResponse
	if err := c.GetJSON("/files", &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// Ping возвращает приветствие сервера (GET /).
func (c *Client) Ping() (string, error) {
	return c.GetText("/")
}

// Health запрашивает GET /healthz.
func (c *Client) Health() (models.HealthResponse, error) {
	var resp models.HealthResponse
	err := c.GetJSON("/healthz", &resp)
	return resp, err
}
