// Package api содержит HTTP-клиент для сервера ScorePlayer.
//
// Клиент хранит базовый URL и настроенный http.Client и умеет:
//   - отправлять JSON (PostJSON) и читать JSON (GetJSON);
//   - загружать файл multipart-формой (PostMultipart).
//
// Ошибочные ответы (не 2xx) превращаются в *APIError с текстом
// из поля "message" тела ответа.
package api

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// DefaultTimeout — таймаут запросов по умолчанию.
const DefaultTimeout = 30 * time.Second

// Client реализует HTTP-клиент для общения с сервером ScorePlayer.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option настраивает Client.
type Option func(*Client)

// WithTimeout задаёт таймаут запросов.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithInsecureTLS отключает проверку сертификата сервера.
// Только для локальной разработки с самоподписанным сертификатом.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.http.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // только для dev
		}
	}
}

// NewClient создаёт клиент. Завершающий "/" у baseURL обрезается.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError — ответ сервера с кодом не 2xx.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// StatusCode возвращает HTTP-код из *APIError или 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// readAPIError читает тело ошибочного ответа.
//
// Сервер отвечает {"message": "..."}; если тело другое,
// берётся текст как есть, а при пустом теле — res.Status.
func readAPIError(res *http.Response) error {
	raw, _ := io.ReadAll(res.Body)

	var body struct {
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = res.Status
	}
	return &APIError{StatusCode: res.StatusCode, Message: msg}
}

// decodeJSONOrOK декодирует JSON в resp; пустое тело не ошибка.
func decodeJSONOrOK(r io.Reader, resp any) error {
	if resp == nil {
		return nil
	}
	err := json.NewDecoder(r).Decode(resp)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (c *Client) do(r *http.Request, resp any) error {
	r.Header.Set("Accept", "application/json")

	res, err := c.http.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return readAPIError(res)
	}
	if res.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeJSONOrOK(res.Body, resp)
}

// PostJSON выполняет POST с телом req в JSON и декодирует ответ в resp.
// req == nil — запрос без тела.
func (c *Client) PostJSON(path string, req any, resp any) error {
	var buf bytes.Buffer
	if req != nil {
		if err := json.NewEncoder(&buf).Encode(req); err != nil {
			return err
		}
	}

	r, err := http.NewRequest(http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return c.do(r, resp)
}

// GetJSON выполняет GET и декодирует JSON-ответ в resp.
func (c *Client) GetJSON(path string, resp any) error {
	r, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(r, resp)
}

// GetText выполняет GET и возвращает тело ответа как строку.
func (c *Client) GetText(path string) (string, error) {
	r, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}

	res, err := c.http.Do(r)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", readAPIError(res)
	}
	b, err := io.ReadAll(res.Body)
	return string(b), err
}

// PostMultipart отправляет один файл в поле field multipart-формы.
//
// Тело формы собирается в pipe, поэтому файл не читается в память целиком.
func (c *Client) PostMultipart(path, field, filename, contentType string, content io.Reader, resp any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		hdr.Set("Content-Type", contentType)

		part, err := mw.CreatePart(hdr)
		if err == nil {
			_, err = io.Copy(part, content)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	r, err := http.NewRequest(http.MethodPost, c.baseURL+path, pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	r.Header.Set("Content-Type", mw.FormDataContentType())

	err = c.do(r, resp)
	// если сервер ответил раньше, чем дочитал тело, освобождаем писателя
	_ = pr.CloseWithError(io.ErrClosedPipe)
	return err
}
