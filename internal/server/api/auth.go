// HTTP-хендлеры регистрации и входа
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	serr "github.com/cestmoi1337/ScorePlayer/internal/shared/errors"
	"github.com/cestmoi1337/ScorePlayer/internal/shared/models"
)

// decodeCredentials читает {email, password}. Пустое тело — пустые поля.
func decodeCredentials(r *http.Request) (models.CredentialsRequest, error) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return models.CredentialsRequest{}, serr.ErrBadJSON
	}
	return req, nil
}

// Signup регистрирует пользователя.
//
// Ответы:
//   - 201 Created: {message, userId};
//   - 400 Bad Request: пустые поля, неверный JSON или email уже занят;
//   - 500 Internal Server Error: ошибка БД или прочие ошибки.
//
// @Summary      Sign up
// @Description  Registers a new user. Email is trimmed and lower-cased before storing.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.CredentialsRequest true "Credentials"
// @Success      201 {object} models.AuthResponse
// @Failure      400 {object} models.MessageResponse "Missing fields, bad JSON or email already registered"
// @Failure      500 {object} models.MessageResponse "Database or internal error"
// @Router       /signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgBadJSON)
		return
	}

	id, err := h.Svc.Auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, serr.ErrInvalidInput):
			WriteError(w, http.StatusBadRequest, MsgFieldsRequired)
		case errors.Is(err, serr.ErrPasswordTooLong):
			WriteError(w, http.StatusBadRequest, MsgPasswordTooLong)
		case errors.Is(err, serr.ErrAlreadyExists):
			WriteError(w, http.StatusBadRequest, MsgEmailTaken)
		case errors.Is(err, serr.ErrInternal):
			h.logError(r, "signup: storage error", err)
			WriteError(w, http.StatusInternalServerError, MsgDatabaseError)
		default:
			h.logError(r, "signup failed", err)
			WriteError(w, http.StatusInternalServerError, MsgInternalError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{Message: MsgSignupOK, UserID: id})
}

// Login проверяет email и пароль.
//
// Несуществующий email и неверный пароль дают одинаковый 401.
//
// @Summary      Log in
// @Description  Verifies credentials. Unknown email and wrong password produce the same response.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.CredentialsRequest true "Credentials"
// @Success      200 {object} models.AuthResponse
// @Failure      400 {object} models.MessageResponse "Missing fields or bad JSON"
// @Failure      401 {object} models.MessageResponse "Invalid email or password"
// @Failure      500 {object} models.MessageResponse "Database error"
// @Router       /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgBadJSON)
		return
	}

	id, err := h.Svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, serr.ErrInvalidInput):
			WriteError(w, http.StatusBadRequest, MsgFieldsRequired)
		case errors.Is(err, serr.ErrInvalidCredentials):
			WriteError(w, http.StatusUnauthorized, MsgInvalidLogin)
		case errors.Is(err, serr.ErrInternal):
			h.logError(r, "login: storage error", err)
			WriteError(w, http.StatusInternalServerError, MsgDatabaseError)
		default:
			h.logError(r, "login failed", err)
			WriteError(w, http.StatusInternalServerError, MsgInternalError)
		}
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Message: MsgLoginOK, UserID: id})
}
