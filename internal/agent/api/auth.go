// Методы клиента для регистрации и входа.
package api

import "github.com/cestmoi1337/ScorePlayer/internal/shared/models"

// Signup регистрирует пользователя (POST /signup).
func (c *Client) Signup(email, password string) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.PostJSON("/signup", models.CredentialsRequest{Email: email, Password: password}, &resp)
	return resp, err
}

// Login проверяет учётные данные (POST /login) и возвращает id пользователя.
func (c *Client) Login(email, password string) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.PostJSON("/login", models.CredentialsRequest{Email: email, Password: password}, &resp)
	return resp, err
}
