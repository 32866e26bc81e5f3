// Package config содержит локальный профиль CLI-клиента.
//
// Профиль хранится в домашней директории пользователя:
//
//	~/.scoreplayer/profile.json
//
// и запоминает сервер и учётную запись после успешного login,
// чтобы не передавать --server в каждой команде.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Profile — данные, сохраняемые после входа. Пароль не хранится.
type Profile struct {
	Server string `json:"server,omitempty"`
	Email  string `json:"email,omitempty"`
	UserID int64  `json:"user_id,omitempty"`
}

// DefaultPath возвращает <home>/.scoreplayer/profile.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".scoreplayer", "profile.json"), nil
}

// Load читает профиль. Отсутствующий файл — пустой профиль без ошибки.
func Load(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Profile{}, nil
		}
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save пишет профиль с правами 0600 (каталог 0700).
func Save(path string, p *Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
