// Серверные модели: пользователь и сохранённый файл
package models

import "time"

// User — запись таблицы users.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// StoredFile — файл в каталоге загрузок.
//
// Name — имя, выданное сервером (<ms>-<random>-<исходное имя>),
// Path — абсолютный путь к файлу на диске.
type StoredFile struct {
	Name string
	Path string
}
