// Package crypto содержит хэширование паролей пользователей.
//
// Поддерживаются два алгоритма:
//   - bcrypt (по умолчанию, cost >= 10);
//   - argon2id (строка формата argon2id$v=19$m=...,t=...,p=...$salt$hash).
//
// Оба генерируют новую случайную соль на каждый вызов Hash, поэтому
// два хэша одного и того же пароля всегда различаются.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/cestmoi1337/ScorePlayer/internal/server/config"
	serr "github.com/cestmoi1337/ScorePlayer/internal/shared/errors"
)

// Hasher — односторонняя функция хэширования паролей.
type Hasher interface {
	// Hash возвращает digest для хранения в users.password_hash.
	Hash(password string) (string, error)
	// Verify сверяет пароль с digest. Несовпадение — (false, nil),
	// ошибка возвращается только для битого digest.
	Verify(password, digest string) (bool, error)
}

// NewHasher выбирает реализацию по password.hasher из конфига.
func NewHasher(cfg config.PasswordConfig) (Hasher, error) {
	switch strings.ToLower(cfg.Hasher) {
	case "", "bcrypt":
		cost := cfg.Bcrypt.Cost
		if cost == 0 {
			cost = config.MinBcryptCost
		}
		return BcryptHasher{Cost: cost}, nil
	case "argon2id":
		p := Argon2Params{
			Time:      cfg.Argon2.Time,
			MemoryKiB: cfg.Argon2.MemoryKiB,
			Threads:   cfg.Argon2.Threads,
			KeyLen:    cfg.Argon2.KeyLen,
			SaltLen:   cfg.Argon2.SaltLen,
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return Argon2Hasher{Params: p}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", cfg.Hasher)
	}
}

// BcryptHasher хэширует пароли bcrypt с фиксированной стоимостью.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", serr.ErrPasswordTooLong
		}
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		// такой пароль не мог быть сохранён
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt: %w", err)
	}
}

// Argon2Params — параметры argon2id.
type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
	SaltLen   uint32
}

func (p Argon2Params) validate() error {
	if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 {
		return errors.New("argon2: time, memory and threads must be set")
	}
	if p.KeyLen < config.MinArgon2KeyLen {
		return fmt.Errorf("argon2: key length %d < %d", p.KeyLen, config.MinArgon2KeyLen)
	}
	if p.SaltLen < config.MinArgon2SaltLen {
		return fmt.Errorf("argon2: salt length %d < %d", p.SaltLen, config.MinArgon2SaltLen)
	}
	return nil
}

// Argon2Hasher хэширует пароли argon2id.
type Argon2Hasher struct {
	Params Argon2Params
}

// Hash возвращает строку формата:
// argon2id$v=19$m=65536,t=3,p=2$<salt_b64>$<hash_b64>
func (h Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	p := h.Params
	if err := p.validate(); err != nil {
		return "", err
	}

	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)

	encoded := fmt.Sprintf(
		"argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.MemoryKiB, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

func (h Argon2Hasher) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "argon2id" {
		return false, errors.New("invalid hash format")
	}

	// parts[1] = v=19
	// parts[2] = m=...,t=...,p=...
	// parts[3] = salt
	// parts[4] = hash
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, errors.New("invalid params format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(salt) == 0 {
		return false, errors.New("invalid salt")
	}

	wantHash, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(wantHash) == 0 {
		return false, errors.New("invalid hash")
	}
	if time == 0 || memory == 0 || threads == 0 {
		return false, errors.New("invalid params")
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(wantHash)))
	return subtle.ConstantTimeCompare(got, wantHash) == 1, nil
}
