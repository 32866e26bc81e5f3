package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cestmoi1337/ScorePlayer/internal/server/models"
	serr "github.com/cestmoi1337/ScorePlayer/internal/shared/errors"
)

// FilesRepository хранит загруженные файлы плоским списком в одном каталоге.
type FilesRepository struct {
	dir string
}

// NewFilesRepository создаёт каталог загрузок (если его нет) и запоминает абсолютный путь.
func NewFilesRepository(dir string) (*FilesRepository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &FilesRepository{dir: abs}, nil
}

// Dir возвращает абсолютный путь каталога загрузок.
func (r *FilesRepository) Dir() string { return r.dir }

// Path возвращает абсолютный путь файла name в каталоге загрузок.
func (r *FilesRepository) Path(name string) string {
	return filepath.Join(r.dir, filepath.Base(name))
}

// Save пишет содержимое r в файл name внутри каталога загрузок.
//
// Существующий файл не перезаписывается. При ошибке записи
// недописанный файл удаляется.
func (r *FilesRepository) Save(ctx context.Context, name string, src io.Reader) (models.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return models.StoredFile{}, err
	}
	if name == "" || name != filepath.Base(name) {
		return models.StoredFile{}, fmt.Errorf("%w: bad file name %q", serr.ErrFilesystem, name)
	}

	path := r.Path(name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return models.StoredFile{}, fmt.Errorf("%w: create %s: %w", serr.ErrFilesystem, name, err)
	}

	_, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return models.StoredFile{}, fmt.Errorf("%w: write %s: %w", serr.ErrFilesystem, name, err)
	}

	return models.StoredFile{Name: name, Path: path}, nil
}

// List возвращает отсортированные имена файлов каталога загрузок (без путей).
// Подкаталоги пропускаются.
func (r *FilesRepository) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir: %w", serr.ErrFilesystem, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
