package service

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	serr "github.com/cestmoi1337/ScorePlayer/internal/shared/errors"
)

// верхняя граница случайной части имени
const randomSuffixLimit = 1_000_000_000

// сколько раз пробуем новое имя, если файл с таким уже есть
const maxNameAttempts = 3

// FileUpload — один файл из multipart-запроса.
type FileUpload struct {
	OriginalName string
	ContentType  string
	Body         io.Reader
}

// UploadService сохраняет загруженные файлы и передаёт PDF на распознавание.
type UploadService struct {
	files      FilesRepo
	dispatcher Dispatcher

	now   func() time.Time
	randN func(n int) int
}

// NewUploadService создаёт UploadService.
func NewUploadService(files FilesRepo, dispatcher Dispatcher) *UploadService {
	return &UploadService{
		files:      files,
		dispatcher: dispatcher,
		now:        time.Now,
		randN:      rand.IntN,
	}
}

// SanitizeFilename оставляет от присланного имени только последний элемент пути.
// Пустые имена и "."/".." заменяются на "file".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := filepath.Base(strings.TrimSpace(name))
	switch base {
	case "", ".", "..", "/":
		return "file"
	}
	return base
}

// StoredName собирает имя файла на диске: <unix-ms>-<n>-<имя>.
func StoredName(now time.Time, n int, original string) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.Itoa(n) + "-" + SanitizeFilename(original)
}

// Upload сохраняет файл под уникальным именем и возвращает это имя.
//
// После записи файл передаётся диспетчеру OMR; его результат
// на ответ не влияет.
func (s *UploadService) Upload(ctx context.Context, f FileUpload) (string, error) {
	if f.Body == nil {
		return "", serr.ErrNoFile
	}

	var err error
	for range maxNameAttempts {
		name := StoredName(s.now(), s.randN(randomSuffixLimit), f.OriginalName)

		stored, saveErr := s.files.Save(ctx, name, f.Body)
		if saveErr == nil {
			s.dispatcher.Dispatch(stored.Path, f.ContentType)
			return stored.Name, nil
		}
		err = saveErr
		// коллизия имён: файл ещё не начинали писать, пробуем другое имя
		if !errors.Is(saveErr, fs.ErrExist) {
			break
		}
	}

	if errors.Is(err, serr.ErrFilesystem) {
		return "", err
	}
	return "", errors.Join(serr.ErrFilesystem, err)
}

// List возвращает имена всех сохранённых файлов.
func (s *UploadService) List(ctx context.Context) ([]string, error) {
	names, err := s.files.List(ctx)
	if err != nil {
		if errors.Is(err, serr.ErrFilesystem) {
			return nil, err
		}
		return nil, errors.Join(serr.ErrFilesystem, err)
	}
	return names, nil
}
