package service_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cestmoi1337/ScorePlayer/internal/server/models"
	"github.com/cestmoi1337/ScorePlayer/internal/server/service"
	"github.com/cestmoi1337/ScorePlayer/internal/server/service/mocks"
	serr "github.com/cestmoi1337/ScorePlayer/internal/shared/errors"
)

var storedNameRe = regexp.MustCompile(`^\d{13}-\d{1,9}-song\.pdf$`)

func newUploadService(t *testing.T) (*service.UploadService, *mocks.MockFilesRepo, *mocks.MockDispatcher) {
	t.Helper()

	ctrl := gomock.NewController(t)
	files := mocks.NewMockFilesRepo(ctrl)
	dispatcher := mocks.NewMockDispatcher(ctrl)

	return service.NewUploadService(files, dispatcher), files, dispatcher
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"song.pdf":              "song.pdf",
		"../../etc/passwd":      "passwd",
		`..\..\windows\a.pdf`:   "a.pdf",
		"/abs/path/score.xml":   "score.xml",
		"":                      "file",
		"..":                    "file",
		".":                     "file",
		"/":                     "file",
		"  name with space.pdf": "name with space.pdf",
	}
	for in, want := range tests {
		require.Equal(t, want, service.SanitizeFilename(in), in)
	}
}

func TestStoredName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	require.Equal(t, "1700000000123-42-song.pdf", service.StoredName(now, 42, "song.pdf"))
	require.Equal(t, "1700000000123-0-passwd", service.StoredName(now, 0, "../passwd"))
}

// Имя на диске отличается от исходного и оканчивается им; PDF уходит диспетчеру
func TestUploadService_Upload_OK(t *testing.T) {
	svc, files, dispatcher := newUploadService(t)
	body := strings.NewReader("%PDF-1.4")

	var saved string
	files.EXPECT().
		Save(gomock.Any(), gomock.Any(), body).
		DoAndReturn(func(_ context.Context, name string, _ any) (models.StoredFile, error) {
			saved = name
			return models.StoredFile{Name: name, Path: "/srv/uploads/" + name}, nil
		})
	dispatcher.EXPECT().
		Dispatch(gomock.Any(), "application/pdf").
		Do(func(path, _ string) {
			require.Equal(t, "/srv/uploads/"+saved, path)
		})

	name, err := svc.Upload(context.Background(), service.FileUpload{
		OriginalName: "song.pdf",
		ContentType:  "application/pdf",
		Body:         body,
	})
	require.NoError(t, err)
	require.Equal(t, saved, name)
	require.NotEqual(t, "song.pdf", name)
	require.True(t, strings.HasSuffix(name, "-song.pdf"))
	require.Regexp(t, storedNameRe, name)
}

func TestUploadService_Upload_NoFile(t *testing.T) {
	svc, _, _ := newUploadService(t)

	_, err := svc.Upload(context.Background(), service.FileUpload{OriginalName: "song.pdf"})
	require.ErrorIs(t, err, serr.ErrNoFile)
}

// Коллизия имени: пробуем другое имя
func TestUploadService_Upload_RetriesOnCollision(t *testing.T) {
	svc, files, dispatcher := newUploadService(t)

	gomock.InOrder(
		files.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.StoredFile{}, fmt.Errorf("%w: %w", serr.ErrFilesystem, fs.ErrExist)),
		files.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.StoredFile{Name: "n", Path: "/p/n"}, nil),
	)
	dispatcher.EXPECT().Dispatch("/p/n", "text/plain")

	name, err := svc.Upload(context.Background(), service.FileUpload{
		OriginalName: "a.txt",
		ContentType:  "text/plain",
		Body:         strings.NewReader("x"),
	})
	require.NoError(t, err)
	require.Equal(t, "n", name)
}

// Ошибка записи: диспетчер не вызывается
func TestUploadService_Upload_SaveError(t *testing.T) {
	svc, files, _ := newUploadService(t)

	files.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.StoredFile{}, errors.New("disk full"))

	_, err := svc.Upload(context.Background(), service.FileUpload{
		OriginalName: "song.pdf",
		ContentType:  "application/pdf",
		Body:         strings.NewReader("x"),
	})
	require.ErrorIs(t, err, serr.ErrFilesystem)
}

func TestUploadService_List(t *testing.T) {
	svc, files, _ := newUploadService(t)

	files.EXPECT().List(gomock.Any()).Return([]string{"a", "b"}, nil)
	names, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	files.EXPECT().List(gomock.Any()).Return(nil, errors.New("permission denied"))
	_, err = svc.List(context.Background())
	require.ErrorIs(t, err, serr.ErrFilesystem)
}

func TestHealthService_Check(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHealthRepo(ctrl)
	svc := service.NewHealthService(repo)

	repo.EXPECT().Ping(gomock.Any()).Return(nil)
	require.NoError(t, svc.Check(context.Background()))

	repo.EXPECT().Ping(gomock.Any()).Return(serr.ErrInternal)
	require.ErrorIs(t, svc.Check(context.Background()), serr.ErrInternal)
}

func TestNewServices(t *testing.T) {
	ctrl := gomock.NewController(t)

	svcs := service.NewServices(service.Repositories{
		Users:  mocks.NewMockUsersRepo(ctrl),
		Files:  mocks.NewMockFilesRepo(ctrl),
		Health: mocks.NewMockHealthRepo(ctrl),
	}, mocks.NewMockPasswordHasher(ctrl), mocks.NewMockDispatcher(ctrl))

	require.NotNil(t, svcs.Auth)
	require.NotNil(t, svcs.Uploads)
	require.NotNil(t, svcs.Health)
}
