package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/cestmoi1337/ScorePlayer/internal/agent/cli"
	"github.com/cestmoi1337/ScorePlayer/internal/agent/config"
	"github.com/cestmoi1337/ScorePlayer/internal/shared/models"
)

// fakeServer — минимальная копия API сервера
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", func(w http.ResponseWriter, r *http.Request) {
		var req models.CredentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Email == "taken@x.com" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(models.MessageResponse{Message: "Email already registered."})
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.AuthResponse{Message: "User registered successfully!", UserID: 1})
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req models.CredentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "pw123456" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(models.MessageResponse{Message: "Invalid email or password."})
			return
		}
		_ = json.NewEncoder(w).Encode(models.AuthResponse{Message: "Login successful!", UserID: 1})
	})
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		file, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		_, _ = io.Copy(io.Discard, file)

		_ = json.NewEncoder(w).Encode(models.UploadResponse{
			Message:  "File uploaded successfully!",
			Filename: "1700000000000-1-" + hdr.Filename + "|" + hdr.Header.Get("Content-Type"),
		})
	})
	mux.HandleFunc("GET /files", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.FilesResponse{Files: []string{"a.pdf", "b.txt"}})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.HealthResponse{Status: "ok"})
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Hello from ScorePlayer API!"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCmd("1.2.3", "2025-01-01")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestSignup_PrintsUserID(t *testing.T) {
	srv := fakeServer(t)
	profile := filepath.Join(t.TempDir(), "profile.json")

	out, err := run(t, "", "--server", srv.URL, "--profile", profile,
		"signup", "--email", "a@x.com", "--password", "pw123456")
	require.NoError(t, err)
	require.Contains(t, out, "User registered successfully! userId=1")
}

func TestSignup_Duplicate_ReturnsServerMessage(t *testing.T) {
	srv := fakeServer(t)
	profile := filepath.Join(t.TempDir(), "profile.json")

	_, err := run(t, "", "--server", srv.URL, "--profile", profile,
		"signup", "--email", "taken@x.com", "--password", "pw")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Email already registered.")
}

func TestSignup_PasswordFromStdin(t *testing.T) {
	srv := fakeServer(t)
	profile := filepath.Join(t.TempDir(), "profile.json")

	out, err := run(t, "pw123456\n", "--server", srv.URL, "--profile", profile,
		"signup", "--email", "a@x.com", "--password-stdin")
	require.NoError(t, err)
	require.Contains(t, out, "userId=1")
}

func TestSignup_RequiresEmail(t *testing.T) {
	_, err := run(t, "", "--profile", filepath.Join(t.TempDir(), "p.json"), "signup", "--password", "x")
	require.Error(t, err)
}

// Вход сохраняет сервер и userId; следующие команды берут сервер из профиля
func TestLogin_SavesProfile(t *testing.T) {
	srv := fakeServer(t)
	profile := filepath.Join(t.TempDir(), "profile.json")

	out, err := run(t, "", "--server", srv.URL, "--profile", profile,
		"login", "--email", "a@x.com", "--password", "pw123456")
	require.NoError(t, err)
	require.Contains(t, out, "Login successful! userId=1")

	p, err := config.Load(profile)
	require.NoError(t, err)
	require.Equal(t, &config.Profile{Server: srv.URL, Email: "a@x.com", UserID: 1}, p)

	out, err = run(t, "", "--profile", profile, "files")
	require.NoError(t, err)
	require.Equal(t, "a.pdf\nb.txt\n", out)
}

func TestLogin_WrongPassword_DoesNotSaveProfile(t *testing.T) {
	srv := fakeServer(t)
	profile := filepath.Join(t.TempDir(), "profile.json")

	_, err := run(t, "", "--server", srv.URL, "--profile", profile,
		"login", "--email", "a@x.com", "--password", "wrong")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid email or password.")

	_, statErr := os.Stat(profile)
	require.True(t, os.IsNotExist(statErr))
}

func TestLogin_UsesReadPassword(t *testing.T) {
	srv := fakeServer(t)
	profile := filepath.Join(t.TempDir(), "profile.json")

	orig := cli.ReadPassword
	t.Cleanup(func() { cli.ReadPassword = orig })
	cli.ReadPassword = func(_ *cobra.Command, fromStdin bool) (string, error) {
		require.False(t, fromStdin)
		return "pw123456", nil
	}

	_, err := run(t, "", "--server", srv.URL, "--profile", profile, "login", "--email", "a@x.com")
	require.NoError(t, err)
}

func TestUpload_DetectsContentType(t *testing.T) {
	srv := fakeServer(t)
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.json")

	pdf := filepath.Join(dir, "song.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o600))

	out, err := run(t, "", "--server", srv.URL, "--profile", profile, "upload", pdf)
	require.NoError(t, err)
	require.Contains(t, out, "File uploaded successfully!")
	require.Contains(t, out, "song.pdf|application/pdf")

	// без расширения тип определяется по содержимому
	noExt := filepath.Join(dir, "scan")
	require.NoError(t, os.WriteFile(noExt, []byte("%PDF-1.7 body"), 0o600))

	out, err = run(t, "", "--server", srv.URL, "--profile", profile, "upload", noExt)
	require.NoError(t, err)
	require.Contains(t, out, "scan|application/pdf")
}

func TestUpload_MissingFile(t *testing.T) {
	srv := fakeServer(t)

	_, err := run(t, "", "--server", srv.URL, "--profile", filepath.Join(t.TempDir(), "p.json"),
		"upload", filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	srv := fakeServer(t)

	out, err := run(t, "", "--server", srv.URL, "--profile", filepath.Join(t.TempDir(), "p.json"), "ping")
	require.NoError(t, err)
	require.Equal(t, "Hello from ScorePlayer API!\nstatus=ok\n", out)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	require.Contains(t, out, "scorectl 1.2.3")
	require.Contains(t, out, "build_date=2025-01-01")
}
