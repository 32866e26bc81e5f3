// Package http реализует маршрутизацию HTTP-слоя сервера ScorePlayer.
//
// Пакет отвечает за:
//   - регистрацию HTTP-маршрутов (chi);
//   - цепочку middleware: request id, логирование, перехват паник, CORS;
//   - раздачу загруженных файлов статикой и swagger UI.
package http

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/cestmoi1337/ScorePlayer/internal/server/api"
	"github.com/cestmoi1337/ScorePlayer/internal/server/config"
	"github.com/cestmoi1337/ScorePlayer/internal/server/middleware"
)

// Options — то, что роутеру нужно кроме хендлеров.
type Options struct {
	// UploadsDir — каталог загрузок на диске
	UploadsDir string
	// PublicPath — префикс, по которому файлы раздаются (например /uploads)
	PublicPath string
	CORS       config.CORSConfig
}

// NewRouter создаёт и настраивает HTTP-роутер сервера.
func NewRouter(h *api.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// логирование всех запросов
	r.Use(middleware.LoggerMiddleware(h.Log))
	r.Use(middleware.Recoverer(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORS.AllowedOrigins,
		AllowedMethods: opts.CORS.AllowedMethods,
		AllowedHeaders: opts.CORS.AllowedHeaders,
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	// добавляем swagger
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Get("/", h.Root)
	r.Get("/healthz", h.Health)
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/upload", h.Upload)
	r.Get("/files", h.ListFiles)

	// загруженные файлы доступны всем, кто знает имя
	if opts.UploadsDir != "" {
		prefix := "/" + strings.Trim(opts.PublicPath, "/")
		if prefix == "/" {
			prefix = "/uploads"
		}
		files := http.StripPrefix(prefix+"/", http.FileServer(noListing{http.Dir(opts.UploadsDir)}))
		r.Get(prefix+"/*", files.ServeHTTP)
		r.Head(prefix+"/*", files.ServeHTTP)
	}

	return r
}

// noListing запрещает FileServer отдавать листинг каталога:
// список файлов доступен только через GET /files.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
