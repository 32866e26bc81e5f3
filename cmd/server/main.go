// @title           ScorePlayer API
// @version         1.0
// @description     Backend for the ScorePlayer music-score application.
// @description     Signup/login and file upload with background optical music recognition for PDFs.

// @contact.name   ScorePlayer
// @contact.url    https://github.com/cestmoi1337/ScorePlayer

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
// @schemes http
//
// Package main содержит точку входа сервера ScorePlayer.
//
// Пакет отвечает за жизненный цикл процесса:
//   - загрузку .env и конфигурации (по умолчанию ./configs/server.yaml);
//   - открытие базы и применение миграций;
//   - сборку репозиториев, сервисов, диспетчера OMR, хендлеров и роутера;
//   - запуск HTTP(S)-сервера и graceful shutdown по SIGINT/SIGTERM/SIGQUIT;
//   - ожидание фоновых распознаваний и закрытие базы при остановке.
//
// Бизнес-логики здесь нет.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cestmoi1337/ScorePlayer/internal/server/api"
	"github.com/cestmoi1337/ScorePlayer/internal/server/config"
	"github.com/cestmoi1337/ScorePlayer/internal/server/crypto"
	h "github.com/cestmoi1337/ScorePlayer/internal/server/net/http"
	"github.com/cestmoi1337/ScorePlayer/internal/server/omr"
	"github.com/cestmoi1337/ScorePlayer/internal/server/repository"
	"github.com/cestmoi1337/ScorePlayer/internal/server/service"
	"github.com/cestmoi1337/ScorePlayer/internal/shared/logger"
	"github.com/cestmoi1337/ScorePlayer/internal/shared/utils"

	_ "github.com/cestmoi1337/ScorePlayer/swagger/docs"
)

// dispatcher — то, что main ждёт от диспетчера OMR при остановке.
type dispatcher interface {
	service.Dispatcher
	Wait()
}

func main() {
	configPath := flag.String("config", "", "path to server.yaml (env CONFIG_PATH)")
	flag.Parse()

	boot := logger.NewHTTPLogger().Logger.Sugar()

	if err := godotenv.Load(); err != nil {
		boot.Warnf("no .env file loaded, error: %v", err)
	}

	path := utils.FirstNonEmpty(*configPath, os.Getenv("CONFIG_PATH"), "./configs/server.yaml")
	cfg, err := config.Load(path)
	if err != nil {
		boot.Fatal(err)
	}

	httpLogger, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		Stdout:     cfg.Log.Stdout,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		boot.Fatal(err)
	}
	defer func() { _ = httpLogger.Sync() }()
	sugar := httpLogger.Logger.Sugar()

	if err := run(cfg, httpLogger); err != nil {
		sugar.Fatalf("server stopped with error: %v", err)
	}
	sugar.Info("server gracefully stopped")
}

func run(cfg *config.Config, httpLogger *logger.HTTPLogger) error {
	log := httpLogger.Logger
	sugar := log.Sugar()

	// подключаем базу данных, схема создаётся миграциями
	db, err := config.OpenDB(context.Background(), cfg.DB, log)
	if err != nil {
		return err
	}
	// база закрывается последней, после остановки сервера
	defer func() {
		if err := db.Close(); err != nil {
			sugar.Errorw("close db", "error", err)
		}
	}()

	// создаём репы
	usersRepo, err := repository.NewUsersRepository(db, cfg.DB.Driver)
	if err != nil {
		return err
	}
	filesRepo, err := repository.NewFilesRepository(cfg.Uploads.Dir)
	if err != nil {
		return err
	}

	hasher, err := crypto.NewHasher(cfg.Password)
	if err != nil {
		return err
	}

	var omrDispatcher dispatcher = omr.NopDispatcher{}
	if cfg.OMR.Enabled {
		omrDispatcher = omr.NewProcessDispatcher(omr.Config{
			Binary:        cfg.OMR.Binary,
			OutputDir:     filesRepo.Dir(),
			MaxConcurrent: cfg.OMR.MaxConcurrent,
		}, log.Named("omr"))
	}

	svc := service.NewServices(service.Repositories{
		Users:  usersRepo,
		Files:  filesRepo,
		Health: usersRepo,
	}, hasher, omrDispatcher)

	handler := api.NewHandler(svc, httpLogger, api.UploadOptions{
		FormField:    cfg.Uploads.FormField,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	router := h.NewRouter(handler, h.Options{
		UploadsDir: filesRepo.Dir(),
		PublicPath: cfg.Uploads.PublicPath,
		CORS:       cfg.CORS,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ErrorLog:          zap.NewStdLog(log),
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// запускаем сервер
	g.Go(func() error {
		sugar.Infow("server started",
			"addr", server.Addr,
			"tls", cfg.TLS.Enabled,
			"db_driver", cfg.DB.Driver,
			"uploads", filesRepo.Dir(),
			"omr", cfg.OMR.Enabled,
		)

		var err error
		if cfg.TLS.Enabled {
			err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-ctx.Done()

		sugar.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// распознавания, запущенные до остановки, доводим до конца
	sugar.Info("waiting for omr jobs")
	omrDispatcher.Wait()

	return err
}
