// Package omr запускает внешний распознаватель нот (audiveris) для загруженных PDF.
//
// Запуск «выстрелил и забыл»: HTTP-ответ не ждёт процесса,
// код выхода и вывод попадают только в лог.
package omr

import (
	"context"
	"mime"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// сколько последних байт вывода процесса пишем в лог при ошибке
const outputTail = 512

// Runner выполняет внешнюю команду и возвращает её объединённый вывод.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner запускает команду через os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Config — параметры запуска распознавателя.
type Config struct {
	// Binary — имя или путь исполняемого файла
	Binary string
	// OutputDir — куда распознаватель складывает результаты
	OutputDir string
	// MaxConcurrent — сколько процессов одновременно; 0 — без ограничения
	MaxConcurrent int
}

// ProcessDispatcher запускает распознаватель отдельным процессом на каждый PDF.
type ProcessDispatcher struct {
	cfg Config
	log *zap.Logger
	run Runner
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

type Option func(*ProcessDispatcher)

// WithRunner подменяет запуск процесса (используется в тестах).
func WithRunner(r Runner) Option {
	return func(d *ProcessDispatcher) { d.run = r }
}

func NewProcessDispatcher(cfg Config, log *zap.Logger, opts ...Option) *ProcessDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &ProcessDispatcher{cfg: cfg, log: log, run: ExecRunner}
	if cfg.MaxConcurrent > 0 {
		d.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsPDF сообщает, объявлен ли тип как application/pdf (параметры и регистр не важны).
func IsPDF(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return strings.EqualFold(mediaType, "application/pdf")
}

// Args собирает аргументы командной строки распознавателя.
func Args(outputDir, path string) []string {
	return []string{"-batch", "-export", "-output", outputDir, path}
}

// Dispatch запускает распознавание для PDF и сразу возвращается.
// Остальные типы игнорируются.
func (d *ProcessDispatcher) Dispatch(path, contentType string) {
	if !IsPDF(contentType) {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.process(path)
	}()
}

func (d *ProcessDispatcher) process(path string) {
	ctx := context.Background()

	if d.sem != nil {
		// ждём очереди, запросы не отклоняются
		if err := d.sem.Acquire(ctx, 1); err != nil {
			d.log.Error("omr acquire failed", zap.String("file", path), zap.Error(err))
			return
		}
		defer d.sem.Release(1)
	}

	args := Args(d.cfg.OutputDir, path)
	d.log.Info("omr started",
		zap.String("binary", d.cfg.Binary),
		zap.Strings("args", args),
	)

	start := time.Now()
	out, err := d.run(ctx, d.cfg.Binary, args...)
	if err != nil {
		d.log.Error("omr failed",
			zap.String("file", path),
			zap.Duration("duration", time.Since(start)),
			zap.String("output", tail(out)),
			zap.Error(err),
		)
		return
	}

	d.log.Info("omr finished",
		zap.String("file", path),
		zap.Duration("duration", time.Since(start)),
	)
}

// Wait блокируется, пока не завершатся все запущенные распознавания.
func (d *ProcessDispatcher) Wait() {
	d.wg.Wait()
}

func tail(out []byte) string {
	if len(out) > outputTail {
		out = out[len(out)-outputTail:]
	}
	return strings.TrimSpace(string(out))
}

// NopDispatcher ничего не запускает (распознавание выключено).
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(string, string) {}

func (NopDispatcher) Wait() {}
