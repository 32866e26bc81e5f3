// Package cli реализует командный интерфейс клиента ScorePlayer (scorectl).
//
// Пакет отвечает за:
//   - root-команду и набор подкоманд;
//   - разбор флагов и чтение пароля с терминала;
//   - загрузку локального профиля (сервер и учётная запись после login);
//   - вывод результата пользователю.
//
// Точка входа пакета — функция Execute.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cestmoi1337/ScorePlayer/internal/agent/api"
	"github.com/cestmoi1337/ScorePlayer/internal/agent/config"
)

// DefaultServerURL — адрес сервера, если не задан ни флагом, ни профилем.
const DefaultServerURL = "http://127.0.0.1:3000"

// App содержит состояние CLI-приложения, разделяемое между командами.
type App struct {
	// ServerURL — базовый URL сервера ScorePlayer
	ServerURL string
	// Insecure — не проверять TLS-сертификат сервера
	Insecure bool

	// ProfilePath — путь к локальному профилю
	ProfilePath string
	// Profile — загруженный профиль; nil, если загрузка не выполнялась
	Profile *config.Profile
}

// Client создаёт API-клиент для текущего сервера.
func (a *App) Client() *api.Client {
	var opts []api.Option
	if a.Insecure {
		opts = append(opts, api.WithInsecureTLS())
	}
	return NewAPIClient(a.ServerURL, opts...)
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// В PersistentPreRunE загружается профиль; сервер из профиля
// используется, если --server не передан явно.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:   "scorectl",
		Short: "scorectl — клиент ScorePlayer API",
		Long: `scorectl — консольный клиент сервера ScorePlayer.

Команды:
  signup   Регистрация нового пользователя
  login    Вход (проверка email и пароля)
  upload   Загрузка файла (PDF уходит на распознавание нот)
  files    Список загруженных файлов
  ping     Проверка доступности сервера
  version  Версия и дата сборки

Примеры:
  scorectl signup --email a@x.com
  scorectl login --email a@x.com --password pw123456
  scorectl upload ./song.pdf
  scorectl files
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.ProfilePath == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				app.ProfilePath = p
			}

			profile, err := config.Load(app.ProfilePath)
			if err != nil {
				return fmt.Errorf("load profile %s: %w", app.ProfilePath, err)
			}
			app.Profile = profile

			if !cmd.Flags().Changed("server") && profile.Server != "" {
				app.ServerURL = profile.Server
			}
			return nil
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", DefaultServerURL, "server base URL")
	cmd.PersistentFlags().BoolVar(&app.Insecure, "insecure", false, "skip TLS certificate verification (dev only)")
	cmd.PersistentFlags().StringVar(&app.ProfilePath, "profile", "", "profile file (default ~/.scoreplayer/profile.json)")

	cmd.AddCommand(NewSignupCmd(app))
	cmd.AddCommand(NewLoginCmd(app))
	cmd.AddCommand(NewUploadCmd(app))
	cmd.AddCommand(NewFilesCmd(app))
	cmd.AddCommand(NewPingCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// Execute запускает обработку CLI-команд.
//
// При ошибке сообщение выводится в stderr, процесс завершается с кодом 1.
func Execute(buildVersion, buildDate string) {
	if err := NewRootCmd(buildVersion, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
