package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cestmoi1337/ScorePlayer/internal/agent/config"
)

// NewLoginCmd создаёт команду входа.
//
// Сервер не выдаёт токенов: команда проверяет email и пароль
// и при успехе запоминает сервер и userId в локальном профиле.
//
// Пример:
//
//	scorectl login --email a@x.com --password pw123456
func NewLoginCmd(app *App) *cobra.Command {
	var flags credentialFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Вход (проверка email и пароля)",
		Long: `Вход пользователя.

При успехе сервер и userId сохраняются в локальном профиле.

Пример:
  scorectl login --email a@x.com --password pw123456
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := flags.resolvePassword(cmd)
			if err != nil {
				return err
			}

			resp, err := app.Client().Login(flags.email, password)
			if err != nil {
				return err
			}

			if app.Profile == nil {
				app.Profile = &config.Profile{}
			}
			app.Profile.Server = app.ServerURL
			app.Profile.Email = flags.email
			app.Profile.UserID = resp.UserID

			if app.ProfilePath != "" {
				if err := SaveProfile(app.ProfilePath, app.Profile); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s userId=%d\n", resp.Message, resp.UserID)
			return nil
		},
	}

	flags.register(cmd, "login")
	return cmd
}
