package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSignupCmd создаёт команду регистрации.
//
// Пример:
//
//	scorectl signup --email a@x.com --password pw123456
func NewSignupCmd(app *App) *cobra.Command {
	var flags credentialFlags

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Регистрация нового пользователя",
		Long: `Регистрация нового пользователя на сервере.

Пример:
  scorectl signup --email a@x.com --password pw123456
  echo pw123456 | scorectl signup --email a@x.com --password-stdin
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := flags.resolvePassword(cmd)
			if err != nil {
				return err
			}

			resp, err := app.Client().Signup(flags.email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s userId=%d\n", resp.Message, resp.UserID)
			return nil
		},
	}

	flags.register(cmd, "registration")
	return cmd
}
