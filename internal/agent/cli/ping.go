package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPingCmd проверяет, что сервер отвечает и база доступна.
func NewPingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Проверка доступности сервера",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.Client()

			greeting, err := c.Ping()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), greeting)

			health, err := c.Health()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status=%s\n", health.Status)
			return nil
		},
	}
}
