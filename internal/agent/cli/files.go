package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFilesCmd выводит список загруженных файлов, по одному на строку.
func NewFilesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "Список загруженных файлов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := app.Client().Files()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no files")
				return nil
			}
			for _, name := range files {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
