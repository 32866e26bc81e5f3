package cli

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewUploadCmd создаёт команду загрузки файла.
//
// Тип содержимого определяется по расширению, а если оно неизвестно,
// по первым байтам файла. PDF сервер отправляет на распознавание нот.
func NewUploadCmd(app *App) *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Загрузить файл",
		Long: `Загрузка файла на сервер.

Пример:
  scorectl upload ./song.pdf
  scorectl upload ./scan.bin --content-type application/pdf
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			ct := contentType
			if ct == "" {
				ct, err = detectContentType(f, path)
				if err != nil {
					return err
				}
			}

			resp, err := app.Client().Upload(filepath.Base(path), ct, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s filename=%s\n", resp.Message, resp.Filename)
			return nil
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "", "override detected content type")
	return cmd
}

// detectContentType определяет MIME-тип и возвращает файл в начало.
func detectContentType(f io.ReadSeeker, path string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
