// Package migrations содержит SQL-миграции схемы для каждого поддерживаемого драйвера.
//
// Файлы встраиваются в бинарник, поэтому сервер не зависит от рабочего каталога.
package migrations

import "embed"

// FS содержит каталоги sqlite/ и postgres/ с миграциями golang-migrate.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
