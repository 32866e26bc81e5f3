// Package main содержит точку входа консольного клиента scorectl.
//
// Версия и дата сборки подставляются через -ldflags:
//
//	go build -ldflags "-X main.buildVersion=1.0.0 -X main.buildDate=$(date +%F)" ./cmd/scorectl
package main

import "github.com/cestmoi1337/ScorePlayer/internal/agent/cli"

var (
	buildVersion = "dev"
	buildDate    = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
