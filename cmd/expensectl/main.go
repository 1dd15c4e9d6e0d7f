// Package main содержит точку входа консольного клиента expensectl.
//
// Версия и дата сборки передаются через -ldflags:
//
//	go build -ldflags "-X main.buildVersion=1.0.0 -X main.buildDate=$(date +%F)" ./cmd/expensectl
package main

import "github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/cli"

var (
	// buildVersion содержит версию приложения, по умолчанию "dev".
	buildVersion = "dev"
	// buildDate содержит дату сборки, по умолчанию "unknown".
	buildDate = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
