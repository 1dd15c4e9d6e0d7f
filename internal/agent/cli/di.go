package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/api"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/export"
)

// для тестов
var (
	NewAPIClient = api.NewClient
	ReadPassword = func(cmd *cobra.Command, fromStdin bool) (string, error) {
		return readPassword(cmd, fromStdin)
	}
	SaveExport = export.SaveToFile
	Now        = time.Now
)
