package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/finchat/internal/config"
	"github.com/sells-group/finchat/internal/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve classify, extract, build-prompt and ask as MCP tools on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initAssistant(config.ModeGenerate)
		if err != nil {
			return err
		}

		s := tools.NewServer(version, &tools.Dependencies{Assistant: a})
		zap.L().Info("starting mcp server on stdio")
		if err := server.ServeStdio(s); err != nil {
			return eris.Wrap(err, "mcp serve")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
