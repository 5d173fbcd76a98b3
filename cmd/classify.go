package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/finchat/internal/config"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <question>",
	Short: "Classify a question into accounting, finance, business, hybrid or else",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initAssistant(config.ModeGenerate)
		if err != nil {
			return err
		}
		cat, err := a.Classify(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cat)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <question>",
	Short: "Extract the company and years a question refers to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initAssistant(config.ModeGenerate)
		if err != nil {
			return err
		}
		entity, err := a.Extract(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		company := entity.Company
		if company == "" {
			company = "-"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "회사: %s\n연도: %s\n", company, joinYears(entity.Years))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(extractCmd)
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprint(y)
	}
	return strings.Join(parts, ", ")
}
