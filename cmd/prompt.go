package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/finchat/internal/config"
	"github.com/sells-group/finchat/internal/model"
)

var (
	promptCategory string
	promptTier     string
	promptFields   []string
	promptFile     string
)

var promptCmd = &cobra.Command{
	Use:   "prompt <question>",
	Short: "Print the filled answer template for a category and tier",
	Long:  "Selects the template for --category and --tier and fills it with the question and --field values. Does not call the language model.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := model.ParseCategory(promptCategory)
		if err != nil {
			return err
		}
		tier, err := model.ParseTier(promptTier)
		if err != nil {
			return err
		}
		fields, err := parseFields(promptFile, promptFields)
		if err != nil {
			return err
		}
		fields["question"] = model.NormalizeQuestion(strings.Join(args, " "))

		a, err := initAssistant(config.ModeOffline)
		if err != nil {
			return err
		}
		filled, err := a.BuildPrompt(cat, tier, fields)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), filled)
		return nil
	},
}

func init() {
	promptCmd.Flags().StringVar(&promptCategory, "category", "", "question category (accounting, finance, business, hybrid, else)")
	promptCmd.Flags().StringVar(&promptTier, "tier", "1", "audience tier (1-3 or beginner, intermediate, expert)")
	promptCmd.Flags().StringArrayVar(&promptFields, "field", nil, "placeholder value as key=value, or key=@file")
	promptCmd.Flags().StringVar(&promptFile, "fields", "", "YAML file of placeholder values")
	_ = promptCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(promptCmd)
}
