package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/finchat/internal/assistant"
	"github.com/sells-group/finchat/internal/config"
	"github.com/sells-group/finchat/internal/model"
)

var (
	askTier   string
	askFields []string
	askFile   string
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question end to end",
	Long:  "Classifies the question, extracts the company and years when the category needs them, fills the tier template with --field material and generates the answer.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, err := model.ParseTier(askTier)
		if err != nil {
			return err
		}
		fields, err := parseFields(askFile, askFields)
		if err != nil {
			return err
		}

		a, err := initAssistant(config.ModeGenerate, assistant.WithMaterials(assistant.StaticMaterials(fields)))
		if err != nil {
			return err
		}
		ans, err := a.Answer(cmd.Context(), assistant.AnswerRequest{
			Question: strings.Join(args, " "),
			Tier:     tier,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if askJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ans)
		}
		fmt.Fprintln(out, ans.Text)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askTier, "tier", "1", "audience tier (1-3 or beginner, intermediate, expert)")
	askCmd.Flags().StringArrayVar(&askFields, "field", nil, "reference material as key=value, or key=@file")
	askCmd.Flags().StringVar(&askFile, "fields", "", "YAML file of reference material")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full answer record as JSON")
	rootCmd.AddCommand(askCmd)
}
