package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/finchat/internal/prompt"
)

var templatesDir string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the prompt template catalog",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates with their declared placeholders",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cfg, templatesDir)
		if err != nil {
			return err
		}
		return writeTemplateTable(cmd.OutOrStdout(), catalog)
	},
}

var templatesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the catalog and report any validation problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cfg, templatesDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d templates\n", len(catalog.Templates()))
		return nil
	},
}

func init() {
	templatesCmd.PersistentFlags().StringVar(&templatesDir, "dir", "", "template directory (default from config, else embedded)")
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesValidateCmd)
	rootCmd.AddCommand(templatesCmd)
}

func writeTemplateTable(w io.Writer, catalog *prompt.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tCATEGORY\tTIER\tVERSION\tFIELDS")
	for _, t := range catalog.Templates() {
		tier := "-"
		if t.Tier != 0 {
			tier = t.Tier.String()
		}
		category := string(t.Category)
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Kind, category, tier, t.Version, strings.Join(t.Fields, ","))
	}
	return tw.Flush()
}
