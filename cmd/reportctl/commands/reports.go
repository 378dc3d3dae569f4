package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"assetdesk/internal/domain/reports"
)

var reportsJSON bool

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the report catalog",
	Long: `List every report with its category and the filters it offers.

Examples:
  reportctl reports
  reportctl reports --json`,
	Args: cobra.NoArgs,
	RunE: runReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.Flags().BoolVar(&reportsJSON, "json", false, "print the catalog as JSON")
}

func runReports(cmd *cobra.Command, args []string) error {
	defs := reports.DefaultRegistry().List()
	out := cmd.OutOrStdout()

	if reportsJSON {
		summaries := make([]reports.Summary, 0, len(defs))
		for _, def := range defs {
			summaries = append(summaries, def.Summary())
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tTITLE\tFILTERS")
	for _, def := range defs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", def.ID, def.Category, def.Title, len(def.Fields))
	}
	return w.Flush()
}
