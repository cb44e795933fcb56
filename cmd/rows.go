package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"advanced-prompt/internal/features/prompt/domain"
)

// NewRowsCmd creates the rows command.
func NewRowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rows <prompt>",
		Short: "Show how a prompt splits into rows",
		Long: `Tokenizes a prompt the way the row editor does and prints every row with
its wrapper, value and styled markup.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRows,
	}
}

func runRows(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	rows := domain.ToRows(text)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Rows       []domain.Row `json:"rows"`
			TokenCount int          `json:"token_count"`
		}{rows, domain.CountTokens(text)})
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ROW\tWRAPPER\tVALUE\tMARKUP")
	for _, r := range rows {
		value := r.Value
		if r.Placeholder {
			value = "(placeholder)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Index, r.Wrapper.String(), value, r.Markup)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d rows, ~%d tokens\n", len(rows), domain.CountTokens(text))
	return nil
}
