package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved request templates",
	Long: `List every saved request template with its method and URL.

Examples:
  satchel list`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	st, err := store.Open()
	if err != nil {
		return err
	}

	templates, err := st.ListRequests()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(templates) == 0 {
		fmt.Fprintln(out, "No saved requests. Use 'satchel save' or 'satchel send --save' to add one.")
		return nil
	}

	width := 0
	for _, t := range templates {
		if len(t.Name) > width {
			width = len(t.Name)
		}
	}

	for _, t := range templates {
		fmt.Fprintf(out, "%-*s  %-7s %s\n", width, t.Name, t.Method, t.URL)
	}
	return nil
}
