package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved request template",
	Long: `Show the stored method, URL, headers and body of a saved request
template, with placeholders unresolved.

Examples:
  satchel show get-user`,
	Args: cobra.ExactArgs(1),
	RunE: showCommand,
}

func showCommand(cmd *cobra.Command, args []string) error {
	st, err := store.Open()
	if err != nil {
		return err
	}

	tmpl, ok, err := st.GetRequest(args[0])
	if err != nil {
		return err
	}
	if !ok {
		names, err := st.RequestNames()
		if err != nil {
			return err
		}
		return fault.Configurationf("store.request", names, "no saved request named %q", args[0])
	}

	printTemplate(cmd.OutOrStdout(), tmpl)
	return nil
}

func printTemplate(w io.Writer, tmpl store.RequestTemplate) {
	fmt.Fprintf(w, "%s\n", tmpl.Name)
	fmt.Fprintf(w, "  %s %s\n", tmpl.Method, tmpl.URL)
	for _, h := range tmpl.Headers {
		fmt.Fprintf(w, "  %s\n", h)
	}
	if tmpl.Body != "" {
		fmt.Fprintf(w, "\n%s\n", tmpl.Body)
	}
}
