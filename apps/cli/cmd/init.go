package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/history"
	"github.com/satchelhq/satchel/packages/core/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the satchel data files",
	Long: `Create the data directory with empty store and history files. Existing
files are left untouched, so init is safe to run again.

Examples:
  satchel init
  SATCHEL_HOME=/tmp/scratch satchel init`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func initCommand(cmd *cobra.Command, args []string) error {
	st, err := store.Open()
	if err != nil {
		return err
	}
	ledger, err := history.Open()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, step := range []struct {
		path string
		init func() error
	}{
		{st.Path(), st.Init},
		{ledger.Path(), ledger.Init},
	} {
		existed := false
		if _, err := os.Stat(step.path); err == nil {
			existed = true
		}
		if err := step.init(); err != nil {
			return err
		}
		if existed {
			fmt.Fprintf(out, "Exists:  %s\n", step.path)
		} else {
			fmt.Fprintf(out, "Created: %s\n", step.path)
		}
	}

	fmt.Fprintln(out, "\nSave a request with 'satchel save' or send one with 'satchel send'.")
	return nil
}
