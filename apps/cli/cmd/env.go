package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
)

var envFromFileFlag string

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage environments",
	Long: `Manage named environments. An environment is a set of variables that
placeholders like {{baseUrl}} resolve against at execution time.

Examples:
  satchel env set staging baseUrl=https://staging.example.com apiKey=secret
  satchel env set local --from-file .env
  satchel env list
  satchel env show staging
  satchel env rm staging`,
}

var envSetCmd = &cobra.Command{
	Use:   "set <name> [key=value]...",
	Short: "Create or replace an environment",
	Long: `Create or replace the named environment. Variables come from --from-file
first, then from key=value arguments, so explicit pairs win over file
entries. Setting an existing environment replaces it entirely.

Examples:
  satchel env set staging baseUrl=https://staging.example.com
  satchel env set local --from-file .env port=4000`,
	Args: cobra.MinimumNArgs(1),
	RunE: envSetCommand,
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List environment names",
	Args:  cobra.NoArgs,
	RunE:  envListCommand,
}

var envShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the variables of an environment",
	Args:  cobra.ExactArgs(1),
	RunE:  envShowCommand,
}

var envRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove an environment",
	Args:  cobra.ExactArgs(1),
	RunE:  envRmCommand,
}

func init() {
	envSetCmd.Flags().StringVar(&envFromFileFlag, "from-file", "", "Read variables from a dotenv file")

	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envShowCmd)
	envCmd.AddCommand(envRmCmd)
}

func envSetCommand(cmd *cobra.Command, args []string) error {
	name := args[0]
	vars := map[string]any{}

	if envFromFileFlag != "" {
		if _, err := os.Stat(envFromFileFlag); os.IsNotExist(err) {
			return fault.Configurationf("cli.env", nil, "no env file at %s", envFromFileFlag)
		}
		fileVars, err := godotenv.Read(envFromFileFlag)
		if err != nil {
			return fault.Validationf("cli.env", "cannot parse %s: %v", envFromFileFlag, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	for _, pair := range args[1:] {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return fault.Validationf("cli.env", "malformed variable %q, want key=value", pair)
		}
		vars[key] = value
	}

	if err := saveEnvironment(name, vars); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved environment %s\n", name)
	return nil
}

func saveEnvironment(name string, vars map[string]any) error {
	st, err := store.Open()
	if err != nil {
		return err
	}
	return st.SaveEnvironment(name, vars)
}

func envListCommand(cmd *cobra.Command, args []string) error {
	st, err := store.Open()
	if err != nil {
		return err
	}

	names, err := st.EnvironmentNames()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "No environments. Use 'satchel env set' to create one.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func envShowCommand(cmd *cobra.Command, args []string) error {
	st, err := store.Open()
	if err != nil {
		return err
	}

	vars, ok, err := st.GetEnvironment(args[0])
	if err != nil {
		return err
	}
	if !ok {
		names, err := st.EnvironmentNames()
		if err != nil {
			return err
		}
		return fault.Configurationf("store.environment", names, "no environment named %q", args[0])
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	for _, k := range keys {
		fmt.Fprintf(out, "%s=%v\n", k, vars[k])
	}
	return nil
}

func envRmCommand(cmd *cobra.Command, args []string) error {
	st, err := store.Open()
	if err != nil {
		return err
	}
	if err := st.RemoveEnvironment(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed environment %s\n", args[0])
	return nil
}
