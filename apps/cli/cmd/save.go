package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/store"
)

var (
	saveHeadersFlag  []string
	saveDataFlag     string
	saveDataFileFlag string
)

var saveCmd = &cobra.Command{
	Use:   "save <name> <method> <url>",
	Short: "Save a request template without sending it",
	Long: `Save a request template for later replay with run. Placeholders are
stored verbatim and resolve each time the template runs. Saving under
an existing name replaces the stored template.

Examples:
  satchel save get-user GET '{{baseUrl}}/users/{{id}}'
  satchel save create-user POST '{{baseUrl}}/users' -H 'Content-Type: application/json' -d '{"name":"{{userName}}"}'
  satchel save upload POST https://api.example.com/files --data-file payload.json`,
	Args: cobra.ExactArgs(3),
	RunE: saveCommand,
}

func init() {
	saveCmd.Flags().StringArrayVarP(&saveHeadersFlag, "header", "H", nil, "Request header as 'Key: Value' (repeatable)")
	saveCmd.Flags().StringVarP(&saveDataFlag, "data", "d", "", "Request body")
	saveCmd.Flags().StringVar(&saveDataFileFlag, "data-file", "", "Read the request body from a file")
}

func saveCommand(cmd *cobra.Command, args []string) error {
	headers, err := parseHeaderFlags(saveHeadersFlag)
	if err != nil {
		return err
	}

	body, err := resolveBodyFlags(saveDataFlag, saveDataFileFlag)
	if err != nil {
		return err
	}
	if err := validateJSONBody(body); err != nil {
		return err
	}

	st, err := store.Open()
	if err != nil {
		return err
	}

	tmpl := store.RequestTemplate{
		Name:    args[0],
		Method:  args[1],
		URL:     args[2],
		Headers: headers,
		Body:    body,
	}
	if err := st.SaveRequest(tmpl); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", tmpl.Name)
	return nil
}
