package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/runner"
	"github.com/satchelhq/satchel/packages/core/store"
	"github.com/satchelhq/satchel/packages/graphql"
)

var (
	graphqlQueryFlag     string
	graphqlQueryFileFlag string
	graphqlVariablesFlag string
	graphqlOperationFlag string
	graphqlHeadersFlag   []string
	graphqlEnvFlag       string
	graphqlTimeoutFlag   int
	graphqlSaveFlag      string
	graphqlOutputFlag    string
)

var graphqlCmd = &cobra.Command{
	Use:   "graphql <url>",
	Short: "Send a GraphQL query",
	Long: `Send a GraphQL query as a JSON POST. Placeholders inside the query and
variables resolve like any other request body. GraphQL servers answer
200 even for failed queries, so errors in the response are reported on
stderr without failing the command.

Examples:
  satchel graphql https://api.example.com/graphql -q '{ viewer { login } }'
  satchel graphql '{{baseUrl}}/graphql' --query-file user.graphql --variables '{"id":"{{userId}}"}' -e staging
  satchel graphql https://api.example.com/graphql -q 'query User($id: ID!) { user(id: $id) { name } }' --variables '{"id":"42"}' --save get-user-gql`,
	Args: cobra.ExactArgs(1),
	RunE: graphqlCommand,
}

func init() {
	graphqlCmd.Flags().StringVarP(&graphqlQueryFlag, "query", "q", "", "GraphQL query text")
	graphqlCmd.Flags().StringVar(&graphqlQueryFileFlag, "query-file", "", "Read the query from a file")
	graphqlCmd.Flags().StringVar(&graphqlVariablesFlag, "variables", "", "Query variables as a JSON object")
	graphqlCmd.Flags().StringVar(&graphqlOperationFlag, "operation", "", "Operation name for multi-operation documents")
	graphqlCmd.Flags().StringArrayVarP(&graphqlHeadersFlag, "header", "H", nil, "Request header as 'Key: Value' (repeatable)")
	graphqlCmd.Flags().StringVarP(&graphqlEnvFlag, "env", "e", getEnvString("SATCHEL_ENV", ""), "Environment to resolve placeholders against (env: SATCHEL_ENV)")
	graphqlCmd.Flags().IntVarP(&graphqlTimeoutFlag, "timeout", "t", getEnvInt("SATCHEL_TIMEOUT", 0), "Timeout in milliseconds (env: SATCHEL_TIMEOUT)")
	graphqlCmd.Flags().StringVar(&graphqlSaveFlag, "save", "", "Also save the request under this name")
	graphqlCmd.Flags().StringVarP(&graphqlOutputFlag, "output", "o", "console", "Output format: console or json")
}

func graphqlCommand(cmd *cobra.Command, args []string) error {
	query, err := resolveQueryFlags(graphqlQueryFlag, graphqlQueryFileFlag)
	if err != nil {
		return err
	}

	payload := graphql.NewPayload(query)
	if err := payload.SetVariablesJSON(graphqlVariablesFlag); err != nil {
		return err
	}
	payload.OperationName = graphqlOperationFlag

	body, err := payload.Body()
	if err != nil {
		return err
	}

	headers, err := parseHeaderFlags(graphqlHeadersFlag)
	if err != nil {
		return err
	}
	headers = ensureContentType(headers, "application/json")

	timeout, err := timeoutFromFlag(cmd, graphqlTimeoutFlag)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(graphqlOutputFlag)
	if err != nil {
		return err
	}

	st, err := store.Open()
	if err != nil {
		return err
	}

	tmpl := store.RequestTemplate{
		Name:    graphqlSaveFlag,
		Method:  "POST",
		URL:     args[0],
		Headers: headers,
		Body:    body,
	}
	if graphqlSaveFlag != "" {
		if err := st.SaveRequest(tmpl); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved request %q\n", graphqlSaveFlag)
	}

	r, err := newRunner(st)
	if err != nil {
		return err
	}

	res, err := r.Execute(tmpl, runner.ExecOptions{Environment: graphqlEnvFlag, Timeout: timeout})
	if err != nil {
		return err
	}

	formatter.FormatResult(res)
	if graphql.HasErrors(res.Response.Body) {
		for _, msg := range graphql.ErrorMessages(res.Response.Body) {
			fmt.Fprintf(os.Stderr, "graphql: %s\n", msg)
		}
	}
	return nil
}

// resolveQueryFlags mirrors resolveBodyFlags but a query is mandatory.
func resolveQueryFlags(query, queryFile string) (string, error) {
	switch {
	case query != "" && queryFile != "":
		return "", fault.Validationf("cli.query", "use either --query or --query-file, not both")
	case query != "":
		return query, nil
	case queryFile != "":
		if _, err := os.Stat(queryFile); os.IsNotExist(err) {
			return "", fault.Configurationf("cli.query", nil, "no query file at %s", queryFile)
		}
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return "", fault.Storagef("cli.query", err, "reading %s", queryFile)
		}
		return string(data), nil
	default:
		return "", fault.Validationf("cli.query", "provide a query with --query or --query-file")
	}
}
