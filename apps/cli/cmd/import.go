package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
	"github.com/satchelhq/satchel/packages/export"
	"github.com/satchelhq/satchel/packages/import/curl"
	"github.com/satchelhq/satchel/packages/import/insomnia"
	"github.com/satchelhq/satchel/packages/import/openapi"
	"github.com/satchelhq/satchel/packages/import/postman"
)

var (
	importNameFlag    string
	importSaveFlag    bool
	importEnvNameFlag string
	importBaseURLFlag string
	importTagsFlag    string
)

var importCmd = &cobra.Command{
	Use:   "import <format> <source>",
	Short: "Import requests from other tools",
	Long: `Import requests from other tools into the store.

Supported formats:
  curl     - a curl command line
  postman  - Postman Collection v2.1
  insomnia - Insomnia v4 export
  openapi  - OpenAPI 3.0/3.1 (YAML or JSON)
  bundle   - a satchel export

Examples:
  satchel import curl 'curl -X POST https://api.example.com/users -d "{}"' --name create-user --save
  satchel import postman collection.json
  satchel import insomnia export.json
  satchel import openapi spec.yaml --base-url http://localhost:3000 --tags users
  satchel import bundle team-requests.yaml`,
}

var importCurlCmd = &cobra.Command{
	Use:   "curl <command>",
	Short: "Convert a curl command into a request template",
	Long: `Convert a curl command into a request template. Without --save the
template is only printed, so the conversion can be checked first.

Examples:
  satchel import curl 'curl https://api.example.com/users'
  satchel import curl 'curl -X POST https://api.example.com/users -H "Content-Type: application/json" -d "{}"' --name create-user --save`,
	Args: cobra.ExactArgs(1),
	RunE: importCurlCommand,
}

var importPostmanCmd = &cobra.Command{
	Use:   "postman <collection-file>",
	Short: "Import a Postman collection",
	Long: `Import every request of a Postman Collection v2.1 file. Collection
variables become an environment named after the collection, or after
--env-name when given. Postman {{variables}} survive as placeholders.

Examples:
  satchel import postman collection.json
  satchel import postman collection.json --env-name staging`,
	Args: cobra.ExactArgs(1),
	RunE: importPostmanCommand,
}

var importInsomniaCmd = &cobra.Command{
	Use:   "insomnia <export-file>",
	Short: "Import an Insomnia export",
	Long: `Import every request and environment of an Insomnia v4 export.
Insomnia {{ _.variable }} references become plain placeholders, and
sub environments import under their own names.

Examples:
  satchel import insomnia export.json`,
	Args: cobra.ExactArgs(1),
	RunE: importInsomniaCommand,
}

var importOpenAPICmd = &cobra.Command{
	Use:   "openapi <spec-file>",
	Short: "Import an OpenAPI specification",
	Long: `Import one request template per operation of an OpenAPI 3.0/3.1
specification. Request bodies are synthesized from the operation
schemas and path parameters become placeholders.

Examples:
  satchel import openapi spec.yaml
  satchel import openapi spec.yaml --base-url http://localhost:3000
  satchel import openapi spec.yaml --tags users,auth`,
	Args: cobra.ExactArgs(1),
	RunE: importOpenAPICommand,
}

var importBundleCmd = &cobra.Command{
	Use:   "bundle <file>",
	Short: "Import a satchel export",
	Long: `Import the requests and environments of a satchel export. The format
is detected from the file extension. Entries that fail validation are
skipped with a warning instead of aborting the import.

Examples:
  satchel import bundle team-requests.yaml
  satchel import bundle backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: importBundleCommand,
}

func init() {
	importCurlCmd.Flags().StringVar(&importNameFlag, "name", "", "Name for the imported request (default: derived from the URL)")
	importCurlCmd.Flags().BoolVar(&importSaveFlag, "save", false, "Save the template instead of printing it")

	importPostmanCmd.Flags().StringVar(&importEnvNameFlag, "env-name", "", "Name for the imported environment (default: the collection name)")

	importOpenAPICmd.Flags().StringVar(&importBaseURLFlag, "base-url", "", "Override base URL from spec")
	importOpenAPICmd.Flags().StringVar(&importTagsFlag, "tags", "", "Only import operations with these tags (comma-separated)")

	importCmd.AddCommand(importCurlCmd)
	importCmd.AddCommand(importPostmanCmd)
	importCmd.AddCommand(importInsomniaCmd)
	importCmd.AddCommand(importOpenAPICmd)
	importCmd.AddCommand(importBundleCmd)
}

func importCurlCommand(cmd *cobra.Command, args []string) error {
	tmpl, err := curl.Template(args[0], importNameFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !importSaveFlag {
		printTemplate(out, tmpl)
		fmt.Fprintln(out, "\nRe-run with --save to keep it.")
		return nil
	}

	st, err := store.Open()
	if err != nil {
		return err
	}
	if err := st.SaveRequest(tmpl); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", tmpl.Name)
	return nil
}

func importPostmanCommand(cmd *cobra.Command, args []string) error {
	collection, err := postman.ParseFile(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open()
	if err != nil {
		return err
	}

	saved, err := saveTemplates(st, collection.Templates())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d requests from %s\n", saved, args[0])

	vars := collection.Environment()
	if len(vars) > 0 {
		envName := importEnvNameFlag
		if envName == "" {
			envName = collection.Name()
		}
		if err := st.SaveEnvironment(envName, vars); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved environment %s (%d variables)\n", envName, len(vars))
	}
	return nil
}

func importInsomniaCommand(cmd *cobra.Command, args []string) error {
	export, err := insomnia.ParseFile(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open()
	if err != nil {
		return err
	}

	saved, err := saveTemplates(st, export.Templates())
	if err != nil {
		return err
	}

	envs := 0
	for name, vars := range export.Environments() {
		if err := st.SaveEnvironment(name, vars); err != nil {
			if fault.IsKind(err, fault.Validation) {
				fmt.Fprintf(os.Stderr, "skipping environment %q: %v\n", name, err)
				continue
			}
			return err
		}
		envs++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d requests from %s\n", saved, args[0])
	if envs > 0 {
		fmt.Fprintf(out, "Saved %d environments\n", envs)
	}
	return nil
}

func importOpenAPICommand(cmd *cobra.Command, args []string) error {
	var opts []openapi.Option
	if importBaseURLFlag != "" {
		opts = append(opts, openapi.WithBaseURL(importBaseURLFlag))
	}
	if importTagsFlag != "" {
		tags := strings.Split(importTagsFlag, ",")
		for i := range tags {
			tags[i] = strings.TrimSpace(tags[i])
		}
		opts = append(opts, openapi.WithTags(tags))
	}

	templates, err := openapi.NewConverter(opts...).ConvertFile(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open()
	if err != nil {
		return err
	}

	saved, err := saveTemplates(st, templates)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d requests from %s\n", saved, args[0])
	return nil
}

func importBundleCommand(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return fault.Configurationf("cli.import", nil, "no bundle file at %s", args[0])
		}
		return fault.Storagef("cli.import", err, "cannot read %s", args[0])
	}

	doc, err := export.Unmarshal(data, export.DetectFormat(args[0]))
	if err != nil {
		return err
	}

	st, err := store.Open()
	if err != nil {
		return err
	}

	saved, err := saveTemplates(st, doc.Requests)
	if err != nil {
		return err
	}

	envs := 0
	for name, vars := range doc.Environments {
		if err := st.SaveEnvironment(name, vars); err != nil {
			if fault.IsKind(err, fault.Validation) {
				fmt.Fprintf(os.Stderr, "skipping environment %q: %v\n", name, err)
				continue
			}
			return err
		}
		envs++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d requests and %d environments from %s\n", saved, envs, args[0])
	return nil
}

// saveTemplates stores each template, skipping the ones that fail
// validation so one bad entry does not sink the rest.
func saveTemplates(st *store.Store, templates []store.RequestTemplate) (int, error) {
	saved := 0
	for _, tmpl := range templates {
		if err := st.SaveRequest(tmpl); err != nil {
			if fault.IsKind(err, fault.Validation) {
				fmt.Fprintf(os.Stderr, "skipping request %q: %v\n", tmpl.Name, err)
				continue
			}
			return saved, err
		}
		saved++
	}
	return saved, nil
}
