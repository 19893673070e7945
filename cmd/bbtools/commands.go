package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skosovsky/bbtools"
	"github.com/skosovsky/bbtools/openbb"
	"github.com/skosovsky/bbtools/prompt"
)

// toolSpec is the JSON form of a tool printed by "tools --json".
type toolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func toolsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			tools := cat.Tools()
			if asJSON {
				specs := make([]toolSpec, 0, len(tools))
				for _, t := range tools {
					specs = append(specs, toolSpec{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(specs)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tARGUMENTS\tTAGS")
			for _, t := range tools {
				var tags []string
				if meta, ok := t.(bbtools.ToolMetadata); ok {
					tags = meta.Tags()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name(), strings.Join(argumentNames(t), ","), strings.Join(tags, ","))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print name, description and JSON Schema of every tool")
	return cmd
}

func argumentNames(t bbtools.Tool) []string {
	props, _ := t.Parameters()["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func promptCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt listing the generic tools",
		Long: `Print the base prompt followed by every generic tool with its enriched description.

By default the block is rendered; with --raw it is printed as a template, braces doubled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			block := cat.Prompt()
			if !raw {
				block = prompt.Format(block, nil)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), block)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the escaped template")
	return cmd
}

func callCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [args-json]",
		Short: "Call one tool and print its JSON output",
		Example: `  bbtools call get_quote '{"symbol": "AAPL"}'
  bbtools call get_10k_item1_from_symbol '{"symbol": "MSFT"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			argsJSON := "{}"
			if len(args) == 2 {
				argsJSON = args[1]
			}
			if !json.Valid([]byte(argsJSON)) {
				return fmt.Errorf("arguments are not valid JSON: %s", argsJSON)
			}
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			call := bbtools.ToolCall{ID: "cli", ToolName: args[0], Args: json.RawMessage(argsJSON)}
			return cat.Execute(cmd.Context(), call, func(out []byte) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			})
		},
	}
}

func routesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the OpenBB routes tools can wrap",
		Long: `List the OpenBB Platform routes a definition's openapi_path may name.

With --openapi set, the routes are checked against the API's OpenAPI document and the
document's GET routes that are not served are listed as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes := a.openbbClient(a.logger()).Routes()
			out := cmd.OutOrStdout()
			for _, r := range routes {
				fmt.Fprintln(out, bbtools.APIPrefix+r)
			}
			if a.settings.OpenAPISpec == "" {
				return nil
			}
			doc, err := openbb.LoadSpec(cmd.Context(), a.settings.OpenAPISpec)
			if err != nil {
				return err
			}
			served := make(map[string]bool, len(routes))
			for _, r := range routes {
				served[r] = true
			}
			for _, r := range openbb.SpecRoutes(doc) {
				if !served[r] {
					fmt.Fprintln(out, "# not served: "+bbtools.APIPrefix+r)
				}
			}
			return openbb.CheckRoutes(doc, routes)
		},
	}
}
