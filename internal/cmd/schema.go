package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/iocontext"
	"github.com/midtrans/midtrans-cli/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schema",
		Aliases: []string{"sc"},
		Short:   "Describe gateway response fields",
		Long: `List and show the fields of gateway responses.

Useful for writing --jq filters: every response carries status_code as a
string, and amounts are decimal strings.`,
		Example: strings.TrimSpace(`
  midtrans schema list
  midtrans schema show transaction_status
  midtrans schema show notification -o json
`),
	}

	cmd.AddCommand(newSchemaListCmd())
	cmd.AddCommand(newSchemaShowCmd())

	return cmd
}

func newSchemaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available schemas",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names := schema.List()

			if isJSON(cmd) {
				type schemaSummary struct {
					Name        string `json:"name"`
					Description string `json:"description"`
				}
				summaries := make([]schemaSummary, 0, len(names))
				for _, name := range names {
					s, _ := schema.Get(name)
					summaries = append(summaries, schemaSummary{Name: name, Description: s.Description})
				}
				return printJSON(cmd, summaries)
			}

			w := tabwriter.NewWriter(iocontext.GetIO(cmdContext(cmd)).Out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "SCHEMA\tDESCRIPTION")
			for _, name := range names {
				s, _ := schema.Get(name)
				desc := s.Description
				if len(desc) > 70 {
					desc = desc[:67] + "..."
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\n", name, desc)
			}
			return w.Flush()
		}),
	}
}

func newSchemaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <schema>",
		Short: "Show the fields of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			s, err := schema.Get(name)
			if err != nil {
				return api.NewValidationError("schema", name, schema.List())
			}

			if isJSON(cmd) {
				return printJSON(cmd, s)
			}
			printSchemaText(iocontext.GetIO(cmdContext(cmd)).Out, name, s)
			return nil
		}),
	}
}

func printSchemaText(out io.Writer, name string, s *schema.Schema) {
	_, _ = fmt.Fprintf(out, "Schema: %s\n", name)
	if s.Description != "" {
		_, _ = fmt.Fprintf(out, "Description: %s\n", s.Description)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Fields:")
	printFields(out, s, "  ")
}

func printFields(out io.Writer, s *schema.Schema, indent string) {
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := s.Properties[name]
		typeName := prop.Type
		if prop.Items != nil {
			typeName = "array<" + prop.Items.Type + ">"
		}
		if prop.Format != "" {
			typeName += " (" + prop.Format + ")"
		}
		marker := ""
		if required[name] {
			marker = " (required)"
		}
		_, _ = fmt.Fprintf(out, "%s%s: %s%s\n", indent, name, typeName, marker)
		if prop.Description != "" {
			_, _ = fmt.Fprintf(out, "%s  %s\n", indent, prop.Description)
		}
		if len(prop.Enum) > 0 {
			_, _ = fmt.Fprintf(out, "%s  Allowed values: %s\n", indent, strings.Join(prop.Enum, ", "))
		}
		nested := prop
		if prop.Items != nil {
			nested = prop.Items
		}
		if len(nested.Properties) > 0 {
			printFields(out, nested, indent+"    ")
		}
	}
}
