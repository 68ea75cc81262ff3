package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citeseek/internal/bib"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields [name]",
	Short: "List recognized BibTeX fields and entry types",
	Long: `Without arguments, fields lists every recognized field name. With a name
it describes that field. With --entry-types it lists the entry types and
their required fields instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFields,
}

func init() {
	fieldsCmd.Flags().Bool("entry-types", false, "list entry types instead of fields")

	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	if entryTypes, _ := cmd.Flags().GetBool("entry-types"); entryTypes {
		for _, name := range bib.EntryTypes() {
			var required []string
			for _, spec := range bib.RequiredFields(name) {
				required = append(required, spec.String())
			}
			fmt.Printf("%-15s requires: %s\n", name, strings.Join(required, ", "))
		}
		return nil
	}

	if len(args) == 1 {
		desc, err := bib.Describe(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", strings.ToLower(args[0]), desc)
		return nil
	}

	for _, name := range bib.FieldNames() {
		fmt.Println(name)
	}
	return nil
}
