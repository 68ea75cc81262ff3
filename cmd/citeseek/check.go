package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citeseek/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.bib>",
	Short: "Validate the entries in a .bib file",
	Long: `Check parses a .bib file and reports entries missing required fields for
their entry type, and entries sharing a citation key.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	lines, err := store.CheckFile(args[0], os.Stdout)
	if err != nil {
		return err
	}
	if len(lines) > 0 {
		return fmt.Errorf("%d invalid entries in %s", len(lines), args[0])
	}
	fmt.Printf("%s is valid\n", args[0])
	return nil
}
