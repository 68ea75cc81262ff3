package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citeseek/internal/tex"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify <file.bib> <tex-sources...>",
	Short: "Strip a .bib file down to the entries a tex project cites",
	Long: `Simplify reads the citation commands in the given tex sources and writes a
copy of the .bib file containing only the cited entries. A single tex file
is treated as the project entry point and its \input and \include
directives are followed; a directory is walked for .tex files.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSimplify,
}

func init() {
	simplifyCmd.Flags().StringP("output", "o", "", "output file (default <file>_simplified.bib)")

	rootCmd.AddCommand(simplifyCmd)
}

func runSimplify(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	path, err := tex.Simplify(args[1:], args[0], output)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
