package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citeseek/internal/cache"
	"github.com/pdiddy/citeseek/internal/lookup"
	"github.com/pdiddy/citeseek/internal/store"
	"github.com/pdiddy/citeseek/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [identifiers...]",
	Short: "Resolve DOIs, PubMed IDs, and arXiv IDs to BibTeX entries",
	Long: `Lookup resolves bibliographic identifiers to normalized BibTeX entries.
Identifiers are taken from the command line and/or an input file (one
identifier per line, "%" comments allowed). Entries print to stdout; with
--output they are appended to a .bib file instead, skipping entries the
file already has.`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringP("align", "a", "", "field alignment: left, middle, or left-middle")
	lookupCmd.Flags().StringP("output", "o", "", "append entries to this .bib file")
	lookupCmd.Flags().StringP("input", "i", "", "read identifiers from this file")
	lookupCmd.Flags().String("format", "", "DOI content negotiation format (bibtex, text, ris, ...)")
	lookupCmd.Flags().String("style", "", "citation style for --format text")
	lookupCmd.Flags().String("label", "", "citation key overriding the provider label (single identifier only)")
	lookupCmd.Flags().String("email", "", "email sent to NCBI with PubMed conversions")
	lookupCmd.Flags().StringSlice("ignore-fields", nil, "fields to drop from every entry")
	lookupCmd.Flags().StringSlice("ordering", nil, "field priority order for rendered entries")
	lookupCmd.Flags().Duration("timeout", 0, "HTTP request timeout")
	lookupCmd.Flags().Bool("arxiv2doi", true, "resolve arXiv IDs through their registered DOI")
	lookupCmd.Flags().Bool("ignore-errors", false, "print empty strings instead of error sentinels")
	lookupCmd.Flags().Bool("allow-duplicates", false, "append to --output without deduplication")
	lookupCmd.Flags().Bool("strict-dedup", false, "deduplicate --output by title/author instead of label")
	lookupCmd.Flags().Bool("no-cache", false, "bypass the persistent citation cache")
	lookupCmd.Flags().Bool("check", false, "validate the output file after writing")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := lookupConfigFromFlags(cmd)

	identifiers := args
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		fromFile, err := readIdentifierFile(input)
		if err != nil {
			return err
		}
		identifiers = append(identifiers, fromFile...)
	}
	if len(identifiers) == 0 {
		return fmt.Errorf("no identifiers given")
	}

	label, _ := cmd.Flags().GetString("label")
	if label != "" && len(identifiers) > 1 {
		return fmt.Errorf("--label applies to a single identifier, got %d", len(identifiers))
	}

	var citationCache lookup.Cache
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		c, err := cache.Open(cacheDir(cfg.Cache))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: citation cache unavailable: %v\n", err)
		} else {
			defer c.Close()
			citationCache = c
		}
	}

	lk, err := lookup.New(cfg.Lookup, cfg.Output, cfg.Cache.Limit, citationCache)
	if err != nil {
		return err
	}

	var labels []string
	if label != "" {
		labels = []string{label}
	}

	result, err := lk.Batch(context.Background(), identifiers, labels, os.Stderr)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = cfg.Output.File
	}

	if output != "" {
		written, err := lk.Save(output)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %d entries to %s\n", written, output)
		if check, _ := cmd.Flags().GetBool("check"); check {
			if _, err := store.CheckFile(output, os.Stdout); err != nil {
				return err
			}
		}
	} else if result.Resolved == 0 {
		fmt.Println("No entries found.")
	} else {
		for _, entry := range result.Results {
			if entry != "" {
				fmt.Println(entry)
			}
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d identifier(s) failed to resolve", result.Failed)
	}
	return nil
}

// lookupConfigFromFlags merges changed flags over the viper-assembled
// configuration.
func lookupConfigFromFlags(cmd *cobra.Command) types.Config {
	cfg := loadConfig()
	flags := cmd.Flags()

	if flags.Changed("align") {
		cfg.Output.Align, _ = flags.GetString("align")
	}
	if flags.Changed("format") {
		cfg.Lookup.Format, _ = flags.GetString("format")
	}
	if flags.Changed("style") {
		cfg.Lookup.Style, _ = flags.GetString("style")
	}
	if flags.Changed("ignore-fields") {
		cfg.Lookup.IgnoreFields, _ = flags.GetStringSlice("ignore-fields")
	}
	if flags.Changed("ordering") {
		cfg.Lookup.Ordering, _ = flags.GetStringSlice("ordering")
	}
	if flags.Changed("timeout") {
		cfg.Lookup.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("arxiv2doi") {
		cfg.Lookup.ArxivToDOI, _ = flags.GetBool("arxiv2doi")
	}
	if flags.Changed("ignore-errors") {
		cfg.Lookup.IgnoreErrors, _ = flags.GetBool("ignore-errors")
	}
	if flags.Changed("allow-duplicates") {
		cfg.Output.SkipExisting = "false"
	}
	if strict, _ := flags.GetBool("strict-dedup"); strict {
		cfg.Output.SkipExisting = "strict"
	}

	if flags.Changed("email") {
		cfg.Lookup.Email, _ = flags.GetString("email")
	}
	cfg.Lookup.Email = secretDefault("ncbi-email", cfg.Lookup.Email)

	return cfg
}

// readIdentifierFile reads identifiers from a file, one per line. Blank
// lines and "%" comments are skipped.
func readIdentifierFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}
	var identifiers []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		identifiers = append(identifiers, line)
	}
	return identifiers, nil
}
