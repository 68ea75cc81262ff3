// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citeseek CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citeseek/internal/secrets"
	"github.com/pdiddy/citeseek/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the citeseek CLI.
var rootCmd = &cobra.Command{
	Use:   "citeseek",
	Short: "Look up BibTeX entries from DOIs, PubMed IDs, and arXiv IDs",
	Long: `citeseek resolves bibliographic identifiers (DOIs, PMIDs, PMCIDs, arXiv IDs,
in raw or URL form) to normalized BibTeX entries, maintains a citation
cache, and keeps .bib files tidy.

Each operation is a subcommand: lookup resolves identifiers, check
validates a .bib file, and simplify strips a .bib file down to the
entries a tex project actually cites.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citeseek.yaml or ~/.config/citeseek/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citeseek")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citeseek"))
		}
	}

	viper.SetEnvPrefix("CITESEEK")
	viper.AutomaticEnv()

	setConfigDefaults(types.Default())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setConfigDefaults registers the built-in configuration with viper so the
// config file and CITESEEK_* environment variables can override any key.
func setConfigDefaults(cfg types.Config) {
	viper.SetDefault("lookup.timeout", cfg.Lookup.Timeout)
	viper.SetDefault("lookup.user_agent", cfg.Lookup.UserAgent)
	viper.SetDefault("lookup.format", cfg.Lookup.Format)
	viper.SetDefault("lookup.style", cfg.Lookup.Style)
	viper.SetDefault("lookup.arxiv_to_doi", cfg.Lookup.ArxivToDOI)
	viper.SetDefault("lookup.email", cfg.Lookup.Email)
	viper.SetDefault("lookup.ignore_fields", cfg.Lookup.IgnoreFields)
	viper.SetDefault("lookup.ordering", cfg.Lookup.Ordering)
	viper.SetDefault("lookup.ignore_errors", cfg.Lookup.IgnoreErrors)
	viper.SetDefault("lookup.requests_per_second", cfg.Lookup.RequestsPerSecond)
	viper.SetDefault("lookup.max_retries", cfg.Lookup.MaxRetries)
	viper.SetDefault("output.align", cfg.Output.Align)
	viper.SetDefault("output.file", cfg.Output.File)
	viper.SetDefault("output.skip_existing", cfg.Output.SkipExisting)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("cache.limit", cfg.Cache.Limit)
}

// loadConfig assembles the effective configuration from viper (defaults,
// config file, environment). Flag overrides are applied by the subcommands.
func loadConfig() types.Config {
	var cfg types.Config
	cfg.Lookup.Timeout = viper.GetDuration("lookup.timeout")
	cfg.Lookup.UserAgent = viper.GetString("lookup.user_agent")
	cfg.Lookup.Format = viper.GetString("lookup.format")
	cfg.Lookup.Style = viper.GetString("lookup.style")
	cfg.Lookup.ArxivToDOI = viper.GetBool("lookup.arxiv_to_doi")
	cfg.Lookup.Email = viper.GetString("lookup.email")
	cfg.Lookup.IgnoreFields = viper.GetStringSlice("lookup.ignore_fields")
	cfg.Lookup.Ordering = viper.GetStringSlice("lookup.ordering")
	cfg.Lookup.IgnoreErrors = viper.GetBool("lookup.ignore_errors")
	cfg.Lookup.RequestsPerSecond = viper.GetFloat64("lookup.requests_per_second")
	cfg.Lookup.MaxRetries = viper.GetInt("lookup.max_retries")
	cfg.Output.Align = viper.GetString("output.align")
	cfg.Output.File = viper.GetString("output.file")
	cfg.Output.SkipExisting = viper.GetString("output.skip_existing")
	cfg.Cache.Dir = viper.GetString("cache.dir")
	cfg.Cache.Limit = viper.GetInt("cache.limit")
	return cfg
}

// cacheDir resolves the citation cache directory, defaulting to
// ~/.cache/citeseek when unconfigured.
func cacheDir(cfg types.CacheConfig) string {
	if cfg.Dir != "" {
		return cfg.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".citeseek-cache"
	}
	return filepath.Join(home, ".cache", "citeseek")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
