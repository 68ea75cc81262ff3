package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citeseek/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the persistent citation cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached citations",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		entries, err := c.All()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%% identifier: %s (cached %s)\n%s\n", e.Identifier, e.CreatedAt, e.Text)
		}
		fmt.Printf("%d cached citations\n", len(entries))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [identifiers...]",
	Short: "Remove cached citations (all of them without arguments)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		if len(args) == 0 {
			if err := c.Clear(); err != nil {
				return err
			}
			fmt.Println("cache cleared")
			return nil
		}
		for _, id := range args {
			if err := c.Delete(id); err != nil {
				return err
			}
		}
		fmt.Printf("removed %d identifiers\n", len(args))
		return nil
	},
}

var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate <legacy.csv>",
	Short: "Import a legacy CSV citation cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.MigrateCSV(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("imported %d citations from %s\n", n, args[0])
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Cache, error) {
	return cache.Open(cacheDir(loadConfig().Cache))
}
