// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value. A .env file in the directory is merged in,
// with individual key files taking precedence.
//
// Supported key files: ncbi-email, crossref-mailto.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const envFile = ".env"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
//
// When dir/.env exists its KEY=value pairs are loaded first, with keys
// lower-cased and underscores mapped to hyphens (NCBI_EMAIL becomes
// ncbi-email), so the two layouts address the same names.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)

	if env, err := godotenv.Read(filepath.Join(dir, envFile)); err == nil {
		for key, value := range env {
			key = strings.ReplaceAll(strings.ToLower(key), "_", "-")
			if value = strings.TrimSpace(value); value != "" {
				secrets[key] = value
			}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return secrets, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
