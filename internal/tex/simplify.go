// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/citeseek/internal/bib"
	"github.com/pdiddy/citeseek/internal/normalize"
	"github.com/pdiddy/citeseek/internal/store"
)

// Simplify writes a copy of bibFile containing only the entries cited by
// the tex sources. When outputFile is empty it defaults to the bib file's
// name with a "_simplified" suffix. The output file must not already
// exist. Returns the output path.
func Simplify(texSources []string, bibFile, outputFile string) (string, error) {
	if outputFile == "" {
		stem := strings.TrimSuffix(filepath.Base(bibFile), filepath.Ext(bibFile))
		outputFile = filepath.Join(filepath.Dir(bibFile), stem+"_simplified.bib")
	}
	if _, err := os.Stat(outputFile); err == nil {
		return "", fmt.Errorf("output file %q already exists", outputFile)
	}

	parsed, err := store.ReadFile(bibFile, normalize.Options{})
	if err != nil {
		return "", err
	}

	labels, err := CitedLabels(texSources)
	if err != nil {
		return "", err
	}
	cited := make(map[string]bool, len(labels))
	for _, label := range labels {
		cited[label] = true
	}

	var keep []*bib.Record
	for _, rec := range parsed.Records {
		if cited[rec.Label()] {
			keep = append(keep, rec)
		}
	}

	if _, err := store.WriteFile(outputFile, keep, store.SkipNone); err != nil {
		return "", err
	}
	return outputFile, nil
}
