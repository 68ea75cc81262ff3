// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tex reads LaTeX sources to find which bibliography entries a
// project actually cites, supporting .bib simplification.
package tex

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	// inputPattern matches \input{...} and \include{...} directives.
	inputPattern = regexp.MustCompile(`\\(?:input|include)\{([^}]+)\}`)

	// citePattern matches the natbib family of citation commands, with
	// optional [..] notes, capturing the comma-separated label list.
	citePattern = regexp.MustCompile(`\\(?:paren)?cite(?:t|p|t\*|p\*|author|year)?(?:\[[^\]]*\])*\{([^}]+)\}`)
)

// GatherSource inlines a tex project into one string, starting from the
// entry file and recursively substituting \input and \include directives.
// Referenced paths resolve relative to the entry file's directory; a
// missing .tex extension is supplied. Files already inlined are skipped so
// reference cycles terminate.
func GatherSource(entryFile string) (string, error) {
	root := filepath.Dir(entryFile)
	seen := map[string]bool{}
	return gather(entryFile, root, seen)
}

func gather(path, root string, seen map[string]bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if seen[abs] {
		return "", nil
	}
	seen[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading tex source: %w", err)
	}

	text := string(data)
	var sb strings.Builder
	last := 0
	for _, m := range inputPattern.FindAllStringSubmatchIndex(text, -1) {
		sb.WriteString(text[last:m[0]])
		last = m[1]

		ref := text[m[2]:m[3]]
		if filepath.Ext(ref) == "" {
			ref += ".tex"
		}
		if !filepath.IsAbs(ref) {
			ref = filepath.Join(root, ref)
		}
		inlined, err := gather(ref, root, seen)
		if err != nil {
			return "", err
		}
		sb.WriteString(inlined)
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

// CitedLabels extracts the set of citation labels used by the given tex
// sources, sorted. A single file argument is treated as the entry file of
// a tex project and gathered recursively; multiple files are scanned as
// they are; a directory argument is walked for .tex files.
func CitedLabels(sources []string) ([]string, error) {
	labels := map[string]bool{}

	collect := func(text string) {
		for _, m := range citePattern.FindAllStringSubmatch(text, -1) {
			for _, label := range strings.Split(m[1], ",") {
				if label = strings.TrimSpace(label); label != "" {
					labels[label] = true
				}
			}
		}
	}

	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("reading tex source: %w", err)
		}
		switch {
		case !info.IsDir() && len(sources) == 1:
			text, err := GatherSource(src)
			if err != nil {
				return nil, err
			}
			collect(text)
		case !info.IsDir():
			data, err := os.ReadFile(src)
			if err != nil {
				return nil, fmt.Errorf("reading tex source: %w", err)
			}
			collect(string(data))
		default:
			err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || filepath.Ext(path) != ".tex" {
					return nil
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				collect(string(data))
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking tex directory %s: %w", src, err)
			}
		}
	}

	out := make([]string, 0, len(labels))
	for label := range labels {
		out = append(out, label)
	}
	sort.Strings(out)
	return out, nil
}
