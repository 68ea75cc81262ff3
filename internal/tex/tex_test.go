// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestGatherSource(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.tex":     `\begin{document}\input{sections/intro}\include{conclusion}\end{document}`,
		"sections/intro.tex": `Intro cites \cite{wen2017}.`,
		"conclusion.tex":     `Conclusion.`,
	})

	got, err := GatherSource(filepath.Join(dir, "main.tex"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Intro cites", "Conclusion.", `\begin{document}`} {
		if !strings.Contains(got, want) {
			t.Errorf("gathered source missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, `\input`) {
		t.Error("input directive should have been substituted")
	}
}

func TestGatherSourceCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.tex": `A \input{b}`,
		"b.tex": `B \input{a}`,
	})

	got, err := GatherSource(filepath.Join(dir, "a.tex"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(got, "A ") != 1 {
		t.Errorf("cycle should inline each file once:\n%s", got)
	}
}

func TestCitedLabels(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.tex": `\cite{wen2017} and \citep[see][p. 4]{he2016, vaswani2017}
\citet{he2016} \citeauthor{kingma2014} \parencite{goodfellow2016}
\cite*{not-a-command`,
	})

	labels, err := CitedLabels([]string{filepath.Join(dir, "main.tex")})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"goodfellow2016", "he2016", "kingma2014", "vaswani2017", "wen2017"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestCitedLabelsDirectory(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ch1.tex":      `\cite{wen2017}`,
		"ch2.tex":      `\citep{he2016}`,
		"notes.txt":    `\cite{ignored2020}`,
		"sub/ch3.tex":  `\citet{vaswani2017}`,
	})

	labels, err := CitedLabels([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"he2016", "vaswani2017", "wen2017"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
}

func TestSimplify(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.tex": `\cite{wen2017}`,
		"refs.bib": `@article{wen2017,
  title = {An Open-Source Toolkit},
  author = {Wen, Hao},
  journal = {Frontiers},
  year = {2017}
}
@article{unused2020,
  title = {Never Cited},
  author = {Nobody},
  journal = {J},
  year = {2020}
}
`,
	})

	out, err := Simplify([]string{filepath.Join(dir, "main.tex")}, filepath.Join(dir, "refs.bib"), "")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(out) != "refs_simplified.bib" {
		t.Errorf("output = %q, want default simplified name", out)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "wen2017") {
		t.Error("cited entry missing from simplified file")
	}
	if strings.Contains(string(data), "unused2020") {
		t.Error("uncited entry should have been dropped")
	}

	// A second run must refuse to overwrite.
	if _, err := Simplify([]string{filepath.Join(dir, "main.tex")}, filepath.Join(dir, "refs.bib"), ""); err == nil {
		t.Error("existing output file should be an error")
	}
}
