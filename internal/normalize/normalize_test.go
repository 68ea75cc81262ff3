// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"
	"testing"

	"github.com/pdiddy/citeseek/internal/bib"
)

func TestParseTextEndToEnd(t *testing.T) {
	raw := ` @article{Wen_2017, title={A {Deep} Toolkit}, volume={12}, ` +
		`DOI={10.1000/xyz}, journal={{Frontiers}}, author={Wen, Hao}, year={2017}, month=jul }`

	rec, err := ParseText("10.1000/xyz", raw, Options{})
	if err != nil {
		t.Fatal(err)
	}

	want := "@article{Wen_2017,\n" +
		"    title = {A {Deep} Toolkit},\n" +
		"   author = {Wen, Hao},\n" +
		"  journal = {{{Frontiers}}},\n" +
		"   volume = {12},\n" +
		"      doi = {10.1000/xyz},\n" +
		"     year = {2017},\n" +
		"    month = {7}\n" +
		"}"
	if got := rec.String(); got != want {
		t.Errorf("rendered entry =\n%s\nwant:\n%s", got, want)
	}

	// The rendered form re-parses to an equal record.
	again, err := ParseText("10.1000/xyz", rec.String(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if again.String() != rec.String() {
		t.Errorf("round trip changed rendering:\n%s\nvs:\n%s", again.String(), rec.String())
	}
	if !rec.Equal(again, false) || !rec.Equal(again, true) {
		t.Error("round-tripped record should be equal under both tiers")
	}
}

func TestDoubleBracedValueSurvivesReparse(t *testing.T) {
	// The closing run of a double-braced value must not be mistaken for a
	// "} <junk> }" artifact, whether it sits mid-entry or right before the
	// entry closer.
	raw := `@article{Wen_2017, title={T}, author={Wen, Hao}, year={2017}, journal={{Frontiers}} }`

	rec, err := ParseText("", raw, Options{Ordering: []string{"title", "author", "year"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.String(), "journal = {{{Frontiers}}}") {
		t.Fatalf("first render lost the double brace:\n%s", rec.String())
	}

	again, err := ParseText("", rec.String(), Options{Ordering: []string{"title", "author", "year"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(again.String(), "journal = {{{Frontiers}}}") {
		t.Errorf("re-parse lost the double brace:\n%s", again.String())
	}
	if again.String() != rec.String() {
		t.Errorf("round trip changed rendering:\n%s\nvs:\n%s", again.String(), rec.String())
	}
}

func TestParseTextErrors(t *testing.T) {
	if _, err := ParseText("id", "not a bib entry", Options{}); err == nil {
		t.Error("text without @ header should fail")
	}
	if _, err := ParseText("id", "@article(label, title={T}}", Options{}); err == nil {
		t.Error("malformed header should fail")
	}
	if _, err := ParseText("id", "@blogpost{label, title={T} }", Options{}); err == nil {
		t.Error("invalid entry type should fail")
	}
}

func TestParseTextOptions(t *testing.T) {
	raw := `@article{He_2016, title={Deep Residual Learning}, url={https://example.com}, ` +
		`author={He, Kaiming}, year={2016} }`

	rec, err := ParseText("", raw, Options{
		Label:        "he2016",
		IgnoreFields: []string{"URL"},
		Ordering:     []string{"author", "title"},
		Align:        "left",
	})
	if err != nil {
		t.Fatal(err)
	}

	if rec.Label() != "he2016" {
		t.Errorf("label = %q", rec.Label())
	}
	if _, ok := rec.Get("url"); ok {
		t.Error("url should have been ignored")
	}
	fields := rec.Fields()
	if fields[0].Name != "author" || fields[1].Name != "title" {
		t.Errorf("ordering not applied: %v", fields)
	}
	if rec.Align() != bib.AlignLeft {
		t.Errorf("align = %q", rec.Align())
	}
}

func TestTokenizerContinuation(t *testing.T) {
	// "weird = stuff" is not a registered field, so it belongs to the note
	// value, not to a new field.
	raw := `@misc{m, note={see also}, weird = stuff, year={2020} }`

	rec, err := ParseText("", raw, Options{})
	if err != nil {
		t.Fatal(err)
	}
	note, ok := rec.Get("note")
	if !ok || !strings.Contains(note, "weird = stuff") {
		t.Errorf("note = %q, want continuation folded in", note)
	}
	if y, _ := rec.Get("year"); y != "2020" {
		t.Errorf("year = %q", y)
	}
}

func TestFromPairs(t *testing.T) {
	pairs := []Pair{
		{Key: "title", Value: "Deep Residual Learning for Image Recognition"},
		{Key: "author", Value: "Kaiming He and Xiangyu Zhang"},
		{Key: "year", Value: 2015},
		{Key: "month", Value: 12},
		{Key: "journal", Value: "arXiv preprint arXiv:1512.03385"},
		{Key: "label", Value: "he2015_1512.03385"},
		{Key: "entry_type", Value: "article"},
		{Key: "doi", Value: "10.48550/arXiv.1512.03385"},
	}

	rec, err := FromPairs("1512.03385", pairs, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rec.EntryType() != "article" || rec.Label() != "he2015_1512.03385" {
		t.Errorf("header = %s, %s", rec.EntryType(), rec.Label())
	}
	if rec.Identifier() != "1512.03385" {
		t.Errorf("identifier = %q", rec.Identifier())
	}
	if y, _ := rec.Get("year"); y != "2015" {
		t.Errorf("year = %q", y)
	}

	if _, err := FromPairs("id", []Pair{{Key: "title", Value: "T"}}, Options{}); err == nil {
		t.Error("pairs without entry_type should fail")
	}
}

func TestUnwrapValue(t *testing.T) {
	tests := []struct {
		in           string
		want         string
		doubleBraced bool
	}{
		{"{plain}", "plain", false},
		{"{{protected}}", "protected", true},
		{"{{{very protected}}}", "very protected", true},
		{`"quoted"`, "quoted", false},
		{"'quoted'", "quoted", false},
		{"jun }", "jun", false},
		{"{A {Deep} Toolkit}", "A {Deep} Toolkit", false},
		{"{2016 {IEEE} Conference ({CVPR})}", "2016 {IEEE} Conference ({CVPR})", false},
		{"bare", "bare", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, doubleBraced := unwrapValue(tt.in)
		if got != tt.want || doubleBraced != tt.doubleBraced {
			t.Errorf("unwrapValue(%q) = (%q, %v), want (%q, %v)",
				tt.in, got, doubleBraced, tt.want, tt.doubleBraced)
		}
	}
}

func TestEscapeOnceIdempotent(t *testing.T) {
	once := escapeOnce("Bell & Sons", "&")
	if once != `Bell \& Sons` {
		t.Errorf("escapeOnce = %q", once)
	}
	if escapeOnce(once, "&") != once {
		t.Error("escaping twice should not double the backslash")
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<i>Nature</i> methods", "Nature methods"},
		{"Fish &amp; Chips", "Fish & Chips"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonthConversion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jul", "7"},
		{"Jul", "7"},
		{"DEC", "12"},
		{"July", "July"},
		{"7", "7"},
	}
	for _, tt := range tests {
		raw := "@misc{m, month={" + tt.in + "} }"
		rec, err := ParseText("", raw, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if got, _ := rec.Get("month"); got != tt.want {
			t.Errorf("month %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"deep residual learning for image recognition", "Deep Residual Learning for Image Recognition"},
		{"a tale of two cities", "A Tale of Two Cities"},
		{"learning: an overview of the field", "Learning: An Overview of the Field"},
		{"the {BERT} model", "The {BERT} Model"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
