// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"strings"
	"testing"
)

func mustRecord(t *testing.T, identifier, entryType, label string, fields []Field, opts ...Option) *Record {
	t.Helper()
	rec, err := NewRecord(identifier, entryType, label, fields, opts...)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	return rec
}

func TestNewRecordValidation(t *testing.T) {
	if _, err := NewRecord("id", "blogpost", "label", nil); err == nil {
		t.Fatal("invalid entry type should fail")
	} else if !strings.Contains(err.Error(), "is not a valid entry type") {
		t.Errorf("unexpected error: %v", err)
	}

	// Empty label falls back to the identifier and vice versa.
	rec := mustRecord(t, "10.1109/CVPR.2016.90", "article", "", nil)
	if rec.Label() != "10.1109/CVPR.2016.90" {
		t.Errorf("label = %q, want identifier fallback", rec.Label())
	}
	rec = mustRecord(t, "", "article", "he2016", nil)
	if rec.Identifier() != "he2016" {
		t.Errorf("identifier = %q, want label fallback", rec.Identifier())
	}
}

func TestNewRecordDuplicateFields(t *testing.T) {
	rec := mustRecord(t, "id", "article", "l", []Field{
		{Name: "Title", Value: "First"},
		{Name: "year", Value: "2017"},
		{Name: "title", Value: "Second"},
	})

	fields := rec.Fields()
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	// Duplicate keeps the first position and the later value.
	if fields[0].Name != "title" || fields[0].Value != "Second" {
		t.Errorf("fields[0] = %+v", fields[0])
	}
}

func TestRecordString(t *testing.T) {
	fields := []Field{
		{Name: "title", Value: "An Open-Source Toolkit"},
		{Name: "author", Value: "Wen, Hao and Kang, Jingsu"},
		{Name: "journal", Value: "Frontiers of Computer Science"},
		{Name: "year", Value: "2017"},
	}

	tests := []struct {
		name  string
		align Alignment
		want  string
	}{
		{
			name:  "middle right-aligns names",
			align: AlignMiddle,
			want: "@article{wen2017,\n" +
				"    title = {An Open-Source Toolkit},\n" +
				"   author = {Wen, Hao and Kang, Jingsu},\n" +
				"  journal = {Frontiers of Computer Science},\n" +
				"     year = {2017}\n" +
				"}",
		},
		{
			name:  "left keeps plain indent",
			align: AlignLeft,
			want: "@article{wen2017,\n" +
				"  title = {An Open-Source Toolkit},\n" +
				"  author = {Wen, Hao and Kang, Jingsu},\n" +
				"  journal = {Frontiers of Computer Science},\n" +
				"  year = {2017}\n" +
				"}",
		},
		{
			name:  "left-middle pads after names",
			align: AlignLeftMiddle,
			want: "@article{wen2017,\n" +
				"  title   = {An Open-Source Toolkit},\n" +
				"  author  = {Wen, Hao and Kang, Jingsu},\n" +
				"  journal = {Frontiers of Computer Science},\n" +
				"  year    = {2017}\n" +
				"}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := mustRecord(t, "id", "article", "wen2017", fields, WithAlign(tt.align))
			if got := rec.String(); got != tt.want {
				t.Errorf("String() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestRecordStringDoubleBraced(t *testing.T) {
	rec := mustRecord(t, "id", "article", "l", []Field{
		{Name: "journal", Value: "IEEE Transactions", DoubleBraced: true},
	}, WithAlign(AlignLeft))

	want := "@article{l,\n  journal = {{{IEEE Transactions}}}\n}"
	if got := rec.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCheckRequiredFields(t *testing.T) {
	tests := []struct {
		name      string
		entryType string
		fields    []Field
		wantErr   string
	}{
		{
			name:      "complete article",
			entryType: "article",
			fields: []Field{
				{Name: "author", Value: "a"}, {Name: "title", Value: "t"},
				{Name: "journal", Value: "j"}, {Name: "year", Value: "2020"},
			},
		},
		{
			name:      "article missing one field",
			entryType: "article",
			fields: []Field{
				{Name: "author", Value: "a"}, {Name: "title", Value: "t"},
				{Name: "year", Value: "2020"},
			},
			wantErr: `required field "journal" is missing`,
		},
		{
			name:      "article missing two fields",
			entryType: "article",
			fields: []Field{
				{Name: "author", Value: "a"}, {Name: "year", Value: "2020"},
			},
			wantErr: `required field(s) "title, journal" is (are) missing`,
		},
		{
			name:      "book with editor only",
			entryType: "book",
			fields: []Field{
				{Name: "editor", Value: "e"}, {Name: "title", Value: "t"},
				{Name: "publisher", Value: "p"}, {Name: "year", Value: "2020"},
			},
		},
		{
			name:      "book with author and editor",
			entryType: "book",
			fields: []Field{
				{Name: "author", Value: "a"}, {Name: "editor", Value: "e"},
				{Name: "title", Value: "t"}, {Name: "publisher", Value: "p"},
				{Name: "year", Value: "2020"},
			},
			wantErr: `required field "author|editor" is ambiguous: exactly one of [author editor] must be present`,
		},
		{
			name:      "book with both missing and ambiguous specs",
			entryType: "book",
			fields: []Field{
				{Name: "author", Value: "a"}, {Name: "editor", Value: "e"},
				{Name: "publisher", Value: "p"}, {Name: "year", Value: "2020"},
			},
			wantErr: `required field "title" is missing` + "\n" +
				`required field "author|editor" is ambiguous: exactly one of [author editor] must be present`,
		},
		{
			name:      "inbook with both chapter and pages",
			entryType: "inbook",
			fields: []Field{
				{Name: "author", Value: "a"}, {Name: "title", Value: "t"},
				{Name: "chapter", Value: "3"}, {Name: "pages", Value: "1--10"},
				{Name: "publisher", Value: "p"}, {Name: "year", Value: "2020"},
			},
		},
		{
			name:      "misc with nothing",
			entryType: "misc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := mustRecord(t, "id", tt.entryType, "l", tt.fields)
			err := rec.CheckRequiredFields()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("CheckRequiredFields() = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("CheckRequiredFields() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRecordEqual(t *testing.T) {
	base := func(label, title, author string) *Record {
		var fields []Field
		if title != "" {
			fields = append(fields, Field{Name: "title", Value: title})
		}
		if author != "" {
			fields = append(fields, Field{Name: "author", Value: author})
		}
		return mustRecord(t, label, "article", label, fields)
	}

	t.Run("non-strict compares labels", func(t *testing.T) {
		a := base("wen2017", "One Title", "Wen, Hao")
		b := base("wen2017", "Completely Different", "Kang, Jingsu")
		if !a.Equal(b, false) {
			t.Error("same label should be equal non-strictly")
		}
		if a.Equal(base("kang2018", "One Title", "Wen, Hao"), false) {
			t.Error("different labels should not be equal non-strictly")
		}
	})

	t.Run("different entry types never equal", func(t *testing.T) {
		a := base("l", "T", "")
		b := mustRecord(t, "l", "misc", "l", []Field{{Name: "title", Value: "T"}})
		if a.Equal(b, false) || a.Equal(b, true) {
			t.Error("different entry types should never be equal")
		}
	})

	t.Run("strict title ignores case whitespace punctuation", func(t *testing.T) {
		a := base("a", "Deep  Residual Learning: Image Recognition", "Kaiming He")
		b := base("b", "deep residual learning image recognition", "K. He")
		if !a.Equal(b, true) {
			t.Error("normalized titles and surnames should match strictly")
		}
	})

	t.Run("strict author compares first surname", func(t *testing.T) {
		a := base("a", "T", "Hao Wen and Jingsu Kang")
		b := base("b", "T", "H. Wen")
		if !a.Equal(b, true) {
			t.Error("same first-author surname should match")
		}
		c := base("c", "T", "Jingsu Kang")
		if a.Equal(c, true) {
			t.Error("different first-author surname should not match")
		}
	})

	t.Run("one-sided strict field is unequal", func(t *testing.T) {
		a := base("l", "T", "Hao Wen")
		b := base("l", "T", "")
		if a.Equal(b, true) {
			t.Error("author present on one side only should be unequal")
		}
	})

	t.Run("no strict fields falls back to label", func(t *testing.T) {
		a := base("l", "", "")
		b := base("l", "", "")
		if !a.Equal(b, true) {
			t.Error("records without strict fields should compare by label")
		}
	})
}

func TestParseAlignment(t *testing.T) {
	tests := []struct {
		in      string
		want    Alignment
		wantErr bool
	}{
		{"", AlignMiddle, false},
		{"middle", AlignMiddle, false},
		{"LEFT", AlignLeft, false},
		{"left-middle", AlignLeftMiddle, false},
		{"left_middle", AlignLeftMiddle, false},
		{"center", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAlignment(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAlignment(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseAlignment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
