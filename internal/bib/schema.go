// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bib defines the bibliographic record entity, the static entry-type
// schema it is validated against, and the canonical BibTeX-subset rendering.
package bib

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrFieldMissing marks a required-field spec with no alternative present,
// as opposed to an exclusive spec with too many.
var ErrFieldMissing = errors.New("missing")

// FieldSpec is a required/optional field rule for an entry type. A spec is
// either a single field name ("title"), an exclusive alternative
// ("author|editor", exactly one must be present), or an inclusive
// alternative ("chapter+|pages", one or both must be present).
type FieldSpec struct {
	names     []string
	inclusive bool
}

// ParseFieldSpec parses the "a", "a|b" or "a+|b" spec syntax.
func ParseFieldSpec(spec string) FieldSpec {
	inclusive := strings.Contains(spec, "+|")
	spec = strings.ReplaceAll(spec, "+|", "|")
	parts := strings.Split(spec, "|")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, strings.ToLower(strings.TrimSpace(p)))
	}
	return FieldSpec{names: names, inclusive: inclusive}
}

// Names returns the alternative field names in the spec.
func (s FieldSpec) Names() []string { return s.names }

// Inclusive reports whether the spec allows more than one alternative.
func (s FieldSpec) Inclusive() bool { return s.inclusive }

func (s FieldSpec) String() string {
	if s.inclusive {
		return s.names[0] + "+|" + strings.Join(s.names[1:], "|")
	}
	return strings.Join(s.names, "|")
}

// SatisfiedBy checks the spec against a field-presence predicate.
// Exclusive alternatives require exactly one present name; inclusive
// alternatives require at least one.
func (s FieldSpec) SatisfiedBy(has func(name string) bool) error {
	present := 0
	for _, n := range s.names {
		if has(n) {
			present++
		}
	}
	switch {
	case present == 0:
		return fmt.Errorf("required field %q is %w", s.String(), ErrFieldMissing)
	case present > 1 && !s.inclusive && len(s.names) > 1:
		return fmt.Errorf("required field %q is ambiguous: exactly one of %v must be present", s.String(), s.names)
	}
	return nil
}

// EntryType describes one bibliographic entry type and its field contract.
type EntryType struct {
	Name        string
	Description string
	Required    []FieldSpec
	Optional    []FieldSpec
}

func specs(raw ...string) []FieldSpec {
	out := make([]FieldSpec, len(raw))
	for i, r := range raw {
		out[i] = ParseFieldSpec(r)
	}
	return out
}

// entryTypes is the static process-wide schema. Field contracts follow the
// BibTeX conventions, descriptions the biblatex cheatsheet.
var entryTypes = map[string]EntryType{
	"article": {
		Name:        "article",
		Description: "journal, magazine or newspaper article",
		Required:    specs("author", "title", "journal", "year"),
		Optional:    specs("volume", "number", "pages", "month", "doi", "note"),
	},
	"book": {
		Name:        "book",
		Description: "single-volume book by author(s) of whole",
		Required:    specs("author|editor", "title", "publisher", "year"),
		Optional:    specs("volume|number", "series", "address", "edition", "month", "note"),
	},
	"mvbook": {
		Name:        "mvbook",
		Description: "multi-volume book",
		Required:    specs("author|editor", "title", "publisher", "year"),
		Optional:    specs("volumes", "series", "address", "edition", "month", "note"),
	},
	"inbook": {
		Name:        "inbook",
		Description: "book part with own title",
		Required:    specs("author|editor", "title", "chapter+|pages", "publisher", "year"),
		Optional:    specs("volume|number", "series", "type", "address", "edition", "month", "note"),
	},
	"booklet": {
		Name:        "booklet",
		Description: "informally published book",
		Required:    specs("title"),
		Optional:    specs("author", "howpublished", "address", "month", "year", "note"),
	},
	"incollection": {
		Name:        "incollection",
		Description: "contribution to anthology",
		Required:    specs("author", "title", "booktitle", "publisher", "year"),
		Optional:    specs("editor", "volume|number", "series", "type", "chapter", "pages", "address", "edition", "month", "note"),
	},
	"collection": {
		Name:        "collection",
		Description: "single-volume edited anthology",
		Required:    specs("editor", "title", "publisher", "year"),
		Optional:    specs("volume|number", "series", "address", "edition", "month", "note"),
	},
	"inproceedings": {
		Name:        "inproceedings",
		Description: "article in conference proceedings",
		Required:    specs("author", "title", "booktitle", "year"),
		Optional:    specs("editor", "volume|number", "series", "pages", "address", "month", "organization", "publisher", "doi", "note"),
	},
	"proceedings": {
		Name:        "proceedings",
		Description: "single-volume conference proceedings",
		Required:    specs("title", "year"),
		Optional:    specs("editor", "volume|number", "series", "address", "month", "organization", "publisher", "note"),
	},
	"manual": {
		Name:        "manual",
		Description: "technical or other documentation",
		Required:    specs("title"),
		Optional:    specs("author", "organization", "address", "edition", "month", "year", "note"),
	},
	"thesis": {
		Name:        "thesis",
		Description: "work completed to fulfil degree requirement",
		Required:    specs("author", "title", "type", "institution", "year"),
		Optional:    specs("address", "month", "note"),
	},
	"mastersthesis": {
		Name:        "mastersthesis",
		Description: "master's thesis",
		Required:    specs("author", "title", "school", "year"),
		Optional:    specs("type", "address", "month", "note"),
	},
	"phdthesis": {
		Name:        "phdthesis",
		Description: "PhD thesis",
		Required:    specs("author", "title", "school", "year"),
		Optional:    specs("type", "address", "month", "note"),
	},
	"techreport": {
		Name:        "techreport",
		Description: "report published by a school or institution",
		Required:    specs("author", "title", "institution", "year"),
		Optional:    specs("type", "number", "address", "month", "note"),
	},
	"report": {
		Name:        "report",
		Description: "institutional report or white paper",
		Required:    specs("author", "title", "type", "institution", "year"),
		Optional:    specs("number", "address", "month", "note"),
	},
	"patent": {
		Name:        "patent",
		Description: "patent or patent request",
		Required:    specs("author", "title", "number", "year"),
		Optional:    specs("holder", "type", "address", "month", "note"),
	},
	"online": {
		Name:        "online",
		Description: "inherently online source",
		Required:    specs("author|editor", "title", "year", "url"),
		Optional:    specs("urldate", "organization", "month", "note"),
	},
	"unpublished": {
		Name:        "unpublished",
		Description: "work not formally published",
		Required:    specs("author", "title", "note"),
		Optional:    specs("month", "year"),
	},
	"periodical": {
		Name:        "periodical",
		Description: "whole issue of a periodical",
		Required:    specs("title", "year"),
		Optional:    specs("editor", "volume|number", "series", "month", "note"),
	},
	"misc": {
		Name:        "misc",
		Description: "last resort (check manual first!)",
		Required:    nil,
		Optional:    specs("author", "title", "howpublished", "month", "year", "note"),
	},
}

// fieldRegistry maps every recognized field name to its description.
// Membership drives the free-text tokenizer: a "key = value" candidate whose
// key is not registered is treated as a line wrap of the previous field.
var fieldRegistry = map[string]string{
	// individuals
	"author":       "author(s) of title",
	"authors":      "author(s) of title, authortype specifies kind",
	"bookauthor":   "author(s) of booktitle",
	"editor":       "editor(s), editortype specifies role",
	"editors":      "editor(s), editortype specifies role",
	"editora":      "secondary editor(s)",
	"editorb":      "secondary editor(s)",
	"editorc":      "secondary editor(s)",
	"afterword":    "author(s) of afterword",
	"annotator":    "author(s) of annotations",
	"commentator":  "author(s) of commentary",
	"foreword":     "author(s) of foreword",
	"introduction": "author(s) of introduction",
	"translator":   "translator(s) of (book)title",
	"holder":       "of patent",
	// organizations
	"institution":  "university or similar",
	"organization": "manual/website publisher or event sponsor",
	"publisher":    "publisher(s)",
	"school":       "degree-granting institution",
	// titles
	"title":        "title",
	"indextitle":   "if different from title",
	"booktitle":    "title of book",
	"maintitle":    "title of multi-volume book",
	"journal":      "journal name",
	"journaltitle": "journal name",
	"issuetitle":   "title of journal special issue",
	"eventtitle":   "title of conference or event",
	"reprinttitle": "title of a reprint of the work",
	"series":       "publication series",
	// volumes & versions
	"volume":   "volume of journal or multi-volume book",
	"number":   "numbered issue of journal or book in series",
	"part":     "number of physical part of logical volume",
	"issue":    "non-number issue of journal",
	"volumes":  "number of volumes for multi-volume work",
	"edition":  "as integer rather than ordinal",
	"version":  "revision number for software or manual",
	"pubstate": "publication state",
	"chapter":  "chapter number",
	// pages
	"pages":      "page list or range",
	"pagetotal":  "total number of pages",
	"pagination": "pagination format",
	// dates
	"date":      "publication date as yyyy-mm-dd",
	"eventdate": "conference or event date as yyyy-mm-dd",
	"urldate":   "access date for url as yyyy-mm-dd",
	"year":      "publication year",
	"month":     "publication month",
	// places
	"location": "or address, where published",
	"address":  "where published",
	"venue":    "of event",
	// digital
	"url":           "URL",
	"doi":           "Digital Object Identifier",
	"eid":           "electronic identifier of @article",
	"eprint":        "archive-specific electronic identifier",
	"eprinttype":    "type of identifier",
	"eprintclass":   "further specification of eprint",
	"archiveprefix": "archive of eprint",
	"primaryclass":  "primary class of eprint",
	// types
	"type":         "of @manual, @patent, @report or @thesis",
	"entrysubtype": "for finer-grained specification of type",
	// misc.
	"addendum":     "miscellaneous data printed at end of entry",
	"note":         "miscellaneous data printed within entry",
	"howpublished": "non-standard publication details",
	// international standards
	"isan": "International Standard Audiovisual Number",
	"isbn": "International Standard Book Number",
	"ismn": "International Standard Music Number",
	"isrn": "International Standard Technical Report Number",
	"issn": "International Standard Serial Number",
	"iswc": "International Standard Work Code",
	// labels
	"label":     "fall-back label",
	"shorthand": "special designator, overrides label in citations",
	// unclassified
	"language":   "language of work",
	"abstract":   "record of work's abstract",
	"annotation": "for annotated bibliographies",
	"file":       "local link",
	"library":    "library name, call number or similar",
	"keywords":   "separated list of keywords",
	"crossref":   "another entry key",
	"xref":       "another entry key",
	"langid":     "language identifier",
	"key":        "sorting key",
	"copyright":  "copyright statement",
}

// IsValidEntryType reports whether name (case insensitive) is in the schema.
func IsValidEntryType(name string) bool {
	_, ok := entryTypes[strings.ToLower(name)]
	return ok
}

// IsRecognizedField reports whether name (case insensitive) is a registered field.
func IsRecognizedField(name string) bool {
	_, ok := fieldRegistry[strings.ToLower(name)]
	return ok
}

// RequiredFields returns the required field specs for an entry type, or nil
// if the type is unknown.
func RequiredFields(entryType string) []FieldSpec {
	return entryTypes[strings.ToLower(entryType)].Required
}

// OptionalFields returns the optional field specs for an entry type, or nil
// if the type is unknown.
func OptionalFields(entryType string) []FieldSpec {
	return entryTypes[strings.ToLower(entryType)].Optional
}

// EntryTypes returns the schema entry-type names, sorted.
func EntryTypes() []string {
	names := make([]string, 0, len(entryTypes))
	for n := range entryTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FieldNames returns the registered field names, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(fieldRegistry))
	for n := range fieldRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns the description of an entry type or field name.
func Describe(name string) (string, error) {
	name = strings.ToLower(name)
	if et, ok := entryTypes[name]; ok {
		return et.Description, nil
	}
	if desc, ok := fieldRegistry[name]; ok {
		return desc, nil
	}
	return "", fmt.Errorf("%q is not a valid entry type or field name", name)
}
