// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Alignment controls the whitespace padding of field names when rendering.
type Alignment string

const (
	// AlignMiddle right-aligns field names so the "=" signs share a column.
	AlignMiddle Alignment = "middle"
	// AlignLeft emits field names with a plain two-space indent.
	AlignLeft Alignment = "left"
	// AlignLeftMiddle left-aligns names and pads after them so the "="
	// signs share a column.
	AlignLeftMiddle Alignment = "left-middle"
)

// ParseAlignment validates an alignment name. "left_middle" is accepted as
// an alias for "left-middle". Matching is case insensitive.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(s) {
	case "", string(AlignMiddle):
		return AlignMiddle, nil
	case string(AlignLeft):
		return AlignLeft, nil
	case string(AlignLeftMiddle), "left_middle":
		return AlignLeftMiddle, nil
	default:
		return "", fmt.Errorf("align must be one of [middle left left-middle], got %q", s)
	}
}

// Field is one name/value pair of a record. DoubleBraced marks values that
// were wrapped in two layers of grouping braces in the source; the extra
// layer is re-emitted on render so brace-protected content round-trips.
type Field struct {
	Name         string
	Value        string
	DoubleBraced bool
}

// DefaultStrictFields are the fields compared by strict equality.
var DefaultStrictFields = []string{"title", "author"}

// Record is a normalized bibliography entry. Field order is insertion order
// and is observable in the rendered output. Records are immutable after
// construction.
type Record struct {
	identifier   string
	entryType    string
	label        string
	fields       []Field
	index        map[string]int
	align        Alignment
	strictFields []string
}

// Option configures optional Record construction behavior.
type Option func(*Record)

// WithAlign sets the rendering alignment (default middle).
func WithAlign(a Alignment) Option {
	return func(r *Record) { r.align = a }
}

// WithStrictFields overrides the fields compared by strict equality.
func WithStrictFields(fields []string) Option {
	return func(r *Record) {
		r.strictFields = make([]string, 0, len(fields))
		for _, f := range fields {
			r.strictFields = append(r.strictFields, strings.ToLower(f))
		}
	}
}

// NewRecord constructs a validated record. The entry type must exist in the
// schema and field names are folded to lowercase; a duplicate field name
// keeps its first position and takes the later value. An empty label
// defaults to the identifier.
func NewRecord(identifier, entryType, label string, fields []Field, opts ...Option) (*Record, error) {
	entryType = strings.ToLower(strings.TrimSpace(entryType))
	if !IsValidEntryType(entryType) {
		return nil, fmt.Errorf("%q is not a valid entry type", entryType)
	}
	if label == "" {
		label = identifier
	}
	if identifier == "" {
		identifier = label
	}

	r := &Record{
		identifier:   identifier,
		entryType:    entryType,
		label:        label,
		index:        make(map[string]int, len(fields)),
		align:        AlignMiddle,
		strictFields: DefaultStrictFields,
	}
	for _, f := range fields {
		name := strings.ToLower(strings.TrimSpace(f.Name))
		if name == "" {
			continue
		}
		if i, ok := r.index[name]; ok {
			r.fields[i].Value = f.Value
			r.fields[i].DoubleBraced = f.DoubleBraced
			continue
		}
		r.index[name] = len(r.fields)
		r.fields = append(r.fields, Field{Name: name, Value: f.Value, DoubleBraced: f.DoubleBraced})
	}

	for _, opt := range opts {
		opt(r)
	}
	if _, err := ParseAlignment(string(r.align)); err != nil {
		return nil, err
	}
	return r, nil
}

// Identifier returns the original lookup key.
func (r *Record) Identifier() string { return r.identifier }

// EntryType returns the lowercase schema-valid entry type.
func (r *Record) EntryType() string { return r.entryType }

// Label returns the citation key used in the rendered header.
func (r *Record) Label() string { return r.label }

// Align returns the rendering alignment.
func (r *Record) Align() Alignment { return r.align }

// Fields returns the fields in insertion order. The slice is a copy.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Get returns the value of a field by case-insensitive name.
func (r *Record) Get(name string) (string, bool) {
	i, ok := r.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return r.fields[i].Value, true
}

// Title returns the title field, or "".
func (r *Record) Title() string {
	v, _ := r.Get("title")
	return v
}

// Author returns the author field, or "".
func (r *Record) Author() string {
	v, _ := r.Get("author")
	return v
}

// DOI returns the doi field, or "".
func (r *Record) DOI() string {
	v, _ := r.Get("doi")
	return v
}

// CheckRequiredFields validates the record against its entry type's
// required-field specs, returning an error that names every unsatisfied
// spec. Absent specs aggregate into one missing-fields error; other
// violations (an exclusive alternative with both sides present) keep
// their own wording.
func (r *Record) CheckRequiredFields() error {
	has := func(name string) bool {
		_, ok := r.index[name]
		return ok
	}
	var missing []string
	var errs []error
	for _, spec := range RequiredFields(r.entryType) {
		err := spec.SatisfiedBy(has)
		switch {
		case err == nil:
		case errors.Is(err, ErrFieldMissing):
			missing = append(missing, spec.String())
		default:
			errs = append(errs, err)
		}
	}
	switch {
	case len(missing) == 1:
		errs = append([]error{fmt.Errorf("required field %q is missing", missing[0])}, errs...)
	case len(missing) > 1:
		errs = append([]error{fmt.Errorf("required field(s) %q is (are) missing", strings.Join(missing, ", "))}, errs...)
	}
	return errors.Join(errs...)
}

// String renders the record as a BibTeX block:
//
//	@type{label,
//	  field = {value},
//	  field = {value}
//	}
//
// Field names are padded per the alignment policy. Double-braced fields
// render with the extra brace layer restored.
func (r *Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", r.entryType, r.label)

	longest := 0
	for _, f := range r.fields {
		if len(f.Name) > longest {
			longest = len(f.Name)
		}
	}

	for i, f := range r.fields {
		var name string
		switch r.align {
		case AlignMiddle:
			name = strings.Repeat(" ", longest-len(f.Name)) + f.Name
		case AlignLeftMiddle:
			name = f.Name + strings.Repeat(" ", longest-len(f.Name))
		default:
			name = f.Name
		}
		value := f.Value
		if f.DoubleBraced {
			value = "{{" + value + "}}"
		}
		fmt.Fprintf(&b, "  %s = {%s}", name, value)
		if i < len(r.fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// Equal is the two-tier record equality test. Records of different entry
// types are never equal. Non-strict equality compares labels. Strict
// equality compares the configured strict fields: titles are compared after
// lowercasing, whitespace collapsing and punctuation stripping; authors by
// the surname token of the first listed author. A strict field present in
// only one record makes them unequal; if neither record carries any strict
// field the comparison falls back to labels. When the two records configure
// different strict-field sets each direction uses its own set and both must
// agree; a warning is printed since the comparison basis is ambiguous.
func (r *Record) Equal(other *Record, strict bool) bool {
	if other == nil || r.entryType != other.entryType {
		return false
	}
	if !strict {
		return r.label == other.label
	}
	if !sameStringSet(r.strictFields, other.strictFields) {
		fmt.Fprintf(os.Stderr, "warning: strict comparison of %q and %q uses different strict-field sets\n",
			r.label, other.label)
	}
	return r.strictEqualOneWay(other) && other.strictEqualOneWay(r)
}

// strictEqualOneWay compares r to other over r's own strict-field set.
func (r *Record) strictEqualOneWay(other *Record) bool {
	compared := false
	for _, name := range r.strictFields {
		mine, okMine := r.Get(name)
		theirs, okTheirs := other.Get(name)
		if okMine != okTheirs {
			return false
		}
		if !okMine {
			continue
		}
		compared = true
		switch name {
		case "title":
			if normalizeTitle(mine) != normalizeTitle(theirs) {
				return false
			}
		case "author":
			if firstAuthorSurname(mine) != firstAuthorSurname(theirs) {
				return false
			}
		default:
			if !strings.EqualFold(strings.TrimSpace(mine), strings.TrimSpace(theirs)) {
				return false
			}
		}
	}
	if !compared {
		return r.label == other.label
	}
	return true
}

// normalizeTitle lowercases, collapses whitespace runs, and strips all
// punctuation so cosmetic differences do not defeat matching.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// firstAuthorSurname extracts the final non-trivial token of the first
// listed author. This assumes "Firstname Lastname"-ordered single names;
// "Lastname, Firstname" and multi-word surnames are not handled.
func firstAuthorSurname(author string) string {
	first := author
	if i := strings.Index(author, " and "); i >= 0 {
		first = author[:i]
	}
	tokens := strings.Fields(first)
	for i := len(tokens) - 1; i >= 0; i-- {
		t := strings.ToLower(strings.TrimFunc(tokens[i], unicode.IsPunct))
		if t != "" {
			return t
		}
	}
	return ""
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			return false
		}
	}
	return true
}
