package record

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a warning. Every heuristic or defaulting step uses one.
type Code string

// Warning codes.
const (
	CodeChecksumMissing   Code = "checksum_missing"
	CodeBandAxisAmbiguous Code = "band_axis_ambiguous"
	CodeCRSUnparsed       Code = "crs_unparsed"
	CodeFormatFallback    Code = "format_fallback"
	CodeTemporalInverted  Code = "temporal_inverted"
	CodeExtentDefaulted   Code = "extent_defaulted"
	CodeBandRenamed       Code = "band_renamed"
	CodeFieldMissing      Code = "field_missing"
	CodeUnitUnparsed      Code = "unit_unparsed"
	CodeUnmappedField     Code = "unmapped_field"
	CodeTimeUnparsed      Code = "time_unparsed"
)

// Warning is a non-fatal note. Warnings accumulate on a run and never stop it.
type Warning struct {
	Code    Code
	Path    string
	Message string
}

// Warn builds a Warning.
func Warn(code Code, path, format string, args ...any) Warning {
	return Warning{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) Error() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s at %s: %s", w.Code, w.Path, w.Message)
}

// Warnings is an ordered list of warnings.
type Warnings []Warning

// Count returns how many warnings carry code.
func (ws Warnings) Count(code Code) int {
	n := 0
	for _, w := range ws {
		if w.Code == code {
			n++
		}
	}
	return n
}

// Has reports whether any warning carries code.
func (ws Warnings) Has(code Code) bool {
	return ws.Count(code) > 0
}

// Codes returns the warning codes in order.
func (ws Warnings) Codes() []Code {
	out := make([]Code, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// ShapeError means the source document lacks the structure its schema
// requires. It is fatal for the run.
type ShapeError struct {
	Schema  string
	Path    string
	Message string
	Err     error
}

// NewShapeError builds a ShapeError.
func NewShapeError(schema, path, format string, args ...any) *ShapeError {
	return &ShapeError{Schema: schema, Path: path, Message: fmt.Sprintf(format, args...)}
}

func (e *ShapeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Schema)
	b.WriteString(": malformed input")
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ShapeError) Unwrap() error { return e.Err }

// InvariantViolation means the normalized record broke a canonical
// invariant. It is fatal before export.
type InvariantViolation struct {
	Rule    Rule
	Path    string
	Message string
}

func (v *InvariantViolation) Error() string {
	if v.Path == "" {
		return fmt.Sprintf("invariant %s violated: %s", v.Rule, v.Message)
	}
	return fmt.Sprintf("invariant %s violated at %s: %s", v.Rule, v.Path, v.Message)
}

// Rule names the canonical invariant a violation broke.
type Rule string

// Violation rule names.
const (
	RuleNameRequired     Rule = "name_required"
	RuleIDRequired       Rule = "id_required"
	RuleBBoxOrder        Rule = "bbox_order"
	RuleTemporalOrder    Rule = "temporal_order"
	RuleContainer        Rule = "fileset_container"
	RuleIncludes         Rule = "fileset_includes"
	RuleUniqueEntryID    Rule = "unique_entry_id"
	RuleUniqueBandName   Rule = "unique_band_name"
	RuleFieldSource      Rule = "field_source"
	RuleUniqueRecordID   Rule = "unique_record_id"
	RuleBandConfigTotals Rule = "band_config"
)

// Issues is a collection of fatal run errors that implements error.
type Issues []error

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].Error())
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Unwrap exposes the members to errors.Is and errors.As.
func (iss Issues) Unwrap() []error {
	return iss
}

// Violations returns the invariant violations in the collection.
func (iss Issues) Violations() []*InvariantViolation {
	var out []*InvariantViolation
	for _, err := range iss {
		var v *InvariantViolation
		if errors.As(err, &v) {
			out = append(out, v)
		}
	}
	return out
}

// AsIssues extracts Issues from an error.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
