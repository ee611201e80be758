package record

import (
	"fmt"
	"strings"
)

// Validate checks the canonical invariants and returns every violation it
// finds. A nil result means the record may be sealed and exported.
func Validate(r *Record) Issues {
	var iss Issues
	add := func(rule Rule, path, format string, args ...any) {
		iss = append(iss, &InvariantViolation{Rule: rule, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(r.Identity.ID) == "" {
		add(RuleIDRequired, "identity.id", "record has no identifier")
	}
	if strings.TrimSpace(r.Identity.Name) == "" {
		add(RuleNameRequired, "identity.name", "record has no name")
	}

	if b, ok := r.Spatial.Box.Get(); ok {
		if b.South > b.North {
			add(RuleBBoxOrder, "spatial.box", "south %g is greater than north %g", b.South, b.North)
		}
		if b.West > b.East {
			add(RuleBBoxOrder, "spatial.box", "west %g is greater than east %g", b.West, b.East)
		}
	}

	if iv, ok := r.Temporal.Get(); ok {
		start, hasStart := iv.Start.Get()
		end, hasEnd := iv.End.Get()
		if hasStart && hasEnd && start.Time.After(end.Time) {
			add(RuleTemporalOrder, "temporal", "start %s is after end %s",
				start.Time.Format("2006-01-02T15:04:05Z07:00"), end.Time.Format("2006-01-02T15:04:05Z07:00"))
		}
		if !hasStart && hasEnd {
			add(RuleTemporalOrder, "temporal", "interval has an end but no start")
		}
	}

	seenBand := make(map[string]bool, len(r.Bands))
	for i, b := range r.Bands {
		if seenBand[b.Name] {
			add(RuleUniqueBandName, fmt.Sprintf("bands[%d]", i), "duplicate band name %q", b.Name)
		}
		seenBand[b.Name] = true
	}

	// Declared FileObjects so far, in order.
	objects := make(map[string]bool)
	entries := make(map[string]bool)
	for i, e := range r.Distribution {
		path := fmt.Sprintf("distribution[%d]", i)
		if entries[e.ID] {
			add(RuleUniqueEntryID, path, "duplicate distribution id %q", e.ID)
		}
		entries[e.ID] = true
		switch e.Kind {
		case FileObject:
			objects[e.ID] = true
		case FileSet:
			if !objects[e.ContainedIn] {
				add(RuleContainer, path, "file set %q references undeclared container %q", e.ID, e.ContainedIn)
			}
			if strings.TrimSpace(e.Includes) == "" {
				add(RuleIncludes, path, "file set %q has no include pattern", e.ID)
			}
		}
		if e.Bands != nil && len(e.Bands.Names) == 0 {
			add(RuleBandConfigTotals, path, "band configuration of %q lists no bands", e.ID)
		}
	}

	for i, rs := range r.RecordSets {
		for j, f := range rs.Fields {
			if f.Source != "" && !entries[f.Source] {
				add(RuleFieldSource, fmt.Sprintf("recordSet[%d].field[%d]", i, j),
					"field %q reads from unknown distribution entry %q", f.ID, f.Source)
			}
		}
	}

	return iss
}
