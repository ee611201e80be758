package crosswalk

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/geocrosswalk/bands"
	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/instrument"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
	"github.com/c360studio/geocrosswalk/temporal"
)

// Normalizer assembles canonical records from intermediates.
type Normalizer struct {
	Catalog *instrument.Catalog
	Logger  *slog.Logger
}

// Normalize builds the record for in. Heuristic and default decisions are
// returned as warnings. Fatal problems, such as an inverted interval or a
// file set without its container, are returned as record.Issues. The
// record is returned unsealed.
func (n Normalizer) Normalize(in *source.Intermediate) (record.Record, record.Warnings, error) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	catalog := n.Catalog
	if catalog == nil {
		catalog = instrument.Global()
	}

	var (
		rec      record.Record
		warnings record.Warnings
		issues   record.Issues
	)

	ws := identity(in, &rec)
	warnings = append(warnings, ws...)
	warnings = append(warnings, normalizeSpatial(in, &rec)...)

	res := normalizeTemporal(in.Temporal)
	warnings = append(warnings, res.Warnings...)
	if res.Inverted {
		issues = append(issues, &record.InvariantViolation{
			Rule:    record.RuleTemporalOrder,
			Path:    "temporal",
			Message: "source interval starts after it ends",
		})
	}
	rec.Temporal = res.Interval

	rec.SpatialResolution = quantity(in.SpatialResolution)
	rec.TemporalResolution = quantity(in.TemporalResolution)

	if in.Platform != "" || in.Instrument != "" {
		rec.Instrument = record.Some(record.Instrument{Platform: in.Platform, Instrument: in.Instrument})
	}
	rec.SamplingStrategy = in.SamplingStrategy
	rec.Live = in.Live

	bs, ws := normalizeBands(in, catalog)
	rec.Bands = bs
	warnings = append(warnings, ws...)

	b := distribution.NewBuilder(logger)
	for i, a := range in.Assets {
		var err error
		if a.Includes != "" || a.ContainedIn != "" {
			_, err = b.AddFileSet(a)
		} else {
			_, err = b.AddFileObject(a)
		}
		if err != nil {
			issues = append(issues, assetViolation(i, err))
		}
	}
	rec.Distribution = b.Entries()
	warnings = append(warnings, b.Warnings()...)

	rec.RecordSets = cloneRecordSets(in.RecordSets)
	rec.Keywords = trimAll(in.Keywords)
	rec.Creators = append([]record.Agent(nil), in.Creators...)
	rec.References = append([]record.Reference(nil), in.References...)
	rec.Dedupe()

	issues = append(issues, record.Validate(&rec)...)
	if len(issues) > 0 {
		return rec, warnings, issues
	}
	return rec, warnings, nil
}

func identity(in *source.Intermediate, rec *record.Record) record.Warnings {
	var warnings record.Warnings
	date := func(path, value string) record.Optional[record.Timestamp] {
		ts := temporal.Parse(value)
		if !ts.IsSet() && strings.TrimSpace(value) != "" {
			warnings = append(warnings, record.Warn(record.CodeTimeUnparsed, path, "unparsable date %q", value))
		}
		return ts
	}
	id := in.Identity
	rec.Identity = record.Identity{
		ID:             strings.TrimSpace(id.ID),
		Name:           strings.TrimSpace(id.Name),
		Description:    id.Description,
		Version:        id.Version,
		License:        id.License,
		Citation:       id.Citation,
		URL:            id.URL,
		AlternateNames: trimAll(id.AlternateNames),
		Created:        date("identity.created", id.Created),
		Published:      date("identity.published", id.Published),
		Modified:       date("identity.modified", id.Modified),
	}
	if rec.Identity.Name == "" && rec.Identity.ID != "" {
		rec.Identity.Name = rec.Identity.ID
		warnings = append(warnings, record.Warn(record.CodeFieldMissing, "identity.name", "no name, using the identifier"))
	}
	return warnings
}

// normalizeSpatial takes the first usable extent in the order BBox,
// BoxText, Ring, Boxes, then the adapter's default.
func normalizeSpatial(in *source.Intermediate, rec *record.Record) record.Warnings {
	var warnings record.Warnings
	sp := in.Spatial
	box := record.None[record.BBox]()
	if len(sp.BBox) > 0 {
		if box = spatial.FromBBox(sp.BBox, sp.Order); !box.IsSet() {
			warnings = append(warnings, record.Warn(record.CodeFieldMissing, "spatial.bbox", "malformed bounding box %v", sp.BBox))
		}
	}
	if !box.IsSet() && sp.BoxText != "" {
		if box = spatial.ParseBox(sp.BoxText, sp.Order); !box.IsSet() {
			warnings = append(warnings, record.Warn(record.CodeFieldMissing, "spatial.box", "malformed box %q", sp.BoxText))
		}
	}
	if !box.IsSet() && len(sp.Ring) > 0 {
		box = spatial.FromRing(sp.Ring)
	}
	if !box.IsSet() && len(sp.Boxes) > 0 {
		parts := make([]record.Optional[record.BBox], len(sp.Boxes))
		for i, b := range sp.Boxes {
			parts[i] = spatial.FromBBox(b, sp.Order)
		}
		box = spatial.Merge(parts...)
	}
	if !box.IsSet() {
		if def, ok := in.Policy.DefaultExtent.Get(); ok {
			box = record.Some(def)
			warnings = append(warnings, record.Warn(record.CodeExtentDefaulted, "spatial",
				"no usable extent, using %s", spatial.FormatBox(def, spatial.SWNE)))
		}
	}
	rec.Spatial.Box = box
	rec.Spatial.Description = sp.Description

	switch {
	case strings.TrimSpace(sp.CRSCode) != "":
		rec.Spatial.CRS = spatial.ParseCRS(sp.CRSCode)
	case strings.TrimSpace(sp.CRSText) != "":
		crs, ok := spatial.ExtractCRS(sp.CRSText)
		if ok {
			rec.Spatial.CRS = crs
		} else {
			warnings = append(warnings, record.Warn(record.CodeCRSUnparsed, "spatial.crs",
				"no reference system recognized in %q", abbreviate(sp.CRSText, 60)))
		}
	}
	if rec.Spatial.CRS.Kind == record.CRSNone {
		rec.Spatial.CRS = in.Policy.DefaultCRS
	}
	return warnings
}

// normalizeTemporal takes a range over separate bounds over a list of
// instants.
func normalizeTemporal(t source.Temporal) temporal.Result {
	switch {
	case t.Range != "":
		return temporal.ParseRange(t.Range)
	case t.Start != "" || t.End != "":
		return temporal.FromBounds(t.Start, t.End)
	case len(t.Instants) > 0:
		return temporal.Result{Interval: temporal.Aggregate(t.Instants)}
	}
	return temporal.Result{}
}

// quantity keeps a numeric value with its unit. Text that reads as a
// number and a unit is split; anything else stays textual.
func quantity(q source.Quantity) record.Optional[record.Quantity] {
	if v, ok := q.Value.Get(); ok {
		return record.Some(record.Quantity{Value: v, Unit: q.Unit})
	}
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return record.None[record.Quantity]()
	}
	if split, ok := bands.SplitValueUnit(text); ok && split.Unit != "" {
		return record.Some(split)
	}
	return record.Some(record.Quantity{Text: text})
}

// normalizeBands registers explicit descriptors, then instrument channels,
// then array shapes.
func normalizeBands(in *source.Intermediate, catalog *instrument.Catalog) ([]record.Band, record.Warnings) {
	reg := bands.NewRegistry()
	var warnings record.Warnings
	src := in.Bands
	reg.AddExplicit(src.Explicit)

	if len(src.Channels) > 0 || src.WholeTable {
		var (
			table *instrument.Table
			ok    bool
		)
		if src.Table != "" {
			table, ok = catalog.Get(src.Table)
		} else {
			table, ok = catalog.Resolve(in.Platform, in.Instrument)
		}
		switch {
		case ok:
			reg.AddFromInstrument(table, src.Channels)
		case len(src.Channels) > 0:
			warnings = append(warnings, record.Warn(record.CodeFieldMissing, "bands",
				"no instrument table for %q, adding channels by name", firstNonEmpty(src.Table, in.Instrument, in.Platform)))
			for _, ch := range src.Channels {
				reg.Add(record.Band{Name: ch})
			}
		}
	}

	for _, s := range src.Shapes {
		layout, ws := bands.InferFromShape(s.Name, s.Shape)
		warnings = append(warnings, ws...)
		reg.AddLayout(layout, s.Description)
	}
	warnings = append(warnings, reg.Warnings()...)
	return reg.Bands(), warnings
}

func assetViolation(i int, err error) *record.InvariantViolation {
	rule := record.RuleUniqueEntryID
	switch {
	case errors.Is(err, distribution.ErrDanglingContainer):
		rule = record.RuleContainer
	case errors.Is(err, distribution.ErrEmptyIncludes):
		rule = record.RuleIncludes
	}
	return &record.InvariantViolation{Rule: rule, Path: fmt.Sprintf("distribution[%d]", i), Message: err.Error()}
}

func cloneRecordSets(in []record.RecordSet) []record.RecordSet {
	if in == nil {
		return nil
	}
	out := make([]record.RecordSet, len(in))
	for i, rs := range in {
		out[i] = rs
		out[i].Fields = make([]record.Field, len(rs.Fields))
		for j, f := range rs.Fields {
			if f.Bands != nil {
				f.Bands = bands.Config(f.Bands.Names)
			}
			out[i].Fields[j] = f
		}
	}
	return out
}

func trimAll(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
