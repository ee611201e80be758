// Package source defines the adapter contract every input schema
// implements and the schema-shaped intermediate form adapters produce.
//
// An adapter only extracts: it copies what a document says into an
// Intermediate without deciding defaults or resolving heuristics. The
// crosswalk driver normalizes the Intermediate into a record.Record.
package source

import (
	"github.com/c360studio/geocrosswalk/bands"
	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/spatial"
)

// Intermediate is one source document reduced to the concepts the
// crosswalk understands, still in the source's own encodings.
type Intermediate struct {
	// Schema is the name of the adapter that produced this value.
	Schema string

	Identity Identity
	Spatial  Spatial
	Temporal Temporal

	SpatialResolution  Quantity
	TemporalResolution Quantity

	Bands Bands

	// Assets are distribution entries in declaration order. An asset with
	// an include pattern is a file set.
	Assets []distribution.Asset

	RecordSets []record.RecordSet
	Keywords   []string
	Creators   []record.Agent
	References []record.Reference

	Platform         string
	Instrument       string
	SamplingStrategy string
	Live             record.Optional[bool]

	Policy Policy
}

// Identity carries identifying metadata as the source wrote it. Dates are
// unparsed.
type Identity struct {
	ID             string
	Name           string
	Description    string
	Version        string
	License        string
	Citation       string
	URL            string
	AlternateNames []string
	Created        string
	Published      string
	Modified       string
}

// Spatial carries every spatial representation a source offered. The
// normalizer uses the first usable one in field order: BBox, BoxText,
// Ring, then the union of Boxes.
type Spatial struct {
	// Order is the axis order of BBox, BoxText and Boxes. Adapters must
	// set it whenever they set one of those.
	Order   spatial.AxisOrder
	BBox    []float64
	BoxText string
	Ring    []spatial.Point
	Boxes   [][]float64

	// CRSCode is an already coded reference ("EPSG:4326", "4326").
	CRSCode string
	// CRSText is a free-text geometry description scanned heuristically.
	CRSText string

	Description string
}

// Temporal carries the temporal extent in whichever shape the source used.
// Range wins over Start and End, which win over Instants.
type Temporal struct {
	Range    string
	Start    string
	End      string
	Instants []string
}

// Quantity is a resolution. Value and Unit win over Text, which is split
// into value and unit when it reads like "10m".
type Quantity struct {
	Value record.Optional[float64]
	Unit  string
	Text  string
}

// IsZero reports whether the quantity carries nothing.
func (q Quantity) IsZero() bool {
	return !q.Value.IsSet() && q.Unit == "" && q.Text == ""
}

// Bands lists band sources in the order they are registered: explicit
// descriptors, then instrument channels, then array shapes.
type Bands struct {
	Explicit []bands.Descriptor

	// Table selects an instrument table by ID. When empty the table is
	// resolved from the record's platform and instrument.
	Table    string
	Channels []string
	// WholeTable adds every channel of the table when Channels is empty.
	WholeTable bool

	Shapes []Shape
}

// IsZero reports whether no band source was given.
func (b Bands) IsZero() bool {
	return len(b.Explicit) == 0 && b.Table == "" && len(b.Channels) == 0 && !b.WholeTable && len(b.Shapes) == 0
}

// Shape is an array variable whose band count is inferred.
type Shape struct {
	Name        string
	Shape       []int
	Description string
}

// Policy holds adapter-level defaults the normalizer applies.
type Policy struct {
	// DefaultExtent replaces a missing spatial extent and is reported as
	// extent_defaulted.
	DefaultExtent record.Optional[record.BBox]
	// DefaultCRS replaces a missing reference system.
	DefaultCRS record.CRS
}
