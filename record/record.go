// Package record defines the canonical in-memory representation shared by
// every source adapter and exporter of the crosswalk.
//
// A Record is built once per crosswalk run, mutated only while the run is
// normalizing, and sealed before it is handed to exporters. Optional values
// use the Optional wrapper so that "missing" is always explicit.
package record

import "time"

// Precision records how much of a timestamp the source actually stated.
type Precision int

const (
	// PrecisionDateTime is a full date-time.
	PrecisionDateTime Precision = iota
	// PrecisionDate is a calendar date without a time of day.
	PrecisionDate
)

// Timestamp is a parsed instant together with the precision and zone
// information needed to render it back the way the source wrote it.
type Timestamp struct {
	Time      time.Time
	Precision Precision
	// Zoned is true when the source carried a zone designator (Z or offset).
	Zoned bool
}

// Identity holds the identifying metadata of a dataset.
type Identity struct {
	ID             string
	Name           string
	Description    string
	Version        string
	License        string
	Citation       string
	URL            string
	AlternateNames []string
	Created        Optional[Timestamp]
	Published      Optional[Timestamp]
	Modified       Optional[Timestamp]
}

// CRSKind discriminates the coordinate reference system descriptor.
type CRSKind int

const (
	// CRSNone means no reference system is known.
	CRSNone CRSKind = iota
	// CRSEPSG is an EPSG authority code.
	CRSEPSG
	// CRSText is a free-text description of a non-EPSG or projected system.
	CRSText
)

// CRS describes a coordinate reference system.
type CRS struct {
	Kind CRSKind
	Code int
	Text string
}

// BBox is a rectangular extent stored as south, west, north, east.
type BBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// Spatial is the spatial extent of a record.
type Spatial struct {
	Box Optional[BBox]
	CRS CRS
	// Description is a textual place description for sources that only
	// describe their coverage in words.
	Description string
}

// Interval is a temporal extent. An instant has only Start set.
type Interval struct {
	Start Optional[Timestamp]
	End   Optional[Timestamp]
}

// IsInstant reports whether the interval is a single instant.
func (i Interval) IsInstant() bool {
	return i.Start.IsSet() && !i.End.IsSet()
}

// Quantity is a numeric value with a free-text unit. Text carries the
// original rendering for values that are not a single number ("10-60m").
type Quantity struct {
	Value float64
	Unit  string
	Text  string
}

// IsTextual reports whether the quantity only has a textual rendering.
func (q Quantity) IsTextual() bool {
	return q.Text != "" && q.Value == 0 && q.Unit == ""
}

// Band is one named data channel.
type Band struct {
	Name        string
	Description string
	Center      Optional[Quantity]
	Bandwidth   Optional[Quantity]
	// Quantity tags non-spectral channels ("elevation", "slope").
	Quantity string
}

// BandConfig is an ordered list of channel names for one file or field.
type BandConfig struct {
	Names []string
}

// Total returns the number of channels.
func (c BandConfig) Total() int {
	return len(c.Names)
}

// EntryKind discriminates distribution entries.
type EntryKind int

const (
	// FileObject is a single addressable file.
	FileObject EntryKind = iota
	// FileSet is a pattern-matched collection of files inside a container.
	FileSet
)

func (k EntryKind) String() string {
	if k == FileSet {
		return "FileSet"
	}
	return "FileObject"
}

// Checksum is a content hash. Verified is false for the unavailable
// sentinel and for any placeholder a source supplied.
type Checksum struct {
	Algorithm string
	Value     string
	Verified  bool
}

// Entry is a distribution entry, either a FileObject or a FileSet.
type Entry struct {
	Kind           EntryKind
	ID             string
	Name           string
	Description    string
	ContentURL     string
	EncodingFormat string
	ContentSize    Optional[int64]

	// FileObject only.
	Checksum Checksum

	// FileSet only.
	ContainedIn string
	Includes    string

	// Bands overrides the dataset band order for this entry.
	Bands *BandConfig
}

// Extract describes how a field value is pulled out of its source.
type Extract struct {
	FileProperty string
	Column       string
}

// Field is one logical field a consumer extracts from the distribution.
type Field struct {
	ID          string
	Name        string
	Description string
	DataType    string
	// Source is the ID of the distribution entry the field reads from.
	Source  string
	Extract Extract
	Regex   string
	Bands   *BandConfig
}

// RecordSet groups fields. OrderingKey names the field that orders the
// records of a time series.
type RecordSet struct {
	ID          string
	Name        string
	Description string
	OrderingKey string
	Fields      []Field
}

// Agent is a creator or provider.
type Agent struct {
	Name string
	URL  string
}

// Reference is a related resource.
type Reference struct {
	Name           string
	URL            string
	EncodingFormat string
}

// Instrument names the observing platform and instrument.
type Instrument struct {
	Platform   string
	Instrument string
}

// Record is the canonical representation of one dataset, granule or time
// series.
type Record struct {
	Identity           Identity
	Spatial            Spatial
	Temporal           Optional[Interval]
	SpatialResolution  Optional[Quantity]
	TemporalResolution Optional[Quantity]
	Bands              []Band
	Distribution       []Entry
	RecordSets         []RecordSet
	Keywords           []string
	Creators           []Agent
	References         []Reference
	Instrument         Optional[Instrument]
	SamplingStrategy   string
	Live               Optional[bool]

	sealed bool
}

// Seal marks the record immutable. Exporters only ever see sealed records.
func (r *Record) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Record) Sealed() bool {
	return r.sealed
}

// Fields returns every field of every record set in declaration order.
func (r *Record) Fields() []Field {
	var out []Field
	for _, rs := range r.RecordSets {
		out = append(out, rs.Fields...)
	}
	return out
}

// Entry returns the distribution entry with the given ID.
func (r *Record) Entry(id string) (Entry, bool) {
	for _, e := range r.Distribution {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// BandNames returns the dataset band names in canonical order.
func (r *Record) BandNames() []string {
	names := make([]string, 0, len(r.Bands))
	for _, b := range r.Bands {
		names = append(names, b.Name)
	}
	return names
}

// Clone returns a deep copy that shares no slices with r.
func (r Record) Clone() Record {
	out := r
	out.Identity.AlternateNames = cloneStrings(r.Identity.AlternateNames)
	out.Bands = append([]Band(nil), r.Bands...)
	out.Distribution = make([]Entry, len(r.Distribution))
	for i, e := range r.Distribution {
		e.Bands = cloneBandConfig(e.Bands)
		out.Distribution[i] = e
	}
	out.RecordSets = make([]RecordSet, len(r.RecordSets))
	for i, rs := range r.RecordSets {
		fields := make([]Field, len(rs.Fields))
		for j, f := range rs.Fields {
			f.Bands = cloneBandConfig(f.Bands)
			fields[j] = f
		}
		rs.Fields = fields
		out.RecordSets[i] = rs
	}
	out.Keywords = cloneStrings(r.Keywords)
	out.Creators = append([]Agent(nil), r.Creators...)
	out.References = append([]Reference(nil), r.References...)
	if len(r.Distribution) == 0 {
		out.Distribution = nil
	}
	if len(r.RecordSets) == 0 {
		out.RecordSets = nil
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneBandConfig(c *BandConfig) *BandConfig {
	if c == nil {
		return nil
	}
	return &BandConfig{Names: cloneStrings(c.Names)}
}
