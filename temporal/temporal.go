// Package temporal parses timestamps and ranges into canonical intervals.
package temporal

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/c360studio/geocrosswalk/record"
)

var layouts = []struct {
	layout    string
	precision record.Precision
	zoned     bool
}{
	{time.RFC3339Nano, record.PrecisionDateTime, true},
	{"2006-01-02T15:04Z07:00", record.PrecisionDateTime, true},
	{"2006-01-02T15:04:05.999999999", record.PrecisionDateTime, false},
	{"2006-01-02T15:04", record.PrecisionDateTime, false},
	{"2006-01-02 15:04:05Z07:00", record.PrecisionDateTime, true},
	{"2006-01-02 15:04:05.999999999", record.PrecisionDateTime, false},
	{"2006-01-02", record.PrecisionDate, false},
}

// Parse reads an ISO-8601 date or date-time. Unzoned date-times are
// interpreted as UTC but remember they carried no zone.
func Parse(value string) record.Optional[record.Timestamp] {
	value = strings.TrimSpace(value)
	if value == "" || value == ".." {
		return record.None[record.Timestamp]()
	}
	// Lowercase "z" and "t" appear in some catalogs.
	value = strings.Replace(value, "t", "T", 1)
	if strings.HasSuffix(value, "z") {
		value = value[:len(value)-1] + "Z"
	}
	for _, l := range layouts {
		t, err := time.Parse(l.layout, value)
		if err != nil {
			continue
		}
		return record.Some(record.Timestamp{Time: t, Precision: l.precision, Zoned: l.zoned})
	}
	return record.None[record.Timestamp]()
}

// Format renders a timestamp back at the precision it was parsed with.
func Format(ts record.Timestamp) string {
	if ts.Precision == record.PrecisionDate {
		return ts.Time.Format("2006-01-02")
	}
	if !ts.Zoned {
		return ts.Time.Format("2006-01-02T15:04:05.999999999")
	}
	if ts.Time.Location() == time.UTC {
		return ts.Time.Format("2006-01-02T15:04:05.999999999Z")
	}
	return ts.Time.Format(time.RFC3339Nano)
}

// Result is the outcome of building an interval. Warnings report inverted
// or unparsable bounds.
type Result struct {
	Interval record.Optional[record.Interval]
	Warnings record.Warnings
	// Inverted is set when the source declared a start after its end.
	Inverted bool
}

// FromBounds builds an interval from two separately stored bounds. A
// missing end yields an instant and a missing start yields absent.
func FromBounds(start, end string) Result {
	var res Result
	s := Parse(start)
	e := Parse(end)
	if strings.TrimSpace(start) != "" && start != ".." && !s.IsSet() {
		res.Warnings = append(res.Warnings, record.Warn(record.CodeTimeUnparsed, "temporal.start", "unparsable start %q", start))
	}
	if strings.TrimSpace(end) != "" && end != ".." && !e.IsSet() {
		res.Warnings = append(res.Warnings, record.Warn(record.CodeTimeUnparsed, "temporal.end", "unparsable end %q", end))
	}
	st, hasStart := s.Get()
	if !hasStart {
		return res
	}
	et, hasEnd := e.Get()
	if hasEnd && st.Time.After(et.Time) {
		res.Inverted = true
		res.Warnings = append(res.Warnings, record.Warn(record.CodeTemporalInverted, "temporal",
			"start %s is after end %s", Format(st), Format(et)))
		return res
	}
	res.Interval = record.Some(record.Interval{Start: s, End: e})
	return res
}

// ParseRange reads a "start/end" range. A value without a slash is an
// instant.
func ParseRange(value string) Result {
	start, end, found := strings.Cut(value, "/")
	if !found {
		return FromBounds(value, "")
	}
	return FromBounds(start, end)
}

// Aggregate returns the min/max extent over every parsable value. The
// result does not depend on input order.
func Aggregate(values []string) record.Optional[record.Interval] {
	var lo, hi record.Timestamp
	n := 0
	for _, v := range values {
		ts, ok := Parse(v).Get()
		if !ok {
			continue
		}
		if n == 0 || ts.Time.Before(lo.Time) {
			lo = ts
		}
		if n == 0 || ts.Time.After(hi.Time) {
			hi = ts
		}
		n++
	}
	switch n {
	case 0:
		return record.None[record.Interval]()
	case 1:
		return record.Some(record.Interval{Start: record.Some(lo)})
	}
	return record.Some(record.Interval{Start: record.Some(lo), End: record.Some(hi)})
}

var compactStamp = regexp.MustCompile(`(\d{8})_(\d{4})`)

// FromCompactFilename reads a YYYYMMDD_HHMM stamp embedded in a file name.
func FromCompactFilename(name string) record.Optional[record.Timestamp] {
	m := compactStamp.FindStringSubmatch(path.Base(name))
	if m == nil {
		return record.None[record.Timestamp]()
	}
	t, err := time.Parse("20060102_1504", m[1]+"_"+m[2])
	if err != nil {
		return record.None[record.Timestamp]()
	}
	return record.Some(record.Timestamp{Time: t, Precision: record.PrecisionDateTime, Zoned: true})
}

// Midpoint returns the instant halfway through an interval, or its start
// for an instant.
func Midpoint(iv record.Interval) record.Optional[record.Timestamp] {
	st, ok := iv.Start.Get()
	if !ok {
		return record.None[record.Timestamp]()
	}
	et, ok := iv.End.Get()
	if !ok {
		return record.Some(st)
	}
	mid := st.Time.Add(et.Time.Sub(st.Time) / 2)
	return record.Some(record.Timestamp{Time: mid.UTC(), Precision: record.PrecisionDateTime, Zoned: true})
}
