// Package spatial normalizes the spatial representations found in source
// documents into the canonical south, west, north, east bounding box.
//
// Every function here is policy free: malformed or empty input yields an
// absent result and never an error. Whether absence triggers a default
// extent is decided by the caller.
package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/c360studio/geocrosswalk/record"
)

// AxisOrder declares the ordering of a four-number bounding box.
type AxisOrder int

const (
	// WSEN is [west, south, east, north], the catalog item convention.
	WSEN AxisOrder = iota
	// SWNE is [south, west, north, east], the GeoShape box convention.
	SWNE
)

func (o AxisOrder) String() string {
	if o == SWNE {
		return "SWNE"
	}
	return "WSEN"
}

// Point is a single ring vertex.
type Point struct {
	Lon float64
	Lat float64
}

// World is the whole-Earth extent used as an adapter default.
var World = record.BBox{South: -90, West: -180, North: 90, East: 180}

// FromBBox builds a box from four numbers in the declared order. Six-number
// boxes carrying elevation are accepted in WSEN order. A box whose minimum
// exceeds its maximum on either axis is treated as malformed.
func FromBBox(values []float64, order AxisOrder) record.Optional[record.BBox] {
	if len(values) == 6 && order == WSEN {
		values = []float64{values[0], values[1], values[3], values[4]}
	}
	if len(values) != 4 {
		return record.None[record.BBox]()
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return record.None[record.BBox]()
		}
	}
	var b record.BBox
	switch order {
	case SWNE:
		b = record.BBox{South: values[0], West: values[1], North: values[2], East: values[3]}
	default:
		b = record.BBox{West: values[0], South: values[1], East: values[2], North: values[3]}
	}
	if b.South > b.North || b.West > b.East {
		return record.None[record.BBox]()
	}
	return record.Some(b)
}

// ParseBox parses a whitespace or comma separated box string.
func ParseBox(text string, order AxisOrder) record.Optional[record.BBox] {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(parts) != 4 {
		return record.None[record.BBox]()
	}
	values := make([]float64, 0, 4)
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return record.None[record.BBox]()
		}
		values = append(values, v)
	}
	return FromBBox(values, order)
}

// FromRing takes the planar min/max over the ring vertices.
func FromRing(points []Point) record.Optional[record.BBox] {
	if len(points) == 0 {
		return record.None[record.BBox]()
	}
	b := record.BBox{South: math.Inf(1), West: math.Inf(1), North: math.Inf(-1), East: math.Inf(-1)}
	for _, p := range points {
		if math.IsNaN(p.Lon) || math.IsNaN(p.Lat) || math.IsInf(p.Lon, 0) || math.IsInf(p.Lat, 0) {
			return record.None[record.BBox]()
		}
		b.West = math.Min(b.West, p.Lon)
		b.East = math.Max(b.East, p.Lon)
		b.South = math.Min(b.South, p.Lat)
		b.North = math.Max(b.North, p.Lat)
	}
	return record.Some(b)
}

// ToBBox re-expresses a box in the given order.
func ToBBox(b record.BBox, order AxisOrder) []float64 {
	if order == SWNE {
		return []float64{b.South, b.West, b.North, b.East}
	}
	return []float64{b.West, b.South, b.East, b.North}
}

// FormatBox renders a box as a space separated string in the given order.
func FormatBox(b record.BBox, order AxisOrder) string {
	vals := ToBBox(b, order)
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

// Merge returns the union of the present boxes.
func Merge(boxes ...record.Optional[record.BBox]) record.Optional[record.BBox] {
	var out record.BBox
	found := false
	for _, o := range boxes {
		b, ok := o.Get()
		if !ok {
			continue
		}
		if !found {
			out = b
			found = true
			continue
		}
		out.South = math.Min(out.South, b.South)
		out.West = math.Min(out.West, b.West)
		out.North = math.Max(out.North, b.North)
		out.East = math.Max(out.East, b.East)
	}
	if !found {
		return record.None[record.BBox]()
	}
	return record.Some(out)
}

// Polygon returns the closed counter-clockwise ring of the box as
// [lon, lat] pairs.
func Polygon(b record.BBox) [][]float64 {
	return [][]float64{
		{b.West, b.South},
		{b.East, b.South},
		{b.East, b.North},
		{b.West, b.North},
		{b.West, b.South},
	}
}

// WKT renders the box as a WKT POLYGON literal.
func WKT(b record.BBox) string {
	ring := Polygon(b)
	parts := make([]string, len(ring))
	for i, p := range ring {
		parts[i] = fmt.Sprintf("%s %s", strconv.FormatFloat(p[0], 'f', -1, 64), strconv.FormatFloat(p[1], 'f', -1, 64))
	}
	return "POLYGON((" + strings.Join(parts, ", ") + "))"
}
