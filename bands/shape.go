package bands

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/c360studio/geocrosswalk/record"
)

// Axis is the position of the band axis in an array shape.
type Axis int

const (
	// AxisNone means the array is a single band.
	AxisNone Axis = iota
	AxisFirst
	AxisMiddle
	AxisLast
)

func (a Axis) String() string {
	switch a {
	case AxisFirst:
		return "first"
	case AxisMiddle:
		return "middle"
	case AxisLast:
		return "last"
	default:
		return "none"
	}
}

// Layout is the band interpretation of an array shape.
type Layout struct {
	Axis  Axis
	Count int
	Names []string
}

// InferFromShape treats the axis strictly smaller than both others of a
// three dimensional shape as the band axis. Any other shape is one band.
// Multi-band names are "<name>_band<i>" counting from 1. A shape with a
// non-positive dimension is malformed and reads as one band.
func InferFromShape(name string, shape []int) (Layout, record.Warnings) {
	single := Layout{Axis: AxisNone, Count: 1, Names: []string{name}}
	for _, d := range shape {
		if d <= 0 {
			return single, record.Warnings{record.Warn(record.CodeBandAxisAmbiguous, name,
				"shape %v has a non-positive dimension, treating as one band", shape)}
		}
	}
	if len(shape) != 3 {
		return single, nil
	}
	axis := -1
	for i := range shape {
		j, k := (i+1)%3, (i+2)%3
		if shape[i] < shape[j] && shape[i] < shape[k] {
			axis = i
			break
		}
	}
	if axis < 0 {
		return single, record.Warnings{record.Warn(record.CodeBandAxisAmbiguous, name,
			"no axis of shape %v is strictly smallest, treating as one band", shape)}
	}
	count := shape[axis]
	l := Layout{Axis: Axis(axis + 1), Count: count}
	if count == 1 {
		l.Names = []string{name}
		return l, nil
	}
	l.Names = make([]string, count)
	for i := range count {
		l.Names[i] = fmt.Sprintf("%s_band%d", name, i+1)
	}
	return l, nil
}

var valueUnit = regexp.MustCompile(`^\s*([+-]?(?:\d+\.?\d*|\.\d+))\s*([^\d\s]*)\s*$`)

// SplitValueUnit splits a combined string into its longest leading number
// and the trailing unit letters. Strings with no leading number, or with
// digits after the unit, do not split.
func SplitValueUnit(s string) (record.Quantity, bool) {
	m := valueUnit.FindStringSubmatch(s)
	if m == nil {
		return record.Quantity{}, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return record.Quantity{}, false
	}
	return record.Quantity{Value: v, Unit: m[2]}, true
}
