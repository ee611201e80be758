package spatial

import (
	"strconv"
	"strings"
)

// ParseWKT reads the vertices of a WKT POINT, LINESTRING, POLYGON or
// MULTIPOLYGON literal. A leading SRID or CRS IRI ("<...> POLYGON(...)")
// is skipped. Any coordinate that is not a number pair makes the whole
// literal unusable and nil is returned.
func ParseWKT(text string) []Point {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "<") {
		if i := strings.Index(text, ">"); i >= 0 {
			text = strings.TrimSpace(text[i+1:])
		}
	}
	if i := strings.Index(text, ";"); i >= 0 && strings.HasPrefix(strings.ToUpper(text), "SRID=") {
		text = text[i+1:]
	}
	open := strings.Index(text, "(")
	if open < 0 || !strings.HasSuffix(text, ")") {
		return nil
	}
	body := strings.Map(func(r rune) rune {
		if r == '(' || r == ')' {
			return ' '
		}
		return r
	}, text[open:])

	var out []Point
	for _, pair := range strings.Split(body, ",") {
		fields := strings.Fields(pair)
		if len(fields) < 2 {
			return nil
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil
		}
		out = append(out, Point{Lon: lon, Lat: lat})
	}
	return out
}
