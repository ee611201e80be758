package spatial

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/c360studio/geocrosswalk/record"
)

// ExtractCRS is a best-effort heuristic over a free-text coordinate system
// description. It is not a CRS parser.
//
// Precedence: the outermost EPSG authority code that is not a unit or
// ellipsoid code, then recognizable projection keywords, then absent.
func ExtractCRS(text string) (record.CRS, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return record.CRS{}, false
	}
	if crs, ok := ParseCRSCode(text); ok {
		return crs, true
	}
	if code, ok := authorityCode(text); ok {
		return record.CRS{Kind: record.CRSEPSG, Code: code}, true
	}
	if label, ok := projectionLabel(text); ok {
		return record.CRS{Kind: record.CRSText, Text: label}, true
	}
	return record.CRS{}, false
}

var (
	authorityPattern = regexp.MustCompile(`(?:AUTHORITY\["EPSG",\s*"(\d+)"\]|ID\["EPSG",\s*(\d+)\])`)
	utmZonePattern   = regexp.MustCompile(`(?i)UTM[^\d]*(\d+)`)
	codePattern      = regexp.MustCompile(`(?i)^(?:EPSG:|urn:ogc:def:crs:EPSG::|https?://www\.opengis\.net/def/crs/EPSG/0/)(\d+)$`)
)

// deniedCodes are EPSG unit codes that appear inside CRS descriptions
// without naming the reference system itself.
var deniedCodes = map[int]bool{
	9001: true, // metre
	9002: true, // foot
	9003: true, // US survey foot
	9101: true, // radian
	9102: true, // degree
	9110: true, // sexagesimal DMS
	9122: true, // degree (supplier to define representation)
	9201: true, // unity
}

func denied(code int) bool {
	// Ellipsoids and prime meridians.
	if (code >= 7000 && code < 8000) || (code >= 8900 && code < 9000) {
		return true
	}
	return deniedCodes[code]
}

// authorityCode returns the last non-denied code. WKT nests the defining
// authority of a CRS after its components, so the last one is outermost.
func authorityCode(text string) (int, bool) {
	matches := authorityPattern.FindAllStringSubmatch(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		raw := matches[i][1]
		if raw == "" {
			raw = matches[i][2]
		}
		code, err := strconv.Atoi(raw)
		if err != nil || denied(code) {
			continue
		}
		return code, true
	}
	return 0, false
}

func projectionLabel(text string) (string, bool) {
	if !strings.Contains(text, "PROJCS") && !strings.Contains(text, "PROJECTION") &&
		!strings.Contains(text, "PROJCRS") && !strings.Contains(text, "CONVERSION") {
		return "", false
	}
	switch {
	case strings.Contains(text, "Albers"):
		return "Custom Albers Equal Area projection", true
	case strings.Contains(strings.ToUpper(text), "UTM"):
		if m := utmZonePattern.FindStringSubmatch(text); m != nil {
			return "UTM Zone " + m[1], true
		}
		return "UTM projection", true
	default:
		return "Custom projection", true
	}
}

// ParseCRSCode parses an already-coded reference ("EPSG:4326", an OGC URN
// or an OGC definition URL). Bare integers are read as EPSG codes. Unit and
// ellipsoid codes are not reference systems and do not parse.
func ParseCRSCode(text string) (record.CRS, bool) {
	text = strings.TrimSpace(text)
	if m := codePattern.FindStringSubmatch(text); m != nil {
		code, err := strconv.Atoi(m[1])
		if err == nil && code > 0 && !denied(code) {
			return record.CRS{Kind: record.CRSEPSG, Code: code}, true
		}
	}
	if code, err := strconv.Atoi(text); err == nil && code > 0 && !denied(code) {
		return record.CRS{Kind: record.CRSEPSG, Code: code}, true
	}
	return record.CRS{}, false
}

// FormatCRS renders a CRS the way the canonical document stores it.
func FormatCRS(c record.CRS) string {
	switch c.Kind {
	case record.CRSEPSG:
		return fmt.Sprintf("EPSG:%d", c.Code)
	case record.CRSText:
		return c.Text
	default:
		return ""
	}
}

// ParseCRS is the inverse of FormatCRS. Text that is not a code is kept as
// a textual description.
func ParseCRS(text string) record.CRS {
	text = strings.TrimSpace(text)
	if text == "" {
		return record.CRS{}
	}
	if c, ok := ParseCRSCode(text); ok {
		return c
	}
	return record.CRS{Kind: record.CRSText, Text: text}
}
