// Package arrayfile extracts multi-band array files (NetCDF, HDF5, Zarr)
// through a Reader that lists their variables and global attributes.
//
// Reading the binary formats is out of scope. The package ships a Reader
// over JSON header dumps, as produced by ncdump-style tooling, and the
// adapter registered here consumes such dumps.
package arrayfile

import (
	"fmt"
	"path"
	"strings"

	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
)

// Variable is one array variable of a file.
type Variable struct {
	Name       string
	Dimensions []string
	Shape      []int
	DataType   string
	Attributes map[string]string
	// Bands describes the channels of a stacked variable when the file
	// states them.
	Bands []Band
}

// Band is one declared channel of a stacked variable.
type Band struct {
	Name        string
	Description string
	// Wavelength is a combined value and unit ("443nm").
	Wavelength string
	Quantity   string
}

// Attr returns the first non-empty attribute among keys.
func (v Variable) Attr(keys ...string) string {
	return attr(v.Attributes, keys...)
}

// Reader exposes the structure of an array file or file series.
type Reader interface {
	Variables() ([]Variable, error)
	Attributes() (map[string]string, error)
}

// Header is a parsed JSON header dump. It implements Reader.
type Header struct {
	// Format is "netcdf", "hdf5" or "zarr".
	Format string
	// Path locates a single file or store.
	Path string
	// Files lists the members of a file series, relative to Root.
	Files []string
	Root  string

	Checksum string

	attrs     map[string]string
	variables []Variable
}

// Variables implements Reader.
func (h *Header) Variables() ([]Variable, error) {
	return h.variables, nil
}

// Attributes implements Reader.
func (h *Header) Attributes() (map[string]string, error) {
	return h.attrs, nil
}

// ParseHeader reads a header dump:
//
//	{"format": "netcdf", "path": "...", "files": [...], "root": "...",
//	 "attributes": {...},
//	 "variables": [{"name", "dimensions", "shape", "dtype", "attributes", "bands"}]}
func ParseHeader(raw []byte) (*Header, error) {
	doc, err := jsondoc.Parse(raw)
	if err != nil {
		se := record.NewShapeError(Schema, "", "header dump is not valid JSON")
		se.Err = err
		return nil, se
	}
	if !doc.IsObject() {
		return nil, record.NewShapeError(Schema, "", "header dump is a %s, not an object", doc.Kind())
	}
	vars := doc.Get("variables")
	if !vars.IsArray() {
		return nil, record.NewShapeError(Schema, "variables", "header dump lists no variables")
	}
	h := &Header{
		Format:   strings.ToLower(doc.Get("format").Str()),
		Path:     doc.Get("path").Str(),
		Files:    doc.Get("files").Strings(),
		Root:     doc.Get("root").Str(),
		Checksum: doc.First("sha256", "checksum").Str(),
		attrs:    attributes(doc.Get("attributes")),
	}
	for i, v := range vars.Items() {
		name := v.Get("name").Str()
		if name == "" {
			return nil, record.NewShapeError(Schema, fmt.Sprintf("variables[%d].name", i), "variable has no name")
		}
		h.variables = append(h.variables, Variable{
			Name:       name,
			Dimensions: v.First("dimensions", "dims").Strings(),
			Shape:      v.Get("shape").Ints(),
			DataType:   v.First("dtype", "type").Str(),
			Attributes: attributes(v.First("attributes", "attrs")),
			Bands:      declaredBands(v.Get("bands")),
		})
	}
	if h.Format == "" {
		h.Format = formatFromName(firstNonEmpty(h.Path, firstNonEmpty(h.Files...)))
	}
	return h, nil
}

func declaredBands(v jsondoc.Value) []Band {
	var out []Band
	for _, b := range v.Items() {
		out = append(out, Band{
			Name:        b.Get("name").Str(),
			Description: b.Get("description").Str(),
			Wavelength:  b.Get("wavelength").Str(),
			Quantity:    b.Get("quantity").Str(),
		})
	}
	return out
}

// attributes flattens an attribute object to strings. Lists are joined
// with ", ".
func attributes(v jsondoc.Value) map[string]string {
	out := make(map[string]string)
	for _, m := range v.Members() {
		if m.Value.IsArray() {
			out[m.Key] = strings.Join(m.Value.Strings(), ", ")
			continue
		}
		if s := m.Value.Str(); s != "" {
			out[m.Key] = s
		}
	}
	return out
}

func attr(attrs map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(attrs[k]); v != "" {
			return v
		}
	}
	return ""
}

func formatFromName(name string) string {
	switch strings.ToLower(path.Ext(strings.TrimRight(name, "/"))) {
	case ".nc", ".netcdf", ".nc4":
		return "netcdf"
	case ".h5", ".hdf5", ".hdf", ".he5":
		return "hdf5"
	case ".zarr":
		return "zarr"
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
