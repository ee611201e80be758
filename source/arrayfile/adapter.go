package arrayfile

import (
	"fmt"
	"path"
	"strings"

	"github.com/c360studio/geocrosswalk/bands"
	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/instrument"
	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
	"github.com/c360studio/geocrosswalk/temporal"
)

// Schema is the name the adapter registers under.
const Schema = "arrayfile"

// RepoID is the container entry of a file series.
const RepoID = "data_repo"

func init() {
	source.Register(Adapter{})
}

// Adapter extracts a JSON header dump of an array file or file series.
// Variables named after the channels of a known instrument become that
// instrument's bands.
type Adapter struct {
	// Catalog resolves instrument tables. Nil means instrument.Global.
	Catalog *instrument.Catalog
}

// WithCatalog implements source.CatalogUser.
func (a Adapter) WithCatalog(c *instrument.Catalog) source.Adapter {
	a.Catalog = c
	return a
}

// Name implements source.Adapter.
func (Adapter) Name() string { return Schema }

// Description implements source.Adapter.
func (Adapter) Description() string { return "NetCDF, HDF5 or Zarr header dump" }

// Detect implements source.Detector.
func (Adapter) Detect(doc jsondoc.Value) bool {
	switch strings.ToLower(doc.Get("format").Str()) {
	case "netcdf", "hdf5", "zarr":
		return doc.Get("variables").IsArray()
	}
	return false
}

// Extract implements source.Adapter.
func (a Adapter) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	h, err := ParseHeader(raw)
	if err != nil {
		return nil, nil, err
	}
	return a.FromReader(h, Layout{Format: h.Format, Path: h.Path, Root: h.Root, Files: h.Files, Checksum: h.Checksum})
}

// Layout locates the files a Reader describes.
type Layout struct {
	Format   string
	Path     string
	Root     string
	Files    []string
	Checksum string
}

// gridDims index space and time. A variable spanning only these has no
// band axis whatever its shape.
var gridDims = map[string]bool{
	"lat": true, "lon": true, "latitude": true, "longitude": true,
	"time": true, "x": true, "y": true,
}

var formats = map[string]string{
	"netcdf": distribution.FormatNetCDF,
	"hdf5":   distribution.FormatHDF5,
	"zarr":   distribution.FormatZarr,
}

// FromReader builds an intermediate from any Reader.
func (a Adapter) FromReader(r Reader, l Layout) (*source.Intermediate, record.Warnings, error) {
	vars, err := r.Variables()
	if err != nil {
		return nil, nil, fmt.Errorf("read variables: %w", err)
	}
	attrs, err := r.Attributes()
	if err != nil {
		return nil, nil, fmt.Errorf("read attributes: %w", err)
	}

	in := &source.Intermediate{Schema: Schema}
	id := attr(attrs, "id", "dataset_id")
	if id == "" {
		id = stem(firstNonEmpty(l.Path, l.Root))
	}
	if id == "" {
		return nil, nil, record.NewShapeError(Schema, "attributes.id", "header names no dataset and no path")
	}
	in.Identity = source.Identity{
		ID:          id,
		Name:        firstNonEmpty(attr(attrs, "title"), id),
		Description: attr(attrs, "summary", "description", "comment"),
		Version:     attr(attrs, "product_version", "version"),
		License:     attr(attrs, "license"),
		Citation:    attr(attrs, "citation", "references"),
		URL:         attr(attrs, "url", "infoUrl"),
		Created:     attr(attrs, "date_created"),
		Published:   attr(attrs, "date_issued"),
		Modified:    attr(attrs, "date_modified"),
	}
	for _, k := range strings.Split(attr(attrs, "keywords"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			in.Keywords = append(in.Keywords, k)
		}
	}
	for _, key := range [][2]string{{"creator_name", "creator_url"}, {"institution", ""}, {"publisher_name", "publisher_url"}} {
		if name := attr(attrs, key[0]); name != "" {
			in.Creators = append(in.Creators, record.Agent{Name: name, URL: attr(attrs, key[1])})
		}
	}
	in.Platform = attr(attrs, "platform", "observatory")
	in.Instrument = attr(attrs, "instrument", "telescope")
	in.SamplingStrategy = attr(attrs, "sampling_strategy")

	readSpatial(attrs, vars, &in.Spatial)
	in.SpatialResolution = source.Quantity{Text: attr(attrs, "spatial_resolution", "geospatial_resolution", "geospatial_lat_resolution")}
	in.TemporalResolution = source.Quantity{Text: isoDuration(attr(attrs, "time_coverage_resolution", "temporal_resolution"))}

	in.Temporal.Start = attr(attrs, "time_coverage_start")
	in.Temporal.End = attr(attrs, "time_coverage_end")
	if in.Temporal.Start == "" {
		for _, f := range append([]string{l.Path}, l.Files...) {
			if ts, ok := temporal.FromCompactFilename(f).Get(); ok {
				in.Temporal.Instants = append(in.Temporal.Instants, temporal.Format(ts))
			}
		}
	}

	fieldSource, assets := layoutAssets(id, l)
	in.Assets = assets

	table, hasTable := a.catalog().Resolve(in.Platform, in.Instrument)
	rs := record.RecordSet{ID: id, Name: id, Description: attr(attrs, "record_description")}
	var coords []record.Field
	var warnings record.Warnings
	for _, v := range vars {
		if len(v.Shape) == 0 && len(v.Dimensions) == 0 {
			continue
		}
		f := record.Field{
			ID:          id + "/" + v.Name,
			Name:        v.Name,
			Description: v.Attr("long_name", "description", "standard_name"),
			DataType:    dataType(v),
			Source:      fieldSource,
			Extract:     record.Extract{Column: v.Name},
		}
		if unit := v.Attr("units"); unit != "" && f.Description != "" {
			f.Description += " (" + unit + ")"
		}
		if isCoordinate(v) {
			coords = append(coords, f)
			continue
		}

		var names []string
		switch {
		case len(v.Bands) > 0:
			for i, b := range v.Bands {
				d := bands.Descriptor{Name: b.Name, Description: b.Description, Wavelength: b.Wavelength, Quantity: b.Quantity}
				if d.Name == "" {
					d.Name = fmt.Sprintf("%s_band%d", v.Name, i+1)
				}
				in.Bands.Explicit = append(in.Bands.Explicit, d)
				names = append(names, d.Name)
			}
			if len(v.Shape) == 3 {
				if inferred, _ := bands.InferFromShape(v.Name, v.Shape); inferred.Count != len(v.Bands) {
					warnings = append(warnings, record.Warn(record.CodeBandAxisAmbiguous, "variables."+v.Name,
						"%d declared bands but shape %v suggests %d", len(v.Bands), v.Shape, inferred.Count))
				}
			}
		case hasTable && inTable(table, v.Name):
			ch, _ := table.Channel(v.Name)
			in.Bands.Table = table.ID
			in.Bands.Channels = append(in.Bands.Channels, v.Name)
			names = []string{ch.BandName()}
		default:
			shape := v.Shape
			if onGrid(v) {
				shape = nil
			}
			in.Bands.Shapes = append(in.Bands.Shapes, source.Shape{Name: v.Name, Shape: shape, Description: f.Description})
			inferred, _ := bands.InferFromShape(v.Name, shape)
			names = inferred.Names
		}
		f.Bands = bands.Config(names)
		rs.Fields = append(rs.Fields, f)
	}
	rs.Fields = append(rs.Fields, coords...)
	if len(rs.Fields) > 0 {
		in.RecordSets = []record.RecordSet{rs}
	}
	return in, warnings, nil
}

func (a Adapter) catalog() *instrument.Catalog {
	if a.Catalog == nil {
		return instrument.Global()
	}
	return a.Catalog
}

func inTable(t *instrument.Table, id string) bool {
	_, ok := t.Channel(id)
	return ok
}

func isCoordinate(v Variable) bool {
	if len(v.Dimensions) == 1 && v.Dimensions[0] == v.Name {
		return true
	}
	name := strings.ToLower(v.Name)
	return gridDims[name] || name == "band"
}

func onGrid(v Variable) bool {
	if len(v.Dimensions) == 0 {
		return false
	}
	for _, d := range v.Dimensions {
		if !gridDims[strings.ToLower(d)] {
			return false
		}
	}
	return true
}

// readSpatial reads attribute conventions for extent and reference system.
// A grid_mapping style variable carries the WKT of the grid.
func readSpatial(attrs map[string]string, vars []Variable, sp *source.Spatial) {
	south, west := attr(attrs, "geospatial_lat_min"), attr(attrs, "geospatial_lon_min")
	north, east := attr(attrs, "geospatial_lat_max"), attr(attrs, "geospatial_lon_max")
	if south != "" && west != "" && north != "" && east != "" {
		sp.Order = spatial.SWNE
		sp.BoxText = strings.Join([]string{south, west, north, east}, " ")
	}
	sp.Description = attr(attrs, "spatial_coverage", "geospatial_description")
	sp.CRSCode = attr(attrs, "crs", "coordinate_reference_system", "epsg_code")
	if sp.CRSCode != "" {
		return
	}
	for _, v := range vars {
		if wkt := v.Attr("crs_wkt", "spatial_ref"); wkt != "" {
			sp.CRSText = wkt
			return
		}
	}
	sp.CRSText = attr(attrs, "crs_wkt", "spatial_ref")
}

// layoutAssets returns the distribution of the files and the entry fields
// read from.
func layoutAssets(id string, l Layout) (string, []distribution.Asset) {
	format := formats[l.Format]
	if len(l.Files) > 0 {
		root := l.Root
		if root == "" {
			root = path.Dir(l.Files[0])
		}
		ext := strings.TrimPrefix(path.Ext(l.Files[0]), ".")
		includes := "*." + ext
		for _, f := range l.Files {
			if strings.Contains(f, "/") {
				includes = "**/*." + ext
				break
			}
		}
		setID := ext + "-files"
		return setID, []distribution.Asset{
			{
				ID:          RepoID,
				Name:        RepoID,
				Description: "Directory holding the " + id + " files",
				Href:        root,
				Format:      distribution.FormatDirectory,
				Checksum:    "placeholder_checksum_for_directory",
			},
			{
				ID:          setID,
				Name:        setID,
				Description: fmt.Sprintf("All %s files (%d at extraction time)", ext, len(l.Files)),
				Href:        root,
				Format:      format,
				ContainedIn: RepoID,
				Includes:    includes,
			},
		}
	}
	if l.Path == "" {
		return "", nil
	}
	name := path.Base(strings.TrimRight(l.Path, "/"))
	return name, []distribution.Asset{{
		ID:       name,
		Name:     name,
		Href:     l.Path,
		Format:   format,
		Checksum: l.Checksum,
	}}
}

func dataType(v Variable) string {
	dt := strings.ToLower(v.DataType)
	switch {
	case strings.Contains(dt, "datetime"), v.Attr("standard_name") == "time":
		return "sc:DateTime"
	case strings.HasPrefix(dt, "float"), dt == "double", dt == "real":
		return "sc:Float"
	case strings.HasPrefix(dt, "int"), strings.HasPrefix(dt, "uint"), dt == "short", dt == "long", dt == "byte":
		return "sc:Integer"
	case dt == "bool", dt == "boolean":
		return "sc:Boolean"
	}
	return "sc:Text"
}

// isoDuration rewrites simple ISO-8601 durations ("P1M", "PT12M") as a
// value and unit. Anything else is returned unchanged.
func isoDuration(s string) string {
	if !strings.HasPrefix(s, "P") || len(s) < 3 {
		return s
	}
	body, timePart := s[1:], false
	if rest, ok := strings.CutPrefix(body, "T"); ok {
		body, timePart = rest, true
	}
	n, unit := body[:len(body)-1], body[len(body)-1]
	if strings.Trim(n, "0123456789.") != "" || n == "" {
		return s
	}
	units := map[byte]string{'Y': "year", 'M': "month", 'W': "week", 'D': "day"}
	if timePart {
		units = map[byte]string{'H': "hour", 'M': "minute", 'S': "second"}
	}
	if u, ok := units[unit]; ok {
		return n + " " + u
	}
	return s
}

// stem is the base name without extension.
func stem(p string) string {
	base := path.Base(strings.TrimRight(p, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
