// Package distribution builds the distribution entries of a record: single
// files, file sets inside a container, their encoding formats and their
// checksums.
package distribution

import (
	"net/url"
	"path"
	"strings"
)

// Encoding formats used across adapters and exporters.
const (
	FormatTIFF      = "image/tiff"
	FormatJSON      = "application/json"
	FormatNetCDF    = "application/x-netcdf"
	FormatZarr      = "application/zarr"
	FormatHDF5      = "application/x-hdf5"
	FormatParquet   = "application/parquet"
	FormatJPEG      = "image/jpeg"
	FormatPNG       = "image/png"
	FormatXML       = "application/xml"
	FormatFallback  = "application/octet-stream"
	FormatDirectory = "local_directory"
)

var extensionFormats = map[string]string{
	".tif":     FormatTIFF,
	".tiff":    FormatTIFF,
	".json":    FormatJSON,
	".geojson": "application/geo+json",
	".nc":      FormatNetCDF,
	".netcdf":  FormatNetCDF,
	".zarr":    FormatZarr,
	".h5":      FormatHDF5,
	".hdf":     FormatHDF5,
	".hdf5":    FormatHDF5,
	".he5":     FormatHDF5,
	".parquet": FormatParquet,
	".jpg":     FormatJPEG,
	".jpeg":    FormatJPEG,
	".png":     FormatPNG,
	".xml":     FormatXML,
}

// FormatForName infers an encoding format from a file name, path or URL.
// Query strings and fragments are ignored. The second result is false when
// the extension is unknown and the fallback format was returned.
func FormatForName(name string) (string, bool) {
	p := name
	if u, err := url.Parse(name); err == nil && u.Scheme != "" {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimRight(p, "/")
	ext := strings.ToLower(path.Ext(p))
	if f, ok := extensionFormats[ext]; ok {
		return f, true
	}
	return FormatFallback, false
}

// StripQuery removes a URL query string and fragment, which for signed
// asset links carry short-lived tokens.
func StripQuery(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		return href[:i]
	}
	return href
}
