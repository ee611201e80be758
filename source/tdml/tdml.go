// Package tdml extracts OGC Training Data Markup Language for AI
// (TrainingDML-AI) dataset manifests.
package tdml

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/c360studio/geocrosswalk/bands"
	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
	"github.com/c360studio/geocrosswalk/spatial"
)

// Schema is the name the adapter registers under.
const Schema = "tdml"

// Entry IDs of a local training set.
const (
	RepoID  = "data_repo"
	TiffSet = "tiff-files"
)

// MaxRemoteSamples bounds the per-sample entries listed for a remote
// training set.
const MaxRemoteSamples = 100

func init() {
	source.Register(Manifest{})
}

var datasetTypes = map[string]bool{
	"AI_EOTrainingDataset": true,
	"AI_TrainingDataset":   true,
}

var manifestKeys = keySet("type", "id", "name", "description", "license", "providers",
	"createdTime", "created_time", "updatedTime", "updated_time", "version", "tasks",
	"classes", "bands", "extent", "data", "amountOfTrainingData", "amount_of_training_data",
	"numberOfClasses", "number_of_classes", "doi", "keywords")

// Manifest is the TrainingDML-AI adapter.
type Manifest struct{}

// Name implements source.Adapter.
func (Manifest) Name() string { return Schema }

// Description implements source.Adapter.
func (Manifest) Description() string { return "OGC TrainingDML-AI training dataset" }

// Detect implements source.Detector.
func (Manifest) Detect(doc jsondoc.Value) bool {
	if datasetTypes[doc.Get("type").Str()] {
		return true
	}
	return doc.Get("data").IsArray() && doc.Get("tasks").IsArray()
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Sanitize replaces characters not allowed in identifiers with "_".
func Sanitize(name string) string {
	return unsafeName.ReplaceAllString(name, "_")
}

// Extract implements source.Adapter.
func (Manifest) Extract(raw []byte) (*source.Intermediate, record.Warnings, error) {
	doc, err := source.Parse(Schema, raw)
	if err != nil {
		return nil, nil, err
	}
	if t := doc.Get("type").Str(); t != "" && !datasetTypes[t] {
		return nil, nil, record.NewShapeError(Schema, "type", "unexpected type %q", t)
	}
	name := doc.Get("name").Str()
	if name == "" {
		return nil, nil, record.NewShapeError(Schema, "name", "training dataset has no name")
	}
	slug := Sanitize(name)

	var warnings record.Warnings
	for _, k := range doc.Keys() {
		if !manifestKeys[k] && !strings.HasPrefix(k, "@") {
			warnings = append(warnings, record.Warn(record.CodeUnmappedField, k, "no canonical field for %q", k))
		}
	}

	in := &source.Intermediate{Schema: Schema}
	created := doc.First("createdTime", "created_time").Str()
	providers := doc.Get("providers").Strings()
	in.Identity = source.Identity{
		ID:          firstNonEmpty(doc.Get("id").Str(), slug),
		Name:        name,
		Description: doc.Get("description").Str(),
		Version:     doc.Get("version").Str(),
		License:     doc.Get("license").Str(),
		Created:     created,
		Published:   created,
		Modified:    doc.First("updatedTime", "updated_time").Str(),
	}
	in.Identity.Citation = citation(slug, name, providers, created, doc.First("doi", "id").Str())
	for _, p := range providers {
		in.Creators = append(in.Creators, record.Agent{Name: p})
	}

	in.Keywords = append([]string{name}, doc.Get("keywords").Strings()...)
	for _, t := range doc.Get("tasks").Items() {
		if tt := t.First("taskType", "task_type").Str(); tt != "" {
			in.Keywords = append(in.Keywords, tt)
		}
	}
	for i, c := range doc.Get("classes").Items() {
		if i == 5 {
			break
		}
		if k := c.First("key", "name").Str(); k != "" {
			in.Keywords = append(in.Keywords, k)
		}
	}

	var bandNames []string
	for i, b := range doc.Get("bands").Items() {
		d := bands.Descriptor{
			Name:        b.Get("name").Index(0).Get("code").Str(),
			Description: b.Get("description").Str(),
			Wavelength:  b.Get("units").Str(),
		}
		if d.Name == "" {
			d.Name = firstNonEmpty(b.Get("name").Str(), d.Description, fmt.Sprintf("Band_%d", i+1))
		}
		in.Bands.Explicit = append(in.Bands.Explicit, d)
		bandNames = append(bandNames, d.Name)
	}

	if ext := doc.Get("extent"); ext.IsArray() {
		in.Spatial.Order = spatial.WSEN
		in.Spatial.BBox = ext.Floats()
		if in.Spatial.BBox == nil {
			warnings = append(warnings, record.Warn(record.CodeFieldMissing, "extent", "extent is not numeric"))
		}
	}

	samples, err := readSamples(doc.Get("data"))
	if err != nil {
		return nil, nil, err
	}
	image := record.Field{
		ID:          slug + "/image",
		Name:        slug + "/image",
		Description: "Satellite imagery with multiple spectral bands",
		DataType:    "sc:Text",
		Bands:       bands.Config(bandNames),
	}
	mask := record.Field{
		ID:          slug + "/mask",
		Name:        slug + "/mask",
		Description: "Mask annotations with values representing different classes",
		DataType:    "sc:Text",
		Bands:       bands.Config([]string{"mask"}),
	}
	if len(samples) > 0 && isLocal(samples[0].image) {
		in.Assets = localAssets(samples)
		imageRe, maskRe := Patterns(samples[0].image, samples[0].mask)
		for _, f := range []*record.Field{&image, &mask} {
			f.Source = TiffSet
			f.Extract = record.Extract{FileProperty: "fullpath"}
		}
		image.Regex, mask.Regex = imageRe, maskRe
	} else {
		in.Assets = remoteAssets(samples)
	}
	in.RecordSets = []record.RecordSet{{
		ID:          slug,
		Name:        slug,
		Description: in.Identity.Description,
		Fields:      []record.Field{image, mask},
	}}
	return in, warnings, nil
}

type sample struct {
	id         string
	image      string
	mask       string
	maskFormat string
}

func readSamples(data jsondoc.Value) ([]sample, error) {
	if data.Exists() && !data.IsArray() {
		return nil, record.NewShapeError(Schema, "data", "data is a %s, not an array", data.Kind())
	}
	var out []sample
	for i, d := range data.Items() {
		s := sample{
			id:    d.Get("id").Str(),
			image: first(d.First("dataURL", "data_url")),
		}
		if s.image == "" {
			return nil, record.NewShapeError(Schema, fmt.Sprintf("data[%d].dataURL", i), "training sample has no data URL")
		}
		if l := d.Get("labels").Index(0); l.Exists() {
			s.mask = first(l.First("imageURL", "image_url"))
			s.maskFormat = first(l.First("imageFormat", "image_format"))
		}
		out = append(out, s)
	}
	return out, nil
}

func isLocal(url string) bool {
	return !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") && !strings.Contains(url, "://")
}

// localAssets describes a local training set as its parent directory and
// the TIFF files under it. Samples sit one directory below the root
// ("training/", "validation/").
func localAssets(samples []sample) []distribution.Asset {
	root := path.Dir(path.Dir(samples[0].image))
	return []distribution.Asset{
		{
			ID:          RepoID,
			Name:        RepoID,
			Description: "Directory containing the dataset files",
			Href:        root,
			Format:      distribution.FormatDirectory,
			Checksum:    "placeholder_hash_for_directory",
		},
		{
			ID:          TiffSet,
			Name:        TiffSet,
			Description: "All TIFF files (images and masks).",
			ContainedIn: RepoID,
			Format:      distribution.FormatTIFF,
			Includes:    "**/*.tif",
		},
	}
}

func remoteAssets(samples []sample) []distribution.Asset {
	var out []distribution.Asset
	for i, s := range samples {
		if i == MaxRemoteSamples {
			break
		}
		out = append(out, distribution.Asset{
			ID:     fmt.Sprintf("image_%d", i),
			Name:   path.Base(s.image),
			Href:   s.image,
			Format: distribution.FormatTIFF,
		})
		if s.mask != "" {
			out = append(out, distribution.Asset{
				ID:     fmt.Sprintf("mask_%d", i),
				Name:   path.Base(s.mask),
				Href:   s.mask,
				Format: firstNonEmpty(s.maskFormat, distribution.FormatTIFF),
			})
		}
	}
	return out
}

// Patterns derives the regexes that tell images from masks in one file
// set. The file names of a sample pair share a stem and differ in their
// tails ("x_merged.tif", "x.mask.tif"). Pairs sharing no stem are told
// apart by their directories.
func Patterns(image, mask string) (imageRe, maskRe string) {
	ib, mb := path.Base(image), path.Base(mask)
	if mask == "" {
		return ".*" + regexp.QuoteMeta(path.Ext(ib)) + "$", ""
	}
	n := 0
	for n < len(ib) && n < len(mb) && ib[n] == mb[n] {
		n++
	}
	it, mt := ib[n:], mb[n:]
	if n > 0 && it != "" && mt != "" && !strings.HasSuffix(it, mt) && !strings.HasSuffix(mt, it) {
		return ".*" + regexp.QuoteMeta(it) + "$", ".*" + regexp.QuoteMeta(mt) + "$"
	}
	dirRe := func(p string) string {
		return ".*/" + regexp.QuoteMeta(path.Base(path.Dir(p))) + "/[^/]*" + regexp.QuoteMeta(path.Ext(p)) + "$"
	}
	return dirRe(image), dirRe(mask)
}

func citation(slug, name string, providers []string, created, doi string) string {
	author := "Unknown"
	if len(providers) > 0 {
		author = providers[0]
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "@dataset{%s,\n    title={%s},\n    author={%s},\n", slug, name, author)
	if len(created) >= 4 {
		fmt.Fprintf(&sb, "    year={%s},\n", created[:4])
	}
	sb.WriteString("    publisher={TDML Dataset}")
	if doi != "" {
		fmt.Fprintf(&sb, ",\n    doi={%s}", doi)
	}
	sb.WriteString("\n}")
	return sb.String()
}

// first returns the first string of a value that may be a list.
func first(v jsondoc.Value) string {
	if ss := v.Strings(); len(ss) > 0 {
		return strings.TrimSpace(ss[0])
	}
	return ""
}

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
