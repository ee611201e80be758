// Package tdml exports records as OGC TrainingDML-AI training dataset
// manifests.
//
// A manifest lists its samples one by one. Records that describe their
// files with a file set only carry the pattern, so listing the samples
// needs a Walker over the container. Without one, the manifest gets a
// single placeholder sample pointing at the container.
package tdml

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/spatial"
	"github.com/c360studio/geocrosswalk/temporal"
)

// Name is the exporter name.
const Name = "tdml"

// TaskType is the task every exported manifest declares.
const TaskType = "segmentation"

// DefaultDescription is written when the record has none; the manifest
// requires one.
const DefaultDescription = "No description provided."

// ErrNoSamples is returned for a record without any distribution entry to
// list as training data.
var ErrNoSamples = errors.New("no training samples")

func init() {
	export.Register(Exporter{})
}

// Exporter writes TrainingDML-AI manifests. The zero value writes a
// placeholder sample for file sets.
type Exporter struct {
	Walker distribution.Walker
	Logger *slog.Logger
}

// New creates an exporter that enumerates file sets with w.
func New(w distribution.Walker, logger *slog.Logger) Exporter {
	return Exporter{Walker: w, Logger: logger}
}

// Name implements export.Exporter.
func (Exporter) Name() string { return Name }

// Description implements export.Exporter.
func (Exporter) Description() string { return "OGC TrainingDML-AI training dataset (JSON)" }

// MediaType implements export.Exporter.
func (Exporter) MediaType() string { return "application/json" }

// Extension implements export.Exporter.
func (Exporter) Extension() string { return ".json" }

// Export implements export.Exporter.
func (e Exporter) Export(rec record.Record) (export.Document, error) {
	if err := export.CheckSealed(&rec); err != nil {
		return export.Document{}, err
	}
	doc, err := e.Build(&rec)
	if err != nil {
		return export.Document{}, fmt.Errorf("tdml: %w", err)
	}
	body, err := export.MarshalIndent(doc)
	if err != nil {
		return export.Document{}, fmt.Errorf("tdml: %w", err)
	}
	return export.Document{Exporter: Name, MediaType: e.MediaType(), Extension: e.Extension(), Body: body}, nil
}

// Sample is one training sample: an image and its optional mask.
type Sample struct {
	Image      string
	Mask       string
	MaskFormat string
}

// Build assembles the manifest.
func (e Exporter) Build(rec *record.Record) (*export.Object, error) {
	samples, err := e.samples(rec)
	if err != nil {
		return nil, err
	}
	id := rec.Identity
	classes := Classes(rec)

	providers := make([]string, 0, len(rec.Creators))
	for _, c := range rec.Creators {
		providers = append(providers, c.Name)
	}
	created := id.Created.Or(id.Published)
	updated := id.Modified.Or(created)
	description := id.Description
	if description == "" {
		description = DefaultDescription
	}

	doc := export.NewObject().
		Set("type", "AI_EOTrainingDataset").
		Set("id", id.ID).
		Set("name", id.Name).
		Set("description", description).
		SetString("license", id.License).
		Set("providers", providers)
	if t, ok := created.Get(); ok {
		doc.Set("createdTime", temporal.Format(t))
	}
	if t, ok := updated.Get(); ok {
		doc.Set("updatedTime", temporal.Format(t))
	}
	doc.SetString("version", id.Version)
	doc.SetStrings("keywords", keywords(rec, classes))
	doc.Set("tasks", []*export.Object{export.NewObject().
		Set("type", "AI_EOTask").
		Set("id", "task_0").
		Set("name", "Segmentation Task").
		Set("description", "Semantic segmentation task for geospatial imagery.").
		Set("inputType", "image").
		Set("outputType", "mask").
		Set("taskType", TaskType)})

	cls := make([]*export.Object, len(classes))
	for i, c := range classes {
		cls[i] = export.NewObject().Set("key", c).Set("name", c).Set("value", i)
	}
	doc.Set("classes", cls)

	if len(rec.Bands) > 0 {
		bs := make([]*export.Object, len(rec.Bands))
		for i, b := range rec.Bands {
			o := export.NewObject().
				Set("name", []*export.Object{export.NewObject().Set("code", b.Name)}).
				Set("description", firstNonEmpty(b.Description, b.Name))
			if c, ok := b.Center.Get(); ok {
				o.SetString("units", units(c))
			}
			bs[i] = o
		}
		doc.Set("bands", bs)
	}
	if box, ok := rec.Spatial.Box.Get(); ok {
		doc.Set("extent", spatial.ToBBox(box, spatial.WSEN))
	}

	data := make([]*export.Object, len(samples))
	for i, s := range samples {
		d := export.NewObject().
			Set("type", "AI_EOTrainingData").
			Set("id", fmt.Sprintf("data_%d", i)).
			Set("dataURL", []string{s.Image})
		if s.Mask != "" {
			d.Set("labels", []*export.Object{export.NewObject().
				Set("type", "AI_PixelLabel").
				Set("imageURL", []string{s.Mask}).
				Set("imageFormat", []string{firstNonEmpty(s.MaskFormat, distribution.FormatTIFF)})})
		} else {
			d.Set("labels", []*export.Object{})
		}
		data[i] = d
	}
	doc.Set("data", data)
	doc.Set("amountOfTrainingData", len(samples))
	doc.Set("numberOfClasses", len(classes))
	return doc, nil
}

// Classes returns the class keys of a segmentation dataset. Burn scar
// datasets are recognized by name or keyword.
func Classes(rec *record.Record) []string {
	burn := strings.Contains(strings.ToLower(rec.Identity.Name), "burn")
	for _, k := range rec.Keywords {
		if strings.Contains(strings.ToLower(k), "burn") {
			burn = true
		}
	}
	if burn {
		return []string{"background", "burn_scar"}
	}
	return []string{"background", "foreground"}
}

// keywords drops the keywords the manifest already states elsewhere so a
// re-read manifest yields the same keyword list.
func keywords(rec *record.Record, classes []string) []string {
	skip := map[string]bool{rec.Identity.Name: true, TaskType: true}
	for _, c := range classes {
		skip[c] = true
	}
	var out []string
	for _, k := range rec.Keywords {
		if !skip[k] {
			out = append(out, k)
		}
	}
	return out
}

func units(q record.Quantity) string {
	if q.IsTextual() {
		return q.Text
	}
	return fmt.Sprintf("%g%s", q.Value, q.Unit)
}

// fields finds the image and mask fields of the record sets.
func fields(rec *record.Record) (image, mask *record.Field) {
	all := rec.Fields()
	for i := range all {
		f := &all[i]
		name, id := strings.ToLower(f.Name), strings.ToLower(f.ID)
		switch {
		case strings.Contains(name, "image") || strings.Contains(id, "image"):
			image = f
		case strings.Contains(name, "mask") || strings.Contains(id, "mask") || strings.Contains(name, "label"):
			mask = f
		}
	}
	return image, mask
}

func (e Exporter) samples(rec *record.Record) ([]Sample, error) {
	if len(rec.Distribution) == 0 {
		return nil, ErrNoSamples
	}
	image, mask := fields(rec)
	set, ok := fileSet(rec, image)
	if !ok {
		return listed(rec.Distribution), nil
	}
	root := ""
	if c, ok := rec.Entry(set.ContainedIn); ok {
		root = c.ContentURL
	}
	placeholder := []Sample{{Image: firstNonEmpty(root, "./data"), Mask: "./labels"}}
	if e.Walker == nil {
		return placeholder, nil
	}

	files, err := e.Walker.Walk(root, set.Includes)
	if err != nil {
		e.logger().Warn("Failed to enumerate file set, writing placeholder sample",
			slog.String("file_set", set.ID), slog.String("root", root), slog.String("error", err.Error()))
		return placeholder, nil
	}
	for i, f := range files {
		files[i] = path.Join(root, f)
	}
	imageRe, err := pattern(image, `.*_merged\.tif$`)
	if err != nil {
		return nil, err
	}
	var images, masks []string
	for _, f := range files {
		if imageRe.MatchString(f) {
			images = append(images, f)
		}
	}
	if mask != nil {
		maskRe, err := pattern(mask, `.*\.mask\.tif$`)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if maskRe.MatchString(f) {
				masks = append(masks, f)
			}
		}
	}
	e.logger().Info("Enumerated training files",
		slog.String("file_set", set.ID), slog.Int("images", len(images)), slog.Int("masks", len(masks)))

	out := Pair(images, masks, mask != nil)
	if len(out) == 0 {
		return placeholder, nil
	}
	return out, nil
}

func (e Exporter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// fileSet returns the file set the image field reads from, or the first
// file set of the record.
func fileSet(rec *record.Record, image *record.Field) (record.Entry, bool) {
	if image != nil {
		if src, ok := rec.Entry(image.Source); ok && src.Kind == record.FileSet {
			return src, true
		}
	}
	for _, d := range rec.Distribution {
		if d.Kind == record.FileSet {
			return d, true
		}
	}
	return record.Entry{}, false
}

func pattern(f *record.Field, fallback string) (*regexp.Regexp, error) {
	expr := fallback
	if f != nil && f.Regex != "" {
		expr = f.Regex
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("field regex %q: %w", expr, err)
	}
	return re, nil
}

// Pair matches images with masks by file name. Pairs sharing the longest
// name prefix are matched first, so every image gets the mask named most
// like it. Images without a match are dropped when masks are required.
func Pair(images, masks []string, requireMask bool) []Sample {
	images = append([]string(nil), images...)
	sort.Strings(images)
	masks = append([]string(nil), masks...)
	sort.Strings(masks)

	type candidate struct{ image, mask, shared int }
	var cands []candidate
	for i, img := range images {
		for j, m := range masks {
			if n := commonPrefix(path.Base(img), path.Base(m)); n > 0 && m != img {
				cands = append(cands, candidate{i, j, n})
			}
		}
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].shared > cands[b].shared })

	maskOf := make([]int, len(images))
	for i := range maskOf {
		maskOf[i] = -1
	}
	used := make([]bool, len(masks))
	for _, c := range cands {
		if maskOf[c.image] >= 0 || used[c.mask] {
			continue
		}
		maskOf[c.image] = c.mask
		used[c.mask] = true
	}

	var out []Sample
	for i, img := range images {
		if maskOf[i] < 0 {
			if !requireMask {
				out = append(out, Sample{Image: img})
			}
			continue
		}
		out = append(out, Sample{Image: img, Mask: masks[maskOf[i]], MaskFormat: distribution.FormatTIFF})
	}
	return out
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// listed pairs file objects listed one by one. Entries named mask_N label
// the preceding image; otherwise entries pair up in order.
func listed(entries []record.Entry) []Sample {
	var objects []record.Entry
	named := false
	for _, d := range entries {
		if d.Kind != record.FileObject {
			continue
		}
		objects = append(objects, d)
		if strings.HasPrefix(d.ID, "mask_") {
			named = true
		}
	}
	var out []Sample
	if named {
		for _, d := range objects {
			if strings.HasPrefix(d.ID, "mask_") && len(out) > 0 && out[len(out)-1].Mask == "" {
				out[len(out)-1].Mask = d.ContentURL
				out[len(out)-1].MaskFormat = d.EncodingFormat
				continue
			}
			out = append(out, Sample{Image: d.ContentURL})
		}
		return out
	}
	for i := 0; i < len(objects); i += 2 {
		s := Sample{Image: objects[i].ContentURL}
		if i+1 < len(objects) {
			s.Mask = objects[i+1].ContentURL
			s.MaskFormat = objects[i+1].EncodingFormat
		}
		out = append(out, s)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
