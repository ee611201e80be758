package distribution

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/geocrosswalk/bands"
	"github.com/c360studio/geocrosswalk/record"
)

var (
	// ErrDanglingContainer is returned for a file set whose container was
	// not added before it.
	ErrDanglingContainer = errors.New("file set container not declared")

	// ErrEmptyIncludes is returned for a file set without a usable include
	// pattern.
	ErrEmptyIncludes = errors.New("file set has no include pattern")

	// ErrDuplicateEntry is returned when an entry ID is reused.
	ErrDuplicateEntry = errors.New("duplicate distribution entry")
)

// Asset is a distribution entry as a source describes it.
type Asset struct {
	ID          string
	Name        string
	Description string
	Href        string

	// Format is an explicitly declared encoding format. It wins over
	// inference from Href.
	Format string

	Checksum          string
	ChecksumAlgorithm string
	Size              record.Optional[int64]

	// ContainedIn and Includes describe a file set.
	ContainedIn string
	Includes    string

	// Bands overrides the dataset band order for this entry.
	Bands []string
}

// Builder accumulates entries in declaration order.
type Builder struct {
	logger   *slog.Logger
	entries  []record.Entry
	ids      map[string]record.EntryKind
	warnings record.Warnings
}

// NewBuilder creates an empty builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger, ids: make(map[string]record.EntryKind)}
}

// AddFileObject adds a single file. A missing or placeholder checksum is
// replaced by the sentinel and reported once.
func (b *Builder) AddFileObject(a Asset) (string, error) {
	e := b.entry(record.FileObject, a)
	if _, dup := b.ids[e.ID]; dup {
		return "", fmt.Errorf("%w: %q", ErrDuplicateEntry, e.ID)
	}

	switch {
	case IsPlaceholder(a.Checksum):
		e.Checksum = Unverified()
		b.warn(record.CodeChecksumMissing, "no checksum for %q, marked %s", e.ID, ChecksumSentinel)
	default:
		value := strings.TrimSpace(a.Checksum)
		algo := strings.ToLower(a.ChecksumAlgorithm)
		if mh, digest, ok := ParseMultihash(value); ok && algo == "" {
			algo, value = mh, digest
		}
		if algo == "" {
			algo = AlgorithmForDigest(value)
		}
		e.Checksum = record.Checksum{Algorithm: algo, Value: value, Verified: true}
	}

	b.append(e)
	return e.ID, nil
}

// AddFileSet adds a pattern-matched collection of files. The container must
// already be declared and the include pattern must be a valid glob.
func (b *Builder) AddFileSet(a Asset) (string, error) {
	e := b.entry(record.FileSet, a)
	if _, dup := b.ids[e.ID]; dup {
		return "", fmt.Errorf("%w: %q", ErrDuplicateEntry, e.ID)
	}
	if strings.TrimSpace(a.Includes) == "" || !doublestar.ValidatePattern(a.Includes) {
		return "", fmt.Errorf("%w: %q includes %q", ErrEmptyIncludes, e.ID, a.Includes)
	}
	if kind, ok := b.ids[a.ContainedIn]; !ok || kind != record.FileObject {
		return "", fmt.Errorf("%w: %q is contained in %q", ErrDanglingContainer, e.ID, a.ContainedIn)
	}
	e.ContainedIn = a.ContainedIn
	e.Includes = a.Includes
	// Catalog items repeat the container's href on a file set asset.
	if c, ok := b.lookup(a.ContainedIn); ok && c.ContentURL == e.ContentURL {
		e.ContentURL = ""
	}
	if a.Format == "" {
		// A file set is described by its member pattern, not its container.
		e.EncodingFormat = b.format(a.Includes, e.ID)
	}
	b.append(e)
	return e.ID, nil
}

// Has reports whether an entry with the given ID was added.
func (b *Builder) Has(id string) bool {
	_, ok := b.ids[id]
	return ok
}

// Entries returns the entries in declaration order.
func (b *Builder) Entries() []record.Entry {
	return append([]record.Entry(nil), b.entries...)
}

// Warnings returns the warnings raised while building.
func (b *Builder) Warnings() record.Warnings {
	return b.warnings
}

func (b *Builder) entry(kind record.EntryKind, a Asset) record.Entry {
	id := strings.TrimSpace(a.ID)
	if id == "" {
		id = strings.TrimSpace(a.Name)
	}
	if id == "" && a.Href != "" {
		id = path.Base(StripQuery(a.Href))
	}
	name := a.Name
	if name == "" {
		name = id
	}
	e := record.Entry{
		Kind:           kind,
		ID:             id,
		Name:           name,
		Description:    a.Description,
		ContentURL:     a.Href,
		EncodingFormat: a.Format,
		ContentSize:    a.Size,
		Bands:          bands.Config(a.Bands),
	}
	if e.EncodingFormat == "" && kind == record.FileObject {
		e.EncodingFormat = b.format(a.Href, id)
	}
	return e
}

func (b *Builder) format(name, id string) string {
	f, ok := FormatForName(name)
	if !ok {
		b.logger.Info("Unknown file extension, using fallback format",
			slog.String("entry", id), slog.String("name", name), slog.String("format", f))
		b.warn(record.CodeFormatFallback, "unknown extension for %q, using %s", name, f)
	}
	return f
}

func (b *Builder) warn(code record.Code, format string, args ...any) {
	p := fmt.Sprintf("distribution[%d]", len(b.entries))
	b.warnings = append(b.warnings, record.Warn(code, p, format, args...))
}

func (b *Builder) lookup(id string) (record.Entry, bool) {
	for _, e := range b.entries {
		if e.ID == id {
			return e, true
		}
	}
	return record.Entry{}, false
}

func (b *Builder) append(e record.Entry) {
	b.ids[e.ID] = e.Kind
	b.entries = append(b.entries, e)
}
