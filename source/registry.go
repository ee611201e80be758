package source

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/c360studio/geocrosswalk/instrument"
	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/record"
)

var (
	// ErrUnknownSchema is returned when no adapter is registered under a
	// schema name.
	ErrUnknownSchema = errors.New("unknown source schema")

	// ErrUndetected is returned when no adapter recognizes a document.
	ErrUndetected = errors.New("no adapter recognizes the document")
)

// Adapter extracts an Intermediate from one raw document. Missing optional
// data degrades to warnings; only a *record.ShapeError is fatal.
type Adapter interface {
	// Name is the schema name the adapter is registered under.
	Name() string

	// Description is a one-line summary for listings.
	Description() string

	Extract(raw []byte) (*Intermediate, record.Warnings, error)
}

// Detector is implemented by adapters that can recognize their documents.
type Detector interface {
	Detect(doc jsondoc.Value) bool
}

// CatalogUser is implemented by adapters that resolve instrument tables
// while extracting. The driver hands them its catalog before each run.
type CatalogUser interface {
	WithCatalog(c *instrument.Catalog) Adapter
}

// Registry manages source adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Names must be unique.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[a.Name()]; ok {
		return fmt.Errorf("adapter %q already registered", a.Name())
	}
	r.adapters[a.Name()] = a
	r.order = append(r.order, a.Name())
	return nil
}

// Get returns the adapter for a schema name.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return a, nil
}

// Names returns the registered schema names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Detect returns the adapter that recognizes raw. Adapters are asked in
// sorted name order and the first match wins.
func (r *Registry) Detect(raw []byte) (Adapter, error) {
	doc, err := jsondoc.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndetected, err)
	}
	for _, name := range r.Names() {
		a, _ := r.Get(name)
		if d, ok := a.(Detector); ok && d.Detect(doc) {
			return a, nil
		}
	}
	return nil, ErrUndetected
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry adapters register into.
func Default() *Registry {
	return defaultRegistry
}

// Register adds an adapter to the default registry. It panics on a
// duplicate name, which can only happen through a programming error.
func Register(a Adapter) {
	if err := defaultRegistry.Register(a); err != nil {
		panic(err)
	}
}

// Parse decodes raw for an adapter, turning a decoding failure into a
// ShapeError for schema.
func Parse(schema string, raw []byte) (jsondoc.Value, error) {
	doc, err := jsondoc.Parse(raw)
	if err != nil {
		se := record.NewShapeError(schema, "", "document is not valid JSON")
		se.Err = err
		return jsondoc.Value{}, se
	}
	if !doc.IsObject() {
		return jsondoc.Value{}, record.NewShapeError(schema, "", "document is a %s, not an object", doc.Kind())
	}
	return doc, nil
}
