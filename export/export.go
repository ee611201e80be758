// Package export defines the exporter contract and the shared machinery
// exporters use: the exporter registry, the ordered JSON object and the RDF
// graph writers.
//
// Exporters are pure. Given the same sealed record they produce the same
// bytes, so a document can be diffed or hashed across runs.
package export

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/c360studio/geocrosswalk/record"
)

// ErrUnknownExporter is returned when no exporter is registered under a
// requested name.
var ErrUnknownExporter = errors.New("unknown exporter")

// ErrUnsealed is returned when an exporter receives a record that was not
// sealed by a run.
var ErrUnsealed = errors.New("record is not sealed")

// Document is one serialized export.
type Document struct {
	Exporter  string
	MediaType string
	Extension string
	Body      []byte
}

// Exporter serializes a canonical record into one target schema.
type Exporter interface {
	Name() string
	Description() string
	MediaType() string
	Extension() string
	Export(rec record.Record) (Document, error)
}

// Registry maps exporter names to exporters.
type Registry struct {
	mu        sync.RWMutex
	exporters map[string]Exporter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{exporters: make(map[string]Exporter)}
}

// Register adds an exporter. Names must be unique.
func (r *Registry) Register(e Exporter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.exporters[e.Name()]; exists {
		return fmt.Errorf("exporter %q already registered", e.Name())
	}
	r.exporters[e.Name()] = e
	return nil
}

// Get returns the exporter registered under name.
func (r *Registry) Get(name string) (Exporter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.exporters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, name)
	}
	return e, nil
}

// Names returns the registered exporter names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.exporters))
	for n := range r.exporters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry exporters add themselves to
// from init.
func Default() *Registry {
	return defaultRegistry
}

// Register adds an exporter to the default registry. It panics on a
// duplicate name since that is a wiring bug.
func Register(e Exporter) {
	if err := defaultRegistry.Register(e); err != nil {
		panic("failed to register exporter: " + err.Error())
	}
}

// CheckSealed returns ErrUnsealed for a record that was not sealed.
func CheckSealed(rec *record.Record) error {
	if !rec.Sealed() {
		return ErrUnsealed
	}
	return nil
}
