// Package bands unifies band descriptors from explicit lists, fixed
// instrument tables and array shapes into one ordered, uniquely named list.
package bands

import (
	"fmt"
	"strconv"

	"github.com/c360studio/geocrosswalk/instrument"
	"github.com/c360studio/geocrosswalk/record"
)

// Descriptor is a band as a source describes it. Wavelength is a combined
// value and unit string ("865nm") used when Center is absent.
type Descriptor struct {
	Name        string
	Description string
	Center      record.Optional[record.Quantity]
	Bandwidth   record.Optional[record.Quantity]
	Wavelength  string
	Quantity    string
}

// Registry accumulates bands in insertion order.
type Registry struct {
	bands    []record.Band
	names    map[string]bool
	warnings record.Warnings
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Add appends a band. A name already in use gets the first free numeric
// suffix starting at _2. The final name is returned.
func (r *Registry) Add(b record.Band) string {
	name := b.Name
	if r.names[name] {
		for i := 2; ; i++ {
			candidate := name + "_" + strconv.Itoa(i)
			if !r.names[candidate] {
				r.warnings = append(r.warnings, record.Warn(record.CodeBandRenamed,
					fmt.Sprintf("bands[%d]", len(r.bands)), "band %q renamed to %q", name, candidate))
				name = candidate
				break
			}
		}
	}
	b.Name = name
	r.names[name] = true
	r.bands = append(r.bands, b)
	return name
}

// AddExplicit adds bands from an explicit descriptor list.
func (r *Registry) AddExplicit(ds []Descriptor) []string {
	out := make([]string, 0, len(ds))
	for i, d := range ds {
		b := record.Band{
			Name:        d.Name,
			Description: d.Description,
			Center:      d.Center,
			Bandwidth:   d.Bandwidth,
			Quantity:    d.Quantity,
		}
		if b.Name == "" {
			b.Name = fmt.Sprintf("Band%d", i+1)
		}
		if !b.Center.IsSet() && d.Wavelength != "" {
			if q, ok := SplitValueUnit(d.Wavelength); ok {
				b.Center = record.Some(q)
			} else {
				r.warnings = append(r.warnings, record.Warn(record.CodeUnitUnparsed,
					fmt.Sprintf("bands[%d]", len(r.bands)), "cannot split value and unit from %q", d.Wavelength))
			}
		}
		out = append(out, r.Add(b))
	}
	return out
}

// AddFromInstrument adds the named channels of a fixed instrument table.
// An empty channel list adds every channel in table order. Channels missing
// from the table are added by name only.
func (r *Registry) AddFromInstrument(table *instrument.Table, channelIDs []string) []string {
	if len(channelIDs) == 0 {
		channelIDs = table.ChannelIDs()
	}
	out := make([]string, 0, len(channelIDs))
	for _, id := range channelIDs {
		ch, ok := table.Channel(id)
		if !ok {
			r.warnings = append(r.warnings, record.Warn(record.CodeFieldMissing,
				fmt.Sprintf("bands[%d]", len(r.bands)), "channel %q is not in the %s table", id, table.ID))
			out = append(out, r.Add(record.Band{Name: id}))
			continue
		}
		b := record.Band{Name: ch.BandName(), Description: ch.Description}
		if ch.Center != 0 {
			b.Center = record.Some(record.Quantity{Value: ch.Center, Unit: ch.Unit})
		}
		if ch.Bandwidth != 0 {
			b.Bandwidth = record.Some(record.Quantity{Value: ch.Bandwidth, Unit: ch.Unit})
		}
		out = append(out, r.Add(b))
	}
	return out
}

// AddLayout adds one band per inferred layout name.
func (r *Registry) AddLayout(l Layout, description string) []string {
	out := make([]string, 0, len(l.Names))
	for _, n := range l.Names {
		out = append(out, r.Add(record.Band{Name: n, Description: description}))
	}
	return out
}

// Bands returns a copy of the accumulated bands.
func (r *Registry) Bands() []record.Band {
	return append([]record.Band(nil), r.bands...)
}

// Len returns the number of bands.
func (r *Registry) Len() int {
	return len(r.bands)
}

// Warnings returns the warnings raised while adding bands.
func (r *Registry) Warnings() record.Warnings {
	return r.warnings
}

// Config builds a per-entry band configuration. It returns nil for an
// empty name list.
func Config(names []string) *record.BandConfig {
	if len(names) == 0 {
		return nil
	}
	return &record.BandConfig{Names: append([]string(nil), names...)}
}
