// Package instrument holds lookup tables for fixed instruments whose channel
// characteristics are known ahead of time, so a source that only names its
// channels can still describe them fully.
package instrument

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Channel describes one instrument channel.
type Channel struct {
	// ID is the channel identifier used by sources ("B8A", "aia171").
	ID string `yaml:"id"`

	// Name is the canonical band name. Defaults to ID.
	Name string `yaml:"name,omitempty"`

	Description string `yaml:"description,omitempty"`

	// Center and Bandwidth are in Unit.
	Center    float64 `yaml:"center"`
	Bandwidth float64 `yaml:"bandwidth,omitempty"`
	Unit      string  `yaml:"unit"`
}

// BandName returns the canonical band name of the channel.
func (c Channel) BandName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Table is the channel table of one instrument.
type Table struct {
	ID          string `yaml:"id"`
	Platform    string `yaml:"platform"`
	Instrument  string `yaml:"instrument"`
	Description string `yaml:"description,omitempty"`

	// Aliases are platform or instrument short names that select this
	// table, matched case-insensitively.
	Aliases  []string  `yaml:"aliases,omitempty"`
	Channels []Channel `yaml:"channels"`
}

// Channel returns the channel with the given ID, matched
// case-insensitively and ignoring zero padding ("B1" finds "B01").
func (t *Table) Channel(id string) (Channel, bool) {
	want := channelKey(id)
	for _, ch := range t.Channels {
		if channelKey(ch.ID) == want {
			return ch, true
		}
	}
	return Channel{}, false
}

// channelKey lowercases an ID and drops leading zeros from its first digit
// run.
func channelKey(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	i := strings.IndexAny(id, "0123456789")
	if i < 0 {
		return id
	}
	j := i
	for j < len(id)-1 && id[j] == '0' && id[j+1] >= '0' && id[j+1] <= '9' {
		j++
	}
	return id[:i] + id[j:]
}

// ChannelIDs returns the channel IDs in table order.
func (t *Table) ChannelIDs() []string {
	ids := make([]string, len(t.Channels))
	for i, ch := range t.Channels {
		ids[i] = ch.ID
	}
	return ids
}

// Catalog indexes instrument tables by ID and alias.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*Table
	alias  map[string]string
}

// NewCatalog creates a catalog holding the given tables.
func NewCatalog(tables ...*Table) *Catalog {
	c := &Catalog{
		tables: make(map[string]*Table),
		alias:  make(map[string]string),
	}
	for _, t := range tables {
		c.Register(t)
	}
	return c
}

// NewDefaultCatalog creates a catalog with the built-in instrument tables.
func NewDefaultCatalog() *Catalog {
	return NewCatalog(sentinel2MSI(), sdoAIA())
}

// Register adds or replaces a table.
func (c *Catalog) Register(t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tables[t.ID] = t
	c.alias[strings.ToLower(t.ID)] = t.ID
	for _, a := range t.Aliases {
		c.alias[strings.ToLower(a)] = t.ID
	}
}

// Get returns the table with the given ID or alias.
func (c *Catalog) Get(name string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.alias[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	t, ok := c.tables[id]
	return t, ok
}

// Resolve finds a table from a platform and instrument pair, trying the
// instrument first.
func (c *Catalog) Resolve(platform, instrument string) (*Table, bool) {
	if t, ok := c.Get(instrument); ok {
		return t, true
	}
	return c.Get(platform)
}

// List returns the table IDs in sorted order.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.tables))
	for id := range c.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadYAML registers the tables listed in a YAML document of the form
// "instruments: [...]".
func (c *Catalog) LoadYAML(data []byte) error {
	var doc struct {
		Instruments []*Table `yaml:"instruments"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse instrument tables: %w", err)
	}
	for _, t := range doc.Instruments {
		if err := t.Validate(); err != nil {
			return err
		}
		c.Register(t)
	}
	return nil
}

// Validate checks a table for required fields.
func (t *Table) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("instrument table: id is required")
	}
	seen := make(map[string]bool, len(t.Channels))
	for i, ch := range t.Channels {
		if ch.ID == "" {
			return fmt.Errorf("instrument table %s: channel %d has no id", t.ID, i)
		}
		if seen[ch.ID] {
			return fmt.Errorf("instrument table %s: duplicate channel %s", t.ID, ch.ID)
		}
		seen[ch.ID] = true
	}
	return nil
}
