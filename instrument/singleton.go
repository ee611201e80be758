package instrument

import "sync"

// Global catalog instance and initialization guard.
var (
	globalCatalog *Catalog
	globalOnce    sync.Once
)

// Global returns the process-wide catalog. It holds the built-in tables
// unless InitGlobal ran first.
func Global() *Catalog {
	globalOnce.Do(func() {
		globalCatalog = NewDefaultCatalog()
	})
	return globalCatalog
}

// InitGlobal installs a custom catalog. Only the first call before any
// Global call has any effect.
func InitGlobal(c *Catalog) {
	globalOnce.Do(func() {
		globalCatalog = c
	})
}

// ResetGlobal resets the global catalog. Tests only.
func ResetGlobal() {
	globalOnce = sync.Once{}
	globalCatalog = nil
}
