package export

// Profile selects how much of a record a graph export carries.
type Profile string

const (
	// ProfileCore carries the catalog core: dataset identity, keywords,
	// spatial and temporal coverage and distributions.
	ProfileCore Profile = "core"

	// ProfileGeo adds the geospatial extension properties: reference
	// system, resolutions and band descriptions.
	ProfileGeo Profile = "geo"

	// ProfileFull adds record sets, fields, per-entry band configuration
	// and provenance links. It is the only profile a graph can be read
	// back from without loss.
	ProfileFull Profile = "full"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	Name        Profile
	Description string

	// IncludeGeo adds reference system and resolution properties.
	IncludeGeo bool

	// IncludeBands adds spectral band nodes.
	IncludeBands bool

	// IncludeRecordSets adds record set and field nodes.
	IncludeRecordSets bool

	// IncludeProvenance adds creator, reference and derivation links.
	IncludeProvenance bool
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileCore: {
		Name:        ProfileCore,
		Description: "Catalog core: identity, coverage and distributions",
	},
	ProfileGeo: {
		Name:         ProfileGeo,
		Description:  "Core plus reference system, resolutions and bands",
		IncludeGeo:   true,
		IncludeBands: true,
	},
	ProfileFull: {
		Name:              ProfileFull,
		Description:       "Everything the canonical record holds",
		IncludeGeo:        true,
		IncludeBands:      true,
		IncludeRecordSets: true,
		IncludeProvenance: true,
	},
}

// GetProfileConfig returns the configuration for a profile, falling back
// to the full profile.
func GetProfileConfig(profile Profile) ProfileConfig {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	return Profiles[ProfileFull]
}
