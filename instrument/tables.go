package instrument

func sentinel2MSI() *Table {
	ch := func(id string, center, bandwidth float64, desc string) Channel {
		return Channel{ID: id, Description: desc, Center: center, Bandwidth: bandwidth, Unit: "nm"}
	}
	return &Table{
		ID:          "sentinel-2-msi",
		Platform:    "Sentinel-2",
		Instrument:  "MSI",
		Description: "Sentinel-2 MultiSpectral Instrument",
		Aliases:     []string{"MSI", "Sentinel-2", "Sentinel-2A", "Sentinel-2B", "Sentinel-2C"},
		Channels: []Channel{
			ch("B01", 443, 65, "Coastal aerosol"),
			ch("B02", 490, 65, "Blue"),
			ch("B03", 560, 60, "Green"),
			ch("B04", 665, 30, "Red"),
			ch("B05", 705, 15, "Red edge 1"),
			ch("B06", 740, 15, "Red edge 2"),
			ch("B07", 783, 20, "Red edge 3"),
			ch("B08", 842, 115, "NIR"),
			ch("B8A", 865, 20, "NIR narrow"),
			ch("B09", 945, 20, "Water vapour"),
			ch("B10", 1375, 30, "SWIR cirrus"),
			ch("B11", 1610, 90, "SWIR 1"),
			ch("B12", 2190, 180, "SWIR 2"),
		},
	}
}

func sdoAIA() *Table {
	ch := func(id, name string, center, bandwidth float64, desc string) Channel {
		return Channel{ID: id, Name: name, Description: desc, Center: center, Bandwidth: bandwidth, Unit: "Angstrom"}
	}
	return &Table{
		ID:          "sdo-aia",
		Platform:    "SDO",
		Instrument:  "AIA",
		Description: "Solar Dynamics Observatory Atmospheric Imaging Assembly",
		Aliases:     []string{"AIA", "SDO"},
		Channels: []Channel{
			ch("aia94", "AIA_94", 94, 3, "Fe XVIII emission, corona and flare plasma"),
			ch("aia131", "AIA_131", 131, 7, "Fe VIII/XXI emission, cool and hot plasma"),
			ch("aia171", "AIA_171", 171, 6, "Fe IX emission, quiet corona"),
			ch("aia193", "AIA_193", 193, 6, "Fe XII/XXIV emission, corona and hot flare plasma"),
			ch("aia211", "AIA_211", 211, 6, "Fe XIV emission, active regions"),
			ch("aia304", "AIA_304", 304, 4, "He II emission, chromosphere and transition region"),
			ch("aia335", "AIA_335", 335, 4, "Fe XVI emission, active region corona"),
			ch("aia1600", "AIA_1600", 1600, 55, "C IV continuum, upper photosphere and transition region"),
		},
	}
}
