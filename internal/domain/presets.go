package domain

import "sort"

// Presets are complete configs selectable by name. The png preset converts
// without resizing, so it carries no max bounds.
var presets = map[string]TransformConfig{
	"low": {
		MaxWidth:            1024,
		MaxHeight:           1024,
		Quality:             0.5,
		Format:              FormatJPEG,
		MaintainAspectRatio: true,
	},
	"medium": {
		MaxWidth:            1600,
		MaxHeight:           1600,
		Quality:             0.7,
		Format:              FormatJPEG,
		MaintainAspectRatio: true,
	},
	"high": {
		MaxWidth:            1920,
		MaxHeight:           1920,
		Quality:             0.85,
		Format:              FormatJPEG,
		MaintainAspectRatio: true,
	},
	"webp": {
		MaxWidth:            1920,
		MaxHeight:           1920,
		Quality:             0.8,
		Format:              FormatWEBP,
		MaintainAspectRatio: true,
	},
	"png": {
		Quality:             1,
		Format:              FormatPNG,
		MaintainAspectRatio: true,
		PreserveDimensions:  true,
	},
}

func Preset(name string) (TransformConfig, bool) {
	cfg, ok := presets[name]
	return cfg, ok
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
