package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// GenerationProfile is the on-disk shape of a generation profile, e.g.
//
//	fanout = 10
//	threshold = 10.0
//	links_per_star = 4.0
//	star_names = ["Vega", "Sirius"]
type GenerationProfile struct {
	Fanout       *int     `toml:"fanout"`
	Threshold    *float64 `toml:"threshold"`
	LinksPerStar *float64 `toml:"links_per_star"`
	StarNames    []string `toml:"star_names"`
}

// LoadGenerationProfile overlays the values present in a TOML profile onto base
func LoadGenerationProfile(path string, base GenerationConfig) (GenerationConfig, error) {
	var profile GenerationProfile
	meta, err := toml.DecodeFile(path, &profile)
	if err != nil {
		return GenerationConfig{}, fmt.Errorf("failed to read generation profile %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return GenerationConfig{}, fmt.Errorf("unknown keys in generation profile %s: %v", path, undecoded)
	}

	return profile.apply(base, path), nil
}

func (p GenerationProfile) apply(base GenerationConfig, path string) GenerationConfig {
	result := base
	result.ProfilePath = path
	if p.Fanout != nil {
		result.Fanout = *p.Fanout
	}
	if p.Threshold != nil {
		result.Threshold = *p.Threshold
	}
	if p.LinksPerStar != nil {
		result.LinksPerStar = *p.LinksPerStar
	}
	if len(p.StarNames) > 0 {
		result.StarNames = append([]string(nil), p.StarNames...)
	}
	return result
}
