package config

import (
	"fmt"
	"sort"
	"strings"
)

// ResolvedPreset is a preset with scheduler overrides applied.
type ResolvedPreset struct {
	Name      string
	Providers []string
	Scheduler Scheduler
}

// Preset resolves a named preset against the scheduler defaults. An empty
// name selects pipeline.preset.
func (c *Config) Preset(name string) (ResolvedPreset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = c.Pipeline.Preset
	}
	preset, ok := c.Presets[name]
	if !ok {
		return ResolvedPreset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(c.PresetNames(), ", "))
	}
	resolved := ResolvedPreset{
		Name:      name,
		Providers: append([]string(nil), preset.Providers...),
		Scheduler: c.Scheduler,
	}
	if preset.PrePad != nil {
		resolved.Scheduler.PrePad = *preset.PrePad
	}
	if preset.PostPad != nil {
		resolved.Scheduler.PostPad = *preset.PostPad
	}
	if preset.MinGap != nil {
		resolved.Scheduler.MinGap = *preset.MinGap
	}
	return resolved, nil
}

// PresetNames lists configured presets alphabetically.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
