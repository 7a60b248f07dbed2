package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizePipeline()
	c.normalizeEmotion()
	c.normalizeKeyword()
	c.normalizePresets()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
		def   string
	}{
		{"paths.uploads_dir", &c.Paths.UploadsDir, defaultUploadsDir},
		{"paths.clips_dir", &c.Paths.ClipsDir, defaultClipsDir},
		{"paths.work_dir", &c.Paths.WorkDir, defaultWorkDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.def
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizePipeline() {
	c.Pipeline.Preset = strings.ToLower(strings.TrimSpace(c.Pipeline.Preset))
	if c.Pipeline.Preset == "" {
		c.Pipeline.Preset = defaultPreset
	}
	c.Pipeline.Keywords = cleanList(c.Pipeline.Keywords, false)
}

func (c *Config) normalizeEmotion() {
	c.Emotion.URL = strings.TrimRight(strings.TrimSpace(c.Emotion.URL), "/")
	if value, ok := os.LookupEnv("HIGHLIGHTER_EMOTION_URL"); ok && strings.TrimSpace(value) != "" {
		c.Emotion.URL = strings.TrimRight(strings.TrimSpace(value), "/")
	}
	c.Emotion.Device = strings.ToLower(strings.TrimSpace(c.Emotion.Device))
	if c.Emotion.Device == "" {
		c.Emotion.Device = defaultEmotionDevice
	}
	c.Emotion.Notable = cleanList(c.Emotion.Notable, true)
}

func (c *Config) normalizeKeyword() {
	c.Keyword.Model = strings.TrimSpace(c.Keyword.Model)
	if c.Keyword.Model == "" {
		c.Keyword.Model = defaultWhisperXModel
	}
	c.Keyword.Language = strings.ToLower(strings.TrimSpace(c.Keyword.Language))
	c.Keyword.HFToken = strings.TrimSpace(c.Keyword.HFToken)
	if c.Keyword.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Keyword.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Keyword.HFToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePresets() {
	if c.Presets == nil {
		c.Presets = map[string]Preset{}
	}
	normalized := make(map[string]Preset, len(c.Presets))
	for name, preset := range c.Presets {
		preset.Providers = cleanList(preset.Providers, true)
		normalized[strings.ToLower(strings.TrimSpace(name))] = preset
	}
	for name, preset := range defaultPresets() {
		existing, ok := normalized[name]
		if !ok {
			normalized[name] = preset
			continue
		}
		if len(existing.Providers) == 0 {
			existing.Providers = preset.Providers
			normalized[name] = existing
		}
	}
	c.Presets = normalized
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(values []string, lower bool) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}
