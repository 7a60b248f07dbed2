package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateLogging,
		c.validateScheduler,
		c.validatePipeline,
		c.validateLoudness,
		c.validateLaughter,
		c.validateEmotion,
		c.validateKeyword,
		c.validateMaterialize,
		c.validatePresets,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use auto, console, or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if err := nonNegative("scheduler.pre_pad", c.Scheduler.PrePad); err != nil {
		return err
	}
	if err := nonNegative("scheduler.post_pad", c.Scheduler.PostPad); err != nil {
		return err
	}
	if err := nonNegative("scheduler.min_gap", c.Scheduler.MinGap); err != nil {
		return err
	}
	if err := nonNegative("scheduler.coalesce_epsilon", c.Scheduler.CoalesceEpsilon); err != nil {
		return err
	}
	if c.Scheduler.PrePad+c.Scheduler.PostPad <= 0 {
		return errors.New("scheduler.pre_pad and scheduler.post_pad cannot both be zero")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers <= 0 {
		return errors.New("pipeline.workers must be positive")
	}
	if c.Pipeline.ProviderTimeout <= 0 {
		return errors.New("pipeline.provider_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLoudness() error {
	if c.Loudness.SilenceThreshDB > 0 || math.IsNaN(c.Loudness.SilenceThreshDB) {
		return errors.New("loudness.silence_thresh_db must be <= 0 dBFS")
	}
	if c.Loudness.MinSilenceMS < 0 {
		return errors.New("loudness.min_silence_ms must be >= 0")
	}
	if c.Loudness.FrameMS <= 0 {
		return errors.New("loudness.frame_ms must be positive")
	}
	return nil
}

func (c *Config) validateLaughter() error {
	if c.Laughter.FrameMS <= 0 {
		return errors.New("laughter.frame_ms must be positive")
	}
	if c.Laughter.Percentile <= 0 || c.Laughter.Percentile >= 1 {
		return errors.New("laughter.percentile must be between 0 and 1 (exclusive)")
	}
	if c.Laughter.BandLowHz < 0 || c.Laughter.BandHighHz <= c.Laughter.BandLowHz {
		return errors.New("laughter.band_high_hz must be greater than laughter.band_low_hz")
	}
	return nil
}

func (c *Config) validateEmotion() error {
	if !c.UsesProvider(ProviderEmotion) {
		return nil
	}
	if c.Emotion.URL == "" {
		return errors.New("emotion.url must be set when a preset enables the emotion provider (or set HIGHLIGHTER_EMOTION_URL)")
	}
	parsed, err := url.Parse(c.Emotion.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("emotion.url: invalid value %q", c.Emotion.URL)
	}
	if c.Emotion.SampleFPS <= 0 {
		return errors.New("emotion.sample_fps must be positive")
	}
	if c.Emotion.RequestsPerSecond <= 0 {
		return errors.New("emotion.requests_per_second must be positive")
	}
	if c.Emotion.RequestTimeout <= 0 {
		return errors.New("emotion.request_timeout must be positive")
	}
	if len(c.Emotion.Notable) == 0 {
		return errors.New("emotion.notable must list at least one emotion")
	}
	if c.Emotion.Device != "cpu" && !strings.HasPrefix(c.Emotion.Device, "cuda") {
		return fmt.Errorf("emotion.device: unsupported value %q (use cpu or cuda:N)", c.Emotion.Device)
	}
	return nil
}

func (c *Config) validateKeyword() error {
	if c.Keyword.ExcerptChars < 0 {
		return errors.New("keyword.excerpt_chars must be >= 0")
	}
	return nil
}

func (c *Config) validateMaterialize() error {
	if strings.TrimSpace(c.Materialize.VideoCodec) == "" {
		return errors.New("materialize.video_codec must be set")
	}
	if strings.TrimSpace(c.Materialize.AudioCodec) == "" {
		return errors.New("materialize.audio_codec must be set")
	}
	return nil
}

func (c *Config) validatePresets() error {
	if _, ok := c.Presets[c.Pipeline.Preset]; !ok {
		return fmt.Errorf("pipeline.preset: unknown preset %q", c.Pipeline.Preset)
	}
	for _, name := range c.PresetNames() {
		preset := c.Presets[name]
		if len(preset.Providers) == 0 {
			return fmt.Errorf("presets.%s.providers must list at least one provider", name)
		}
		for _, provider := range preset.Providers {
			switch provider {
			case ProviderLoudness, ProviderLaughter, ProviderEmotion, ProviderKeyword:
			default:
				return fmt.Errorf("presets.%s.providers: unknown provider %q", name, provider)
			}
		}
		for key, value := range map[string]*float64{"pre_pad": preset.PrePad, "post_pad": preset.PostPad, "min_gap": preset.MinGap} {
			if value == nil {
				continue
			}
			if err := nonNegative(fmt.Sprintf("presets.%s.%s", name, key), *value); err != nil {
				return err
			}
		}
	}
	return nil
}

// UsesProvider reports whether the active preset enables provider.
func (c *Config) UsesProvider(provider string) bool {
	preset, ok := c.Presets[c.Pipeline.Preset]
	if !ok {
		return false
	}
	for _, name := range preset.Providers {
		if name == provider {
			return true
		}
	}
	return false
}

func nonNegative(key string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be finite", key)
	}
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", key)
	}
	return nil
}
