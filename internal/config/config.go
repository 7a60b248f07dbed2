package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working directories.
type Paths struct {
	UploadsDir string `toml:"uploads_dir"`
	ClipsDir   string `toml:"clips_dir"`
	WorkDir    string `toml:"work_dir"`
	LogDir     string `toml:"log_dir"`
	StateDir   string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Scheduler holds the windowing constants, in seconds.
type Scheduler struct {
	PrePad          float64 `toml:"pre_pad"`
	PostPad         float64 `toml:"post_pad"`
	MinGap          float64 `toml:"min_gap"`
	CoalesceEpsilon float64 `toml:"coalesce_epsilon"`
}

// Pipeline controls orchestration.
type Pipeline struct {
	Workers         int      `toml:"workers"`
	ProviderTimeout int      `toml:"provider_timeout"`
	Preset          string   `toml:"preset"`
	Keywords        []string `toml:"keywords"`
}

// Loudness configures the energy-threshold provider.
type Loudness struct {
	SilenceThreshDB float64 `toml:"silence_thresh_db"`
	MinSilenceMS    int     `toml:"min_silence_ms"`
	FrameMS         int     `toml:"frame_ms"`
}

// Laughter configures the self-relative band energy provider.
type Laughter struct {
	FrameMS    int     `toml:"frame_ms"`
	Percentile float64 `toml:"percentile"`
	BandLowHz  float64 `toml:"band_low_hz"`
	BandHighHz float64 `toml:"band_high_hz"`
}

// Emotion configures the frame classifier client.
type Emotion struct {
	URL               string   `toml:"url"`
	Device            string   `toml:"device"`
	SampleFPS         float64  `toml:"sample_fps"`
	Notable           []string `toml:"notable"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	RequestTimeout    int      `toml:"request_timeout"`
}

// Keyword configures the WhisperX transcription pass.
type Keyword struct {
	Model        string `toml:"whisperx_model"`
	Language     string `toml:"language"`
	CUDAEnabled  bool   `toml:"whisperx_cuda_enabled"`
	HFToken      string `toml:"whisperx_hf_token"`
	ExcerptChars int    `toml:"excerpt_chars"`
}

// Materialize configures clip extraction.
type Materialize struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	VideoCodec    string `toml:"video_codec"`
	AudioCodec    string `toml:"audio_codec"`
}

// Ingest configures remote downloads.
type Ingest struct {
	YtDlpBinary     string `toml:"ytdlp_binary"`
	Format          string `toml:"format"`
	DownloadTimeout int    `toml:"download_timeout"`
}

// Preset bundles a provider set with optional scheduler overrides.
type Preset struct {
	Providers []string `toml:"providers"`
	PrePad    *float64 `toml:"pre_pad,omitempty"`
	PostPad   *float64 `toml:"post_pad,omitempty"`
	MinGap    *float64 `toml:"min_gap,omitempty"`
}

// Config encapsulates all configuration values for the highlighter.
//
// Configuration sections by subsystem:
//   - Paths: upload, clip, work, log and state directories
//   - Scheduler: padding, cooldown and coalescing constants
//   - Pipeline: worker pool, provider timeout, preset and keywords
//   - Loudness, Laughter, Emotion, Keyword: per-provider tuning
//   - Materialize: ffmpeg binaries and codecs
//   - Ingest: yt-dlp download settings
//   - Presets: named provider sets
type Config struct {
	Paths       Paths             `toml:"paths"`
	Logging     Logging           `toml:"logging"`
	Scheduler   Scheduler         `toml:"scheduler"`
	Pipeline    Pipeline          `toml:"pipeline"`
	Loudness    Loudness          `toml:"loudness"`
	Laughter    Laughter          `toml:"laughter"`
	Emotion     Emotion           `toml:"emotion"`
	Keyword     Keyword           `toml:"keyword"`
	Materialize Materialize       `toml:"materialize"`
	Ingest      Ingest            `toml:"ingest"`
	Presets     map[string]Preset `toml:"presets"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("highlighter.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the working directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadsDir, c.Paths.ClipsDir, c.Paths.WorkDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the sqlite run ledger location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	if c != nil && strings.TrimSpace(c.Materialize.FFmpegBinary) != "" {
		return c.Materialize.FFmpegBinary
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	if c != nil && strings.TrimSpace(c.Materialize.FFprobeBinary) != "" {
		return c.Materialize.FFprobeBinary
	}
	return "ffprobe"
}

// YtDlpBinary returns the yt-dlp executable name.
func (c *Config) YtDlpBinary() string {
	if c != nil && strings.TrimSpace(c.Ingest.YtDlpBinary) != "" {
		return c.Ingest.YtDlpBinary
	}
	return "yt-dlp"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
