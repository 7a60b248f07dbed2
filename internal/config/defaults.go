package config

const (
	defaultConfigPath = "~/.config/highlighter/config.toml"

	defaultUploadsDir = "~/.local/share/highlighter/uploads"
	defaultClipsDir   = "~/.local/share/highlighter/clips"
	defaultWorkDir    = "~/.cache/highlighter/work"
	defaultLogDir     = "~/.local/share/highlighter/logs"
	defaultStateDir   = "~/.local/share/highlighter"

	defaultLogFormat = "auto"
	defaultLogLevel  = "info"

	defaultPrePad          = 5.0
	defaultPostPad         = 15.0
	defaultMinGap          = 20.0
	defaultCoalesceEpsilon = 1.0

	defaultWorkers         = 2
	defaultProviderTimeout = 600
	defaultPreset          = PresetBalanced

	defaultSilenceThreshDB = -20.0
	defaultMinSilenceMS    = 1000
	defaultLoudnessFrameMS = 10

	defaultLaughterFrameMS = 50
	defaultPercentile      = 0.95
	defaultBandLowHz       = 300.0
	defaultBandHighHz      = 3000.0

	defaultEmotionURL      = "http://127.0.0.1:5005"
	defaultEmotionDevice   = "cpu"
	defaultSampleFPS       = 1.0
	defaultEmotionRPS      = 8.0
	defaultEmotionTimeout  = 30
	defaultWhisperXModel   = "large-v3-turbo"
	defaultWhisperLanguage = "en"
	defaultExcerptChars    = 60

	defaultVideoCodec = "libx264"
	defaultAudioCodec = "aac"

	defaultYtDlpFormat     = "bv*[height<=1080]+ba/best[height<=1080]"
	defaultDownloadTimeout = 1800
)

// Preset names.
const (
	PresetLoudness = "loudness"
	PresetBalanced = "balanced"
	PresetFull     = "full"
)

// Provider names accepted in preset provider lists.
const (
	ProviderLoudness = "loudness"
	ProviderLaughter = "laughter"
	ProviderEmotion  = "emotion"
	ProviderKeyword  = "keyword"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadsDir: defaultUploadsDir,
			ClipsDir:   defaultClipsDir,
			WorkDir:    defaultWorkDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Scheduler: Scheduler{
			PrePad:          defaultPrePad,
			PostPad:         defaultPostPad,
			MinGap:          defaultMinGap,
			CoalesceEpsilon: defaultCoalesceEpsilon,
		},
		Pipeline: Pipeline{
			Workers:         defaultWorkers,
			ProviderTimeout: defaultProviderTimeout,
			Preset:          defaultPreset,
		},
		Loudness: Loudness{
			SilenceThreshDB: defaultSilenceThreshDB,
			MinSilenceMS:    defaultMinSilenceMS,
			FrameMS:         defaultLoudnessFrameMS,
		},
		Laughter: Laughter{
			FrameMS:    defaultLaughterFrameMS,
			Percentile: defaultPercentile,
			BandLowHz:  defaultBandLowHz,
			BandHighHz: defaultBandHighHz,
		},
		Emotion: Emotion{
			URL:               defaultEmotionURL,
			Device:            defaultEmotionDevice,
			SampleFPS:         defaultSampleFPS,
			Notable:           []string{"happy", "sad", "angry"},
			RequestsPerSecond: defaultEmotionRPS,
			RequestTimeout:    defaultEmotionTimeout,
		},
		Keyword: Keyword{
			Model:        defaultWhisperXModel,
			Language:     defaultWhisperLanguage,
			ExcerptChars: defaultExcerptChars,
		},
		Materialize: Materialize{
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
		},
		Ingest: Ingest{
			YtDlpBinary:     "yt-dlp",
			Format:          defaultYtDlpFormat,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Presets: defaultPresets(),
	}
}

func defaultPresets() map[string]Preset {
	return map[string]Preset{
		PresetLoudness: {Providers: []string{ProviderLoudness}},
		PresetBalanced: {Providers: []string{ProviderLoudness, ProviderLaughter, ProviderKeyword}},
		PresetFull: {
			Providers: []string{ProviderLoudness, ProviderLaughter, ProviderEmotion, ProviderKeyword},
			PostPad:   floatPtr(20),
		},
	}
}

func floatPtr(v float64) *float64 { return &v }
