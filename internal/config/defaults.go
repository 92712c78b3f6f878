package config

const (
	defaultWorkspace           = "."
	defaultInputVideo          = "stream_input.mp4"
	defaultMetaDir             = "assets/meta"
	defaultStreamMeta          = "assets/meta/stream_meta.json"
	defaultTranscript          = "assets/meta/transcript.json"
	defaultClips               = "assets/meta/clips.json"
	defaultEditSpec            = "assets/meta/editspec.json"
	defaultAugmentedEditSpec   = "assets/meta/augmented_editspec.json"
	defaultTimeline            = "assets/meta/timeline.fcpxml"
	defaultOutputsBaseDir      = "outputs"
	defaultShortsDirName       = "shorts"
	defaultCapsynthDirName     = "capsynth"
	defaultValidationDirName   = "validation"
	defaultRunsDir             = "runs"
	defaultRunIDMode           = "timestamp"
	defaultFFmpegBin           = "ffmpeg"
	defaultFFprobeBin          = "ffprobe"
	defaultYtDLPBin            = "yt-dlp"
	defaultWhisperBin          = "whisper-cli"
	defaultWhisperModel        = "models/ggml-base.en.bin"
	defaultEnvFile             = ".env"
	defaultRenderWidth         = 1080
	defaultRenderHeight        = 1920
	defaultFrameRate           = 30
	defaultFontSize            = 56
	defaultBorderWidth         = 3
	defaultEmphasisStyle       = "impact_flash"
	defaultEmphasisFontSize    = 64
	defaultEmphasisBorderWidth = 4
	defaultCaptionSeconds      = 2.0
	defaultAudioFilter         = "volume=1.0"
	defaultClipSpacingSeconds  = 10.0
	defaultIntroSeconds        = 2.0
	defaultOutroSeconds        = 2.0
	defaultTitleSeconds        = 2.0
	defaultSFXSeconds          = 1.0
	defaultProjectName         = "Pixal Shorts"
	defaultMaxDurationSeconds  = 60.0
	defaultMinDurationSeconds  = 1.0
	defaultMinWidth            = 720
	defaultMinHeight           = 1280
	defaultTargetAspect        = 9.0 / 16.0
	defaultAspectTolerance     = 0.10
	defaultMaxSizeMB           = 256.0
	defaultMinSizeMB           = 0.1
	defaultMaxTitleLength      = 100
	defaultMaxCaptionLength    = 500
	defaultDetectBaseURL       = "https://api.anthropic.com/v1/messages"
	defaultDetectModel         = "claude-sonnet-4-20250514"
	defaultDetectMaxTokens     = 2048
	defaultDetectTemperature   = 0.5
	defaultDetectSegments      = 40
	defaultCraftBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultCraftModel          = "gpt-4-turbo"
	defaultCraftTemperature    = 0.7
	defaultLLMTimeoutSeconds   = 120
	defaultVisibility          = "private"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogDir              = "logs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Workspace:         defaultWorkspace,
			InputVideo:        defaultInputVideo,
			MetaDir:           defaultMetaDir,
			StreamMeta:        defaultStreamMeta,
			Transcript:        defaultTranscript,
			Clips:             defaultClips,
			EditSpec:          defaultEditSpec,
			AugmentedEditSpec: defaultAugmentedEditSpec,
			Timeline:          defaultTimeline,
		},
		Outputs: Outputs{
			BaseDir:           defaultOutputsBaseDir,
			ShortsDirName:     defaultShortsDirName,
			CapsynthDirName:   defaultCapsynthDirName,
			ValidationDirName: defaultValidationDirName,
			RunsDir:           defaultRunsDir,
		},
		Runtime: Runtime{
			EnableRunIDs: true,
			RunIDMode:    defaultRunIDMode,
			FFmpegBin:    defaultFFmpegBin,
			FFprobeBin:   defaultFFprobeBin,
			YtDLPBin:     defaultYtDLPBin,
			WhisperBin:   defaultWhisperBin,
			WhisperModel: defaultWhisperModel,
			EnvFile:      defaultEnvFile,
		},
		Render: Render{
			Width:               defaultRenderWidth,
			Height:              defaultRenderHeight,
			FrameRate:           defaultFrameRate,
			FontSize:            defaultFontSize,
			BorderWidth:         defaultBorderWidth,
			EmphasisStyle:       defaultEmphasisStyle,
			EmphasisFontSize:    defaultEmphasisFontSize,
			EmphasisBorderWidth: defaultEmphasisBorderWidth,
			CaptionSeconds:      defaultCaptionSeconds,
			AudioFilter:         defaultAudioFilter,
		},
		Timeline: Timeline{
			ClipSpacingSeconds: defaultClipSpacingSeconds,
			IntroSeconds:       defaultIntroSeconds,
			OutroSeconds:       defaultOutroSeconds,
			TitleSeconds:       defaultTitleSeconds,
			SFXSeconds:         defaultSFXSeconds,
			ProjectName:        defaultProjectName,
		},
		Validation: Validation{
			MaxDurationSeconds: defaultMaxDurationSeconds,
			MinDurationSeconds: defaultMinDurationSeconds,
			MinWidth:           defaultMinWidth,
			MinHeight:          defaultMinHeight,
			TargetAspect:       defaultTargetAspect,
			AspectTolerance:    defaultAspectTolerance,
			MaxSizeMB:          defaultMaxSizeMB,
			MinSizeMB:          defaultMinSizeMB,
			MaxTitleLength:     defaultMaxTitleLength,
			MaxCaptionLength:   defaultMaxCaptionLength,
		},
		Detect: Detect{
			BaseURL:            defaultDetectBaseURL,
			Model:              defaultDetectModel,
			MaxTokens:          defaultDetectMaxTokens,
			Temperature:        defaultDetectTemperature,
			TranscriptSegments: defaultDetectSegments,
			TimeoutSeconds:     defaultLLMTimeoutSeconds,
		},
		Craft: Craft{
			BaseURL:        defaultCraftBaseURL,
			Model:          defaultCraftModel,
			Temperature:    defaultCraftTemperature,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Publish: Publish{
			Platforms:         []string{"youtube"},
			DefaultVisibility: defaultVisibility,
			Tags:              []string{"shorts", "gaming", "highlights"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}
