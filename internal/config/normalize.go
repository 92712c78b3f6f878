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
	if err := c.normalizeOutputs(); err != nil {
		return err
	}
	if err := c.normalizeRuntime(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeTimeline()
	c.normalizeValidation()
	c.normalizeModels()
	c.normalizePublish()
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	workspace := strings.TrimSpace(c.Paths.Workspace)
	if workspace == "" || workspace == defaultWorkspace {
		if value, ok := os.LookupEnv("PIXAL_WORKSPACE"); ok && strings.TrimSpace(value) != "" {
			workspace = strings.TrimSpace(value)
		}
	}
	if workspace == "" {
		workspace = defaultWorkspace
	}
	var err error
	if c.Paths.Workspace, err = expandPath(workspace); err != nil {
		return fmt.Errorf("paths.workspace: %w", err)
	}

	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.input_video", &c.Paths.InputVideo, defaultInputVideo},
		{"paths.meta_dir", &c.Paths.MetaDir, defaultMetaDir},
		{"paths.stream_meta", &c.Paths.StreamMeta, defaultStreamMeta},
		{"paths.transcript", &c.Paths.Transcript, defaultTranscript},
		{"paths.clips", &c.Paths.Clips, defaultClips},
		{"paths.editspec", &c.Paths.EditSpec, defaultEditSpec},
		{"paths.augmented_editspec", &c.Paths.AugmentedEditSpec, defaultAugmentedEditSpec},
		{"paths.fcpxml", &c.Paths.Timeline, defaultTimeline},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		resolved, err := resolveIn(c.Paths.Workspace, *field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = resolved
	}
	return nil
}

func (c *Config) normalizeOutputs() error {
	var err error
	if strings.TrimSpace(c.Outputs.BaseDir) == "" {
		c.Outputs.BaseDir = defaultOutputsBaseDir
	}
	if c.Outputs.BaseDir, err = resolveIn(c.Paths.Workspace, c.Outputs.BaseDir); err != nil {
		return fmt.Errorf("outputs.base_dir: %w", err)
	}
	if strings.TrimSpace(c.Outputs.RunsDir) == "" {
		c.Outputs.RunsDir = defaultRunsDir
	}
	if c.Outputs.RunsDir, err = resolveIn(c.Paths.Workspace, c.Outputs.RunsDir); err != nil {
		return fmt.Errorf("outputs.runs_dir: %w", err)
	}
	c.Outputs.ShortsDirName = defaultString(c.Outputs.ShortsDirName, defaultShortsDirName)
	c.Outputs.CapsynthDirName = defaultString(c.Outputs.CapsynthDirName, defaultCapsynthDirName)
	c.Outputs.ValidationDirName = defaultString(c.Outputs.ValidationDirName, defaultValidationDirName)
	return nil
}

func (c *Config) normalizeRuntime() error {
	c.Runtime.RunIDMode = strings.ToLower(strings.TrimSpace(c.Runtime.RunIDMode))
	if c.Runtime.RunIDMode == "" {
		c.Runtime.RunIDMode = defaultRunIDMode
	}
	c.Runtime.FFmpegBin = defaultString(c.Runtime.FFmpegBin, defaultFFmpegBin)
	c.Runtime.FFprobeBin = defaultString(c.Runtime.FFprobeBin, defaultFFprobeBin)
	c.Runtime.YtDLPBin = defaultString(c.Runtime.YtDLPBin, defaultYtDLPBin)
	c.Runtime.WhisperBin = defaultString(c.Runtime.WhisperBin, defaultWhisperBin)

	var err error
	if c.Runtime.WhisperModel, err = resolveIn(c.Paths.Workspace, defaultString(c.Runtime.WhisperModel, defaultWhisperModel)); err != nil {
		return fmt.Errorf("runtime.whisper_model: %w", err)
	}
	if c.Runtime.EnvFile, err = resolveIn(c.Paths.Workspace, defaultString(c.Runtime.EnvFile, defaultEnvFile)); err != nil {
		return fmt.Errorf("runtime.env_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() {
	c.Render.Width = defaultInt(c.Render.Width, defaultRenderWidth)
	c.Render.Height = defaultInt(c.Render.Height, defaultRenderHeight)
	c.Render.FrameRate = defaultInt(c.Render.FrameRate, defaultFrameRate)
	c.Render.FontSize = defaultInt(c.Render.FontSize, defaultFontSize)
	c.Render.BorderWidth = defaultInt(c.Render.BorderWidth, defaultBorderWidth)
	c.Render.EmphasisFontSize = defaultInt(c.Render.EmphasisFontSize, defaultEmphasisFontSize)
	c.Render.EmphasisBorderWidth = defaultInt(c.Render.EmphasisBorderWidth, defaultEmphasisBorderWidth)
	c.Render.EmphasisStyle = strings.ToLower(strings.TrimSpace(c.Render.EmphasisStyle))
	c.Render.CaptionSeconds = defaultFloat(c.Render.CaptionSeconds, defaultCaptionSeconds)
	c.Render.AudioFilter = defaultString(c.Render.AudioFilter, defaultAudioFilter)
}

func (c *Config) normalizeTimeline() {
	c.Timeline.ClipSpacingSeconds = defaultFloat(c.Timeline.ClipSpacingSeconds, defaultClipSpacingSeconds)
	c.Timeline.IntroSeconds = defaultFloat(c.Timeline.IntroSeconds, defaultIntroSeconds)
	c.Timeline.OutroSeconds = defaultFloat(c.Timeline.OutroSeconds, defaultOutroSeconds)
	c.Timeline.TitleSeconds = defaultFloat(c.Timeline.TitleSeconds, defaultTitleSeconds)
	c.Timeline.SFXSeconds = defaultFloat(c.Timeline.SFXSeconds, defaultSFXSeconds)
	c.Timeline.ProjectName = defaultString(c.Timeline.ProjectName, defaultProjectName)
}

func (c *Config) normalizeValidation() {
	v := &c.Validation
	v.MaxDurationSeconds = defaultFloat(v.MaxDurationSeconds, defaultMaxDurationSeconds)
	v.MinDurationSeconds = defaultFloat(v.MinDurationSeconds, defaultMinDurationSeconds)
	v.MinWidth = defaultInt(v.MinWidth, defaultMinWidth)
	v.MinHeight = defaultInt(v.MinHeight, defaultMinHeight)
	v.TargetAspect = defaultFloat(v.TargetAspect, defaultTargetAspect)
	v.AspectTolerance = defaultFloat(v.AspectTolerance, defaultAspectTolerance)
	v.MaxSizeMB = defaultFloat(v.MaxSizeMB, defaultMaxSizeMB)
	v.MinSizeMB = defaultFloat(v.MinSizeMB, defaultMinSizeMB)
	v.MaxTitleLength = defaultInt(v.MaxTitleLength, defaultMaxTitleLength)
	v.MaxCaptionLength = defaultInt(v.MaxCaptionLength, defaultMaxCaptionLength)
}

func (c *Config) normalizeModels() {
	c.Detect.BaseURL = defaultString(c.Detect.BaseURL, defaultDetectBaseURL)
	c.Detect.Model = defaultString(c.Detect.Model, defaultDetectModel)
	c.Detect.MaxTokens = defaultInt(c.Detect.MaxTokens, defaultDetectMaxTokens)
	c.Detect.TranscriptSegments = defaultInt(c.Detect.TranscriptSegments, defaultDetectSegments)
	c.Detect.TimeoutSeconds = defaultInt(c.Detect.TimeoutSeconds, defaultLLMTimeoutSeconds)
	c.Craft.BaseURL = defaultString(c.Craft.BaseURL, defaultCraftBaseURL)
	c.Craft.Model = defaultString(c.Craft.Model, defaultCraftModel)
	c.Craft.TimeoutSeconds = defaultInt(c.Craft.TimeoutSeconds, defaultLLMTimeoutSeconds)
}

func (c *Config) normalizePublish() {
	c.Publish.DefaultVisibility = strings.ToLower(strings.TrimSpace(c.Publish.DefaultVisibility))
	if c.Publish.DefaultVisibility == "" {
		c.Publish.DefaultVisibility = defaultVisibility
	}
	c.Publish.Platforms = dedupeLower(c.Publish.Platforms)
	if len(c.Publish.Platforms) == 0 {
		c.Publish.Platforms = []string{"youtube"}
	}
	c.Publish.Tags = dedupeLower(c.Publish.Tags)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = resolveIn(c.Paths.Workspace, defaultString(c.Logging.Dir, defaultLogDir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func defaultInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func defaultFloat(value, fallback float64) float64 {
	if value <= 0 {
		return fallback
	}
	return value
}

func dedupeLower(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
