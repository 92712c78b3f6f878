package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the workspace root and the fixed artifact locations.
// Relative entries resolve against Workspace.
type Paths struct {
	Workspace         string `toml:"workspace" yaml:"workspace"`
	InputVideo        string `toml:"input_video" yaml:"input_video"`
	MetaDir           string `toml:"meta_dir" yaml:"meta_dir"`
	StreamMeta        string `toml:"stream_meta" yaml:"stream_meta"`
	Transcript        string `toml:"transcript" yaml:"transcript"`
	Clips             string `toml:"clips" yaml:"clips"`
	EditSpec          string `toml:"editspec" yaml:"editspec"`
	AugmentedEditSpec string `toml:"augmented_editspec" yaml:"augmented_editspec"`
	Timeline          string `toml:"fcpxml" yaml:"fcpxml"`
}

// Outputs contains the overwrite-in-place output tree and the run archive root.
type Outputs struct {
	BaseDir           string `toml:"base_dir" yaml:"base_dir"`
	ShortsDirName     string `toml:"shorts_dir_name" yaml:"shorts_dir_name"`
	CapsynthDirName   string `toml:"capsynth_dir_name" yaml:"capsynth_dir_name"`
	ValidationDirName string `toml:"validation_dir_name" yaml:"validation_dir_name"`
	RunsDir           string `toml:"runs_dir" yaml:"runs_dir"`
}

// Runtime contains external binaries, run identifier policy, and process timeouts.
type Runtime struct {
	EnableRunIDs          bool   `toml:"enable_run_ids" yaml:"enable_run_ids"`
	RunIDMode             string `toml:"run_id_mode" yaml:"run_id_mode"`
	FFmpegBin             string `toml:"ffmpeg_bin" yaml:"ffmpeg_bin"`
	FFprobeBin            string `toml:"ffprobe_bin" yaml:"ffprobe_bin"`
	YtDLPBin              string `toml:"ytdlp_bin" yaml:"ytdlp_bin"`
	WhisperBin            string `toml:"whisper_bin" yaml:"whisper_bin"`
	WhisperModel          string `toml:"whisper_model" yaml:"whisper_model"`
	EnvFile               string `toml:"env_file" yaml:"env_file"`
	EncoderTimeoutSeconds int    `toml:"encoder_timeout_seconds" yaml:"encoder_timeout_seconds"`
	ProbeTimeoutSeconds   int    `toml:"probe_timeout_seconds" yaml:"probe_timeout_seconds"`
}

// Render contains the vertical output geometry and caption overlay styling.
type Render struct {
	Width               int     `toml:"width" yaml:"width"`
	Height              int     `toml:"height" yaml:"height"`
	FrameRate           int     `toml:"frame_rate" yaml:"frame_rate"`
	FontSize            int     `toml:"font_size" yaml:"font_size"`
	BorderWidth         int     `toml:"border_width" yaml:"border_width"`
	EmphasisStyle       string  `toml:"emphasis_style" yaml:"emphasis_style"`
	EmphasisFontSize    int     `toml:"emphasis_font_size" yaml:"emphasis_font_size"`
	EmphasisBorderWidth int     `toml:"emphasis_border_width" yaml:"emphasis_border_width"`
	CaptionSeconds      float64 `toml:"caption_seconds" yaml:"caption_seconds"`
	AudioFilter         string  `toml:"audio_filter" yaml:"audio_filter"`
}

// Timeline contains placeholder durations for the exported editor project.
type Timeline struct {
	ClipSpacingSeconds float64 `toml:"clip_spacing_seconds" yaml:"clip_spacing_seconds"`
	IntroSeconds       float64 `toml:"intro_seconds" yaml:"intro_seconds"`
	OutroSeconds       float64 `toml:"outro_seconds" yaml:"outro_seconds"`
	TitleSeconds       float64 `toml:"title_seconds" yaml:"title_seconds"`
	SFXSeconds         float64 `toml:"sfx_seconds" yaml:"sfx_seconds"`
	ProjectName        string  `toml:"project_name" yaml:"project_name"`
}

// Validation contains the platform constraints enforced before publishing.
type Validation struct {
	MaxDurationSeconds float64 `toml:"max_duration_seconds" yaml:"max_duration_seconds"`
	MinDurationSeconds float64 `toml:"min_duration_seconds" yaml:"min_duration_seconds"`
	MinWidth           int     `toml:"min_width" yaml:"min_width"`
	MinHeight          int     `toml:"min_height" yaml:"min_height"`
	TargetAspect       float64 `toml:"target_aspect" yaml:"target_aspect"`
	AspectTolerance    float64 `toml:"aspect_tolerance" yaml:"aspect_tolerance"`
	MaxSizeMB          float64 `toml:"max_size_mb" yaml:"max_size_mb"`
	MinSizeMB          float64 `toml:"min_size_mb" yaml:"min_size_mb"`
	MaxTitleLength     int     `toml:"max_title_length" yaml:"max_title_length"`
	MaxCaptionLength   int     `toml:"max_caption_length" yaml:"max_caption_length"`
}

// Detect contains the clip detection model settings.
type Detect struct {
	BaseURL            string  `toml:"base_url" yaml:"base_url"`
	Model              string  `toml:"model" yaml:"model"`
	MaxTokens          int     `toml:"max_tokens" yaml:"max_tokens"`
	Temperature        float64 `toml:"temperature" yaml:"temperature"`
	TranscriptSegments int     `toml:"transcript_segments" yaml:"transcript_segments"`
	TimeoutSeconds     int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Craft contains the script generation model settings.
type Craft struct {
	BaseURL        string  `toml:"base_url" yaml:"base_url"`
	Model          string  `toml:"model" yaml:"model"`
	Temperature    float64 `toml:"temperature" yaml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Augment contains production dressing settings. A zero seed picks a random one.
type Augment struct {
	Seed int64 `toml:"seed" yaml:"seed"`
}

// Publish contains defaults for upload previews.
type Publish struct {
	Platforms         []string `toml:"platforms" yaml:"platforms"`
	DefaultVisibility string   `toml:"default_visibility" yaml:"default_visibility"`
	Tags              []string `toml:"tags" yaml:"tags"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
	Dir    string `toml:"dir" yaml:"dir"`
}

// Config encapsulates all configuration values for Pixal.
//
// Configuration sections by subsystem:
//   - Paths: workspace root and per-stage artifact files
//   - Outputs: shorts/caption export directories and the run archive
//   - Runtime: external binaries, run ids, encoder/probe timeouts
//   - Render: output geometry and caption overlay styling
//   - Timeline: placeholder durations for the editor export
//   - Validation: platform limits checked before publishing
//   - Detect / Craft: model settings for the generation stages
//   - Augment: production dressing seed
//   - Publish: upload preview defaults
//   - Logging: log format, level, and directory
type Config struct {
	Paths      Paths      `toml:"paths" yaml:"paths"`
	Outputs    Outputs    `toml:"outputs" yaml:"outputs"`
	Runtime    Runtime    `toml:"runtime" yaml:"runtime"`
	Render     Render     `toml:"render" yaml:"render"`
	Timeline   Timeline   `toml:"timeline" yaml:"timeline"`
	Validation Validation `toml:"validation" yaml:"validation"`
	Detect     Detect     `toml:"detect" yaml:"detect"`
	Craft      Craft      `toml:"craft" yaml:"craft"`
	Augment    Augment    `toml:"augment" yaml:"augment"`
	Publish    Publish    `toml:"publish" yaml:"publish"`
	Logging    Logging    `toml:"logging" yaml:"logging"`

	// Credentials is captured once from the environment (and .env) during Load.
	Credentials Credentials `toml:"-" yaml:"-"`
}

// DefaultConfigPath returns the absolute path to the user-level configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pixal/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized, and credentials captured from the environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	creds, err := LoadCredentials(cfg.EnvFilePath())
	if err != nil {
		return nil, "", false, err
	}
	cfg.Credentials = creds

	return &cfg, resolvedPath, exists, nil
}

// Normalize expands paths, fills zero values with defaults and validates a
// config that was built in code rather than loaded from disk.
func (c *Config) Normalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := toml.NewDecoder(file).Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	for _, name := range []string{"pixal.toml", "pixal.yaml", "pixal.yml"} {
		projectPath, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
			return projectPath, true, nil
		}
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and metadata directories. Output and
// archive directories are created by the stages that write them.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Logging.Dir, c.Paths.MetaDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ShortsDir returns the directory rendered clips are written to.
func (c *Config) ShortsDir() string {
	return filepath.Join(c.Outputs.BaseDir, c.Outputs.ShortsDirName)
}

// CapsynthDir returns the caption export directory.
func (c *Config) CapsynthDir() string {
	return filepath.Join(c.Outputs.BaseDir, c.Outputs.CapsynthDirName)
}

// ValidationDir returns the directory holding the validation report.
func (c *Config) ValidationDir() string {
	return filepath.Join(c.Outputs.BaseDir, c.Outputs.ValidationDirName)
}

// LogPath returns the append-only process log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Logging.Dir, "pixal.log")
}

// LedgerPath returns the SQLite run ledger location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Logging.Dir, "ledger.db")
}

// LockPath returns the workspace lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.Workspace, ".pixal.lock")
}

// EnvFilePath returns the dotenv file consulted for credentials.
func (c *Config) EnvFilePath() string {
	return c.Runtime.EnvFile
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

// resolveIn expands pathValue, anchoring relative paths at base.
func resolveIn(base, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if !strings.HasPrefix(pathValue, "~") && !filepath.IsAbs(pathValue) {
		pathValue = filepath.Join(base, pathValue)
	}
	return expandPath(pathValue)
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
