package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"pixal/internal/config"
)

// Requirement defines an external binary Pixal shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Blocking reports whether a missing dependency should fail doctor.
func (s Status) Blocking() bool {
	return !s.Available && !s.Optional
}

// Requirements lists the binaries the stage sequence uses. Only the encoder
// is required; the rest degrade individual stages.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Runtime.FFmpegBin,
			Description: "Required for audio extraction and rendering",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Runtime.FFprobeBin,
			Description: "Used by validation to inspect rendered shorts",
			Optional:    true,
		},
		{
			Name:        "yt-dlp",
			Command:     cfg.Runtime.YtDLPBin,
			Description: "Used by run --vod to download the source video",
			Optional:    true,
		},
		{
			Name:        "whisper.cpp",
			Command:     cfg.Runtime.WhisperBin,
			Description: "Used by the transcribe stage",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}
