// Package ytdlp downloads remote VODs into the canonical input location.
package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pixal/internal/services"
	"pixal/internal/services/toolexec"
)

// DefaultFormat prefers an mp4 container and falls back to the best stream.
const DefaultFormat = "best[ext=mp4]/best"

// Info is the subset of the yt-dlp info JSON that seeds stream metadata.
type Info struct {
	Title    string   `json:"title"`
	Uploader string   `json:"uploader"`
	Tags     []string `json:"tags"`
	Duration float64  `json:"duration"`
}

// Client wraps the yt-dlp binary.
type Client struct {
	Binary  string
	Format  string
	Timeout time.Duration
	Runner  toolexec.Runner
}

// New returns a client for binary. Timeout zero waits indefinitely.
func New(binary string, timeout time.Duration) *Client {
	return &Client{Binary: binary, Format: DefaultFormat, Timeout: timeout}
}

// Download fetches url into output and returns the info JSON when yt-dlp
// wrote one. The output file must exist afterwards.
func (c *Client) Download(ctx context.Context, url, output string) (Info, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Info{}, services.Wrap(services.ErrConfiguration, "fetch", "yt-dlp", "video URL is required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return Info{}, fmt.Errorf("create input dir: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	runner := c.Runner
	if runner == nil {
		runner = toolexec.Exec{Stage: "fetch"}
	}
	if err := runner.Run(ctx, c.binary(), c.Args(url, output)); err != nil {
		return Info{}, err
	}
	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		return Info{}, services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp",
			"download completed but "+output+" is missing or empty", nil)
	}

	meta, err := readInfo(InfoPath(output))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Info{}, services.Wrap(services.ErrMalformedArtifact, "fetch", "read info json", InfoPath(output), err)
	}
	return meta, nil
}

// Args builds the yt-dlp argument list.
func (c *Client) Args(url, output string) []string {
	format := c.Format
	if strings.TrimSpace(format) == "" {
		format = DefaultFormat
	}
	return []string{
		"--no-playlist",
		"--newline",
		"--no-progress",
		"-f", format,
		"--merge-output-format", "mp4",
		"--write-info-json",
		"-o", output,
		url,
	}
}

// InfoPath returns where yt-dlp writes the info JSON for output.
func InfoPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".info.json"
}

func (c *Client) binary() string {
	if strings.TrimSpace(c.Binary) == "" {
		return "yt-dlp"
	}
	return c.Binary
}

func readInfo(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}
