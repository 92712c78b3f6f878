package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/logging"
	"pixal/internal/services"
	"pixal/internal/services/llm"
	"pixal/internal/textutil"
)

// duplicateReasonThreshold is the cosine similarity above which two
// overlapping candidates are treated as the same moment.
const duplicateReasonThreshold = 0.85

// Detector proposes clip candidates from the transcript.
type Detector struct {
	store    *artifacts.Store
	client   Completer
	segments int
	logger   *slog.Logger
}

// NewDetector builds a detector. A nil client uses the configured Anthropic model.
func NewDetector(cfg *config.Config, store *artifacts.Store, client Completer, logger *slog.Logger) *Detector {
	if client == nil {
		client = NewDetectClient(cfg)
	}
	return &Detector{
		store:    store,
		client:   client,
		segments: cfg.Detect.TranscriptSegments,
		logger:   logging.NewComponentLogger(logger, "detect"),
	}
}

// Detect asks the model for candidates, keeps the usable ones, and writes
// the candidates artifact.
func (d *Detector) Detect(ctx context.Context, transcript []editspec.TranscriptSegment, meta editspec.StreamMeta) ([]editspec.Candidate, error) {
	logger := logging.WithContext(ctx, d.logger)
	prompt, err := d.buildPrompt(transcript, meta)
	if err != nil {
		return nil, err
	}

	reply, err := d.client.CompleteJSON(ctx, detectSystemPrompt, prompt)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "detect", "request candidates", "model request failed", err)
	}
	var raw []json.RawMessage
	if err := llm.DecodeLLMJSON(reply, &raw); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "detect", "parse candidates", "reply is not a JSON array", err)
	}

	candidates := make([]editspec.Candidate, 0, len(raw))
	for i, entry := range raw {
		candidate, err := parseCandidate(entry)
		if err != nil {
			logging.WarnWithContext(logger, "dropping invalid candidate", "detect_candidate_invalid",
				logging.Int("entry", i+1),
				logging.Error(err),
				logging.String(logging.FieldImpact, "fewer clips will be crafted"),
			)
			continue
		}
		if duplicateOf(candidates, candidate) {
			logger.Debug("dropping duplicate candidate",
				logging.Int("entry", i+1),
				logging.Float64("start", candidate.Start),
			)
			continue
		}
		candidates = append(candidates, candidate)
	}
	if len(candidates) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "detect", "request candidates",
			fmt.Sprintf("no usable candidates in %d entries", len(raw)), nil)
	}

	if err := d.store.WriteCandidates(candidates); err != nil {
		return nil, err
	}
	logger.Info("clip candidates written",
		logging.Int("candidates", len(candidates)),
		logging.Int("dropped", len(raw)-len(candidates)),
	)
	return candidates, nil
}

func (d *Detector) buildPrompt(transcript []editspec.TranscriptSegment, meta editspec.StreamMeta) (string, error) {
	head := transcript
	if d.segments > 0 && len(head) > d.segments {
		head = head[:d.segments]
	}
	encoded, err := json.MarshalIndent(head, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode transcript excerpt: %w", err)
	}
	title := strings.TrimSpace(meta.StreamTitle)
	if title == "" {
		title = "Unknown"
	}
	peaks := "[]"
	if len(meta.PeakMoments) > 0 {
		peaks = string(meta.PeakMoments)
	}
	return fmt.Sprintf(detectPromptTemplate, title, strings.Join(meta.Tags, ", "), peaks, encoded), nil
}

type candidateWire struct {
	Start  *float64 `json:"start"`
	End    *float64 `json:"end"`
	Reason *string  `json:"reason"`
	Tags   []string `json:"tags"`
}

func parseCandidate(data json.RawMessage) (editspec.Candidate, error) {
	var wire candidateWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return editspec.Candidate{}, fmt.Errorf("decode: %w", err)
	}
	if wire.Start == nil || wire.End == nil {
		return editspec.Candidate{}, fmt.Errorf("start and end are required")
	}
	if wire.Reason == nil {
		return editspec.Candidate{}, fmt.Errorf("reason is required")
	}
	candidate := editspec.Candidate{
		Start:  *wire.Start,
		End:    *wire.End,
		Reason: strings.TrimSpace(*wire.Reason),
		Tags:   cleanTags(wire.Tags),
	}
	if err := candidate.Validate(); err != nil {
		return editspec.Candidate{}, err
	}
	return candidate, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// duplicateOf reports whether c repeats an accepted candidate: the same
// window, or an overlapping window with a near-identical reason.
func duplicateOf(accepted []editspec.Candidate, c editspec.Candidate) bool {
	for _, prev := range accepted {
		if prev.Start == c.Start && prev.End == c.End {
			return true
		}
		overlap := math.Min(prev.End, c.End) - math.Max(prev.Start, c.Start)
		if overlap > 0 && textutil.Similar(prev.Reason, c.Reason, duplicateReasonThreshold) {
			return true
		}
	}
	return false
}
