package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/logging"
	"pixal/internal/services"
	"pixal/internal/services/llm"
	"pixal/internal/textutil"
)

// Crafter turns clip candidates into an edit spec.
type Crafter struct {
	store  *artifacts.Store
	client Completer
	logger *slog.Logger
}

// NewCrafter builds a crafter. A nil client uses the configured OpenAI model.
func NewCrafter(cfg *config.Config, store *artifacts.Store, client Completer, logger *slog.Logger) *Crafter {
	if client == nil {
		client = NewCraftClient(cfg)
	}
	return &Crafter{
		store:  store,
		client: client,
		logger: logging.NewComponentLogger(logger, "craft"),
	}
}

type craftReply struct {
	Title     *string            `json:"title"`
	Narration string             `json:"narration"`
	Captions  []editspec.Caption `json:"captions"`
	Overlays  []json.RawMessage  `json:"overlays"`
}

// Craft requests one script per candidate, in order, and writes the edit
// spec. Candidates whose request or reply fails are skipped; clip ids are
// assigned from the surviving order.
func (c *Crafter) Craft(ctx context.Context, transcript []editspec.TranscriptSegment, candidates []editspec.Candidate) ([]editspec.Clip, error) {
	logger := logging.WithContext(ctx, c.logger)
	clips := make([]editspec.Clip, 0, len(candidates))
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clip, err := c.craftOne(ctx, transcript, candidate)
		if err != nil {
			logging.WarnWithContext(logger, "skipping candidate", "craft_candidate_failed",
				logging.Int("candidate", i+1),
				logging.Float64("start", candidate.Start),
				logging.Float64("end", candidate.End),
				logging.Error(err),
				logging.String(logging.FieldImpact, "one fewer short will be produced"),
			)
			continue
		}
		clips = append(clips, clip)
	}
	if len(clips) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "craft", "generate scripts",
			fmt.Sprintf("no edit specifications generated from %d candidates", len(candidates)), nil)
	}
	if err := c.store.WriteEditSpec(clips); err != nil {
		return nil, err
	}
	logger.Info("edit spec written",
		logging.Int("clips", len(clips)),
		logging.Int("skipped", len(candidates)-len(clips)),
	)
	return clips, nil
}

func (c *Crafter) craftOne(ctx context.Context, transcript []editspec.TranscriptSegment, candidate editspec.Candidate) (editspec.Clip, error) {
	prompt := fmt.Sprintf(craftPromptTemplate,
		strings.Join(WindowText(transcript, candidate.Start, candidate.End), "\n"),
		candidate.Reason,
		strings.Join(candidate.Tags, ", "),
	)
	content, err := c.client.CompleteJSON(ctx, craftSystemPrompt, prompt)
	if err != nil {
		return editspec.Clip{}, err
	}
	var reply craftReply
	if err := llm.DecodeLLMJSON(content, &reply); err != nil {
		return editspec.Clip{}, err
	}
	clip := editspec.Clip{
		Start:     candidate.Start,
		End:       candidate.End,
		Narration: strings.TrimSpace(reply.Narration),
		Captions:  reply.Captions,
		Overlays:  reply.Overlays,
	}
	if reply.Title != nil {
		if title := textutil.Normalize(*reply.Title); title != "" {
			clip.Title = editspec.StringPtr(title)
		}
	}
	return clip, nil
}

// WindowText returns the text of every segment overlapping [start, end).
func WindowText(transcript []editspec.TranscriptSegment, start, end float64) []string {
	var out []string
	for _, seg := range transcript {
		if seg.Start < end && seg.End > start {
			out = append(out, seg.Text)
		}
	}
	return out
}
