// Package generation implements the detect and craft stages.
//
// Detection asks the Anthropic messages API for highlight windows in the
// transcript; crafting asks OpenAI chat completions for a title, narration,
// captions and overlays per window. Both are lenient: a malformed entry or a
// failed call for one candidate is logged and skipped. Only an empty result
// fails the stage.
package generation
