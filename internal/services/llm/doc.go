// Package llm provides chat clients for the clip detection and script
// crafting stages.
//
// Two wire formats are supported: the Anthropic messages API (detection) and
// the OpenAI chat completions API (crafting). Both share the same retry policy
// and response decoding.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Complete: send system/user prompts and return the text reply.
// Client.CompleteJSON: like Complete, but asks for a JSON reply where the
// provider supports it.
// Client.HealthCheck: verify the API key and model are usable.
// DecodeLLMJSON: decode a reply, tolerating code fences and surrounding prose.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty replies and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Context cancellation aborts retries immediately.
package llm
