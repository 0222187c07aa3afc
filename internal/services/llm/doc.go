// Package llm provides an OpenAI-compatible chat client that returns JSON
// payloads, used by the LLM-backed classifier and the rich planners.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive the raw JSON content.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: decode model output, tolerating code fences and chatter.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx responses, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default), honouring Retry-After. Context cancellation aborts
// retries immediately.
package llm
