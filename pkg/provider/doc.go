// Package provider defines the interface between the letter services
// and LLM inference backends. Adapters live in subpackages; openai
// speaks the Chat Completions protocol and covers every
// OpenAI-compatible backend.
package provider
