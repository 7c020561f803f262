// Package openai implements provider.Provider for OpenAI-compatible
// Chat Completions backends. The adapter covers OpenAI itself plus
// anything speaking the same protocol (vLLM, LiteLLM, Ollama).
package openai
