// Package genai is the client side of the generative-text collaborator.
//
// The board only needs two single-shot calls: free-form text generation and
// schema-constrained JSON generation. Generator abstracts both so the
// document bridge can run against the hosted Gemini API or the deterministic
// offline provider used for tests and keyless setups.
package genai

import (
	"context"
	"errors"
	"strings"
)

// Provider identifies a generation backend.
type Provider string

const (
	// ProviderGemini calls the hosted Gemini API.
	ProviderGemini Provider = "gemini"
	// ProviderOffline is a local, deterministic stand-in. It renders board
	// payloads as tagged documents and scrapes tags back out; it does not
	// understand prose.
	ProviderOffline Provider = "offline"
)

var (
	// ErrEmptyResponse is returned when the collaborator answers with no text.
	ErrEmptyResponse = errors.New("genai: empty response")
	// ErrNoAPIKey is returned when a hosted provider is selected without a key.
	ErrNoAPIKey = errors.New("genai: no API key configured")
)

// Generator is the collaborator contract.
type Generator interface {
	Provider() Provider
	// GenerateText returns free-form text for prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateStructured returns JSON conforming to schema.
	GenerateStructured(ctx context.Context, prompt string, schema *Schema) ([]byte, error)
}

// Schema is the subset of OpenAPI schema the structured call needs. Gemini
// receives it converted to the client library's schema type.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// Type is a schema value type.
type Type string

const (
	TypeObject  Type = "OBJECT"
	TypeArray   Type = "ARRAY"
	TypeString  Type = "STRING"
	TypeBoolean Type = "BOOLEAN"
	TypeNumber  Type = "NUMBER"
)

// Payload markers delimit the machine-readable block of a prompt. Prompts put
// the board JSON or document text between them so any provider can locate it.
const (
	PayloadBegin = "-----BEGIN PAYLOAD-----"
	PayloadEnd   = "-----END PAYLOAD-----"
)

// WrapPayload appends body to instructions between the payload markers.
func WrapPayload(instructions, body string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(instructions, "\n"))
	b.WriteString("\n\n")
	b.WriteString(PayloadBegin)
	b.WriteByte('\n')
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(PayloadEnd)
	b.WriteByte('\n')
	return b.String()
}

// ExtractPayload returns the block between the last payload markers.
func ExtractPayload(prompt string) (string, bool) {
	end := strings.LastIndex(prompt, PayloadEnd)
	if end < 0 {
		return "", false
	}
	begin := strings.LastIndex(prompt[:end], PayloadBegin)
	if begin < 0 {
		return "", false
	}
	body := prompt[begin+len(PayloadBegin) : end]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimSuffix(body, "\n")
	return body, true
}
