package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gensdk "google.golang.org/genai"

	"github.com/vanderheijden86/casefile/pkg/debug"
)

// Gemini generates through the Gemini API client.
type Gemini struct {
	cfg    Config
	client *gensdk.Client
}

// NewGemini returns a client for cfg. cfg.APIKey must be set.
func NewGemini(cfg Config) (*Gemini, error) {
	cfg = cfg.Normalized()
	client, err := gensdk.NewClient(context.Background(), &gensdk.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    gensdk.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: gensdk.HTTPOptions{
			BaseURL:    cfg.Endpoint,
			APIVersion: APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Gemini{cfg: cfg, client: client}, nil
}

// Provider implements Generator.
func (g *Gemini) Provider() Provider { return ProviderGemini }

// GenerateText implements Generator.
func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, nil)
}

// GenerateStructured implements Generator.
func (g *Gemini) GenerateStructured(ctx context.Context, prompt string, schema *Schema) ([]byte, error) {
	out, err := g.generate(ctx, prompt, &gensdk.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema.sdk(),
	})
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, gc *gensdk.GenerateContentConfig) (string, error) {
	debug.Log("gemini: generate %s (%d bytes, structured=%v)", g.cfg.Model, len(prompt), gc != nil)
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, gensdk.Text(prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", pf.BlockReason)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// sdk converts s to the client's schema type.
func (s *Schema) sdk() *gensdk.Schema {
	if s == nil {
		return nil
	}
	out := &gensdk.Schema{
		Type:        gensdk.Type(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       s.Items.sdk(),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*gensdk.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = p.sdk()
		}
	}
	return out
}
