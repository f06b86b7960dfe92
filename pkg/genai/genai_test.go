package genai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	gensdk "google.golang.org/genai"
)

func TestPayloadRoundTrip(t *testing.T) {
	prompt := WrapPayload("Do the thing.\n", "line one\nline two")
	got, ok := ExtractPayload(prompt)
	if !ok || got != "line one\nline two" {
		t.Fatalf("payload = %q ok=%v", got, ok)
	}
	if _, ok := ExtractPayload("no markers here"); ok {
		t.Error("expected no payload")
	}
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		provider Provider
		model    string
	}{
		{"no key means offline", nil, ProviderOffline, DefaultModel},
		{"key selects gemini", map[string]string{EnvAPIKey: "k"}, ProviderGemini, DefaultModel},
		{"fallback key", map[string]string{EnvAPIKeyFallback: "k"}, ProviderGemini, DefaultModel},
		{"explicit offline wins", map[string]string{EnvAPIKey: "k", EnvProvider: " Offline "}, ProviderOffline, DefaultModel},
		{"model override", map[string]string{EnvModel: "gemini-2.5-pro"}, ProviderOffline, "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{EnvProvider, EnvModel, EnvEndpoint, EnvAPIKey, EnvAPIKeyFallback} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := ConfigFromEnv()
			if cfg.Provider != tt.provider || cfg.Model != tt.model {
				t.Errorf("cfg = %+v", cfg)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	if _, err := NewFromConfig(Config{Provider: ProviderGemini}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v", err)
	}
	if _, err := NewFromConfig(Config{Provider: "openai"}); err == nil {
		t.Error("expected unknown provider error")
	}
	g, err := NewFromConfig(Config{})
	if err != nil || g.Provider() != ProviderOffline {
		t.Errorf("default generator = %v, %v", g, err)
	}
}

// wireRequest is the part of a generateContent request body the tests read.
type wireRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig *struct {
		ResponseMimeType string         `json:"responseMimeType"`
		ResponseSchema   map[string]any `json:"responseSchema"`
	} `json:"generationConfig"`
}

func geminiServer(t *testing.T, status int, reply string, check func(*http.Request, wireRequest)) *Gemini {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "secret" {
			t.Errorf("api key header = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var req wireRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	g, err := NewGemini(Config{Provider: ProviderGemini, Model: "test-model", Endpoint: srv.URL + "/", APIKey: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGeminiGenerateText(t *testing.T) {
	g := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"# Plan"},{"text":"\nShip it"}]}}]}`,
		func(_ *http.Request, req wireRequest) {
			if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 || req.Contents[0].Parts[0].Text != "summarize" {
				t.Errorf("contents = %+v", req.Contents)
			}
			if gc := req.GenerationConfig; gc != nil && gc.ResponseSchema != nil {
				t.Error("free text call should not send a schema")
			}
		})

	got, err := g.GenerateText(context.Background(), "summarize")
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Plan\nShip it" {
		t.Errorf("text = %q", got)
	}
}

func TestGeminiGenerateStructuredSendsSchema(t *testing.T) {
	schema := &Schema{Type: TypeObject, Properties: map[string]*Schema{"items": {Type: TypeArray, Items: &Schema{Type: TypeString}}}}
	g := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"items\":[]}"}]}}]}`,
		func(_ *http.Request, req wireRequest) {
			gc := req.GenerationConfig
			if gc == nil || gc.ResponseMimeType != "application/json" {
				t.Fatalf("generation config = %+v", gc)
			}
			if gc.ResponseSchema["type"] != "OBJECT" {
				t.Errorf("schema = %v", gc.ResponseSchema)
			}
			props, _ := gc.ResponseSchema["properties"].(map[string]any)
			items, _ := props["items"].(map[string]any)
			if items["type"] != "ARRAY" {
				t.Errorf("items schema = %v", props)
			}
		})

	got, err := g.GenerateStructured(context.Background(), "extract", schema)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"items":[]}` {
		t.Errorf("json = %s", got)
	}
}

func TestSchemaConversion(t *testing.T) {
	schema := &Schema{
		Type:     TypeObject,
		Required: []string{"items"},
		Properties: map[string]*Schema{
			"items": {Type: TypeArray, Items: &Schema{
				Type:        TypeObject,
				Description: "one board item",
				Properties: map[string]*Schema{
					"type": {Type: TypeString, Enum: []string{"goal", "sticky"}},
					"done": {Type: TypeBoolean},
				},
			}},
		},
	}
	want := &gensdk.Schema{
		Type:     gensdk.TypeObject,
		Required: []string{"items"},
		Properties: map[string]*gensdk.Schema{
			"items": {Type: gensdk.TypeArray, Items: &gensdk.Schema{
				Type:        gensdk.TypeObject,
				Description: "one board item",
				Properties: map[string]*gensdk.Schema{
					"type": {Type: gensdk.TypeString, Enum: []string{"goal", "sticky"}},
					"done": {Type: gensdk.TypeBoolean},
				},
			}},
		},
	}
	if diff := cmp.Diff(want, schema.sdk()); diff != "" {
		t.Errorf("sdk schema (-want +got):\n%s", diff)
	}
	var none *Schema
	if none.sdk() != nil {
		t.Error("nil schema should convert to nil")
	}
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		want   string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, "API key not valid"},
		{"html error", http.StatusForbidden, `<html>forbidden</html>`, "gemini: "},
		{"blocked", http.StatusOK, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY"},
		{"garbage", http.StatusOK, `not json`, "gemini: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := geminiServer(t, tt.status, tt.reply, nil)
			_, err := g.GenerateText(context.Background(), "x")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}

	g := geminiServer(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"  "}]}}]}`, nil)
	if _, err := g.GenerateText(context.Background(), "x"); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestOfflineRoundTrip(t *testing.T) {
	payload := BoardPayload{
		Title: "Case File: #8841",
		Nodes: []PayloadNode{
			{ID: "1", Type: "objective", Content: "Mission: Alpha Launch"},
			{ID: "2", Type: "sticky", Content: "Develop\nMVP", IsCompleted: true},
			{ID: "3", Type: "idea-strip", Content: "User Auth Flow"},
			{ID: "5", Type: "goal", Content: "Public Release"},
			{ID: "6", Type: "image", Content: "https://example.com/x.png"},
		},
		Links: []PayloadLink{{From: "1", To: "2", Variant: "critical"}},
	}
	body, _ := json.Marshal(payload)

	off := NewOffline()
	doc, err := off.GenerateText(context.Background(), WrapPayload("Summarize.", string(body)))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Case File: #8841", "## Goals", "[GOAL] Public Release", "[TASK] [FINISHED] Develop MVP"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "example.com") {
		t.Error("images have no tag and should not appear")
	}

	raw, err := off.GenerateStructured(context.Background(), WrapPayload("Extract.", doc), nil)
	if err != nil {
		t.Fatal(err)
	}
	var got Extraction
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	want := []ExtractedItem{
		{Type: "goal", Content: "Public Release"},
		{Type: "objective", Content: "Mission: Alpha Launch"},
		{Type: "sticky", Content: "Develop MVP", IsCompleted: true},
		{Type: "idea-strip", Content: "User Auth Flow"},
	}
	if diff := cmp.Diff(want, got.Items); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
}

func TestScrapeLine(t *testing.T) {
	tests := []struct {
		line string
		want ExtractedItem
		ok   bool
	}{
		{"- [task] Call the bank", ExtractedItem{Type: "sticky", Content: "Call the bank"}, true},
		{"[FINISHED] [GOAL] Launch", ExtractedItem{Type: "goal", Content: "Launch", IsCompleted: true}, true},
		{"[IDEA] Use [draft] notes", ExtractedItem{Type: "idea-strip", Content: "Use [draft] notes"}, true},
		{"Plain prose line", ExtractedItem{}, false},
		{"[TASK]", ExtractedItem{}, false},
		{"[OBJECTIVE unclosed", ExtractedItem{}, false},
	}
	for _, tt := range tests {
		got, ok := scrapeLine(tt.line)
		if ok != tt.ok || got != tt.want {
			t.Errorf("scrapeLine(%q) = %+v, %v", tt.line, got, ok)
		}
	}
}

func TestOfflineHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewOffline().GenerateText(ctx, WrapPayload("x", "{}")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
