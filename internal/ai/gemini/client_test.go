package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	calls       int
	model       string
	prompt      string
	config      *genai.GenerateContentConfig
	hasDeadline bool
	block       bool
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	_, f.hasDeadline = ctx.Deadline()
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeneratorReturnsJoinedText(t *testing.T) {
	models := &fakeModels{resp: textResponse(" {\"a\": ", "1} ")}
	g := &Generator{models: models, model: "gemini-test", timeout: time.Second, logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), "  prompt  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "{\"a\":\n1}" {
		t.Fatalf("unexpected output: %q", output)
	}

	if models.model != "gemini-test" {
		t.Fatalf("unexpected model: %q", models.model)
	}

	if models.prompt != "prompt" {
		t.Fatalf("expected trimmed prompt, got %q", models.prompt)
	}

	if !models.hasDeadline {
		t.Fatalf("expected request context to carry a deadline")
	}

	if models.config == nil || models.config.ResponseMIMEType != jsonMIMEType {
		t.Fatalf("expected json response mime type, got %+v", models.config)
	}
}

func TestGeneratorSingleAttemptOnError(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	models := &fakeModels{err: apiErr}
	g := &Generator{models: models, model: "gemini-test", timeout: time.Second, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}

	var got genai.APIError
	if !errors.As(err, &got) || got.Code != http.StatusInternalServerError {
		t.Fatalf("expected wrapped api error, got %v", err)
	}

	if models.calls != 1 {
		t.Fatalf("expected a single call, got %d", models.calls)
	}
}

func TestGeneratorHonorsTimeout(t *testing.T) {
	models := &fakeModels{block: true}
	g := &Generator{models: models, model: "gemini-test", timeout: 20 * time.Millisecond, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "prompt")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGeneratorEmptyResponse(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"blank parts":   textResponse("  ", ""),
		"nil content":   {Candidates: []*genai.Candidate{{}}},
	}

	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			g := &Generator{models: &fakeModels{resp: resp}, model: "m", timeout: time.Second, logger: zap.NewNop()}
			if _, err := g.GenerateContent(context.Background(), "prompt"); !errors.Is(err, errEmptyResponse) {
				t.Fatalf("expected empty response error, got %v", err)
			}
		})
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	models := &fakeModels{resp: textResponse("ok")}
	g := &Generator{models: models, model: "m", timeout: time.Second, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}

	if models.calls != 0 {
		t.Fatalf("expected no calls, got %d", models.calls)
	}

	var nilGenerator *Generator
	if _, err := nilGenerator.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for nil generator")
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "   ", "", 0, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
