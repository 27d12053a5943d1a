package vision

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/jackzampolin/doctriage/internal/categories"
	"github.com/jackzampolin/doctriage/internal/classify"
	"github.com/jackzampolin/doctriage/internal/providers"
)

func testRegistry(t *testing.T) *categories.Registry {
	t.Helper()
	r, err := categories.NewRegistry([]categories.Category{
		{Name: "Policy", Description: "policy schedule", Keywords: []string{"policy", "premium"}},
		{Name: "Terms", Description: "terms and conditions", Keywords: []string{"terms", "exclusions"}},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func pages(n int) [][]byte {
	imgs := make([][]byte, n)
	for i := range imgs {
		imgs[i] = []byte("fake-png")
	}
	return imgs
}

func TestClassifier_Classify(t *testing.T) {
	mock := providers.NewMockVisionClient()
	mock.ResponseJSON = json.RawMessage(`{"page_labels":[
		{"page_number":1,"label":"Policy"},
		{"page_number":2,"label":"Terms"},
		{"page_number":3,"label":"Unclassified"}
	]}`)
	mock.Tokens = []providers.TokenLogprob{
		{Token: `{"page_labels":[{"page_number":1,"label":"`, Logprob: lp(0.99)},
		{Token: `Policy`, Logprob: lp(0.9)},
		{Token: `"},{"page_number":2,"label":"`, Logprob: lp(0.99)},
		{Token: `Terms`, Logprob: lp(0.6)},
		{Token: `"},{"page_number":3,"label":"`, Logprob: lp(0.99)},
		{Token: `Unclassified`, Logprob: lp(0.8)},
		{Token: `"}]}`, Logprob: lp(0.99)},
	}

	c, err := NewClassifier(testRegistry(t), mock, "openai/gpt-4o")
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}

	set, confidence, err := c.Classify(context.Background(), pages(3))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if set.Origin != classify.OriginOne {
		t.Errorf("Origin = %d, want 1-indexed", set.Origin)
	}
	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}

	wantLabels := map[int]string{1: "Policy", 2: "Terms", 3: classify.Unclassified}
	for page, want := range wantLabels {
		pc, err := set.ByPage(page)
		if err != nil {
			t.Fatalf("ByPage(%d) error = %v", page, err)
		}
		if pc.Label != want {
			t.Errorf("page %d: Label = %q, want %q", page, pc.Label, want)
		}
	}

	if got := confidence.PerPage[1]; !got.Known || math.Abs(got.Value-0.9) > 1e-9 {
		t.Errorf("page 1 confidence = %+v, want known 0.9", got)
	}
	wantOverall := (0.9 + 0.6 + 0.8) / 3
	if math.Abs(confidence.Overall-wantOverall) > 1e-9 {
		t.Errorf("Overall = %v, want %v", confidence.Overall, wantOverall)
	}

	// Exactly one batched request covering all pages.
	if mock.RequestCount() != 1 {
		t.Errorf("requests = %d, want 1", mock.RequestCount())
	}
	if len(mock.LastRequest.Images) != 3 {
		t.Errorf("images sent = %d, want 3", len(mock.LastRequest.Images))
	}
	if !mock.LastRequest.Logprobs {
		t.Error("request should ask for logprobs")
	}
	if !strings.Contains(mock.LastRequest.UserText, "policy schedule") {
		t.Error("user text should carry the serialized category definitions")
	}
}

func TestClassifier_MissingLogprobsYieldUnknownConfidence(t *testing.T) {
	mock := providers.NewMockVisionClient()
	mock.ResponseJSON = json.RawMessage(`{"page_labels":[{"page_number":1,"label":"Policy"}]}`)
	// No tokens returned by the provider.

	c, err := NewClassifier(testRegistry(t), mock, "")
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}

	set, confidence, err := c.Classify(context.Background(), pages(1))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if conf := confidence.PerPage[1]; conf.Known {
		t.Errorf("confidence = %+v, want unknown", conf)
	}
	// Unknown confidence reports score 0 but label survives.
	pc, _ := set.ByPage(1)
	if pc.Label != "Policy" {
		t.Errorf("Label = %q, want Policy", pc.Label)
	}
}

func TestClassifier_MalformedResponseIsFatal(t *testing.T) {
	mock := providers.NewMockVisionClient()
	mock.ResponseJSON = json.RawMessage(`this is not json`)

	c, err := NewClassifier(testRegistry(t), mock, "")
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}

	_, _, err = c.Classify(context.Background(), pages(1))
	if err == nil {
		t.Fatal("expected malformed response to be fatal")
	}
	var pe *classify.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *classify.ProviderError, got %T", err)
	}
}

func TestClassifier_OutOfRegistryLabelFailsValidation(t *testing.T) {
	mock := providers.NewMockVisionClient()
	mock.ResponseJSON = json.RawMessage(`{"page_labels":[{"page_number":1,"label":"Invoice"}]}`)

	c, err := NewClassifier(testRegistry(t), mock, "")
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}

	_, _, err = c.Classify(context.Background(), pages(1))
	if err == nil {
		t.Fatal("expected out-of-registry label to fail schema validation")
	}
}

func TestClassifier_NoPages(t *testing.T) {
	c, err := NewClassifier(testRegistry(t), providers.NewMockVisionClient(), "")
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	if _, _, err := c.Classify(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty page list")
	}
}

func TestResponseSchema_IncludesUnclassified(t *testing.T) {
	raw, err := ResponseSchema(testRegistry(t))
	if err != nil {
		t.Fatalf("ResponseSchema() error = %v", err)
	}
	if !strings.Contains(string(raw), classify.Unclassified) {
		t.Error("schema enum should include the Unclassified sentinel")
	}
	if !strings.Contains(string(raw), `"Policy"`) {
		t.Error("schema enum should include registered category names")
	}
}
