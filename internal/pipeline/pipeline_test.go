package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/doctriage/internal/categories"
	"github.com/jackzampolin/doctriage/internal/classify"
	"github.com/jackzampolin/doctriage/internal/providers"
	"github.com/jackzampolin/doctriage/internal/result"
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

func writeFakePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

type stubRenderer struct {
	images [][]byte
	err    error
}

func (r *stubRenderer) RenderPages(ctx context.Context, pdfPath string) ([][]byte, error) {
	return r.images, r.err
}

func TestSimilarity_Run(t *testing.T) {
	embedder := providers.NewMockEmbedder()
	embedder.Vectors["policy premium"] = []float64{1, 0}
	embedder.Vectors["terms exclusions"] = []float64{0, 1}
	embedder.Vectors["Your policy premium is due"] = []float64{0.95, 0.05}
	embedder.Vectors["See terms and exclusions below"] = []float64{0.05, 0.95}

	layout := providers.NewMockLayoutProvider(
		"Your policy premium is due",
		"See terms and exclusions below",
		"",
	)

	expected := classify.NewClassificationSet(classify.OriginZero)
	expected.Append(classify.PageClassification{PageNumber: 0, Label: "Policy"})
	expected.Append(classify.PageClassification{PageNumber: 1, Label: "Terms"})
	expected.Append(classify.PageClassification{PageNumber: 2, Label: classify.Unclassified})

	p := &Similarity{
		Registry:  testRegistry(t),
		Layout:    layout,
		Embedder:  embedder,
		Threshold: 0.4,
	}

	rec, err := p.Run(context.Background(), writeFakePDF(t), expected)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if rec.Accuracy[result.OverallKey] != 1.0 {
		t.Errorf("overall accuracy = %v, want 1.0", rec.Accuracy[result.OverallKey])
	}
	if len(rec.Classification) != 3 {
		t.Errorf("classified pages = %d, want 3", len(rec.Classification))
	}
	if rec.Classification[0].Classification != "Policy" {
		t.Errorf("page 0 = %q, want Policy", rec.Classification[0].Classification)
	}
	if rec.Confidence != nil {
		t.Error("similarity record must not carry confidence")
	}
	if rec.ExecutionTime <= 0 {
		t.Errorf("ExecutionTime = %v, want > 0", rec.ExecutionTime)
	}
	if layout.RequestCount() != 1 {
		t.Errorf("layout requests = %d, want 1", layout.RequestCount())
	}
}

func TestSimilarity_Run_LayoutFailure(t *testing.T) {
	layout := providers.NewMockLayoutProvider()
	layout.ShouldFail = true

	p := &Similarity{
		Registry:  testRegistry(t),
		Layout:    layout,
		Embedder:  providers.NewMockEmbedder(),
		Threshold: 0.4,
	}

	expected := classify.NewClassificationSet(classify.OriginZero)
	expected.Append(classify.PageClassification{PageNumber: 0, Label: "Policy"})

	_, err := p.Run(context.Background(), writeFakePDF(t), expected)
	if err == nil {
		t.Fatal("expected layout failure to abort the run")
	}
	var pe *classify.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *classify.ProviderError, got %T", err)
	}
	if pe.Provider != "mock-layout" {
		t.Errorf("Provider = %q", pe.Provider)
	}
}

func TestSimilarity_Run_MissingDocument(t *testing.T) {
	p := &Similarity{
		Registry:  testRegistry(t),
		Layout:    providers.NewMockLayoutProvider("text"),
		Embedder:  providers.NewMockEmbedder(),
		Threshold: 0.4,
	}

	expected := classify.NewClassificationSet(classify.OriginZero)
	expected.Append(classify.PageClassification{PageNumber: 0, Label: "Policy"})

	if _, err := p.Run(context.Background(), "/nonexistent/doc.pdf", expected); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestVision_Run(t *testing.T) {
	mock := providers.NewMockVisionClient()
	mock.ResponseJSON = json.RawMessage(`{"page_labels":[
		{"page_number":1,"label":"Policy"},
		{"page_number":2,"label":"Terms"}
	]}`)
	mock.Tokens = []providers.TokenLogprob{
		{Token: `{"page_labels":[{"page_number":1,"label":"`, Logprob: math.Log(0.99)},
		{Token: `Policy`, Logprob: math.Log(0.9)},
		{Token: `"},{"page_number":2,"label":"`, Logprob: math.Log(0.99)},
		{Token: `Terms`, Logprob: math.Log(0.7)},
		{Token: `"}]}`, Logprob: math.Log(0.99)},
	}

	expected := classify.NewClassificationSet(classify.OriginOne)
	expected.Append(classify.PageClassification{PageNumber: 1, Label: "Policy"})
	expected.Append(classify.PageClassification{PageNumber: 2, Label: "Terms"})

	p := &Vision{
		Registry: testRegistry(t),
		Renderer: &stubRenderer{images: [][]byte{[]byte("png1"), []byte("png2")}},
		Client:   mock,
		Model:    "openai/gpt-4o",
	}

	rec, err := p.Run(context.Background(), writeFakePDF(t), expected)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if rec.Accuracy[result.OverallKey] != 1.0 {
		t.Errorf("overall accuracy = %v, want 1.0", rec.Accuracy[result.OverallKey])
	}
	wantConf := (0.9 + 0.7) / 2
	if math.Abs(rec.Confidence[result.OverallKey]-wantConf) > 1e-9 {
		t.Errorf("overall confidence = %v, want %v", rec.Confidence[result.OverallKey], wantConf)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("vision requests = %d, want one batched call", mock.RequestCount())
	}
}

func TestVision_Run_MissingPageIsFatal(t *testing.T) {
	mock := providers.NewMockVisionClient()
	// Two labels for three pages sent.
	mock.ResponseJSON = json.RawMessage(`{"page_labels":[
		{"page_number":1,"label":"Policy"},
		{"page_number":2,"label":"Terms"}
	]}`)

	expected := classify.NewClassificationSet(classify.OriginOne)
	expected.Append(classify.PageClassification{PageNumber: 1, Label: "Policy"})
	expected.Append(classify.PageClassification{PageNumber: 2, Label: "Terms"})
	expected.Append(classify.PageClassification{PageNumber: 3, Label: "Terms"})

	p := &Vision{
		Registry: testRegistry(t),
		Renderer: &stubRenderer{images: [][]byte{[]byte("png1"), []byte("png2"), []byte("png3")}},
		Client:   mock,
	}

	_, err := p.Run(context.Background(), writeFakePDF(t), expected)
	if err == nil {
		t.Fatal("a response covering fewer pages than were sent must fail the run")
	}
	var nfe *classify.NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected *classify.NotFoundError, got %T: %v", err, err)
	}
	if nfe.PageNumber != 3 {
		t.Errorf("PageNumber = %d, want 3", nfe.PageNumber)
	}
}

func TestVision_Run_ExtraPageIsFatal(t *testing.T) {
	mock := providers.NewMockVisionClient()
	// A label for a page that was never sent.
	mock.ResponseJSON = json.RawMessage(`{"page_labels":[
		{"page_number":1,"label":"Policy"},
		{"page_number":2,"label":"Terms"}
	]}`)

	expected := classify.NewClassificationSet(classify.OriginOne)
	expected.Append(classify.PageClassification{PageNumber: 1, Label: "Policy"})
	expected.Append(classify.PageClassification{PageNumber: 2, Label: "Terms"})

	p := &Vision{
		Registry: testRegistry(t),
		Renderer: &stubRenderer{images: [][]byte{[]byte("png1")}},
		Client:   mock,
	}

	if _, err := p.Run(context.Background(), writeFakePDF(t), expected); err == nil {
		t.Fatal("a response covering more pages than were sent must fail the run")
	}
}

func TestVision_Run_RendererFailure(t *testing.T) {
	p := &Vision{
		Registry: testRegistry(t),
		Renderer: &stubRenderer{err: errors.New("pdftoppm not found")},
		Client:   providers.NewMockVisionClient(),
	}

	expected := classify.NewClassificationSet(classify.OriginOne)
	expected.Append(classify.PageClassification{PageNumber: 1, Label: "Policy"})

	if _, err := p.Run(context.Background(), writeFakePDF(t), expected); err == nil {
		t.Fatal("expected renderer failure to abort the run")
	}
}

func TestVision_Run_OriginMismatchFails(t *testing.T) {
	mock := providers.NewMockVisionClient()
	mock.ResponseJSON = json.RawMessage(`{"page_labels":[{"page_number":1,"label":"Policy"}]}`)

	// A 0-indexed expected set can never be compared against vision output.
	expected := classify.NewClassificationSet(classify.OriginZero)
	expected.Append(classify.PageClassification{PageNumber: 0, Label: "Policy"})

	p := &Vision{
		Registry: testRegistry(t),
		Renderer: &stubRenderer{images: [][]byte{[]byte("png1")}},
		Client:   mock,
	}

	if _, err := p.Run(context.Background(), writeFakePDF(t), expected); err == nil {
		t.Fatal("expected indexing origin mismatch to fail evaluation")
	}
}
