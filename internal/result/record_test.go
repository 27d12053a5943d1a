package result

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/doctriage/internal/classify"
)

func sampleSet() *classify.ClassificationSet {
	set := classify.NewClassificationSet(classify.OriginZero)
	set.Append(classify.PageClassification{
		PageNumber: 0,
		Label:      "Policy",
		Score:      0.9,
		AllScores: []classify.CategoryScore{
			{Category: "Policy", Score: 0.9},
			{Category: "Terms", Score: 0.2},
		},
	})
	set.Append(classify.PageClassification{
		PageNumber: 1,
		Label:      classify.Unclassified,
		Score:      0.0,
	})
	return set
}

func TestAssemble(t *testing.T) {
	accuracy := classify.NewAccuracyReport(map[int]int{0: 1, 1: 0})
	rec := Assemble(sampleSet(), accuracy, nil, 1500*time.Millisecond)

	if len(rec.Classification) != 2 {
		t.Fatalf("Classification has %d entries, want 2", len(rec.Classification))
	}
	if rec.Classification[0].Classification != "Policy" {
		t.Errorf("page 0 classification = %q", rec.Classification[0].Classification)
	}
	if rec.Classification[1].AllSimilarities != nil {
		t.Error("empty AllScores should stay empty in the record")
	}

	if rec.Accuracy["0"] != 1 || rec.Accuracy["1"] != 0 {
		t.Errorf("per-page accuracy = %v", rec.Accuracy)
	}
	if math.Abs(rec.Accuracy[OverallKey]-0.5) > 1e-12 {
		t.Errorf("overall accuracy = %v, want 0.5", rec.Accuracy[OverallKey])
	}
	if rec.Confidence != nil {
		t.Error("confidence should be absent for the similarity strategy")
	}
	if math.Abs(rec.ExecutionTime-1.5) > 1e-9 {
		t.Errorf("ExecutionTime = %v, want 1.5", rec.ExecutionTime)
	}
}

func TestAssemble_SortsScoresDescending(t *testing.T) {
	set := classify.NewClassificationSet(classify.OriginZero)
	set.Append(classify.PageClassification{
		PageNumber: 0,
		Label:      "C",
		Score:      0.8,
		AllScores: []classify.CategoryScore{
			{Category: "A", Score: 0.1},
			{Category: "B", Score: 0.5},
			{Category: "C", Score: 0.8},
		},
	})

	rec := Assemble(set, classify.NewAccuracyReport(map[int]int{0: 1}), nil, time.Second)

	sims := rec.Classification[0].AllSimilarities
	for i := 1; i < len(sims); i++ {
		if sims[i-1].Score < sims[i].Score {
			t.Errorf("AllSimilarities not descending: %v", sims)
		}
	}
}

func TestAssemble_ConfidenceOmitsUnknown(t *testing.T) {
	confidence := classify.NewConfidenceReport(map[int]classify.Confidence{
		1: classify.KnownConfidence(0.8),
		2: classify.UnknownConfidence(),
	})
	set := classify.NewClassificationSet(classify.OriginOne)
	set.Append(classify.PageClassification{PageNumber: 1, Label: "Policy", Score: 0.8})
	set.Append(classify.PageClassification{PageNumber: 2, Label: "Terms"})

	rec := Assemble(set, classify.NewAccuracyReport(map[int]int{1: 1, 2: 1}), confidence, time.Second)

	if _, ok := rec.Confidence["2"]; ok {
		t.Error("unknown confidence must be omitted, not written as zero")
	}
	if math.Abs(rec.Confidence[OverallKey]-0.8) > 1e-12 {
		t.Errorf("overall confidence = %v, want 0.8", rec.Confidence[OverallKey])
	}
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	accuracy := classify.NewAccuracyReport(map[int]int{0: 1, 1: 0})
	rec := Assemble(sampleSet(), accuracy, nil, 2*time.Second)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !reflect.DeepEqual(rec, &got) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, *rec)
	}
}

func TestRecord_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")

	rec := Assemble(sampleSet(), classify.NewAccuracyReport(map[int]int{0: 1, 1: 1}), nil, time.Second)
	if err := rec.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(rec, got) {
		t.Errorf("Save/Load mismatch:\n got %+v\nwant %+v", got, rec)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".doctriage-result-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
