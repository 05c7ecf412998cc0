package classifier

import (
	"testing"

	"grievancedesk/internal/domain"
	"grievancedesk/internal/registry"
)

func TestScoreCountsKeywordHits(t *testing.T) {
	electrical, _ := registry.ByID("dept_electrical")

	tests := []struct {
		text string
		want int
	}{
		{"the street light is broken and there is no power", 2}, // light, power
		{"LIGHT and POWER and CURRENT all gone", 3},
		{"nothing municipal here", 0},
		{"", 0},
	}
	for _, tc := range tests {
		if got := Score(tc.text, electrical); got != tc.want {
			t.Fatalf("Score(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestClassifyKeywordsSingleDepartment(t *testing.T) {
	m, ok := ClassifyKeywords("garbage and trash everywhere, the dustbin is overflowing with litter")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.DepartmentID != "dept_waste" {
		t.Fatalf("expected dept_waste, got %s", m.DepartmentID)
	}
	if m.Confidence != domain.ConfidenceHigh {
		t.Fatalf("expected high confidence for %d matches, got %s", m.Count, m.Confidence)
	}
}

func TestClassifyKeywordsHigherCountWins(t *testing.T) {
	// water: water, pipe, leak (3) vs electrical: light (1). The
	// higher-count department must win regardless of textual order.
	texts := []string{
		"the light flickers but the water pipe has a leak",
		"water pipe leak near the broken light",
	}
	for _, text := range texts {
		m, ok := ClassifyKeywords(text)
		if !ok {
			t.Fatalf("expected a match for %q", text)
		}
		if m.DepartmentID != "dept_water" {
			t.Fatalf("%q: expected dept_water to win 3v1, got %s", text, m.DepartmentID)
		}
	}
}

func TestClassifyKeywordsTieKeepsRegistryOrder(t *testing.T) {
	// light (electrical) and road (infrastructure) both score 1;
	// electrical comes first in registry order.
	m, ok := ClassifyKeywords("light near the road")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.DepartmentID != "dept_electrical" {
		t.Fatalf("tie must keep first registry department, got %s", m.DepartmentID)
	}
}

func TestClassifyKeywordsNoMatch(t *testing.T) {
	if _, ok := ClassifyKeywords("completely unrelated text about cooking recipes"); ok {
		t.Fatal("expected no match for text without department keywords")
	}
}

func TestClassifyKeywordsConfidenceMapping(t *testing.T) {
	tests := []struct {
		text string
		want domain.Confidence
	}{
		{"the light went out", domain.ConfidenceLow},                 // 1 hit
		{"the light and fan went out", domain.ConfidenceMedium},      // 2 hits
		{"light, fan and power all went out", domain.ConfidenceHigh}, // 3 hits
	}
	for _, tc := range tests {
		m, ok := ClassifyKeywords(tc.text)
		if !ok {
			t.Fatalf("expected a match for %q", tc.text)
		}
		if m.Confidence != tc.want {
			t.Fatalf("%q: confidence %s (count=%d), want %s", tc.text, m.Confidence, m.Count, tc.want)
		}
	}
}

func TestClassifyKeywordsMultilingual(t *testing.T) {
	tests := []struct {
		text   string
		wantID string
	}{
		{"bijli nahi hai hamare area me kal se", "dept_electrical"},
		{"नल से पानी नहीं आ रहा है दो दिन से", "dept_water"},
		{"kachra collection nahi ho raha hai is hafte", "dept_waste"},
		{"sadak tuti hui hai aur gadda bhi hai", "dept_infrastructure"},
	}
	for _, tc := range tests {
		m, ok := ClassifyKeywords(tc.text)
		if !ok {
			t.Fatalf("expected a match for %q", tc.text)
		}
		if m.DepartmentID != tc.wantID {
			t.Fatalf("%q: got %s, want %s", tc.text, m.DepartmentID, tc.wantID)
		}
	}
}

func TestClassifyKeywordsIsDeterministic(t *testing.T) {
	text := "water pipe leak near the street with the broken light"
	first, ok1 := ClassifyKeywords(text)
	second, ok2 := ClassifyKeywords(text)
	if ok1 != ok2 || first != second {
		t.Fatalf("classification is not deterministic: %+v vs %+v", first, second)
	}
}
