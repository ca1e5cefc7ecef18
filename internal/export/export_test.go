package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spigell/ats-matcher/internal/matching"
	"github.com/spigell/ats-matcher/internal/models"
	"github.com/xuri/excelize/v2"
)

func testDocument() Document {
	return Document{
		Job: models.Job{ID: "job-1", Title: "Backend Engineer", Requirements: []string{"Go", "SQL"}},
		Report: &matching.Report{
			Results: []models.MatchResult{
				{
					CandidateID:  "c1",
					OverallScore: 87,
					Provenance:   models.ProvenanceAI,
					Model:        "gpt-4o-mini",
					CategoryScores: []models.CategoryScore{
						{Category: models.CategorySkills, Score: 90, Matches: []models.RequirementMatch{
							{Requirement: "Go", Matched: true, Reason: "five years of Go"},
							{Requirement: "SQL", Matched: true, Reason: "postgres"},
						}},
						{Category: models.CategoryIndustryFit, Score: 70},
					},
				},
				{
					CandidateID:  "c2",
					OverallScore: 40,
					Provenance:   models.ProvenanceHeuristic,
					CategoryScores: []models.CategoryScore{
						{Category: models.CategorySkills, Score: 0, Matches: []models.RequirementMatch{
							{Requirement: "Go", Matched: false, Reason: `Could not find "Go" in candidate profile`},
						}},
					},
				},
			},
			Summary: matching.Summary{RunID: "run-1", JobID: "job-1", Total: 3, AI: 1, Heuristic: 1, Invalid: 1, Model: "gpt-4o-mini", MixedScales: true},
			Invalid: []matching.InvalidCandidate{{CandidateID: "c3", Reason: "invalid candidate c3: id is required"}},
		},
		Candidates: map[string]models.CandidateProfile{
			"c1": {ID: "c1", Name: "John Smith"},
			"c2": {ID: "c2", Name: "Sarah Johnson"},
		},
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestBand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  string
	}{
		{100, BandStrong},
		{80, BandStrong},
		{79, BandModerate},
		{60, BandModerate},
		{59, BandWeak},
		{0, BandWeak},
	}
	for _, tt := range tests {
		if got := Band(tt.score); got != tt.want {
			t.Errorf("Band(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestToExcel(t *testing.T) {
	t.Parallel()

	out, err := ToExcel(testDocument(), filepath.Join(t.TempDir(), "report"))
	if err != nil {
		t.Fatalf("ToExcel() failed: %v", err)
	}
	if !strings.HasSuffix(out, ".xlsx") {
		t.Fatalf("expected .xlsx suffix, got %s", out)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SummarySheet || sheets[1] != RankedSheet || sheets[2] != DetailsSheet {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	ranked, err := f.GetRows(RankedSheet)
	if err != nil {
		t.Fatalf("read ranked sheet: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(ranked))
	}
	wantHeader := []string{"Rank", "Candidate ID", "Name", "Overall", "Band", "Scored by", "Skills", "Industry Fit"}
	for i, h := range wantHeader {
		if ranked[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, ranked[0][i], h)
		}
	}
	if ranked[1][1] != "c1" || ranked[1][2] != "John Smith" || ranked[1][4] != BandStrong || ranked[1][5] != "AI (gpt-4o-mini)" {
		t.Fatalf("unexpected first row: %v", ranked[1])
	}
	if ranked[2][1] != "c2" || ranked[2][4] != BandWeak || ranked[2][5] != "Fallback" {
		t.Fatalf("unexpected second row: %v", ranked[2])
	}

	details, err := f.GetRows(DetailsSheet)
	if err != nil {
		t.Fatalf("read details sheet: %v", err)
	}
	if len(details) != 4 {
		t.Fatalf("expected one row per requirement explanation, got %d rows", len(details)-1)
	}
	if details[1][3] != "Go" || details[1][4] != "Yes" || details[3][4] != "No" {
		t.Fatalf("unexpected detail rows: %v", details)
	}

	outcome, err := f.GetCellValue(SummarySheet, "B5")
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(outcome, "(1 scored by fallback algorithm)") {
		t.Fatalf("unexpected outcome line %q", outcome)
	}
}

func TestToExcelKeepsExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.XLSX")
	out, err := ToExcel(testDocument(), path)
	if err != nil {
		t.Fatalf("ToExcel() failed: %v", err)
	}
	if out != path {
		t.Fatalf("expected %s, got %s", path, out)
	}
}

func TestToExcelRequiresReport(t *testing.T) {
	t.Parallel()

	if _, err := ToExcel(Document{}, filepath.Join(t.TempDir(), "x.xlsx")); err == nil {
		t.Fatalf("expected error without report")
	}
}

func TestDumpToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "matches.json")
	name, err := DumpToFile(testDocument(), path)
	if err != nil {
		t.Fatalf("DumpToFile() failed: %v", err)
	}
	if name != path {
		t.Fatalf("expected %s, got %s", path, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var decoded struct {
		Job    models.Job `json:"job"`
		Report struct {
			Results []models.MatchResult `json:"results"`
			Summary matching.Summary     `json:"summary"`
		} `json:"report"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if decoded.Job.ID != "job-1" || len(decoded.Report.Results) != 2 || decoded.Report.Summary.RunID != "run-1" {
		t.Fatalf("unexpected dump: %+v", decoded)
	}
	if decoded.Report.Results[0].CandidateID != "c1" || decoded.Report.Results[0].OverallScore != 87 {
		t.Fatalf("ranking order lost: %+v", decoded.Report.Results)
	}
}
