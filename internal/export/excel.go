package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/ats-matcher/internal/matching"
	"github.com/spigell/ats-matcher/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	RankedSheet  = "Ranked Candidates"
	DetailsSheet = "Match Details"
)

// Score bands used for colouring ranked rows.
const (
	BandStrong   = "Strong"
	BandModerate = "Moderate"
	BandWeak     = "Weak"
)

var bandFill = map[string]string{
	BandStrong:   "C6EFCE",
	BandModerate: "FFEB9C",
	BandWeak:     "FFC7CE",
}

// Document is a finished match run ready to be written out.
type Document struct {
	Job        models.Job                         `json:"job"`
	Report     *matching.Report                   `json:"report"`
	Candidates map[string]models.CandidateProfile `json:"-"`
	CreatedAt  time.Time                          `json:"createdAt"`
}

// Band classifies an overall score.
func Band(score int) string {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 60:
		return BandModerate
	default:
		return BandWeak
	}
}

// ToExcel writes doc as an xlsx workbook and returns the final path.
func ToExcel(doc Document, outputPath string) (string, error) {
	if doc.Report == nil {
		return "", errors.New("export: report is required")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return "", err
	}
	for _, sheet := range []string{RankedSheet, DetailsSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return "", err
	}

	if err := writeSummary(f, doc, header); err != nil {
		return "", fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeRanked(f, doc, header); err != nil {
		return "", fmt.Errorf("ranked sheet: %w", err)
	}
	if err := writeDetails(f, doc, header); err != nil {
		return "", fmt.Errorf("details sheet: %w", err)
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save %s: %w", outputPath, err)
	}
	return outputPath, nil
}

func writeSummary(f *excelize.File, doc Document, header int) error {
	s := doc.Report.Summary
	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	bands := map[string]int{}
	for _, r := range doc.Report.Results {
		bands[Band(r.OverallScore)]++
	}

	rows := [][]any{
		{"Job", fmt.Sprintf("%s (%s)", doc.Job.Title, doc.Job.ID)},
		{"Run ID", s.RunID},
		{"Generated", created.Format(time.RFC3339)},
		{"Outcome", s.Message()},
		{"Candidates scored", s.AI + s.Heuristic},
		{"Scored by AI", s.AI},
		{"Scored by fallback", s.Heuristic},
		{"Invalid candidates", s.Invalid},
		{"Model", s.Model},
		{"Mixed scales", s.MixedScales},
		{"Strong (80+)", bands[BandStrong]},
		{"Moderate (60-79)", bands[BandModerate]},
		{"Weak (<60)", bands[BandWeak]},
	}

	if err := f.SetCellValue(SummarySheet, "A1", "Match report"); err != nil {
		return err
	}
	if err := f.MergeCell(SummarySheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}

	if len(doc.Report.Invalid) > 0 {
		start := len(rows) + 3
		if err := setRow(f, SummarySheet, start, []any{"Skipped candidate", "Reason"}); err != nil {
			return err
		}
		if err := styleRow(f, SummarySheet, start, 2, header); err != nil {
			return err
		}
		for i, inv := range doc.Report.Invalid {
			if err := setRow(f, SummarySheet, start+1+i, []any{inv.CandidateID, inv.Reason}); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 22); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "B", "B", 70)
}

func writeRanked(f *excelize.File, doc Document, header int) error {
	categories := categoryColumns(doc.Report.Results)

	head := []any{"Rank", "Candidate ID", "Name", "Overall", "Band", "Scored by"}
	for _, c := range categories {
		head = append(head, string(c))
	}
	if err := setRow(f, RankedSheet, 1, head); err != nil {
		return err
	}
	if err := styleRow(f, RankedSheet, 1, len(head), header); err != nil {
		return err
	}

	styles := map[string]int{}
	for band, color := range bandFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		styles[band] = id
	}

	for i, r := range doc.Report.Results {
		row := []any{i + 1, r.CandidateID, doc.Candidates[r.CandidateID].Name, r.OverallScore, Band(r.OverallScore), provenanceLabel(r)}
		for _, c := range categories {
			if cs, ok := r.Category(c); ok {
				row = append(row, cs.Score)
			} else {
				row = append(row, "")
			}
		}
		if err := setRow(f, RankedSheet, i+2, row); err != nil {
			return err
		}
		if err := styleRow(f, RankedSheet, i+2, len(row), styles[Band(r.OverallScore)]); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(head))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(RankedSheet, "A", last, 16); err != nil {
		return err
	}
	if len(doc.Report.Results) > 0 {
		if err := f.AutoFilter(RankedSheet, fmt.Sprintf("A1:%s%d", last, len(doc.Report.Results)+1), []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}
	return freezeHeader(f, RankedSheet)
}

func writeDetails(f *excelize.File, doc Document, header int) error {
	head := []any{"Candidate ID", "Category", "Category score", "Requirement", "Matched", "Reason"}
	if err := setRow(f, DetailsSheet, 1, head); err != nil {
		return err
	}
	if err := styleRow(f, DetailsSheet, 1, len(head), header); err != nil {
		return err
	}

	row := 2
	for _, r := range doc.Report.Results {
		for _, cs := range r.CategoryScores {
			for _, m := range cs.Matches {
				matched := "No"
				if m.Matched {
					matched = "Yes"
				}
				if err := setRow(f, DetailsSheet, row, []any{r.CandidateID, string(cs.Category), cs.Score, m.Requirement, matched, m.Reason}); err != nil {
					return err
				}
				row++
			}
		}
	}

	widths := map[string]float64{"A": 16, "B": 22, "C": 14, "D": 40, "E": 10, "F": 60}
	for col, w := range widths {
		if err := f.SetColWidth(DetailsSheet, col, col, w); err != nil {
			return err
		}
	}
	return freezeHeader(f, DetailsSheet)
}

// categoryColumns lists category names in first-seen order.
func categoryColumns(results []models.MatchResult) []models.Category {
	var out []models.Category
	for _, r := range results {
		for _, cs := range r.CategoryScores {
			seen := false
			for _, c := range out {
				if c.Is(cs.Category) {
					seen = true
					break
				}
			}
			if !seen {
				out = append(out, cs.Category)
			}
		}
	}
	return out
}

func provenanceLabel(r models.MatchResult) string {
	if r.Provenance == models.ProvenanceAI {
		if r.Model != "" {
			return "AI (" + r.Model + ")"
		}
		return "AI"
	}
	return "Fallback"
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, width, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
