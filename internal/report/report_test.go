package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/screening"
)

func ranked() *screening.Candidates {
	return screening.NewCandidates([]screening.ScoredCandidate{
		{
			ID: "jane.pdf", Name: "Jane Doe", Email: "jane@example.com", Similarity: 80, SkillsMatch: 100,
			Skills: extract.Skills{"programming": {"python", "sql"}, "frameworks": {"django"}, "databases": {}},
			Review: &screening.Review{Fit: true, Score: 0.9, Reason: "strong python"},
		},
		{
			ID: "john.docx", Name: "John Smith", Similarity: 50,
			Skills: extract.Skills{"programming": {"java", "python"}, "frameworks": {}, "databases": {"mysql"}},
			Review: &screening.Review{Error: "quota exceeded"},
		},
		{
			ID: "ann.txt", Similarity: 20,
			Skills: extract.Skills{"programming": {"python"}, "frameworks": {}, "databases": {}},
		},
	})
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ranked()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(records))
	}
	if !slices.Equal(records[0], header) {
		t.Fatalf("unexpected header: %v", records[0])
	}

	jane := records[1]
	if jane[0] != "1" || jane[1] != "jane.pdf" || jane[5] != "80.00" || jane[7] != "django; python; sql" {
		t.Fatalf("unexpected first row: %v", jane)
	}
	if jane[10] != "true" || jane[11] != "0.90" {
		t.Fatalf("unexpected review columns: %v", jane[10:])
	}
	if john := records[2]; john[10] != "" || john[12] != "error: quota exceeded" {
		t.Fatalf("unexpected failed review columns: %v", john[10:])
	}
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "candidates.xlsx")
	if err := Export(path, ranked()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "rank" || rows[3][1] != "ann.txt" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestExportFormats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if err := Export(filepath.Join(dir, "out.json"), ranked()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded screening.Candidates
	if err := json.Unmarshal(data, &decoded); err != nil || decoded.Len() != 3 {
		t.Fatalf("unexpected json export: %v %v", decoded.IDs(), err)
	}

	if err := Export(filepath.Join(dir, "out.csv"), ranked()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := Export(filepath.Join(dir, "out.pdf"), ranked()); err == nil {
		t.Fatalf("expected an error for an unsupported format")
	}
}

func TestDumpToTmpFile(t *testing.T) {
	t.Parallel()

	name, err := DumpToTmpFile(ranked())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(data, []byte(`"id": "jane.pdf"`)) {
		t.Fatalf("unexpected dump: %s", data)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(ranked())

	if s.Candidates != 3 || s.AverageSimilarity != 50 || s.TopSimilarity != 80 {
		t.Fatalf("unexpected score stats: %+v", s)
	}
	if s.UniqueSkills != 5 || s.Categories != 3 {
		t.Fatalf("unexpected skill stats: %+v", s)
	}
	if s.SkillsPerCandidate != 2.33 {
		t.Fatalf("expected 7 mentions over 3 candidates, got %v", s.SkillsPerCandidate)
	}
	if s.MostCommonCategory != "programming" {
		t.Fatalf("unexpected most common category: %q", s.MostCommonCategory)
	}

	want := []SkillCount{{"python", 3}, {"django", 1}, {"java", 1}, {"mysql", 1}, {"sql", 1}}
	if !slices.Equal(s.TopSkills, want) {
		t.Fatalf("expected %v, got %v", want, s.TopSkills)
	}
}

func TestSummarizeEdges(t *testing.T) {
	t.Parallel()

	if s := Summarize(screening.NewCandidates(nil)); s.Candidates != 0 || s.TopSkills == nil {
		t.Fatalf("unexpected empty summary: %+v", s)
	}

	tie := screening.NewCandidates([]screening.ScoredCandidate{{
		ID:     "a",
		Skills: extract.Skills{"tools": {"git"}, "cloud": {"aws"}},
	}})
	if s := Summarize(tie); s.MostCommonCategory != "cloud" {
		t.Fatalf("ties must go to the first category alphabetically, got %q", s.MostCommonCategory)
	}

	none := screening.NewCandidates([]screening.ScoredCandidate{{ID: "a", Skills: extract.Skills{"tools": {}}}})
	if s := Summarize(none); s.MostCommonCategory != "" {
		t.Fatalf("no skills means no common category, got %q", s.MostCommonCategory)
	}
}

func TestBySkillCategory(t *testing.T) {
	t.Parallel()

	report := BySkillCategory(ranked())

	programming := report["programming"]
	if len(programming) != 3 {
		t.Fatalf("expected 3 programming entries, got %d", len(programming))
	}
	if programming[0]["name"] != "Jane Doe" || programming[2]["name"] != "ann.txt" {
		t.Fatalf("entries must keep rank order and fall back to the id: %v", programming)
	}
	if programming[0]["ai_fit"] != "true" || programming[0]["ai_score"] != "0.9" {
		t.Fatalf("unexpected review fields: %v", programming[0])
	}
	if programming[1]["ai_error"] != "quota exceeded" {
		t.Fatalf("expected review error: %v", programming[1])
	}

	if _, ok := report["frameworks"]; !ok || len(report["frameworks"]) != 1 {
		t.Fatalf("unexpected frameworks entries: %v", report["frameworks"])
	}
	if len(report["databases"]) != 1 || report["databases"][0]["skills"] != "mysql" {
		t.Fatalf("unexpected databases entries: %v", report["databases"])
	}
}
