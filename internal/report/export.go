package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-screener/internal/screening"
)

const sheetName = "Candidates"

var header = []string{
	"rank", "id", "name", "email", "phone", "similarity", "skills_match",
	"skills", "job_titles", "education", "ai_fit", "ai_score", "ai_reason",
}

// row flattens a candidate into the column order of header.
func row(rank int, c screening.ScoredCandidate) []string {
	fit, score, reason := "", "", ""
	if c.Review != nil {
		if c.Review.Error != "" {
			reason = "error: " + c.Review.Error
		} else {
			fit = strconv.FormatBool(c.Review.Fit)
			score = formatFloat(c.Review.Score)
			reason = c.Review.Reason
		}
	}

	return []string{
		strconv.Itoa(rank),
		c.ID,
		c.Name,
		c.Email,
		c.Phone,
		formatFloat(c.Similarity),
		formatFloat(c.SkillsMatch),
		strings.Join(c.Skills.All(), "; "),
		strings.Join(c.JobTitles, "; "),
		strings.Join(c.Education, "; "),
		fit,
		score,
		reason,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteCSV writes the candidates in rank order with a header row.
func WriteCSV(w io.Writer, c *screening.Candidates) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, candidate := range items(c) {
		if err := writer.Write(row(i+1, candidate)); err != nil {
			return fmt.Errorf("write csv row for %s: %w", candidate.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX saves the candidates as a single-sheet workbook at path.
func WriteXLSX(path string, c *screening.Candidates) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]string{header}
	for i, candidate := range items(c) {
		rows = append(rows, row(i+1, candidate))
	}

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		line := make([]any, len(values))
		for j, value := range values {
			line[j] = value
		}
		if err := f.SetSheetRow(sheetName, cell, &line); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// DumpToTmpFile writes the candidates as indented JSON to a new temporary
// file and returns its name.
func DumpToTmpFile(c *screening.Candidates) (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Export writes c to path, choosing the format from the extension.
func Export(path string, c *screening.Candidates) error {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "csv":
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteCSV(file, c); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	case "xlsx":
		return WriteXLSX(path, c)
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	default:
		return fmt.Errorf("unsupported export format %q", ext)
	}
}

func items(c *screening.Candidates) []screening.ScoredCandidate {
	if c == nil {
		return nil
	}
	return c.Items
}
