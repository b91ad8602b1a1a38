package vocabulary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	titleColumn    = "title"
	categoryColumn = "category"
)

// Sources points at the on-disk datasets a Vocabulary is loaded from. Every
// field is optional.
type Sources struct {
	// JobTitlesFile is a CSV file with a "title" column.
	JobTitlesFile string
	// CategoriesFile is a CSV file whose "Category" column adds more titles.
	CategoriesFile string
	// SkillsFile is a YAML mapping of category to skill terms.
	SkillsFile        string
	EducationKeywords []string
}

var (
	coPrefix       = regexp.MustCompile(`\b[Cc]o[\- ]`)
	titleSeparator = regexp.MustCompile(`[,\-|&:/]|\band\b`)
)

// Load reads the configured datasets and freezes them into a Vocabulary.
func Load(src Sources) (*Vocabulary, error) {
	cfg := Config{EducationKeywords: src.EducationKeywords}

	if path := strings.TrimSpace(src.JobTitlesFile); path != "" {
		titles, err := readColumn(path, titleColumn)
		if err != nil {
			return nil, fmt.Errorf("loading job titles: %w", err)
		}
		cfg.JobTitles = append(cfg.JobTitles, expandTitles(titles)...)
	}

	if path := strings.TrimSpace(src.CategoriesFile); path != "" {
		categories, err := readColumn(path, categoryColumn)
		if err != nil {
			return nil, fmt.Errorf("loading resume categories: %w", err)
		}
		cfg.JobTitles = append(cfg.JobTitles, categories...)
	}

	if path := strings.TrimSpace(src.SkillsFile); path != "" {
		skills, err := readSkills(path)
		if err != nil {
			return nil, fmt.Errorf("loading skills: %w", err)
		}
		cfg.Skills = skills
	}

	return New(cfg)
}

// FirstTitle returns the leading title of a compound one, e.g.
// "Co-Founder & CEO" becomes "Founder".
func FirstTitle(title string) string {
	title = coPrefix.ReplaceAllString(title, "")
	parts := titleSeparator.Split(title, 2)
	return strings.TrimSpace(parts[0])
}

func expandTitles(titles []string) []string {
	out := make([]string, 0, len(titles)*2)
	for _, title := range titles {
		out = append(out, title)
		if first := FirstTitle(title); first != "" && !strings.EqualFold(first, title) {
			out = append(out, first)
		}
	}
	return out
}

func readColumn(path, column string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return parseColumn(file, column)
}

func parseColumn(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), column) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("column %q not found in header %v", column, header)
	}

	var values []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if idx >= len(record) {
			continue
		}
		if value := strings.TrimSpace(record[idx]); value != "" {
			values = append(values, value)
		}
	}

	return values, nil
}

func readSkills(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSkills(data)
}

// parseSkills accepts either a list or a single scalar per category.
func parseSkills(data []byte) (map[string][]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	skills := make(map[string][]string, len(raw))
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &skills,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}

	return skills, nil
}
