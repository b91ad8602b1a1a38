package report

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/resume-screener/internal/screening"
)

const topSkillsLimit = 10

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Summary aggregates a ranked list the way a recruiter dashboard shows it.
type Summary struct {
	Candidates         int          `json:"candidates"`
	AverageSimilarity  float64      `json:"average_similarity"`
	TopSimilarity      float64      `json:"top_similarity"`
	UniqueSkills       int          `json:"unique_skills"`
	Categories         int          `json:"categories"`
	SkillsPerCandidate float64      `json:"skills_per_candidate"`
	MostCommonCategory string       `json:"most_common_category,omitempty"`
	TopSkills          []SkillCount `json:"top_skills"`
}

func Summarize(c *screening.Candidates) Summary {
	list := items(c)
	summary := Summary{Candidates: len(list), TopSkills: []SkillCount{}}
	if len(list) == 0 {
		return summary
	}

	var total float64
	occurrences := make(map[string]int)
	perCategory := make(map[string]map[string]struct{})
	mentions := 0

	for _, candidate := range list {
		total += candidate.Similarity
		summary.TopSimilarity = max(summary.TopSimilarity, candidate.Similarity)

		for category, skills := range candidate.Skills {
			seen, ok := perCategory[string(category)]
			if !ok {
				seen = make(map[string]struct{})
				perCategory[string(category)] = seen
			}
			for _, skill := range skills {
				seen[skill] = struct{}{}
				occurrences[skill]++
				mentions++
			}
		}
	}

	summary.AverageSimilarity = round2(total / float64(len(list)))
	summary.UniqueSkills = len(occurrences)
	summary.Categories = len(perCategory)
	summary.SkillsPerCandidate = round2(float64(mentions) / float64(len(list)))

	// most distinct skills wins, ties go to the alphabetically first category
	best := 0
	for category, skills := range perCategory {
		if n := len(skills); n > best || (n == best && n > 0 && category < summary.MostCommonCategory) {
			best, summary.MostCommonCategory = n, category
		}
	}

	for skill, count := range occurrences {
		summary.TopSkills = append(summary.TopSkills, SkillCount{Skill: skill, Count: count})
	}
	slices.SortFunc(summary.TopSkills, func(a, b SkillCount) int {
		if n := cmp.Compare(b.Count, a.Count); n != 0 {
			return n
		}
		return strings.Compare(a.Skill, b.Skill)
	})
	if len(summary.TopSkills) > topSkillsLimit {
		summary.TopSkills = summary.TopSkills[:topSkillsLimit]
	}

	return summary
}

// BySkillCategory groups candidates under every skill category they have at
// least one skill in. Entries keep the rank order.
func BySkillCategory(c *screening.Candidates) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, candidate := range items(c) {
		for category, skills := range candidate.Skills {
			if len(skills) == 0 {
				continue
			}
			entry := map[string]string{
				"name":       candidate.DisplayName(),
				"email":      candidate.Email,
				"similarity": formatFloat(candidate.Similarity),
				"skills":     strings.Join(skills, ", "),
			}
			if review := candidate.Review; review != nil {
				if review.Error != "" {
					entry["ai_error"] = review.Error
				} else {
					entry["ai_fit"] = strconv.FormatBool(review.Fit)
					entry["ai_score"] = strconv.FormatFloat(review.Score, 'f', -1, 64)
					entry["ai_reason"] = review.Reason
				}
			}
			report[string(category)] = append(report[string(category)], entry)
		}
	}
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
