package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pichpich13/user-dashboard/internal/domain"
)

// UnknownGrade is the grade Open Food Facts reports when it cannot compute one
const UnknownGrade = "unknown"

// MissingScorePolicy decides what a missing score contributes to the summaries
type MissingScorePolicy string

const (
	// MissingScoreZero counts a missing score as 0, pulling means and density toward zero
	MissingScoreZero MissingScorePolicy = "zero"
	// MissingScoreExclude leaves missing scores out of the score view and category means
	MissingScoreExclude MissingScorePolicy = "exclude"
)

// ParseMissingScorePolicy validates a policy name; empty means MissingScoreZero
func ParseMissingScorePolicy(name string) (MissingScorePolicy, error) {
	switch MissingScorePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", MissingScoreZero:
		return MissingScoreZero, nil
	case MissingScoreExclude:
		return MissingScoreExclude, nil
	default:
		return "", fmt.Errorf("missing score policy must be %q or %q, got: %s", MissingScoreZero, MissingScoreExclude, name)
	}
}

// AggregatorConfig holds configuration for both summaries
type AggregatorConfig struct {
	MissingScore MissingScorePolicy
	// ExcludeFailedLookups also drops "product not found" and "request error"
	// categories from the category summary, on top of "not available"
	ExcludeFailedLookups bool
}

// Aggregator cleans fetched records into the two dashboard summaries.
// The two summaries are computed independently and never share state.
type Aggregator struct {
	missingScore         MissingScorePolicy
	excludeFailedLookups bool
}

// NewAggregator creates a new aggregator
func NewAggregator(config AggregatorConfig) *Aggregator {
	policy := config.MissingScore
	if policy == "" {
		policy = MissingScoreZero
	}

	return &Aggregator{
		missingScore:         policy,
		excludeFailedLookups: config.ExcludeFailedLookups,
	}
}

// SummarizeDistribution prepares the score density and grade count views.
// Rows graded "unknown" are dropped. An empty grade also reads as not available,
// where a null-only fill would keep "" as a bar of its own.
func (a *Aggregator) SummarizeDistribution(records []domain.ProductScoreRecord) domain.Distribution {
	dist := domain.Distribution{
		Records: make([]domain.ProductScoreRecord, 0, len(records)),
		Scores:  make([]float64, 0, len(records)),
		Grades:  make([]string, 0, len(records)),
	}

	for _, record := range records {
		if record.Grade.Valid() && record.Grade.Value == UnknownGrade {
			continue
		}
		if record.Grade.Valid() && record.Grade.Value == "" {
			record.Grade = domain.Missing[string](domain.SentinelNotAvailable)
		}

		score, counted := a.applyScorePolicy(record.Score)
		record.Score = score

		dist.Records = append(dist.Records, record)
		if counted {
			dist.Scores = append(dist.Scores, score.Value)
		}
		dist.Grades = append(dist.Grades, record.Grade.Label())
	}

	dist.GradeCounts = countGrades(dist.Grades)
	return dist
}

// SummarizeByCategory computes the mean score per primary category,
// sorted by mean descending with ties in grouping (lexicographic) order.
func (a *Aggregator) SummarizeByCategory(records []domain.ProductScoreRecord) domain.CategorySummary {
	summary := domain.CategorySummary{
		Records: make([]domain.ProductScoreRecord, 0, len(records)),
		Rows:    make([]domain.CategoryMean, 0),
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, record := range records {
		if a.excludeCategory(record.Category) {
			continue
		}

		score, counted := a.applyScorePolicy(record.Score)
		record.Score = score
		if record.Category.Valid() {
			record.Category.Value = PrimaryCategory(record.Category.Value)
		}
		summary.Records = append(summary.Records, record)

		if !counted {
			continue
		}
		key := record.Category.Label()
		sums[key] += score.Value
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		summary.Rows = append(summary.Rows, domain.CategoryMean{
			Category:  key,
			MeanScore: sums[key] / float64(counts[key]),
			Count:     counts[key],
		})
	}
	sort.SliceStable(summary.Rows, func(i, j int) bool {
		return summary.Rows[i].MeanScore > summary.Rows[j].MeanScore
	})

	return summary
}

// PrimaryCategory keeps the first comma-separated segment, untrimmed
func PrimaryCategory(categories string) string {
	primary, _, _ := strings.Cut(categories, ",")
	return primary
}

// applyScorePolicy returns the cleaned score and whether it enters the numeric views
func (a *Aggregator) applyScorePolicy(score domain.Field[float64]) (domain.Field[float64], bool) {
	if score.Valid() && !math.IsNaN(score.Value) {
		return score, true
	}
	if a.missingScore == MissingScoreExclude {
		return score, false
	}
	return domain.ValueOf(0.0), true
}

func (a *Aggregator) excludeCategory(category domain.Field[string]) bool {
	switch category.Sentinel {
	case domain.SentinelNotAvailable:
		return true
	case domain.SentinelNotFound, domain.SentinelRequestError:
		return a.excludeFailedLookups
	default:
		return false
	}
}

func countGrades(grades []string) []domain.GradeCount {
	counts := make(map[string]int)
	for _, grade := range grades {
		counts[grade]++
	}

	result := make([]domain.GradeCount, 0, len(counts))
	for grade, count := range counts {
		result = append(result, domain.GradeCount{Grade: grade, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Grade < result[j].Grade
	})
	return result
}
