// Package predict turns historical cutoff records into confidence-bucketed
// admission recommendations.
package predict

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/admitcast/backend/internal/models"
)

// Bucket thresholds. These constants are the single source of truth for
// tiering; any presentation copy must reference the same values.
const (
	HighConfidenceThreshold   = 70
	MediumConfidenceThreshold = 40
)

// trendMargin is the relative change beyond which a trend is no longer
// labeled stable.
const trendMargin = 0.1

// trendWeight scales the trend factor's contribution to confidence.
const trendWeight = 20

// NoHistoryAnalysis is the fixed analysis text returned when a category has
// no historical records.
const NoHistoryAnalysis = "No historical cutoff data is available for this category."

// Config carries the engine's injected defaults so tests can freeze "now".
type Config struct {
	// Now anchors the recent/older year split.
	Now time.Time
	// RecentWindowYears is how far back a record still counts as recent.
	RecentWindowYears int
	// MaxSuggestions caps the suggested application count in the analysis.
	MaxSuggestions int
}

// DefaultConfig returns the engine defaults used by the server.
func DefaultConfig() Config {
	return Config{
		Now:               time.Now(),
		RecentWindowYears: 2,
		MaxSuggestions:    5,
	}
}

// Engine computes admission predictions from historical cutoff records.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	if cfg.RecentWindowYears <= 0 {
		cfg.RecentWindowYears = 2
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 5
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	return &Engine{cfg: cfg}
}

// group aggregates the historical records for one (institution, course)
// pair.
type group struct {
	institution string
	course      string
	records     []models.CutoffRecord
}

// Predict scores every (institution, course) group in the history against
// the applicant's rank and buckets the results into three tiers. history is
// expected to already match the requested category; records for other
// categories are filtered out defensively.
func (e *Engine) Predict(rank int, category string, history []models.CutoffRecord) *models.PredictionResult {
	matching := filterCategory(history, category)
	if len(matching) == 0 {
		return &models.PredictionResult{
			High:     []models.Prediction{},
			Medium:   []models.Prediction{},
			Low:      []models.Prediction{},
			Analysis: NoHistoryAnalysis,
		}
	}

	result := &models.PredictionResult{
		High:   []models.Prediction{},
		Medium: []models.Prediction{},
		Low:    []models.Prediction{},
	}

	for _, g := range groupRecords(matching) {
		p := e.score(rank, category, g)
		switch {
		case p.Confidence >= HighConfidenceThreshold:
			result.High = append(result.High, p)
		case p.Confidence >= MediumConfidenceThreshold:
			result.Medium = append(result.Medium, p)
		default:
			result.Low = append(result.Low, p)
		}
	}

	sortByConfidence(result.High)
	sortByConfidence(result.Medium)
	sortByConfidence(result.Low)
	result.Analysis = e.analysis(result, len(matching))

	return result
}

func filterCategory(history []models.CutoffRecord, category string) []models.CutoffRecord {
	var out []models.CutoffRecord
	for _, rec := range history {
		if strings.EqualFold(rec.Category, category) {
			out = append(out, rec)
		}
	}
	return out
}

// groupRecords groups records by (institution, course) in deterministic
// order.
func groupRecords(records []models.CutoffRecord) []group {
	byKey := make(map[string]*group)
	var keys []string

	for _, rec := range records {
		key := rec.InstitutionName + "::" + rec.CourseName
		g, ok := byKey[key]
		if !ok {
			g = &group{institution: rec.InstitutionName, course: rec.CourseName}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.records = append(g.records, rec)
	}

	sort.Strings(keys)
	groups := make([]group, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, *byKey[key])
	}
	return groups
}

// score computes one prediction. Confidence grows with how far the group's
// average cutoff sits above the applicant's rank; a rising cutoff trend
// nudges it up, a falling one pulls it down. A zero average contributes zero
// confidence rather than dividing by zero.
func (e *Engine) score(rank int, category string, g group) models.Prediction {
	avg := mean(g.records)
	trendFactor := e.trendFactor(g.records)

	var confidence float64
	if avg > 0 {
		confidence = (avg-float64(rank))/avg*100 + trendFactor*trendWeight
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return models.Prediction{
		InstitutionName: g.institution,
		CourseName:      g.course,
		Category:        category,
		Confidence:      int(confidence),
		AverageCutoff:   int(avg),
		Trend:           trendLabel(trendFactor),
	}
}

// trendFactor is the relative change between the recent-years and
// older-years mean cutoff. Zero when either side is empty.
func (e *Engine) trendFactor(records []models.CutoffRecord) float64 {
	cut := e.cfg.Now.Year() - e.cfg.RecentWindowYears

	var recent, older []models.CutoffRecord
	for _, rec := range records {
		if rec.Year >= cut {
			recent = append(recent, rec)
		} else {
			older = append(older, rec)
		}
	}
	if len(recent) == 0 || len(older) == 0 {
		return 0
	}

	olderMean := mean(older)
	if olderMean == 0 {
		return 0
	}
	return (mean(recent) - olderMean) / olderMean
}

func trendLabel(factor float64) models.Trend {
	switch {
	case factor > trendMargin:
		return models.TrendIncreasing
	case factor < -trendMargin:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

func mean(records []models.CutoffRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, rec := range records {
		sum += rec.RankCutoff
	}
	return float64(sum) / float64(len(records))
}

func sortByConfidence(predictions []models.Prediction) {
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})
}

// analysis renders the human-readable summary. The tier wording references
// the same thresholds the bucketing uses.
func (e *Engine) analysis(result *models.PredictionResult, recordCount int) string {
	total := result.Total()
	suggested := total
	if suggested > e.cfg.MaxSuggestions {
		suggested = e.cfg.MaxSuggestions
	}
	return fmt.Sprintf(
		"Analyzed %d historical cutoff records across %d institution-course options: "+
			"%d high confidence (%d%%+), %d medium confidence (%d-%d%%), %d low confidence. "+
			"Consider applying to your top %d options.",
		recordCount, total,
		len(result.High), HighConfidenceThreshold,
		len(result.Medium), MediumConfidenceThreshold, HighConfidenceThreshold-1,
		len(result.Low),
		suggested,
	)
}
