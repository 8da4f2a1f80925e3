package analytics

import "math"

const (
	selectorLookback    = 10
	selectorMinCoverage = 5
)

// SelectFeatures picks the candidates with sufficient recent coverage: a
// feature qualifies when at least 5 of its last 10 rows are non-missing.
// The returned order follows the candidate priority order, which keeps
// feature-vector construction reproducible. When nothing qualifies the
// selection falls back to the always-present days feature so the model is
// never left without a regressor.
func SelectFeatures(table *FeatureTable) []string {
	n := len(table.Rows)
	start := n - selectorLookback
	if start < 0 {
		start = 0
	}

	var selected []string
	for _, name := range CandidateFeatures {
		covered := 0
		for i := start; i < n; i++ {
			if !math.IsNaN(table.Rows[i].Values[name]) {
				covered++
			}
		}
		if covered >= selectorMinCoverage {
			selected = append(selected, name)
		}
	}

	if len(selected) == 0 {
		selected = []string{FeatureDays}
	}
	return selected
}
