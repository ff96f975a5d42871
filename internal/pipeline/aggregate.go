package pipeline

import "math"

// OverallConfidence combines the business-analysis confidence with the
// market-validation score into the run's single quality indicator.
func OverallConfidence(businessConfidence, validationScore int) int {
	return int(math.Round(float64(businessConfidence+validationScore) / 2))
}
