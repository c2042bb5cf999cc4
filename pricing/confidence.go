package pricing

// Confidence levels accepted by the recommendation endpoints.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
	ConfidenceAll    = "all"
)

// Tier ties a confidence level to the evidence it requires and the largest
// price move it is allowed to recommend.
type Tier struct {
	Level      string
	Threshold  float64
	MinSamples int
}

// tiers runs from the most demanding tier to the least. Minimums and
// thresholds are monotonic: a product eligible at high is eligible below.
var tiers = []Tier{
	{Level: ConfidenceHigh, Threshold: 0.25, MinSamples: 30},
	{Level: ConfidenceMedium, Threshold: 0.15, MinSamples: 15},
	{Level: ConfidenceLow, Threshold: 0.10, MinSamples: 5},
}

// TierFor returns the tier for a specific confidence level.
func TierFor(level string) (Tier, bool) {
	for _, t := range tiers {
		if t.Level == level {
			return t, true
		}
	}
	return Tier{}, false
}

// BestTier returns the most demanding tier the sample count qualifies for.
func BestTier(sampleCount int) (Tier, bool) {
	for _, t := range tiers {
		if sampleCount >= t.MinSamples {
			return t, true
		}
	}
	return Tier{}, false
}

// MinimumSamples is the smallest sales history that can generate any
// recommendation: the lowest tier's requirement.
func MinimumSamples() int {
	return tiers[len(tiers)-1].MinSamples
}

// ValidConfidence reports whether s names a tier or the "all" filter.
func ValidConfidence(s string) bool {
	if s == ConfidenceAll {
		return true
	}
	_, ok := TierFor(s)
	return ok
}
