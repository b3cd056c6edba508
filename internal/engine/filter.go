package engine

import "github.com/xab-mack/optistats/internal/model"

// FilterNoise removes detections of the noise type. It reports false when no
// detection survives, in which case the contract is dropped from the corpus.
// Applying it twice gives the same result as applying it once.
func FilterNoise(c model.ContractAnalysis, noise model.VulnType) (model.ContractAnalysis, bool) {
	kept := make([]model.Detection, 0, len(c.Detections))
	for _, d := range c.Detections {
		if d.Type == noise {
			continue
		}
		kept = append(kept, d)
	}
	c.Detections = kept
	return c, len(kept) > 0
}
