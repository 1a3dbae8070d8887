// Package score assigns each candidate decision a composite confidence in
// [0,1].
package score

import (
	"math"

	"github.com/strata-dev/strata/internal/types"
)

// Component weights of the composite confidence.
const (
	weightQuality     = 0.4
	weightQuantity    = 0.3
	weightConsistency = 0.2
	weightSynthesis   = 0.1
)

// quantitySaturation is the evidence count at which the quantity component
// reaches 1.0; growth is logarithmic below it.
const quantitySaturation = 8

// Run scores every decision in place against the full evidence set.
func Run(decisions []types.DecisionRecord, evidence []types.Evidence) {
	// technology -> evidence count, and technology -> per-category counts,
	// across all categories (for the consistency component).
	techTotal := map[string]int{}
	techByCat := map[string]map[types.Category]int{}
	for _, ev := range evidence {
		techTotal[ev.TechnologyID]++
		if techByCat[ev.TechnologyID] == nil {
			techByCat[ev.TechnologyID] = map[types.Category]int{}
		}
		techByCat[ev.TechnologyID][ev.Category]++
	}

	byRef := map[string]types.Evidence{}
	for _, ev := range evidence {
		byRef[ev.TechnologyID+"\x00"+ev.Ref()] = ev
	}

	for i := range decisions {
		d := &decisions[i]
		evs := make([]types.Evidence, 0, len(d.EvidenceRefs))
		for _, ref := range d.EvidenceRefs {
			if ev, ok := byRef[d.TechnologyID+"\x00"+ref]; ok {
				evs = append(evs, ev)
			}
		}
		d.Confidence = Confidence(d, evs, techTotal[d.TechnologyID], techByCat[d.TechnologyID])
	}
}

// Confidence computes the composite score for one decision.
func Confidence(d *types.DecisionRecord, evs []types.Evidence, techTotal int, byCat map[types.Category]int) float64 {
	quality := evidenceQuality(evs)
	quantity := evidenceQuantity(len(evs))
	consistency := categoryConsistency(d.Category, techTotal, byCat)
	bonus := 0.0
	if d.Narrated {
		bonus = 1.0
	}

	c := weightQuality*quality + weightQuantity*quantity + weightConsistency*consistency + weightSynthesis*bonus
	return clamp01(c)
}

// evidenceQuality is the mean match strength; content-pattern matches carry
// full strength, path-only matches half.
func evidenceQuality(evs []types.Evidence) float64 {
	if len(evs) == 0 {
		return 0
	}
	sum := 0.0
	for _, ev := range evs {
		sum += ev.Strength
	}
	return clamp01(sum / float64(len(evs)))
}

// evidenceQuantity saturates logarithmically: more files add confidence with
// diminishing returns.
func evidenceQuantity(n int) float64 {
	if n <= 0 {
		return 0
	}
	return clamp01(math.Log2(1+float64(n)) / math.Log2(1+quantitySaturation))
}

// categoryConsistency is the share of the technology's evidence that sits in
// the decision's own category. Evidence scattered across unrelated
// categories drags the score down.
func categoryConsistency(cat types.Category, techTotal int, byCat map[types.Category]int) float64 {
	if techTotal == 0 {
		return 0
	}
	return clamp01(float64(byCat[cat]) / float64(techTotal))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
