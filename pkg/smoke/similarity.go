package smoke

import (
	"github.com/glaslos/ssdeep"
	"github.com/root4loot/goutils/log"
)

// findDuplicates returns every pair of captures whose fuzzy hashes score at
// or above threshold. Images too small to hash are skipped.
func findDuplicates(captures []shot, threshold int) []Duplicate {
	hashes := make([]string, len(captures))
	for i, c := range captures {
		hash, err := ssdeep.FuzzyBytes(c.image)
		if err != nil {
			log.Debugf("Could not hash screenshot of %s: %v", c.name, err)
			continue
		}
		hashes[i] = hash
	}

	var duplicates []Duplicate
	for i := range captures {
		if hashes[i] == "" {
			continue
		}
		for j := i + 1; j < len(captures); j++ {
			if hashes[j] == "" {
				continue
			}
			score, err := ssdeep.Distance(hashes[i], hashes[j])
			if err != nil {
				continue
			}
			if score >= threshold {
				log.Warnf("%s is similar to %s with a score of %d", captures[j].name, captures[i].name, score)
				duplicates = append(duplicates, Duplicate{First: captures[i].name, Second: captures[j].name, Score: score})
			}
		}
	}
	return duplicates
}
