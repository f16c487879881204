// Package provider maps verbose collector names ("SUEZ RV CENTRE EST SAS")
// to canonical short codes and picks waste-type combination suffixes.
package provider

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/resto-ops/facture-cli/internal/model"
	"github.com/resto-ops/facture-cli/internal/normalize"
)

// tokenMatchFloor is the Jaro-Winkler score at which two tokens are close
// enough to count as the same word during containment scoring.
const tokenMatchFloor = 0.92

// Table resolves raw provider strings against a small alias vocabulary.
// Read-only after construction.
type Table struct {
	entries   []model.ProviderAlias
	threshold float64
	log       *zap.Logger
}

// NewTable builds a provider table. Entries below the containment threshold
// are reported as unknown rather than guessed.
func NewTable(entries []model.ProviderAlias, threshold float64) *Table {
	return &Table{
		entries:   entries,
		threshold: threshold,
		log:       zap.L().With(zap.String("component", "provider")),
	}
}

// Entries returns the loaded aliases.
func (t *Table) Entries() []model.ProviderAlias { return t.entries }

// Resolve maps a raw provider string to a canonical code. The boolean is
// false when no entry clears the threshold.
func (t *Table) Resolve(raw string) (string, bool) {
	clean := normalize.Clean(raw)
	if clean == "" {
		return "", false
	}

	// Direct containment first: the canonical code or a known alias
	// appearing verbatim inside the provider string is decisive.
	// Longest fragment wins so "SUEZ EAU" beats "SUEZ" only via its alias.
	bestLen := 0
	bestCode := ""
	for _, e := range t.entries {
		for _, frag := range append([]string{e.CanonicalCode}, e.Aliases...) {
			f := normalize.Clean(frag)
			if f != "" && containsToken(clean, f) && len(f) > bestLen {
				bestLen, bestCode = len(f), e.CanonicalCode
			}
		}
	}
	if bestCode != "" {
		return bestCode, true
	}

	// Fuzzy containment: score each entry by how much of its best fragment
	// is covered by the raw tokens.
	bestScore := 0.0
	for _, e := range t.entries {
		if score := t.containmentScore(clean, e); score > bestScore {
			bestScore, bestCode = score, e.CanonicalCode
		}
	}
	if bestScore < t.threshold {
		t.log.Debug("provider below threshold",
			zap.String("raw", raw),
			zap.String("best", bestCode),
			zap.Float64("score", bestScore),
		)
		return "", false
	}
	return bestCode, true
}

// containmentScore returns the best fraction of fragment tokens found in
// the raw string, with Jaro-Winkler tolerance for spelling drift.
func (t *Table) containmentScore(clean string, e model.ProviderAlias) float64 {
	rawTokens := strings.Fields(clean)
	best := 0.0
	for _, frag := range append([]string{e.CanonicalCode}, e.Aliases...) {
		fragTokens := strings.Fields(normalize.Clean(frag))
		if len(fragTokens) == 0 {
			continue
		}
		var hit int
		for _, ft := range fragTokens {
			for _, rt := range rawTokens {
				if ft == rt || smetrics.JaroWinkler(ft, rt, 0.7, 4) >= tokenMatchFloor {
					hit++
					break
				}
			}
		}
		if score := float64(hit) / float64(len(fragTokens)); score > best {
			best = score
		}
	}
	return best
}

// CombinationFor picks the accepted combination suffix matching the waste
// types detected on the invoice. An exact set match wins; otherwise the
// combination covering the most detected types. With no detected types, or
// no accepted combinations, the bare code is returned.
func (t *Table) CombinationFor(code string, wasteTypes []string) string {
	detected := detectWasteTypes(wasteTypes)
	if len(detected) == 0 {
		return code
	}

	var combos []string
	for _, e := range t.entries {
		if e.CanonicalCode == code {
			combos = e.Combinations
			break
		}
	}
	if len(combos) == 0 {
		return code + joinSorted(detected)
	}

	best := ""
	bestScore := -1
	for _, combo := range combos {
		comboTypes := detectWasteTypes([]string{combo})
		if setsEqual(comboTypes, detected) {
			return combo
		}
		score := overlap(comboTypes, detected)
		if score > bestScore {
			bestScore, best = score, combo
		}
	}
	if bestScore > 0 {
		return best
	}
	return code
}

// detectWasteTypes normalizes free-form waste descriptions to the three
// tracked classes. "DECHETS RECYCLABLES" is the long form of CS.
func detectWasteTypes(raw []string) map[string]bool {
	types := make(map[string]bool)
	for _, w := range raw {
		u := normalize.Clean(w)
		if strings.Contains(u, "BIO") {
			types["BIO"] = true
		}
		if strings.Contains(u, "DIB") {
			types["DIB"] = true
		}
		if strings.Contains(u, "CS") || strings.Contains(u, "RECYCLABLE") {
			types["CS"] = true
		}
	}
	return types
}

func containsToken(haystack, needle string) bool {
	idx := strings.Index(haystack, needle)
	for idx >= 0 {
		before := idx == 0 || haystack[idx-1] == ' '
		after := idx+len(needle) == len(haystack) || haystack[idx+len(needle)] == ' '
		if before && after {
			return true
		}
		next := strings.Index(haystack[idx+1:], needle)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func overlap(a, b map[string]bool) int {
	var n int
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}

func joinSorted(set map[string]bool) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "")
}
