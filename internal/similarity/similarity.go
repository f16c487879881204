// Package similarity scores name and address closeness between a query and
// reference records. All functions are pure.
package similarity

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/resto-ops/facture-cli/internal/model"
	"github.com/resto-ops/facture-cli/internal/normalize"
)

// Address score weights: postal equality carries half the score, the rest
// is street-token overlap with city equality as a minor tiebreak.
const (
	postalWeight = 0.5
	streetWeight = 0.5
	cityShare    = 0.1 // of the street component
)

// Name compares two normalized names and returns a score in [0,1].
// Token-set overlap handles reordered tokens; the edit-distance ratio
// handles spelling drift. The max of the two is taken so neither strength
// penalizes the other. Symmetric; 1.0 on identical inputs.
func Name(a, b normalize.NormalizedName) float64 {
	sa, sb := a.String(), b.String()
	if sa == sb {
		return 1.0
	}
	if sa == "" || sb == "" {
		return 0.0
	}

	score := tokenJaccard(a.Tokens(), b.Tokens())
	if r := editRatio(sa, sb); r > score {
		score = r
	}

	// Single-token names carry too little signal for token overlap and are
	// short enough that one typo tanks the edit ratio. Jaro-Winkler is the
	// established floor for that case.
	if len(a.Tokens()) == 1 && len(b.Tokens()) == 1 {
		if jw := smetrics.JaroWinkler(sa, sb, 0.7, 4); jw > score {
			score = jw
		}
	}

	return clamp01(score)
}

// Address compares a normalized query address against a reference location
// and returns a score in [0,1]. Postal-code equality contributes 0.5; the
// remaining 0.5 is street-token overlap, with city equality folded in as a
// minor tiebreak. Identical postal, street and city score 1.0.
func Address(a model.NormalizedAddress, loc model.ReferenceLocation) float64 {
	var score float64

	if a.PostalCode != "" && a.PostalCode == loc.PostalCode {
		score += postalWeight
	}

	streetOverlap := tokenJaccard(
		streetTokens(a.Street),
		streetTokens(loc.Street),
	)

	cityEq := 0.0
	if normalize.Clean(a.City) == normalize.Clean(loc.City) {
		cityEq = 1.0
	}

	score += streetWeight * ((1-cityShare)*streetOverlap + cityShare*cityEq)

	return clamp01(score)
}

// streetNoise lists address tokens too common to discriminate between
// streets; they are dropped before overlap scoring.
var streetNoise = map[string]bool{
	"RUE": true, "AVENUE": true, "AV": true, "BD": true, "BOULEVARD": true,
	"PLACE": true, "ROUTE": true, "RTE": true, "CHEMIN": true, "ALLEE": true,
	"IMPASSE": true, "DE": true, "DU": true, "DES": true, "LA": true,
	"LE": true, "LES": true, "D": true, "L": true,
}

func streetTokens(street string) []string {
	fields := strings.Fields(normalize.Clean(street))
	out := fields[:0]
	for _, f := range fields {
		if !streetNoise[f] {
			out = append(out, f)
		}
	}
	return out
}

// tokenJaccard returns |a ∩ b| / |a ∪ b| over token sets. Two empty sets
// are identical and score 1.0; one empty set scores 0.0.
func tokenJaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}

	union := make(map[string]bool, len(a)+len(b))
	for _, t := range a {
		union[t] = true
	}

	var inter int
	for _, t := range b {
		if set[t] {
			set[t] = false
			inter++
		}
		union[t] = true
	}

	return float64(inter) / float64(len(union))
}

// editRatio converts Levenshtein distance into a similarity in [0,1].
func editRatio(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1.0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(d)/float64(longest)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
