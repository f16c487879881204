package model

// MatchedVia identifies which resolution stage produced a match.
type MatchedVia string

const (
	MatchedViaExactName       MatchedVia = "EXACT_NAME"
	MatchedViaNamePlusAddress MatchedVia = "NAME_PLUS_ADDRESS"
	MatchedViaPostalFallback  MatchedVia = "POSTAL_FALLBACK"
)

// Outcome is the variant tag of a ResolutionResult.
type Outcome string

const (
	OutcomeResolved  Outcome = "resolved"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeNotFound  Outcome = "not_found"
)

// MatchCandidate is a scored reference location considered during one
// resolution call. AddressScore is negative when no address was scored.
type MatchCandidate struct {
	Location      ReferenceLocation `json:"location"`
	NameScore     float64           `json:"name_score"`
	AddressScore  float64           `json:"address_score"` // -1 when not computed
	CombinedScore float64           `json:"combined_score"`
}

// HasAddressScore reports whether an address comparison was performed.
func (c MatchCandidate) HasAddressScore() bool { return c.AddressScore >= 0 }

// ResolutionResult is the single outcome of a Resolve call. Exactly one of
// the three variants applies, indicated by Outcome:
//
//   - OutcomeResolved: Location and Via are set.
//   - OutcomeAmbiguous: Candidates holds the tied set, best first.
//   - OutcomeNotFound: Reason is set; Candidates holds near misses, best first.
type ResolutionResult struct {
	Outcome    Outcome            `json:"outcome"`
	Location   *ReferenceLocation `json:"location,omitempty"`
	Via        MatchedVia         `json:"matched_via,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	Candidates []MatchCandidate   `json:"candidates,omitempty"`
}

// Resolved builds a successful result.
func Resolved(loc ReferenceLocation, via MatchedVia) ResolutionResult {
	return ResolutionResult{Outcome: OutcomeResolved, Location: &loc, Via: via}
}

// Ambiguous builds an ambiguous result from a ranked candidate list.
func Ambiguous(candidates []MatchCandidate) ResolutionResult {
	return ResolutionResult{Outcome: OutcomeAmbiguous, Candidates: candidates}
}

// NotFound builds a failure result, retaining near misses for diagnostics.
func NotFound(reason string, nearMisses []MatchCandidate) ResolutionResult {
	return ResolutionResult{Outcome: OutcomeNotFound, Reason: reason, Candidates: nearMisses}
}
