// Package resolver matches a free-text site reference against the
// reference store, disambiguating by address and postal code when the name
// alone is not decisive.
package resolver

import (
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/resto-ops/facture-cli/internal/address"
	"github.com/resto-ops/facture-cli/internal/config"
	"github.com/resto-ops/facture-cli/internal/model"
	"github.com/resto-ops/facture-cli/internal/normalize"
	"github.com/resto-ops/facture-cli/internal/refstore"
	"github.com/resto-ops/facture-cli/internal/similarity"
)

// maxNearMisses bounds the diagnostic candidate list on failure results.
const maxNearMisses = 5

var postalHintRe = regexp.MustCompile(`^\d{5}$`)

// Resolver runs the staged lookup. It holds no mutable state: the store is
// read-only, the normalizers are pure, so concurrent Resolve calls are safe.
type Resolver struct {
	store *refstore.Store
	names *normalize.Normalizer
	addrs *address.Extractor
	cfg   config.MatchingConfig
	log   *zap.Logger
}

// New builds a Resolver. Threshold and weight parameters come from cfg so
// they can be recalibrated without touching this package.
func New(store *refstore.Store, names *normalize.Normalizer, addrs *address.Extractor, cfg config.MatchingConfig) *Resolver {
	return &Resolver{
		store: store,
		names: names,
		addrs: addrs,
		cfg:   cfg,
		log:   zap.L().With(zap.String("component", "resolver")),
	}
}

// Resolve runs the strictly ordered stages:
//
//  1. name match: all locations with name similarity at or above the
//     threshold; a unique survivor wins outright
//  2. address disambiguation: among 2+ same-named candidates, the usable
//     query address picks the winner by combined score; ties stay ambiguous
//  3. postal fallback: locations sharing the postal code, re-ranked by
//     whatever name fragment is available
//
// A stage missing its required input is skipped, never fatal. The result is
// always a value; near misses ride along on failures for diagnostics.
func (r *Resolver) Resolve(query model.QueryBundle) model.ResolutionResult {
	qname := r.names.Normalize(query.RawName)

	var addr model.NormalizedAddress
	if query.RawAddress != "" {
		addr = r.addrs.Normalize(query.RawAddress)
	}

	postal := addr.PostalCode
	if postalHintRe.MatchString(query.PostalCodeHint) {
		postal = query.PostalCodeHint
	}

	scored := r.scoreByName(qname)

	var candidates []model.MatchCandidate
	for _, c := range scored {
		if c.NameScore >= r.cfg.NameThreshold {
			candidates = append(candidates, c)
		}
	}

	r.log.Debug("name stage",
		zap.String("normalized_name", qname.String()),
		zap.Int("scored", len(scored)),
		zap.Int("candidates", len(candidates)),
	)

	switch len(candidates) {
	case 1:
		return model.Resolved(candidates[0].Location, model.MatchedViaExactName)
	case 0:
		return r.postalFallback(qname, postal, nearMisses(scored))
	}

	if !addr.Usable() {
		return r.postalFallback(qname, postal, candidates)
	}
	return r.disambiguateByAddress(candidates, addr)
}

// scoreByName scores every plausible location against the query name,
// ranked best first. The token index narrows the scan; when no query token
// is indexed the full set is scored so misspellings still surface.
func (r *Resolver) scoreByName(qname normalize.NormalizedName) []model.MatchCandidate {
	if qname == "" {
		return nil
	}

	pool := r.tokenUnion(qname.Tokens())
	if len(pool) == 0 {
		pool = r.store.All()
	}

	scored := make([]model.MatchCandidate, 0, len(pool))
	for _, loc := range pool {
		score := similarity.Name(qname, r.names.Normalize(loc.CanonicalName))
		scored = append(scored, model.MatchCandidate{
			Location:      loc,
			NameScore:     score,
			AddressScore:  -1,
			CombinedScore: score,
		})
	}
	rank(scored)
	return scored
}

func (r *Resolver) tokenUnion(tokens []string) []model.ReferenceLocation {
	seen := make(map[string]bool)
	var pool []model.ReferenceLocation
	for _, tok := range tokens {
		for _, loc := range r.store.ByNameToken(tok) {
			if !seen[loc.CanonicalID] {
				seen[loc.CanonicalID] = true
				pool = append(pool, loc)
			}
		}
	}
	return pool
}

// disambiguateByAddress picks among same-named candidates using the query
// address. Address similarity is weighted above name similarity here: this
// stage only exists because the names could not discriminate.
func (r *Resolver) disambiguateByAddress(candidates []model.MatchCandidate, addr model.NormalizedAddress) model.ResolutionResult {
	rescored := make([]model.MatchCandidate, len(candidates))
	for i, c := range candidates {
		c.AddressScore = similarity.Address(addr, c.Location)
		c.CombinedScore = r.cfg.NameWeight*c.NameScore + r.cfg.AddressWeight*c.AddressScore
		rescored[i] = c
	}
	rank(rescored)

	best, second := rescored[0], rescored[1]
	if best.CombinedScore-second.CombinedScore > r.cfg.TieEpsilon {
		r.log.Debug("address disambiguation",
			zap.String("winner", best.Location.CanonicalID),
			zap.Float64("combined_score", best.CombinedScore),
		)
		return model.Resolved(best.Location, model.MatchedViaNamePlusAddress)
	}

	// Scores within epsilon are a tie: hand the ranked set back for manual
	// review instead of guessing.
	tied := []model.MatchCandidate{rescored[0]}
	for _, c := range rescored[1:] {
		if best.CombinedScore-c.CombinedScore <= r.cfg.TieEpsilon {
			tied = append(tied, c)
		}
	}
	return model.Ambiguous(tied)
}

// postalFallback is the last-resort geographic match.
func (r *Resolver) postalFallback(qname normalize.NormalizedName, postal string, nearMisses []model.MatchCandidate) model.ResolutionResult {
	if postal == "" {
		return model.NotFound("no name match and no postal code to fall back on", nearMisses)
	}

	locs := r.store.ByPostalCode(postal)
	switch len(locs) {
	case 0:
		return model.NotFound("no reference location in postal code "+postal, nearMisses)
	case 1:
		return model.Resolved(locs[0], model.MatchedViaPostalFallback)
	}

	// Multiple sites share the postal code: re-rank by whatever name
	// fragment is available, even a low-confidence one.
	ranked := make([]model.MatchCandidate, len(locs))
	for i, loc := range locs {
		score := similarity.Name(qname, r.names.Normalize(loc.CanonicalName))
		ranked[i] = model.MatchCandidate{
			Location:      loc,
			NameScore:     score,
			AddressScore:  -1,
			CombinedScore: score,
		}
	}
	rank(ranked)

	if ranked[0].CombinedScore-ranked[1].CombinedScore >= r.cfg.PostalMargin {
		return model.Resolved(ranked[0].Location, model.MatchedViaPostalFallback)
	}
	return model.Ambiguous(ranked)
}

// rank orders candidates by combined score descending; equal scores fall
// back to canonical id so results are reproducible.
func rank(cs []model.MatchCandidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].CombinedScore != cs[j].CombinedScore {
			return cs[i].CombinedScore > cs[j].CombinedScore
		}
		return cs[i].Location.CanonicalID < cs[j].Location.CanonicalID
	})
}

func nearMisses(scored []model.MatchCandidate) []model.MatchCandidate {
	if len(scored) > maxNearMisses {
		scored = scored[:maxNearMisses]
	}
	return scored
}
