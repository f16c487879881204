// Package normalize canonicalizes free-text company names for matching.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizedName is a canonicalized company name. Same raw input always
// yields the same NormalizedName.
type NormalizedName string

// String returns the normalized text.
func (n NormalizedName) String() string { return string(n) }

// Tokens splits the normalized name into its space-separated tokens.
func (n NormalizedName) Tokens() []string {
	if n == "" {
		return nil
	}
	return strings.Fields(string(n))
}

// corporateSuffixes lists legal-form tokens stripped from the tail of a
// name. They never identify a site, only the operating entity.
var corporateSuffixes = map[string]bool{
	"SARL": true,
	"SAS":  true,
	"SASU": true,
	"EURL": true,
	"SNC":  true,
	"SCI":  true,
	"SA":   true,
}

// diacriticStripper decomposes to NFD, drops combining marks, recomposes.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// punctRe matches everything that is not a letter, digit, space or apostrophe.
var punctRe = regexp.MustCompile(`[^A-Z0-9' ]+`)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// Normalizer canonicalizes names using a compiled alias table. It is pure:
// no state changes after construction, safe for concurrent use.
type Normalizer struct {
	rules []compiledRule
}

type compiledRule struct {
	canonical string
	patterns  []*regexp.Regexp
}

// New compiles the alias table into a Normalizer.
func New(table AliasTable) (*Normalizer, error) {
	n := &Normalizer{}
	for _, rule := range table.Rules {
		cr := compiledRule{canonical: rule.Canonical}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, eris.Wrapf(err, "normalize: compile alias pattern %q for %s", p, rule.Canonical)
			}
			cr.patterns = append(cr.patterns, re)
		}
		n.rules = append(n.rules, cr)
	}
	return n, nil
}

// Normalize canonicalizes a raw company name:
//  1. uppercase, strip diacritics, drop punctuation except internal
//     apostrophes, collapse whitespace
//  2. rewrite franchise alias classes to their canonical token
//  3. strip trailing corporate-form tokens (SARL, SAS, ...)
func (n *Normalizer) Normalize(raw string) NormalizedName {
	s := Clean(raw)
	if s == "" {
		return ""
	}

	for _, rule := range n.rules {
		for _, re := range rule.patterns {
			s = re.ReplaceAllString(s, rule.canonical)
		}
	}
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	tokens := strings.Fields(s)
	for len(tokens) > 1 && corporateSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}

	return NormalizedName(strings.Join(tokens, " "))
}

// Clean applies the pre-alias text cleanup: uppercase, diacritics removed,
// punctuation dropped (internal apostrophes kept), whitespace collapsed.
// Shared with the address and provider normalizers.
func Clean(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	if stripped, _, err := transform.String(diacriticStripper, s); err == nil {
		s = stripped
	}

	s = punctRe.ReplaceAllString(s, " ")
	// An apostrophe is internal when flanked by letters; strays become spaces.
	s = strings.TrimFunc(s, func(r rune) bool { return r == '\'' || r == ' ' })
	s = strings.ReplaceAll(s, " '", " ")
	s = strings.ReplaceAll(s, "' ", " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
