// Package address parses free-text address blocks into street, postal code
// and city, suppressing known non-destination addresses.
package address

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/resto-ops/facture-cli/internal/model"
	"github.com/resto-ops/facture-cli/internal/normalize"
)

// maxCityTokens caps the token run read as a city name after the postal
// code ("CHALON SUR SAONE" is three).
const maxCityTokens = 4

// Extractor parses address blocks. Pure after construction, safe for
// concurrent use.
type Extractor struct {
	rules []compiledSuppress
}

type compiledSuppress struct {
	name   string
	re     *regexp.Regexp
	postal string
}

// NewExtractor compiles the suppression table into an Extractor.
func NewExtractor(table SuppressionTable) (*Extractor, error) {
	e := &Extractor{}
	for _, rule := range table.Rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "address: compile suppression pattern for %s", rule.Name)
		}
		e.rules = append(e.rules, compiledSuppress{name: rule.Name, re: re, postal: rule.PostalCode})
	}
	return e, nil
}

// Normalize parses a raw address block. When the text matches a known
// non-destination address, that span is excised and the remainder is
// rescanned for a second, distinct address; if none is found the result
// carries IsCompanyAddress with no usable fields.
func (e *Extractor) Normalize(raw string) model.NormalizedAddress {
	clean := normalize.Clean(raw)
	if clean == "" {
		return model.NormalizedAddress{}
	}

	suppressed := false
	for _, rule := range e.rules {
		if !rule.re.MatchString(clean) {
			continue
		}
		suppressed = true
		clean = rule.excise(clean)
	}

	addr := parse(clean)
	if !suppressed {
		return addr
	}

	// Only a distinct, plausible second address survives suppression: it
	// must carry a postal code or a numbered street. Leftover fragments of
	// the company block do not qualify.
	if addr.PostalCode != "" || containsDigit(addr.Street) {
		return addr
	}
	return model.NormalizedAddress{IsCompanyAddress: true}
}

func (r compiledSuppress) excise(s string) string {
	s = r.re.ReplaceAllString(s, " ")
	if r.postal != "" {
		s = strings.ReplaceAll(s, r.postal, " ")
	}
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// digitRun is a maximal run of digits within the cleaned text.
type digitRun struct {
	start, end int
}

// parse extracts {street, postal, city} from cleaned text. All plausible
// postal spans are collected and ranked, rather than taking the first hit,
// so the outcome does not depend on order of appearance.
func parse(clean string) model.NormalizedAddress {
	if clean == "" {
		return model.NormalizedAddress{}
	}

	addr := model.NormalizedAddress{NormalizedText: clean}

	spans := postalSpans(clean)
	if len(spans) == 0 {
		addr.Street = clean
		return addr
	}

	best := chooseSpan(clean, spans)
	addr.PostalCode = clean[best.start:best.end]
	addr.Street = strings.TrimSpace(clean[:best.start])
	addr.City = cityAfter(clean[best.end:])

	return addr
}

// postalSpans returns every maximal digit run of exactly five digits. Runs
// embedded in longer digit sequences (SIRET numbers, invoice references)
// never qualify.
func postalSpans(s string) []digitRun {
	var spans []digitRun
	i := 0
	for i < len(s) {
		if !isDigit(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j-i == 5 && boundedBefore(s, i) && boundedAfter(s, j) {
			spans = append(spans, digitRun{start: i, end: j})
		}
		i = j
	}
	return spans
}

// chooseSpan ranks candidate postal spans: a span immediately followed by
// an alphabetic token (its city) beats one that is not; among equals the
// earliest wins.
func chooseSpan(s string, spans []digitRun) digitRun {
	best := spans[0]
	bestCity := cityAfter(s[best.end:]) != ""
	for _, sp := range spans[1:] {
		hasCity := cityAfter(s[sp.end:]) != ""
		if hasCity && !bestCity {
			best, bestCity = sp, true
		}
	}
	return best
}

// cityAfter reads the city as the run of alphabetic tokens immediately
// following the postal code.
func cityAfter(rest string) string {
	var city []string
	for _, tok := range strings.Fields(rest) {
		if containsDigit(tok) || len(city) >= maxCityTokens {
			break
		}
		city = append(city, tok)
	}
	return strings.Join(city, " ")
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func boundedBefore(s string, i int) bool {
	return i == 0 || s[i-1] == ' '
}

func boundedAfter(s string, j int) bool {
	return j == len(s) || s[j] == ' '
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
