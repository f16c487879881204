package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// AliasRule rewrites every match of its patterns to one canonical token,
// collapsing an alias class (e.g. all McDonald's spellings) to a single
// spelling before similarity scoring.
type AliasRule struct {
	Canonical string   `yaml:"canonical"`
	Patterns  []string `yaml:"patterns"` // regexes, matched against cleaned uppercase text
}

// AliasTable is the franchise alias configuration. It is data, not code:
// new variants are added to the YAML file without touching the normalizer.
type AliasTable struct {
	Rules []AliasRule `yaml:"rules"`
}

// DefaultAliasTable returns the compiled-in alias rules. These cover the
// franchise spellings seen on real collection invoices; deployments extend
// them via reference.aliases_path.
func DefaultAliasTable() AliasTable {
	return AliasTable{Rules: []AliasRule{
		{
			Canonical: "MCDONALDS",
			Patterns: []string{
				`\bMA?C\s*DONALD'?S?\b`,
				`\bMC\s*DO\b`,
				`\bMAC\s*DO\b`,
				`\bMCDO\b`,
			},
		},
		{
			Canonical: "BURGER KING",
			Patterns: []string{
				`\bBURGER\s*KING\b`,
				`\bBK\b`,
			},
		},
	}}
}

// LoadAliasTable reads an alias table from a YAML file.
func LoadAliasTable(path string) (AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AliasTable{}, eris.Wrapf(err, "normalize: read alias table %s", path)
	}
	var table AliasTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return AliasTable{}, eris.Wrapf(err, "normalize: parse alias table %s", path)
	}
	return table, nil
}
