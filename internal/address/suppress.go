package address

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SuppressRule identifies a known non-destination address (typically the
// invoice issuer's headquarters) that must never resolve as the service
// site. Pattern is a regex over the cleaned uppercase text; PostalCode, if
// set, is additionally excised wherever it appears.
type SuppressRule struct {
	Name       string `yaml:"name"`
	Pattern    string `yaml:"pattern"`
	PostalCode string `yaml:"postal_code,omitempty"`
}

// SuppressionTable is the externalized list of non-destination addresses.
type SuppressionTable struct {
	Rules []SuppressRule `yaml:"rules"`
}

// DefaultSuppressionTable returns the compiled-in suppression rules.
// Deployments extend them via reference.suppress_path.
func DefaultSuppressionTable() SuppressionTable {
	return SuppressionTable{Rules: []SuppressRule{
		{
			Name:       "issuer-hq",
			Pattern:    `\bSOCIETE\s+RUBO\b|\b34\s+BOULEVARD\s+DES\s+ITALIENS\b`,
			PostalCode: "75009",
		},
	}}
}

// LoadSuppressionTable reads a suppression table from a YAML file.
func LoadSuppressionTable(path string) (SuppressionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SuppressionTable{}, eris.Wrapf(err, "address: read suppression table %s", path)
	}
	var table SuppressionTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return SuppressionTable{}, eris.Wrapf(err, "address: parse suppression table %s", path)
	}
	return table, nil
}
