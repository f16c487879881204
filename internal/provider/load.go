package provider

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/resto-ops/facture-cli/internal/model"
)

// LoadEntries reads provider aliases from a file, by extension: .yaml/.yml
// or a delimited CSV with columns {canonical_code|collecte,
// combinations|alias_list, aliases(optional)}.
func LoadEntries(path string) ([]model.ProviderAlias, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return loadCSV(path)
	}
}

func loadYAML(path string) ([]model.ProviderAlias, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "provider: read %s", path)
	}
	var doc struct {
		Providers []model.ProviderAlias `yaml:"providers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "provider: parse %s", path)
	}
	return doc.Providers, nil
}

func loadCSV(path string) ([]model.ProviderAlias, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "provider: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "provider: read header of %s", path)
	}

	codeIdx, combosIdx, aliasIdx := -1, -1, -1
	for i, h := range header {
		switch strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(h), "\uFEFF")) {
		case "CANONICAL_CODE", "COLLECTE", "CODE":
			codeIdx = i
		case "COMBINATIONS", "ALIAS_LIST":
			combosIdx = i
		case "ALIASES":
			aliasIdx = i
		}
	}
	if codeIdx < 0 || combosIdx < 0 {
		return nil, eris.Errorf("provider: %s: missing required columns", path)
	}

	var entries []model.ProviderAlias
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "provider: read row of %s", path)
		}

		code := strings.TrimSpace(record[codeIdx])
		if code == "" {
			continue
		}
		entry := model.ProviderAlias{CanonicalCode: strings.ToUpper(code)}
		if combosIdx < len(record) {
			entry.Combinations = splitList(record[combosIdx])
		}
		if aliasIdx >= 0 && aliasIdx < len(record) {
			entry.Aliases = splitList(record[aliasIdx])
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
