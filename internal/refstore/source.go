package refstore

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/resto-ops/facture-cli/internal/config"
)

// Open builds the reference Source named by configuration.
func Open(ctx context.Context, cfg config.ReferenceConfig) (Source, error) {
	switch cfg.Driver {
	case "csv", "":
		var delim rune
		if cfg.CSVDelimiter != "" {
			delim = []rune(cfg.CSVDelimiter)[0]
		}
		return CSVSource{Path: cfg.Path, Delimiter: delim}, nil
	case "xlsx":
		return XLSXSource{Path: cfg.Path}, nil
	case "sqlite":
		return SQLiteSource{DSN: cfg.Path, Table: cfg.Table}, nil
	case "postgres":
		return NewPostgres(ctx, cfg.Path, cfg.Table)
	default:
		return nil, eris.Errorf("refstore: unknown driver %q", cfg.Driver)
	}
}
