package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/resto-ops/facture-cli/internal/address"
	"github.com/resto-ops/facture-cli/internal/config"
	"github.com/resto-ops/facture-cli/internal/normalize"
	"github.com/resto-ops/facture-cli/internal/provider"
	"github.com/resto-ops/facture-cli/internal/refstore"
	"github.com/resto-ops/facture-cli/internal/resolver"
)

// env bundles the resolver stack shared by the resolve, rename and serve
// commands.
type env struct {
	Names     *normalize.Normalizer
	Addresses *address.Extractor
	Store     *refstore.Store
	Resolver  *resolver.Resolver
	Providers *provider.Table
}

// initResolver loads the reference data and builds the resolver stack from
// configuration. A broken reference source aborts startup; individual bad
// rows only warn.
func initResolver(ctx context.Context, cfg *config.Config) (*env, error) {
	aliases := normalize.DefaultAliasTable()
	if cfg.Reference.AliasesPath != "" {
		t, err := normalize.LoadAliasTable(cfg.Reference.AliasesPath)
		if err != nil {
			return nil, err
		}
		aliases = t
	}
	names, err := normalize.New(aliases)
	if err != nil {
		return nil, err
	}

	suppress := address.DefaultSuppressionTable()
	if cfg.Reference.SuppressPath != "" {
		t, err := address.LoadSuppressionTable(cfg.Reference.SuppressPath)
		if err != nil {
			return nil, err
		}
		suppress = t
	}
	addresses, err := address.NewExtractor(suppress)
	if err != nil {
		return nil, err
	}

	src, err := refstore.Open(ctx, cfg.Reference)
	if err != nil {
		return nil, err
	}
	store, err := refstore.NewLoader(src, names).Get(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load reference data")
	}

	entries, err := provider.LoadEntries(cfg.Reference.ProvidersPath)
	if err != nil {
		return nil, eris.Wrap(err, "load provider aliases")
	}

	return &env{
		Names:     names,
		Addresses: addresses,
		Store:     store,
		Resolver:  resolver.New(store, names, addresses, cfg.Matching),
		Providers: provider.NewTable(entries, cfg.Matching.ProviderThreshold),
	}, nil
}
