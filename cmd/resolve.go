package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/resto-ops/facture-cli/internal/model"
)

var (
	resolveName     string
	resolveAddress  string
	resolvePostal   string
	resolveProvider string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a site reference against the reference dataset",
	Long: `Resolves a free-text site reference and prints the outcome as JSON.

Examples:
  facture resolve --name "MAC DO CHALON"
  facture resolve --name "MCDONALDS" --postal 69002
  facture resolve --name "MCDONALDS" --address "12 RUE DE LA REPUBLIQUE 69002 LYON"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if resolveName == "" && resolveAddress == "" && resolvePostal == "" {
			return eris.New("resolve: at least one of --name, --address, --postal is required")
		}

		e, err := initResolver(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		result := e.Resolver.Resolve(model.QueryBundle{
			RawName:        resolveName,
			RawAddress:     resolveAddress,
			PostalCodeHint: resolvePostal,
			ProviderRaw:    resolveProvider,
		})

		out := struct {
			model.ResolutionResult
			Provider string `json:"provider,omitempty"`
		}{ResolutionResult: result}

		if resolveProvider != "" {
			if code, ok := e.Providers.Resolve(resolveProvider); ok {
				out.Provider = code
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveName, "name", "", "raw company/site name")
	resolveCmd.Flags().StringVar(&resolveAddress, "address", "", "raw address block")
	resolveCmd.Flags().StringVar(&resolvePostal, "postal", "", "postal code hint (5 digits)")
	resolveCmd.Flags().StringVar(&resolveProvider, "provider", "", "raw provider/collector name")
	rootCmd.AddCommand(resolveCmd)
}
