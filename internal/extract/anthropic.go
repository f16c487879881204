package extract

import (
	"context"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/resto-ops/facture-cli/internal/config"
	"github.com/resto-ops/facture-cli/internal/model"
)

const extractionPrompt = `Analyze this French waste-collection invoice text and extract the following fields as JSON:

{
  "company_name": "the serviced company/restaurant name, franchise spellings included (MAC DO, McDONALD'S, ...)",
  "street_address": "street line of the serviced site address",
  "postal_code": "5-digit postal code of the serviced site",
  "city": "city of the serviced site",
  "provider_name": "the collector issuing the invoice (SUEZ, VEOLIA, PAPREC, ...)",
  "document_date": "invoice date as DD/MM/YYYY",
  "document_number": "the invoice number, usually alphanumeric",
  "waste_types": ["waste type markers found: DIB, BIO, CS, DECHETS RECYCLABLES, ..."]
}

Leave a field empty when it is not present. Prefer the serviced site address over the issuer's own address. Return only valid JSON.

Invoice text:
`

// Anthropic extracts invoice fields via the Messages API.
type Anthropic struct {
	client sdk.Client
	cfg    config.AnthropicConfig
	log    *zap.Logger
}

// NewAnthropic builds the API-backed extractor.
func NewAnthropic(cfg config.AnthropicConfig) (*Anthropic, error) {
	if cfg.Key == "" {
		return nil, eris.New("extract: anthropic key is required")
	}
	return &Anthropic{
		client: sdk.NewClient(option.WithAPIKey(cfg.Key)),
		cfg:    cfg,
		log:    zap.L().With(zap.String("component", "extract")),
	}, nil
}

// Extract implements Extractor.
func (a *Anthropic) Extract(ctx context.Context, text string) (*model.InvoiceFields, error) {
	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(a.cfg.Model),
		MaxTokens: a.cfg.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(extractionPrompt + text)),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: create message")
	}

	var raw strings.Builder
	for _, block := range msg.Content {
		raw.WriteString(block.Text)
	}

	fields, err := parseFields(raw.String())
	if err != nil {
		return nil, err
	}

	a.log.Debug("invoice fields extracted",
		zap.String("company", fields.CompanyName),
		zap.String("provider", fields.ProviderName),
		zap.String("number", fields.DocumentNum),
	)
	return fields, nil
}

// parseFields unmarshals the model output, tolerating markdown code fences
// around the JSON document.
func parseFields(raw string) (*model.InvoiceFields, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var fields model.InvoiceFields
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, eris.Wrap(err, "extract: parse model output")
	}
	return &fields, nil
}
