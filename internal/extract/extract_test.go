package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resto-ops/facture-cli/internal/config"
	"github.com/resto-ops/facture-cli/internal/model"
)

const sampleJSON = `{
  "company_name": "MCDONALDS",
  "street_address": "4 RUE GROLEE",
  "postal_code": "69002",
  "city": "LYON",
  "provider_name": "SUEZ RV CENTRE EST",
  "document_date": "15/03/2025",
  "document_number": "FA-2025-0042",
  "waste_types": ["BIO", "DIB"]
}`

func TestParseFields_PlainJSON(t *testing.T) {
	fields, err := parseFields(sampleJSON)
	require.NoError(t, err)
	assert.Equal(t, "MCDONALDS", fields.CompanyName)
	assert.Equal(t, "69002", fields.PostalCode)
	assert.Equal(t, "FA-2025-0042", fields.DocumentNum)
	assert.Equal(t, []string{"BIO", "DIB"}, fields.WasteTypes)
}

func TestParseFields_FencedJSON(t *testing.T) {
	fields, err := parseFields("```json\n" + sampleJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "MCDONALDS", fields.CompanyName)

	fields, err = parseFields("```\n" + sampleJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "LYON", fields.City)
}

func TestParseFields_Invalid(t *testing.T) {
	_, err := parseFields("the invoice looks illegible")
	assert.Error(t, err)
}

func TestNewAnthropic_RequiresKey(t *testing.T) {
	_, err := NewAnthropic(config.AnthropicConfig{})
	assert.Error(t, err)

	_, err = NewAnthropic(config.AnthropicConfig{Key: "sk-test", Model: "claude-3-5-haiku-latest"})
	assert.NoError(t, err)
}

func TestStatic(t *testing.T) {
	s := Static{Fields: model.InvoiceFields{CompanyName: "QUICK"}}
	fields, err := s.Extract(context.Background(), "whatever")
	require.NoError(t, err)
	assert.Equal(t, "QUICK", fields.CompanyName)

	s = Static{Err: errors.New("boom")}
	_, err = s.Extract(context.Background(), "whatever")
	assert.Error(t, err)
}
