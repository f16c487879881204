package model

// ProviderAlias maps a canonical collector code to the raw-name fragments
// that identify it and the waste-type combination suffixes it accepts
// (e.g. SUEZ accepts SUEZBIO, SUEZDIB, SUEZBIODIB). Loaded once, read-only.
type ProviderAlias struct {
	CanonicalCode string   `json:"canonical_code" yaml:"canonical_code"`
	Aliases       []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Combinations  []string `json:"combinations,omitempty" yaml:"combinations,omitempty"`
}

// InvoiceFields is the best-effort structured output of the content
// extraction collaborator. Any field may be empty.
type InvoiceFields struct {
	CompanyName   string   `json:"company_name,omitempty"`
	StreetAddress string   `json:"street_address,omitempty"`
	PostalCode    string   `json:"postal_code,omitempty"`
	City          string   `json:"city,omitempty"`
	ProviderName  string   `json:"provider_name,omitempty"`
	DocumentDate  string   `json:"document_date,omitempty"` // DD/MM/YYYY
	DocumentNum   string   `json:"document_number,omitempty"`
	WasteTypes    []string `json:"waste_types,omitempty"` // DIB, BIO, CS variants
}
