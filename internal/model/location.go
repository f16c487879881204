package model

// ReferenceLocation is one canonical site record from the reference dataset.
// Loaded once at startup and read-only afterwards.
type ReferenceLocation struct {
	CanonicalID   string `json:"canonical_id"`
	CanonicalName string `json:"canonical_name"`
	Street        string `json:"street,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"` // 5 digits or empty
	City          string `json:"city,omitempty"`
}

// QueryBundle is the per-document input to the resolver. Constructed once
// per invoice and consumed by a single Resolve call.
type QueryBundle struct {
	RawName        string `json:"raw_name"`
	RawAddress     string `json:"raw_address,omitempty"`
	PostalCodeHint string `json:"postal_code_hint,omitempty"`
	ProviderRaw    string `json:"provider_raw,omitempty"`
}

// NormalizedAddress is the result of parsing a free-text address block.
type NormalizedAddress struct {
	Street           string `json:"street,omitempty"`
	PostalCode       string `json:"postal_code,omitempty"` // 5 digits or empty
	City             string `json:"city,omitempty"`
	NormalizedText   string `json:"normalized_text"`
	IsCompanyAddress bool   `json:"is_company_address,omitempty"`
}

// Usable reports whether the address carries any signal worth matching on.
// A suppressed company address is never usable, regardless of fields.
func (a NormalizedAddress) Usable() bool {
	if a.IsCompanyAddress {
		return false
	}
	return a.Street != "" || a.PostalCode != "" || a.City != ""
}
