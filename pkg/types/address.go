package types

import "strings"

// Address carries the recipient address fields that arrive with legacy order
// imports. Stored as a JSON column; the service itself never validates CEP or
// street data (input widgets own that).
type Address struct {
	State        string `json:"state,omitempty"`
	City         string `json:"city,omitempty"`
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
	Complement   string `json:"complement,omitempty"`
}

// IsZero reports whether no address component is present.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Line renders the single-string form used by legacy exports.
func (a Address) Line() string {
	parts := make([]string, 0, 7)
	for _, part := range []string{a.Street, a.Number, a.Neighborhood, a.City, a.State, a.ZipCode, a.Complement} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, ", ")
}
