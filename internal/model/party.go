package model

import "fmt"

// TradeParty is a seller (BG-4) or buyer (BG-7)
type TradeParty struct {
	Name                    string         `json:"name"`
	TradingName             *string        `json:"trading_name,omitempty"`
	Identifier              *string        `json:"identifier,omitempty"`
	LegalRegistrationID     *string        `json:"legal_registration_id,omitempty"`
	LegalForm               *string        `json:"legal_form,omitempty"`
	VATIdentifier           *string        `json:"vat_identifier,omitempty"`
	ElectronicAddress       *string        `json:"electronic_address,omitempty"`
	ElectronicAddressScheme *string        `json:"electronic_address_scheme,omitempty"`
	PostalAddress           *PostalAddress `json:"postal_address,omitempty"`
	Contact                 *Contact       `json:"contact,omitempty"`
}

// PostalAddress (BG-5 / BG-8)
type PostalAddress struct {
	CountryCode string  `json:"country_code"`
	StreetName  *string `json:"street_name,omitempty"`
	CityName    *string `json:"city_name,omitempty"`
	PostalZone  *string `json:"postal_zone,omitempty"`
}

// Contact (BG-6 / BG-9)
type Contact struct {
	Name      *string `json:"name,omitempty"`
	Telephone *string `json:"telephone,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// NewTradeParty creates a party with its required name
func NewTradeParty(name string) *TradeParty {
	return &TradeParty{Name: name}
}

// NewPostalAddress creates an address with its required country code
func NewPostalAddress(countryCode string) *PostalAddress {
	return &PostalAddress{CountryCode: countryCode}
}

// IsEmpty reports whether no contact detail is set
func (c *Contact) IsEmpty() bool {
	return c == nil || (c.Name == nil && c.Telephone == nil && c.Email == nil)
}

func (p *TradeParty) validate(role string) []*ValidationError {
	if p == nil {
		return nil
	}
	var errs []*ValidationError
	if p.Name == "" {
		errs = append(errs, NewValidationError(role+".name", nil, "required", "party name is required"))
	}
	if p.PostalAddress != nil && p.PostalAddress.CountryCode == "" {
		errs = append(errs, NewValidationError(role+".postal_address.country_code", nil, "required", "country code is required"))
	}
	if p.ElectronicAddressScheme != nil && p.ElectronicAddress == nil {
		errs = append(errs, NewValidationError(role+".electronic_address_scheme", *p.ElectronicAddressScheme, "dependent", "scheme given without electronic address"))
	}
	return errs
}

func indexed(group string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", group, i, field)
}
