package contracts

import (
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	postalPattern = regexp.MustCompile(`^\d{6}$`)
)

const DefaultCountry = "India"

type Customer struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// FieldError names one invalid field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Message
}

// Validate reports every missing required field and every malformed
// email, phone or postal code, in form order.
func (c Customer) Validate() []FieldError {
	var errs []FieldError
	required := []struct {
		field, label, value string
	}{
		{"firstName", "First name", c.FirstName},
		{"email", "Email", c.Email},
		{"phone", "Phone", c.Phone},
		{"address", "Address", c.Address},
		{"city", "City", c.City},
		{"postalCode", "Postal code", c.PostalCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, FieldError{Field: r.field, Message: r.label + " is required"})
		}
	}

	if v := strings.TrimSpace(c.Email); v != "" && !emailPattern.MatchString(v) {
		errs = append(errs, FieldError{Field: "email", Message: "Please enter a valid email address"})
	}
	if v := strings.TrimSpace(c.Phone); v != "" && !phonePattern.MatchString(v) {
		errs = append(errs, FieldError{Field: "phone", Message: "Please enter a valid 10-digit mobile number"})
	}
	if v := strings.TrimSpace(c.PostalCode); v != "" && !postalPattern.MatchString(v) {
		errs = append(errs, FieldError{Field: "postalCode", Message: "Please enter a valid 6-digit postal code"})
	}
	return errs
}

// Trimmed returns a copy with surrounding whitespace removed and the
// default country filled in.
func (c Customer) Trimmed() Customer {
	out := Customer{
		FirstName:  strings.TrimSpace(c.FirstName),
		LastName:   strings.TrimSpace(c.LastName),
		Email:      strings.TrimSpace(c.Email),
		Phone:      strings.TrimSpace(c.Phone),
		Address:    strings.TrimSpace(c.Address),
		City:       strings.TrimSpace(c.City),
		State:      strings.TrimSpace(c.State),
		PostalCode: strings.TrimSpace(c.PostalCode),
		Country:    strings.TrimSpace(c.Country),
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return out
}
