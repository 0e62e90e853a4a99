package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var telephoneRegexp = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{1,24}$`)

// Registration is the sign-up payload.
type Registration struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Telephone string   `json:"telephone"`
	Password  string   `json:"password"`
	Bio       string   `json:"bio"`
	Interests []string `json:"interests"`
	DOB       string   `json:"DOB"`
}

// Validate checks the payload shape and returns the message of the first
// violated rule, in the order firstName, lastName, email, telephone,
// password, DOB, bio, interests. The message names the field, e.g.
// `"email" must be a valid email address`.
func (r Registration) Validate() error {
	fields := []struct {
		name  string
		value any
		rules []validation.Rule
	}{
		{"firstName", r.FirstName, []validation.Rule{validation.Required, validation.Length(1, 100)}},
		{"lastName", r.LastName, []validation.Rule{validation.Required, validation.Length(1, 100)}},
		{"email", r.Email, []validation.Rule{validation.Required, validation.Length(3, 254), is.Email}},
		{"telephone", r.Telephone, []validation.Rule{validation.Required, validation.Match(telephoneRegexp).Error("must be a valid telephone number")}},
		{"password", r.Password, []validation.Rule{validation.Required, validation.Length(6, 72)}},
		{"DOB", r.DOB, []validation.Rule{validation.Required, validation.Date(DateLayout).Error("must be a valid date (YYYY-MM-DD)")}},
		{"bio", r.Bio, []validation.Rule{validation.Length(0, 2000)}},
		{"interests", r.Interests, []validation.Rule{validation.Length(0, 50), validation.By(nonBlankItems)}},
	}

	for _, f := range fields {
		if err := validation.Validate(f.value, f.rules...); err != nil {
			return fmt.Errorf("%q %s", f.name, err.Error())
		}
	}

	return nil
}

func nonBlankItems(value interface{}) error {
	items, _ := value.([]string)
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return errors.New("must not contain blank items")
		}
		if len(item) > 100 {
			return errors.New("items must be no more than 100 characters")
		}
	}
	return nil
}

// NormalizeEmail is the single email case policy: surrounding whitespace is
// dropped and the address is lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VolunteerPatch lists the fields an update may change. A nil field is left
// as stored. Identity and security fields (id, password hash, isVerify) are
// deliberately absent.
type VolunteerPatch struct {
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Email     *string   `json:"email"`
	Telephone *string   `json:"telephone"`
	Bio       *string   `json:"bio"`
	Interests *[]string `json:"interests"`
	DOB       *Date     `json:"DOB"`
}

// IsEmpty reports whether the patch changes nothing.
func (p VolunteerPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Telephone == nil &&
		p.Bio == nil && p.Interests == nil && p.DOB == nil
}
