package service

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)

// memberContact holds the normalised contact values of a member write. Nil
// fields are not being written.
type memberContact struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

// Validate applies the member field rules.
func (c memberContact) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FullName,
			validation.NilOrNotEmpty.Error("must not be empty"),
			validation.RuneLength(1, 100).Error("must be at most 100 characters"),
		),
		validation.Field(&c.Email,
			validation.NilOrNotEmpty.Error("must not be empty"),
			validation.RuneLength(3, 254).Error("must be at most 254 characters"),
			validation.Match(emailPattern).Error("must be a valid email address"),
		),
	)
}

// invalidMember turns rule failures into ErrInvalidMember with one message
// per field.
func invalidMember(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	out := ErrInvalidMember
	for field, fieldErr := range errs {
		out = out.WithField(field, fieldErr.Error())
	}
	return out
}

func checkMemberContact(c memberContact) error {
	if err := c.Validate(); err != nil {
		return invalidMember(err)
	}
	return nil
}
