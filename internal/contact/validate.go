// Package contact validates and delivers contact form submissions.
package contact

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Form is a contact form submission as typed by the visitor.
type Form struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Subject string `form:"subject" json:"subject"`
	Message string `form:"message" json:"message"`
}

// Trimmed returns f with surrounding whitespace removed from every field.
func (f Form) Trimmed() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	}
}

// Result is the outcome of validating one field.
type Result struct {
	OK     bool
	Reason string
}

var ok = Result{OK: true}

// Field names as used by the form and the error slots next to them.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// emailPattern is deliberately loose: something@something.something.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type rule struct {
	tag    string
	reason map[string]string
}

var rules = map[string]rule{
	FieldName: {
		tag: "required,min=2,singleline",
		reason: map[string]string{
			"required":   "Name is required",
			"min":        "Name must be at least 2 characters",
			"singleline": "Name must fit on one line",
		},
	},
	FieldEmail: {
		tag: "required,contactemail",
		reason: map[string]string{
			"required":     "Email is required",
			"contactemail": "Please enter a valid email address",
		},
	},
	// Name and subject end up in mail headers.
	FieldSubject: {
		tag: "singleline",
		reason: map[string]string{
			"singleline": "Subject must fit on one line",
		},
	},
	FieldMessage: {
		tag: "required,min=10",
		reason: map[string]string{
			"required": "Message is required",
			"min":      "Message must be at least 10 characters",
		},
	},
}

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
})

// ValidateField checks one named field. Unknown fields always pass.
func ValidateField(field, value string) Result {
	r, known := rules[field]
	if !known {
		return ok
	}
	err := validate().Var(strings.TrimSpace(value), r.tag)
	if err == nil {
		return ok
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if reason, found := r.reason[verrs[0].Tag()]; found {
			return Result{Reason: reason}
		}
	}
	return Result{Reason: err.Error()}
}

func ValidateName(name string) Result       { return ValidateField(FieldName, name) }
func ValidateEmail(email string) Result     { return ValidateField(FieldEmail, email) }
func ValidateMessage(message string) Result { return ValidateField(FieldMessage, message) }

// Errors maps field name to failure reason. An empty map means the form may
// be submitted.
type Errors map[string]string

func (e Errors) OK() bool { return len(e) == 0 }

// Validate runs every field rule over f.
func Validate(f Form) Errors {
	errs := Errors{}
	for field, res := range map[string]Result{
		FieldName:    ValidateName(f.Name),
		FieldEmail:   ValidateEmail(f.Email),
		FieldSubject: ValidateField(FieldSubject, f.Subject),
		FieldMessage: ValidateMessage(f.Message),
	} {
		if !res.OK {
			errs[field] = res.Reason
		}
	}
	return errs
}
