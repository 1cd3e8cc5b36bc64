package contact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in     string
		ok     bool
		reason string
	}{
		{"a@b.co", true, ""},
		{"  a@b.co  ", true, ""},
		{"First.Last@Example.COM", true, ""},
		{"", false, "Email is required"},
		{"   ", false, "Email is required"},
		{"a@b", false, "Please enter a valid email address"},
		{"a.com", false, "Please enter a valid email address"},
		{"a@@b.com", false, "Please enter a valid email address"},
		{"a b@c.com", false, "Please enter a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ValidateEmail(tt.in)
			assert.Equal(t, tt.ok, got.OK)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.Equal(t, Result{Reason: "Name is required"}, ValidateName("  "))
	assert.Equal(t, Result{Reason: "Name must be at least 2 characters"}, ValidateName(" J "))
	assert.True(t, ValidateName("Jo").OK)
	assert.True(t, ValidateName("Zoë").OK)
	assert.Equal(t, Result{Reason: "Name must fit on one line"}, ValidateName("Jo\r\nBcc: x@example.com"))
}

func TestValidateSubject(t *testing.T) {
	assert.True(t, ValidateField(FieldSubject, "").OK)
	assert.True(t, ValidateField(FieldSubject, "Hiring").OK)
	assert.Equal(t, Result{Reason: "Subject must fit on one line"}, ValidateField(FieldSubject, "hi\nBcc: x@example.com"))
}

func TestValidateMessage(t *testing.T) {
	assert.Equal(t, Result{Reason: "Message is required"}, ValidateMessage(""))
	assert.Equal(t, Result{Reason: "Message must be at least 10 characters"}, ValidateMessage("too short"))
	assert.True(t, ValidateMessage(strings.Repeat("x", 10)).OK)
}

func TestValidate(t *testing.T) {
	valid := Form{Name: "Jo", Email: "jo@example.com", Message: "Hello there, friend"}
	assert.True(t, Validate(valid).OK())

	tests := []struct {
		name  string
		form  Form
		field string
	}{
		{"short name", Form{Name: "J", Email: valid.Email, Message: valid.Message}, FieldName},
		{"bad email", Form{Name: valid.Name, Email: "jo@example", Message: valid.Message}, FieldEmail},
		{"short message", Form{Name: valid.Name, Email: valid.Email, Message: "hi"}, FieldMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.form)
			assert.False(t, errs.OK())
			assert.Len(t, errs, 1)
			assert.Contains(t, errs, tt.field)
		})
	}

	all := Validate(Form{})
	assert.Equal(t, Errors{
		FieldName:    "Name is required",
		FieldEmail:   "Email is required",
		FieldMessage: "Message is required",
	}, all)
}

func TestValidateField_Unknown(t *testing.T) {
	assert.True(t, ValidateField("website", "anything").OK)
}
