package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestIsPhoneValid(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"555-123-4567", true},
		{"(555) 123-4567", true},
		{"(555)123-4567", true},
		{"+5551234567", true},
		{"555.123.456789", true},
		{"12345", false},
		{"phone", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPhoneValid(tt.phone))
		})
	}
}

func TestIsAdult(t *testing.T) {
	fixNow(t, time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		dob  string
		want bool
	}{
		{name: "exactly eighteen today", dob: "2008-06-15", want: true},
		{name: "eighteen tomorrow", dob: "2008-06-16", want: false},
		{name: "well over", dob: "1980-01-01", want: true},
		{name: "minor", dob: "2015-03-03", want: false},
		{name: "bad format", dob: "15/06/1990", want: false},
		{name: "empty", dob: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAdult(tt.dob))
		})
	}
}

func TestIsAddressValid(t *testing.T) {
	assert.True(t, IsAddressValid("123 Main Street"))
	assert.False(t, IsAddressValid("  short   "))
}

func TestIsDocumentType(t *testing.T) {
	assert.True(t, IsDocumentType("idCard"))
	assert.True(t, IsDocumentType("passport"))
	assert.True(t, IsDocumentType("drivingLicense"))
	assert.False(t, IsDocumentType("library_card"))
}

func TestIsPasswordValid(t *testing.T) {
	assert.True(t, IsPasswordValid("secret123"))
	assert.False(t, IsPasswordValid("short1"))
	assert.False(t, IsPasswordValid("lettersonly"))
	assert.False(t, IsPasswordValid("1234567890"))
}

type sample struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	DocType string `json:"docType" validate:"document_type"`
	Reason  string `json:"reason" validate:"notblank"`
}

func TestValidateStruct_Valid(t *testing.T) {
	err := ValidateStruct(&sample{
		Name:    "Ada",
		Email:   "ada@example.com",
		DocType: "passport",
		Reason:  "ok",
	})
	assert.NoError(t, err)
}

func TestValidateStruct_FieldErrorsUseJSONNames(t *testing.T) {
	err := ValidateStruct(&sample{
		Name:    "A",
		Email:   "not-an-email",
		Phone:   "123",
		DocType: "library_card",
		Reason:  "   ",
	})
	require.Error(t, err)

	valErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.True(t, valErr.HasErrors())

	msg, found := valErr.GetFieldError("name")
	assert.True(t, found)
	assert.Equal(t, "name must be at least 2 characters long", msg)

	msg, _ = valErr.GetFieldError("email")
	assert.Equal(t, "email must be a valid email address", msg)

	msg, _ = valErr.GetFieldError("phone")
	assert.Equal(t, "phone must be a valid phone number", msg)

	msg, _ = valErr.GetFieldError("docType")
	assert.Contains(t, msg, "idCard")

	msg, _ = valErr.GetFieldError("reason")
	assert.Equal(t, "reason must not be blank", msg)
}

func TestValidationError_AddError(t *testing.T) {
	v := &ValidationError{}
	assert.False(t, v.HasErrors())

	v.AddError("file", "too large")
	assert.True(t, v.HasErrors())
	assert.Equal(t, "file: too large", v.Error())
}
