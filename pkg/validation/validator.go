package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// MinimumAge is the youngest age accepted for onboarding
	MinimumAge = 18
	// MinAddressLength is the shortest street address accepted
	MinAddressLength = 10
	// MinPasswordLength is the shortest password accepted at registration
	MinPasswordLength = 8
	// DateLayout is the wire format for calendar dates such as date of birth
	DateLayout = "2006-01-02"
)

var phonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)

var (
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

var documentTypes = map[string]bool{
	"idCard":         true,
	"passport":       true,
	"drivingLicense": true,
}

var (
	validate *validator.Validate
	once     sync.Once
	now      = time.Now
)

// Validator returns the shared validator with the custom tags registered
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("phone", validatePhone)
		_ = validate.RegisterValidation("adult", validateAdult)
		_ = validate.RegisterValidation("address", validateAddress)
		_ = validate.RegisterValidation("document_type", validateDocumentType)
		_ = validate.RegisterValidation("notblank", validateNotBlank)
		_ = validate.RegisterValidation("password", validatePassword)
	})
	return validate
}

// ValidateStruct validates s and converts field failures into a ValidationError
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return NewValidationError(errs)
	}
	return err
}

// IsPhoneValid reports whether phone looks like a dialable number
func IsPhoneValid(phone string) bool {
	return phonePattern.MatchString(phone)
}

// IsAdult reports whether the YYYY-MM-DD date of birth is at least MinimumAge years ago
func IsAdult(dob string) bool {
	born, err := time.Parse(DateLayout, dob)
	if err != nil {
		return false
	}
	return age(born, now()) >= MinimumAge
}

// IsAddressValid reports whether address is long enough to be complete
func IsAddressValid(address string) bool {
	return len(strings.TrimSpace(address)) >= MinAddressLength
}

// IsDocumentType reports whether t names a supported identity document
func IsDocumentType(t string) bool {
	return documentTypes[t]
}

// IsPasswordValid reports whether password has MinPasswordLength characters with a letter and a digit
func IsPasswordValid(password string) bool {
	return len(password) >= MinPasswordLength &&
		letterPattern.MatchString(password) &&
		digitPattern.MatchString(password)
}

func age(born, today time.Time) int {
	years := today.Year() - born.Year()
	if today.Month() < born.Month() || (today.Month() == born.Month() && today.Day() < born.Day()) {
		years--
	}
	return years
}

func validatePhone(fl validator.FieldLevel) bool {
	return IsPhoneValid(fl.Field().String())
}

func validateAdult(fl validator.FieldLevel) bool {
	return IsAdult(fl.Field().String())
}

func validateAddress(fl validator.FieldLevel) bool {
	return IsAddressValid(fl.Field().String())
}

func validateDocumentType(fl validator.FieldLevel) bool {
	return IsDocumentType(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePassword(fl validator.FieldLevel) bool {
	return IsPasswordValid(fl.Field().String())
}
