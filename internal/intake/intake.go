// Package intake holds the request forms accepted at the HTTP boundary and
// the stateless checks run on them before anything reaches the state machine.
package intake

import (
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/richxcame/secureverify/pkg/config"
	"github.com/richxcame/secureverify/pkg/validation"
)

// DefaultMaxFileSizeMB caps document uploads when no limit is configured
const DefaultMaxFileSizeMB = 10

// DefaultMimeTypes are the document formats accepted when none are configured
var DefaultMimeTypes = []string{"image/jpeg", "image/png", "image/jpg", "image/heic", "application/pdf"}

// RegisterRequest is the sign-up form
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password,max=72"`
}

// LoginRequest is the sign-in form
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// PersonalInfoRequest is the personal details step of the wizard
type PersonalInfoRequest struct {
	FirstName  string `json:"firstName" validate:"required,notblank,min=2"`
	LastName   string `json:"lastName" validate:"required,notblank,min=2"`
	Email      string `json:"email" validate:"omitempty,email"`
	DOB        string `json:"dob" validate:"required,adult"`
	Phone      string `json:"phone" validate:"required,phone"`
	Address    string `json:"address" validate:"required,address"`
	City       string `json:"city" validate:"required,notblank"`
	State      string `json:"state" validate:"max=100"`
	Country    string `json:"country" validate:"required,notblank"`
	PostalCode string `json:"postalCode" validate:"required,notblank,max=20"`
	IDType     string `json:"idType" validate:"omitempty,document_type"`
	IDNumber   string `json:"idNumber" validate:"required,notblank,max=64"`
}

// DocumentRequest carries the metadata of a picked document file
type DocumentRequest struct {
	DocumentType string     `json:"documentType" validate:"required,document_type"`
	Name         string     `json:"name" validate:"required,notblank,max=255"`
	Type         string     `json:"type" validate:"required"`
	Size         int64      `json:"size" validate:"gt=0"`
	UploadDate   *time.Time `json:"uploadDate"`
}

// BiometricRequest carries the metadata of a captured selfie
type BiometricRequest struct {
	CaptureDate      *time.Time `json:"captureDate"`
	LivenessVerified *bool      `json:"livenessVerified"`
}

// Liveness returns the reported liveness flag, true when omitted
func (r *BiometricRequest) Liveness() bool {
	if r.LivenessVerified == nil {
		return true
	}
	return *r.LivenessVerified
}

// RejectRequest is an admin rejection
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,notblank,max=500"`
}

// FileRules limits the documents a user may submit
type FileRules struct {
	maxBytes int64
	maxMB    int
	allowed  map[string]bool
}

// NewFileRules builds the document rules from configuration
func NewFileRules(cfg config.VerificationConfig) FileRules {
	maxMB := cfg.MaxFileSizeMB
	if maxMB <= 0 {
		maxMB = DefaultMaxFileSizeMB
	}
	types := cfg.AllowedMimeTypes
	if len(types) == 0 {
		types = DefaultMimeTypes
	}

	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[normalizeMime(t)] = true
	}
	return FileRules{
		maxBytes: int64(maxMB) * 1024 * 1024,
		maxMB:    maxMB,
		allowed:  allowed,
	}
}

// MaxBytes is the largest accepted file size
func (r FileRules) MaxBytes() int64 {
	return r.maxBytes
}

// Check returns a field error when the mime type or size is not accepted
func (r FileRules) Check(mimeType string, size int64) error {
	errs := &validation.ValidationError{}
	if !r.allowed[normalizeMime(mimeType)] {
		errs.AddError("type", "Invalid file type. Please upload JPG, PNG, HEIC or PDF files.")
	}
	if size > r.maxBytes {
		errs.AddError("size", fmt.Sprintf("File is too large. Maximum size is %dMB.", r.maxMB))
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidateDocument runs the field rules and the file rules on req
func (r FileRules) ValidateDocument(req *DocumentRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return err
	}
	return r.Check(req.Type, req.Size)
}

func normalizeMime(t string) string {
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return strings.ToLower(strings.TrimSpace(t))
}
