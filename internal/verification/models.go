package verification

import (
	"time"

	"github.com/google/uuid"
)

// Step is one stage of the onboarding workflow
type Step string

const (
	StepUnverified            Step = "unverified"
	StepPersonalInfo          Step = "personal_info"
	StepDocumentUpload        Step = "document_upload"
	StepBiometricVerification Step = "biometric_verification"
	StepUnderReview           Step = "under_review"
	StepVerified              Step = "verified"
	StepRejected              Step = "rejected"
)

// Steps lists every step in workflow order
var Steps = []Step{
	StepUnverified,
	StepPersonalInfo,
	StepDocumentUpload,
	StepBiometricVerification,
	StepUnderReview,
	StepVerified,
	StepRejected,
}

// SubmissionSteps are the user-driven steps that count toward progress
var SubmissionSteps = []Step{StepPersonalInfo, StepDocumentUpload, StepBiometricVerification}

// Valid reports whether s is a known step
func (s Step) Valid() bool {
	for _, step := range Steps {
		if s == step {
			return true
		}
	}
	return false
}

// DocumentType identifies the kind of identity document uploaded
type DocumentType string

const (
	DocumentIDCard         DocumentType = "idCard"
	DocumentPassport       DocumentType = "passport"
	DocumentDrivingLicense DocumentType = "drivingLicense"
)

// Valid reports whether d is a supported document type
func (d DocumentType) Valid() bool {
	switch d {
	case DocumentIDCard, DocumentPassport, DocumentDrivingLicense:
		return true
	}
	return false
}

// ReviewStatus is the admin decision on a record
type ReviewStatus string

const (
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// PersonalInfo is the applicant's identity data
type PersonalInfo struct {
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	DOB         string    `json:"dob"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Country     string    `json:"country"`
	PostalCode  string    `json:"postalCode"`
	IDType      string    `json:"idType"`
	IDNumber    string    `json:"idNumber"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// DocumentMetadata describes an uploaded file. File bytes are never kept.
type DocumentMetadata struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadDate time.Time `json:"uploadDate"`
	DocumentID string    `json:"documentId"`
}

// SelfieMetadata describes a captured selfie
type SelfieMetadata struct {
	CaptureDate time.Time `json:"captureDate"`
	SelfieID    string    `json:"selfieId"`
}

// Biometric holds capture metadata and the liveness flag
type Biometric struct {
	SelfieMetadata   *SelfieMetadata `json:"selfieMetadata,omitempty"`
	LivenessVerified bool            `json:"livenessVerified"`
}

// Record is one user's verification progress
type Record struct {
	UserID          uuid.UUID                         `json:"userId"`
	CurrentStep     Step                              `json:"currentStep"`
	CompletedSteps  []Step                            `json:"completedSteps"`
	PersonalInfo    *PersonalInfo                     `json:"personalInfo"`
	Documents       map[DocumentType]DocumentMetadata `json:"documents"`
	SelectedType    DocumentType                      `json:"selectedType,omitempty"`
	Biometric       Biometric                         `json:"biometric"`
	ReviewStatus    ReviewStatus                      `json:"reviewStatus,omitempty"`
	RejectionReason string                            `json:"rejectionReason,omitempty"`
	VerificationID  string                            `json:"verificationId,omitempty"`
	SubmissionDate  *time.Time                        `json:"submissionDate,omitempty"`
	LastUpdated     *time.Time                        `json:"lastUpdated,omitempty"`
	ReviewedBy      *uuid.UUID                        `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time                        `json:"reviewedAt,omitempty"`
}

// NewRecord returns the default UNVERIFIED record for userID
func NewRecord(userID uuid.UUID) *Record {
	return &Record{
		UserID:         userID,
		CurrentStep:    StepUnverified,
		CompletedSteps: []Step{},
		Documents:      map[DocumentType]DocumentMetadata{},
	}
}

// Clone returns a deep copy so callers cannot mutate session state
func (r *Record) Clone() *Record {
	out := *r
	out.CompletedSteps = append([]Step{}, r.CompletedSteps...)
	out.Documents = make(map[DocumentType]DocumentMetadata, len(r.Documents))
	for k, v := range r.Documents {
		out.Documents[k] = v
	}
	if r.PersonalInfo != nil {
		pi := *r.PersonalInfo
		out.PersonalInfo = &pi
	}
	if r.Biometric.SelfieMetadata != nil {
		sm := *r.Biometric.SelfieMetadata
		out.Biometric.SelfieMetadata = &sm
	}
	out.SubmissionDate = cloneTime(r.SubmissionDate)
	out.LastUpdated = cloneTime(r.LastUpdated)
	out.ReviewedAt = cloneTime(r.ReviewedAt)
	if r.ReviewedBy != nil {
		id := *r.ReviewedBy
		out.ReviewedBy = &id
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// DocumentUpload is the metadata a client reports for a picked file
type DocumentUpload struct {
	Name       string
	Type       string
	Size       int64
	UploadDate time.Time
}

// BiometricCapture is the metadata a client reports for a selfie
type BiometricCapture struct {
	CaptureDate time.Time
}

// Status is a record plus its derived values
type Status struct {
	Record    *Record       `json:"record"`
	Progress  int           `json:"progress"`
	NextStep  *Step         `json:"nextStep"`
	Completed map[Step]bool `json:"completed"`
}

// ListFilter narrows admin listings
type ListFilter struct {
	Step   Step
	Limit  int
	Offset int
}
