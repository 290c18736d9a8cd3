package verification

import (
	"math"
	"time"

	"github.com/richxcame/secureverify/internal/access"
)

const submissionStepCount = 3

// nextSteps is the fixed forward mapping used by NextStep
var nextSteps = map[Step]Step{
	StepUnverified:            StepPersonalInfo,
	StepPersonalInfo:          StepDocumentUpload,
	StepDocumentUpload:        StepBiometricVerification,
	StepBiometricVerification: StepUnderReview,
	StepRejected:              StepPersonalInfo,
}

// Machine drives one user's record through the onboarding workflow.
// It does not validate field formats or call order; callers validate input first.
type Machine struct {
	record *Record
	now    func() time.Time
	ids    IDGenerator
}

// MachineOption customizes a Machine
type MachineOption func(*Machine)

// WithClock overrides the time source
func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) { m.now = now }
}

// WithIDGenerator overrides identifier generation
func WithIDGenerator(ids IDGenerator) MachineOption {
	return func(m *Machine) { m.ids = ids }
}

// NewMachine wraps record, which the machine then owns
func NewMachine(record *Record, opts ...MachineOption) *Machine {
	m := &Machine{
		record: record,
		now:    func() time.Time { return time.Now().UTC() },
		ids:    processIDs,
	}
	for _, opt := range opts {
		opt(m)
	}
	normalize(m.record)
	return m
}

// normalize fills collections a decoded blob may have left nil
func normalize(r *Record) {
	if r.CompletedSteps == nil {
		r.CompletedSteps = []Step{}
	}
	if r.Documents == nil {
		r.Documents = map[DocumentType]DocumentMetadata{}
	}
	if !r.CurrentStep.Valid() {
		r.CurrentStep = StepUnverified
	}
}

// Record returns a copy of the current record
func (m *Machine) Record() *Record {
	return m.record.Clone()
}

// CurrentStep returns the step the record is on
func (m *Machine) CurrentStep() Step {
	return m.record.CurrentStep
}

// SubmitPersonalInfo stores the known personal fields and moves to document upload
func (m *Machine) SubmitPersonalInfo(info PersonalInfo) {
	now := m.now()

	stored := PersonalInfo{
		FirstName:   info.FirstName,
		LastName:    info.LastName,
		Email:       info.Email,
		DOB:         info.DOB,
		Phone:       info.Phone,
		Address:     info.Address,
		City:        info.City,
		State:       info.State,
		Country:     info.Country,
		PostalCode:  info.PostalCode,
		IDType:      info.IDType,
		IDNumber:    info.IDNumber,
		SubmittedAt: now,
	}

	m.record.PersonalInfo = &stored
	m.complete(StepPersonalInfo)
	m.record.CurrentStep = StepDocumentUpload
	m.touch(now)
}

// SubmitDocument stores file metadata under docType and moves to biometric capture.
// Metadata stored under other document types is kept.
func (m *Machine) SubmitDocument(docType DocumentType, upload DocumentUpload) DocumentMetadata {
	now := m.now()

	meta := DocumentMetadata{
		Name:       upload.Name,
		Type:       upload.Type,
		Size:       upload.Size,
		UploadDate: upload.UploadDate,
		DocumentID: m.ids.DocumentID(),
	}

	m.record.Documents[docType] = meta
	m.record.SelectedType = docType
	m.complete(StepDocumentUpload)
	m.record.CurrentStep = StepBiometricVerification
	m.touch(now)
	return meta
}

// SubmitBiometric stores selfie metadata, issues a verification id and moves to review
func (m *Machine) SubmitBiometric(capture BiometricCapture, livenessVerified bool) string {
	now := m.now()

	m.record.Biometric = Biometric{
		SelfieMetadata: &SelfieMetadata{
			CaptureDate: capture.CaptureDate,
			SelfieID:    m.ids.SelfieID(),
		},
		LivenessVerified: livenessVerified,
	}
	m.complete(StepBiometricVerification)
	m.record.CurrentStep = StepUnderReview
	m.record.VerificationID = m.ids.VerificationID(now)
	submitted := now
	m.record.SubmissionDate = &submitted
	m.touch(now)
	return m.record.VerificationID
}

// Approve marks the record verified. Without a valid capability it does nothing.
func (m *Machine) Approve(capability *access.AdminCapability) bool {
	if !capability.Valid() {
		return false
	}
	now := m.now()

	m.record.CurrentStep = StepVerified
	m.record.ReviewStatus = ReviewApproved
	m.review(capability, now)
	m.touch(now)
	return true
}

// Reject marks the record rejected with reason. Without a valid capability it does nothing.
func (m *Machine) Reject(capability *access.AdminCapability, reason string) bool {
	if !capability.Valid() {
		return false
	}
	now := m.now()

	m.record.CurrentStep = StepRejected
	m.record.ReviewStatus = ReviewRejected
	m.record.RejectionReason = reason
	m.review(capability, now)
	m.touch(now)
	return true
}

// Reset drops everything back to the default UNVERIFIED record
func (m *Machine) Reset() {
	m.record = NewRecord(m.record.UserID)
}

// IsStepCompleted reports whether step has been completed
func (m *Machine) IsStepCompleted(step Step) bool {
	for _, s := range m.record.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// NextStep returns the step after the current one; false while waiting on review or once verified
func (m *Machine) NextStep() (Step, bool) {
	next, ok := nextSteps[m.record.CurrentStep]
	return next, ok
}

// Progress returns the share of submission steps completed, as a percentage
func (m *Machine) Progress() int {
	if m.record.CurrentStep == StepVerified {
		return 100
	}
	done := 0
	for _, step := range SubmissionSteps {
		if m.IsStepCompleted(step) {
			done++
		}
	}
	return int(math.Round(float64(done) / submissionStepCount * 100))
}

// Status bundles the record with its derived values
func (m *Machine) Status() *Status {
	status := &Status{
		Record:    m.Record(),
		Progress:  m.Progress(),
		Completed: make(map[Step]bool, len(SubmissionSteps)),
	}
	if next, ok := m.NextStep(); ok {
		status.NextStep = &next
	}
	for _, step := range SubmissionSteps {
		status.Completed[step] = m.IsStepCompleted(step)
	}
	return status
}

func (m *Machine) complete(step Step) {
	if !m.IsStepCompleted(step) {
		m.record.CompletedSteps = append(m.record.CompletedSteps, step)
	}
}

func (m *Machine) review(capability *access.AdminCapability, now time.Time) {
	adminID := capability.AdminID()
	reviewedAt := now
	m.record.ReviewedBy = &adminID
	m.record.ReviewedAt = &reviewedAt
}

func (m *Machine) touch(now time.Time) {
	m.record.LastUpdated = &now
}
