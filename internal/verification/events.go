package verification

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on the bus; the subject equals the type
const (
	EventPersonalInfoSubmitted = "verification.personal_info_submitted"
	EventDocumentSubmitted     = "verification.document_submitted"
	EventBiometricSubmitted    = "verification.biometric_submitted"
	EventApproved              = "verification.approved"
	EventRejected              = "verification.rejected"
	EventReset                 = "verification.reset"
)

// EventData is the payload carried by every verification event
type EventData struct {
	UserID          uuid.UUID    `json:"user_id"`
	Step            Step         `json:"step"`
	DocumentType    DocumentType `json:"document_type,omitempty"`
	VerificationID  string       `json:"verification_id,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID   `json:"reviewed_by,omitempty"`
	OccurredAt      time.Time    `json:"occurred_at"`
}
