package verification

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/richxcame/secureverify/internal/access"
	"github.com/richxcame/secureverify/internal/sessionstore"
	"github.com/richxcame/secureverify/pkg/common"
	"github.com/richxcame/secureverify/pkg/config"
	"github.com/richxcame/secureverify/pkg/eventbus"
	"github.com/richxcame/secureverify/pkg/logger"
	"github.com/richxcame/secureverify/pkg/pagination"
	"go.uber.org/zap"
)

const storeTimeout = 5 * time.Second

// DefaultSessionIdle is how long an untouched session stays in memory when the
// store has no TTL of its own
const DefaultSessionIdle = 30 * time.Minute

type session struct {
	mu      sync.Mutex
	machine *Machine
}

// Service owns one in-memory session per user. The session is loaded from the
// store on first use and saved after every mutation; save failures are logged
// and the in-memory record stays authoritative. Sessions expire after the store
// TTL (or DefaultSessionIdle) without a mutation and are reloaded on next use.
type Service struct {
	store        SessionStore
	events       EventPublisher
	source       string
	strictReview bool
	machineOpts  []MachineOption

	mu       sync.Mutex
	sessions *cache.Cache
}

// NewService creates a verification service. events may be nil.
func NewService(store SessionStore, events EventPublisher, cfg *config.Config, opts ...MachineOption) *Service {
	s := &Service{
		store:       store,
		events:      events,
		source:      "secureverify",
		machineOpts: opts,
	}
	idle := DefaultSessionIdle
	if cfg != nil {
		s.strictReview = cfg.Verification.StrictReview
		if cfg.NATS.Source != "" {
			s.source = cfg.NATS.Source
		}
		if ttl := cfg.Session.TTL(); ttl > 0 {
			idle = ttl
		}
	}
	s.sessions = newSessionCache(idle)
	return s
}

func newSessionCache(idle time.Duration) *cache.Cache {
	c := cache.New(idle, idle)
	c.OnEvicted(func(string, interface{}) {
		activeSessions.Dec()
	})
	return c
}

// GetStatus returns the caller's record with its derived values. When the
// store cannot be read the caller sees a fresh record for this call only.
func (s *Service) GetStatus(ctx context.Context, userID uuid.UUID) (*Status, error) {
	sess, err := s.acquire(ctx, userID, false, false)
	if err != nil {
		if appErr, ok := common.AsAppError(err); ok && appErr.Code == http.StatusServiceUnavailable {
			return NewMachine(NewRecord(userID), s.machineOpts...).Status(), nil
		}
		return nil, err
	}
	defer sess.mu.Unlock()
	return sess.machine.Status(), nil
}

// SubmitPersonalInfo records personal details and advances to document upload
func (s *Service) SubmitPersonalInfo(ctx context.Context, userID uuid.UUID, info PersonalInfo) (*Status, error) {
	return s.mutate(ctx, userID, EventPersonalInfoSubmitted, func(m *Machine) (*EventData, error) {
		m.SubmitPersonalInfo(info)
		return &EventData{Step: m.CurrentStep()}, nil
	})
}

// SubmitDocument records document metadata and advances to biometric capture
func (s *Service) SubmitDocument(ctx context.Context, userID uuid.UUID, docType DocumentType, upload DocumentUpload) (*Status, error) {
	if !docType.Valid() {
		return nil, common.NewBadRequestError("unsupported document type", nil)
	}
	return s.mutate(ctx, userID, EventDocumentSubmitted, func(m *Machine) (*EventData, error) {
		m.SubmitDocument(docType, upload)
		return &EventData{Step: m.CurrentStep(), DocumentType: docType}, nil
	})
}

// SubmitBiometric records selfie metadata and sends the record to review
func (s *Service) SubmitBiometric(ctx context.Context, userID uuid.UUID, capture BiometricCapture, livenessVerified bool) (*Status, error) {
	return s.mutate(ctx, userID, EventBiometricSubmitted, func(m *Machine) (*EventData, error) {
		vid := m.SubmitBiometric(capture, livenessVerified)
		return &EventData{Step: m.CurrentStep(), VerificationID: vid}, nil
	})
}

// Reset clears the caller's record and removes the stored copy
func (s *Service) Reset(ctx context.Context, userID uuid.UUID) (*Status, error) {
	return s.mutate(ctx, userID, EventReset, func(m *Machine) (*EventData, error) {
		m.Reset()
		return &EventData{Step: m.CurrentStep()}, nil
	})
}

// Approve marks userID's record verified
func (s *Service) Approve(ctx context.Context, capability *access.AdminCapability, userID uuid.UUID) (*Status, error) {
	if !capability.Valid() {
		return nil, common.NewForbiddenError("admin capability required")
	}
	return s.mutateExisting(ctx, userID, EventApproved, func(m *Machine) (*EventData, error) {
		if err := s.checkReviewable(m); err != nil {
			return nil, err
		}
		m.Approve(capability)
		rec := m.record
		return &EventData{Step: rec.CurrentStep, VerificationID: rec.VerificationID, ReviewedBy: rec.ReviewedBy}, nil
	})
}

// Reject marks userID's record rejected. reason must not be blank.
func (s *Service) Reject(ctx context.Context, capability *access.AdminCapability, userID uuid.UUID, reason string) (*Status, error) {
	if !capability.Valid() {
		return nil, common.NewForbiddenError("admin capability required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, common.NewBadRequestError("rejection reason is required", nil)
	}
	return s.mutateExisting(ctx, userID, EventRejected, func(m *Machine) (*EventData, error) {
		if err := s.checkReviewable(m); err != nil {
			return nil, err
		}
		m.Reject(capability, reason)
		rec := m.record
		return &EventData{
			Step:            rec.CurrentStep,
			VerificationID:  rec.VerificationID,
			RejectionReason: reason,
			ReviewedBy:      rec.ReviewedBy,
		}, nil
	})
}

// GetVerification returns another user's record for review
func (s *Service) GetVerification(ctx context.Context, userID uuid.UUID) (*Status, error) {
	sess, err := s.acquire(ctx, userID, true, false)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return sess.machine.Status(), nil
}

// ListVerifications returns started records, newest update first
func (s *Service) ListVerifications(ctx context.Context, filter ListFilter) ([]*Record, int64, error) {
	if filter.Step != "" && !filter.Step.Valid() {
		return nil, 0, common.NewBadRequestError("unknown status filter", nil)
	}

	records := make(map[uuid.UUID]*Record)

	storeCtx, cancel := s.storeContext(ctx)
	blobs, err := s.store.List(storeCtx)
	cancel()
	if err != nil {
		storeErrorsTotal.WithLabelValues("list").Inc()
		logger.WithContext(ctx).Error("failed to list stored verifications, using in-memory sessions only", zap.Error(err))
	}
	for userID, blob := range blobs {
		rec, err := DecodeRecord(blob)
		if err != nil {
			logger.WithContext(ctx).Warn("skipping unreadable stored verification",
				zap.String("user_id", userID.String()), zap.Error(err))
			continue
		}
		rec.UserID = userID
		records[userID] = rec
	}

	// in-memory sessions win over stored copies
	for userID, rec := range s.snapshot() {
		records[userID] = rec
	}

	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		if filter.Step != "" {
			if rec.CurrentStep != filter.Step {
				continue
			}
		} else if rec.CurrentStep == StepUnverified {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastUpdated, out[j].LastUpdated
		switch {
		case a == nil && b == nil:
			return out[i].UserID.String() < out[j].UserID.String()
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].UserID.String() < out[j].UserID.String()
		default:
			return a.After(*b)
		}
	})

	total := int64(len(out))
	limit := filter.Limit
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	start, end := pagination.Window(len(out), limit, filter.Offset)
	return out[start:end], total, nil
}

// lookup returns the user's cached session, creating an empty one on a miss.
// touch restarts the idle timer of an existing session.
func (s *Service) lookup(userID uuid.UUID, touch bool) *session {
	key := userID.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.sessions.Get(key); ok {
		sess := v.(*session)
		if touch {
			s.sessions.SetDefault(key, sess)
		}
		return sess
	}

	// an expired entry the janitor has not swept yet is evicted here
	s.sessions.Delete(key)
	sess := &session{}
	s.sessions.SetDefault(key, sess)
	activeSessions.Inc()
	return sess
}

// forget drops sess if it is still the cached session for userID
func (s *Service) forget(userID uuid.UUID, sess *session) {
	key := userID.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.sessions.Get(key); ok && v.(*session) == sess {
		s.sessions.Delete(key)
	}
}

// acquire returns the user's session locked, loading it on first use. A failed
// read leaves the session unloaded so the next access retries, and returns 503.
// With mustExist a user with nothing stored gets 404 instead of a fresh record.
func (s *Service) acquire(ctx context.Context, userID uuid.UUID, mustExist, touch bool) (*session, error) {
	sess := s.lookup(userID, touch)
	sess.mu.Lock()
	if sess.machine != nil {
		return sess, nil
	}

	rec, err := s.load(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, sessionstore.ErrNotFound) && !mustExist:
		rec = NewRecord(userID)
	case errors.Is(err, sessionstore.ErrNotFound):
		sess.mu.Unlock()
		s.forget(userID, sess)
		return nil, common.NewNotFoundError("verification not found", err)
	default:
		sess.mu.Unlock()
		return nil, common.NewServiceUnavailableError("verification store unavailable", err)
	}

	sess.machine = NewMachine(rec, s.machineOpts...)
	return sess, nil
}

// load reads the stored record. A corrupt blob is deleted and reported as not found.
func (s *Service) load(ctx context.Context, userID uuid.UUID) (*Record, error) {
	log := logger.WithContext(ctx).With(zap.String("user_id", userID.String()))

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	blob, err := s.store.Load(storeCtx, userID)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return nil, sessionstore.ErrNotFound
	}
	if err != nil {
		storeErrorsTotal.WithLabelValues("load").Inc()
		log.Error("failed to load verification session", zap.Error(err))
		return nil, err
	}

	rec, err := DecodeRecord(blob)
	if err != nil {
		log.Warn("discarding corrupt verification session", zap.Error(err))
		if err := s.store.Delete(storeCtx, userID); err != nil {
			storeErrorsTotal.WithLabelValues("delete").Inc()
			log.Error("failed to delete corrupt verification session", zap.Error(err))
		}
		return nil, sessionstore.ErrNotFound
	}
	rec.UserID = userID
	return rec, nil
}

func (s *Service) checkReviewable(m *Machine) error {
	if s.strictReview && m.CurrentStep() != StepUnderReview {
		return common.NewConflictError("verification is not under review")
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, userID uuid.UUID, eventType string, apply func(m *Machine) (*EventData, error)) (*Status, error) {
	return s.transition(ctx, userID, false, eventType, apply)
}

// mutateExisting is mutate for admin decisions: unknown users are 404
func (s *Service) mutateExisting(ctx context.Context, userID uuid.UUID, eventType string, apply func(m *Machine) (*EventData, error)) (*Status, error) {
	return s.transition(ctx, userID, true, eventType, apply)
}

func (s *Service) transition(ctx context.Context, userID uuid.UUID, mustExist bool, eventType string, apply func(m *Machine) (*EventData, error)) (*Status, error) {
	sess, err := s.acquire(ctx, userID, mustExist, true)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	data, err := apply(sess.machine)
	if err != nil {
		return nil, err
	}

	s.persist(ctx, userID, sess.machine.record)
	transitionsTotal.WithLabelValues(eventType).Inc()

	data.UserID = userID
	if data.OccurredAt.IsZero() {
		data.OccurredAt = time.Now().UTC()
	}
	s.publish(ctx, eventType, data)

	return sess.machine.Status(), nil
}

// persist saves rec, or deletes the stored copy while the record is untouched
func (s *Service) persist(ctx context.Context, userID uuid.UUID, rec *Record) {
	log := logger.WithContext(ctx).With(zap.String("user_id", userID.String()))

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	if rec.CurrentStep == StepUnverified {
		if err := s.store.Delete(storeCtx, userID); err != nil {
			storeErrorsTotal.WithLabelValues("delete").Inc()
			log.Error("failed to delete verification session", zap.Error(err))
		}
		return
	}

	blob, err := EncodeRecord(rec)
	if err != nil {
		storeErrorsTotal.WithLabelValues("save").Inc()
		log.Error("failed to encode verification session", zap.Error(err))
		return
	}
	if err := s.store.Save(storeCtx, userID, blob); err != nil {
		storeErrorsTotal.WithLabelValues("save").Inc()
		log.Error("failed to save verification session", zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, eventType string, data *EventData) {
	if s.events == nil {
		return
	}
	event, err := eventbus.NewEvent(eventType, s.source, data)
	if err != nil {
		logger.WithContext(ctx).Error("failed to build verification event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.events.Publish(ctx, eventType, event); err != nil {
		logger.WithContext(ctx).Warn("failed to publish verification event",
			zap.String("type", eventType),
			zap.String("user_id", data.UserID.String()),
			zap.Error(err))
	}
}

// snapshot copies every live session's record
func (s *Service) snapshot() map[uuid.UUID]*Record {
	items := s.sessions.Items()

	out := make(map[uuid.UUID]*Record, len(items))
	for key, item := range items {
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		sess := item.Object.(*session)
		sess.mu.Lock()
		if sess.machine != nil {
			out[id] = sess.machine.Record()
		}
		sess.mu.Unlock()
	}
	return out
}

// storeContext detaches store I/O from request cancellation and bounds it
func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
}
