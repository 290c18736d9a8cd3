package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/richxcame/secureverify/internal/sessionstore"
	"github.com/richxcame/secureverify/internal/verification"
	"github.com/richxcame/secureverify/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBus(t *testing.T) (*eventbus.Bus, *Service) {
	t.Helper()
	bus := eventbus.NewLocal("test")
	t.Cleanup(func() { _ = bus.Close() })

	svc := NewService(10)
	require.NoError(t, NewEventHandler(svc).RegisterSubscriptions(context.Background(), bus))
	return bus, svc
}

func publish(t *testing.T, bus *eventbus.Bus, eventType string, data verification.EventData) {
	t.Helper()
	event, err := eventbus.NewEvent(eventType, "test", data)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), eventType, event))
}

func TestEventHandler_TranslatesEvents(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		data      verification.EventData
		wantTitle string
		wantBody  string
	}{
		{
			name:      "personal info",
			eventType: verification.EventPersonalInfoSubmitted,
			wantTitle: "Personal Details Saved",
			wantBody:  "Next, upload an identity document.",
		},
		{
			name:      "document",
			eventType: verification.EventDocumentSubmitted,
			data:      verification.EventData{DocumentType: verification.DocumentPassport},
			wantTitle: "Document Received",
			wantBody:  "Your passport was uploaded. Next, take a selfie.",
		},
		{
			name:      "biometric",
			eventType: verification.EventBiometricSubmitted,
			data:      verification.EventData{VerificationID: "VID1700000000000"},
			wantTitle: "Verification Submitted",
			wantBody:  "Your application VID1700000000000 is under review.",
		},
		{
			name:      "rejected",
			eventType: verification.EventRejected,
			data:      verification.EventData{RejectionReason: "Document expired"},
			wantTitle: "Verification Rejected",
			wantBody:  "Your verification was rejected: Document expired. You can start again.",
		},
		{
			name:      "reset",
			eventType: verification.EventReset,
			wantTitle: "Verification Reset",
			wantBody:  "Your verification progress was cleared.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus, svc := setupBus(t)
			userID := uuid.New()
			tt.data.UserID = userID

			publish(t, bus, tt.eventType, tt.data)

			list, _, err := svc.GetUserNotifications(context.Background(), userID, "en", 10, 0)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, tt.wantTitle, list[0].Title)
			assert.Equal(t, tt.wantBody, list[0].Body)
		})
	}
}

func TestEventHandler_IgnoresUnknownTypes(t *testing.T) {
	bus, svc := setupBus(t)
	userID := uuid.New()

	publish(t, bus, "verification.archived", verification.EventData{UserID: userID})

	_, total, err := svc.GetUserNotifications(context.Background(), userID, "en", 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestEventHandler_MalformedPayload(t *testing.T) {
	svc := NewService(10)
	h := NewEventHandler(svc)

	err := h.handleVerificationEvent(context.Background(), &eventbus.Event{
		Type: verification.EventApproved,
		Data: []byte(`{"user_id": 42`),
	})
	assert.Error(t, err)
}

func TestEventHandler_EndToEndWithVerificationService(t *testing.T) {
	bus, inbox := setupBus(t)
	verifications := verification.NewService(sessionstore.NewMemoryStore("", 0), bus, nil)
	ctx := context.Background()
	userID := uuid.New()

	_, err := verifications.SubmitPersonalInfo(ctx, userID, verification.PersonalInfo{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	_, err = verifications.Reset(ctx, userID)
	require.NoError(t, err)

	list, total, err := inbox.GetUserNotifications(ctx, userID, "tr", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "reset", list[0].Type)
	assert.Equal(t, "Doğrulama Sıfırlandı", list[0].Title)
	assert.Equal(t, "personal_info_submitted", list[1].Type)
}
