package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/usecase"
)

// detached matches a context that is not cancelled.
var detached = mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })

func TestWebhookDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		job    entity.WebhookJob
		expect func(trigger *MockSyncTrigger)
	}{
		{
			name: "xero contact pulls the customer",
			job:  entity.WebhookJob{EventID: "ev-1", Provider: "xero", EventType: "CONTACT", ResourceID: "A-1"},
			expect: func(trigger *MockSyncTrigger) {
				trigger.On("PullCustomerFromProvider", ctx, "A-1").Return(dto.PullUpdated, nil)
			},
		},
		{
			name: "xero invoice pulls the invoice",
			job:  entity.WebhookJob{EventID: "ev-2", Provider: "xero", EventType: "INVOICE", ResourceID: "X-INV-1"},
			expect: func(trigger *MockSyncTrigger) {
				trigger.On("PullInvoiceFromProvider", ctx, "X-INV-1").Return(dto.PullInserted, nil)
			},
		},
		{
			name: "xero quote runs a full poll",
			job:  entity.WebhookJob{EventID: "ev-3", Provider: "xero", EventType: "QUOTE", ResourceID: "Q-1"},
			expect: func(trigger *MockSyncTrigger) {
				trigger.On("PollQuotesPeriodically", ctx).Return(&dto.PollResult{Listed: 1, Inserted: 1}, nil)
			},
		},
		{
			name: "quickbooks customer update",
			job:  entity.WebhookJob{EventID: "ev-4", Provider: "quickbooks", EventType: "Customer", Operation: "Update", ResourceID: "58"},
			expect: func(trigger *MockSyncTrigger) {
				trigger.On("HandleProviderBCustomerChanged", ctx, "58").Return(dto.PullUpdated, nil)
			},
		},
		{
			name: "quickbooks customer create",
			job:  entity.WebhookJob{EventID: "ev-5", Provider: "quickbooks", EventType: "Customer", Operation: "Create", ResourceID: "59"},
			expect: func(trigger *MockSyncTrigger) {
				trigger.On("HandleProviderBCustomerChanged", ctx, "59").Return(dto.PullInserted, nil)
			},
		},
		{
			name:   "quickbooks customer delete is ignored",
			job:    entity.WebhookJob{EventID: "ev-6", Provider: "quickbooks", EventType: "Customer", Operation: "Delete", ResourceID: "58"},
			expect: func(*MockSyncTrigger) {},
		},
		{
			name:   "quickbooks invoice is ignored",
			job:    entity.WebhookJob{EventID: "ev-7", Provider: "quickbooks", EventType: "Invoice", Operation: "Create", ResourceID: "130"},
			expect: func(*MockSyncTrigger) {},
		},
		{
			name:   "unknown xero category is ignored",
			job:    entity.WebhookJob{EventID: "ev-8", Provider: "xero", EventType: "CREDITNOTE", ResourceID: "CN-1"},
			expect: func(*MockSyncTrigger) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := new(MockWebhookEventRepository)
			trigger := new(MockSyncTrigger)
			tt.expect(trigger)
			events.On("MarkProcessing", ctx, tt.job.EventID).Return(nil)
			events.On("MarkProcessed", detached, tt.job.EventID).Return(nil)

			dispatcher := usecase.NewWebhookDispatcher(events, trigger, new(MockJobPublisher), zap.NewNop())
			err := dispatcher.Dispatch(ctx, tt.job)

			require.NoError(t, err)
			trigger.AssertExpectations(t)
			events.AssertExpectations(t)
			events.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWebhookDispatcher_Dispatch_FailureMarksEventFailed(t *testing.T) {
	ctx := context.Background()
	events := new(MockWebhookEventRepository)
	trigger := new(MockSyncTrigger)
	pullErr := errors.New("xero unavailable")

	job := entity.WebhookJob{EventID: "ev-1", Provider: "xero", EventType: "CONTACT", ResourceID: "A-1"}
	events.On("MarkProcessing", ctx, "ev-1").Return(nil)
	events.On("MarkFailed", detached, "ev-1", pullErr).Return(nil)
	trigger.On("PullCustomerFromProvider", ctx, "A-1").Return(dto.PullOutcome(""), pullErr)

	dispatcher := usecase.NewWebhookDispatcher(events, trigger, new(MockJobPublisher), zap.NewNop())
	err := dispatcher.Dispatch(ctx, job)

	assert.ErrorIs(t, err, pullErr)
	events.AssertExpectations(t)
	events.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}

func TestWebhookDispatcher_Dispatch_TimedOutJobIsMarkedFailed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	events := new(MockWebhookEventRepository)
	trigger := new(MockSyncTrigger)

	job := entity.WebhookJob{EventID: "ev-1", Provider: "xero", EventType: "INVOICE", ResourceID: "X-INV-1"}
	events.On("MarkProcessing", mock.Anything, "ev-1").Return(nil)
	events.On("MarkFailed", detached, "ev-1", context.DeadlineExceeded).Return(nil)
	trigger.On("PullInvoiceFromProvider", mock.Anything, "X-INV-1").
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return(dto.PullOutcome(""), context.DeadlineExceeded)

	dispatcher := usecase.NewWebhookDispatcher(events, trigger, new(MockJobPublisher), zap.NewNop())
	err := dispatcher.Dispatch(ctx, job)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.Error(t, ctx.Err())
	events.AssertExpectations(t)
	events.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}

func TestWebhookDispatcher_Ingest(t *testing.T) {
	ctx := context.Background()
	events := new(MockWebhookEventRepository)
	publisher := new(MockJobPublisher)

	fresh := &model.WebhookEvent{ID: uuid.New(), Provider: "xero", EventKey: "CONTACT:A-1:2025-01-01T00:00:00Z", EventType: "CONTACT", ResourceID: "A-1"}
	duplicate := &model.WebhookEvent{ID: uuid.New(), Provider: "xero", EventKey: "INVOICE:X-1:2025-01-01T00:00:00Z", EventType: "INVOICE", ResourceID: "X-1"}
	unqueued := &model.WebhookEvent{ID: uuid.New(), Provider: "xero", EventKey: "CONTACT:A-2:2025-01-01T00:00:00Z", EventType: "CONTACT", ResourceID: "A-2"}

	events.On("SaveEvent", ctx, fresh).Return(true, nil)
	events.On("SaveEvent", ctx, duplicate).Return(false, nil)
	events.On("SaveEvent", ctx, unqueued).Return(true, nil)
	publisher.On("Enqueue", ctx, usecase.JobFromEvent(fresh)).Return(nil)
	publisher.On("Enqueue", ctx, usecase.JobFromEvent(unqueued)).Return(errors.New("queue full"))

	dispatcher := usecase.NewWebhookDispatcher(events, new(MockSyncTrigger), publisher, zap.NewNop())
	queued, err := dispatcher.Ingest(ctx, []*model.WebhookEvent{fresh, duplicate, unqueued})

	require.NoError(t, err)
	assert.Equal(t, 1, queued)
	publisher.AssertNumberOfCalls(t, "Enqueue", 2)
}

func TestWebhookDispatcher_Ingest_StoreFailure(t *testing.T) {
	ctx := context.Background()
	events := new(MockWebhookEventRepository)
	publisher := new(MockJobPublisher)
	event := &model.WebhookEvent{Provider: "quickbooks", EventKey: "Customer:58:Update:2025-01-01T00:00:00Z"}
	events.On("SaveEvent", ctx, event).Return(false, errors.New("database is locked"))

	dispatcher := usecase.NewWebhookDispatcher(events, new(MockSyncTrigger), publisher, zap.NewNop())
	_, err := dispatcher.Ingest(ctx, []*model.WebhookEvent{event})

	assert.ErrorContains(t, err, "database is locked")
	publisher.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestWebhookDispatcher_Replay(t *testing.T) {
	ctx := context.Background()
	events := new(MockWebhookEventRepository)
	publisher := new(MockJobPublisher)

	due := []*model.WebhookEvent{
		{ID: uuid.New(), Provider: "xero", EventType: "CONTACT", ResourceID: "A-1", Status: model.WebhookStatusFailed},
		{ID: uuid.New(), Provider: "quickbooks", EventType: "Customer", Operation: "Update", ResourceID: "58", Status: model.WebhookStatusPending},
	}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	events.On("GetRetryableEvents", ctx, now.Add(-15*time.Minute), 50).Return(due, nil)
	events.On("MarkQueued", ctx, due[0].ID.String()).Return(nil)
	events.On("MarkQueued", ctx, due[1].ID.String()).Return(errors.New("database is locked"))
	publisher.On("Enqueue", ctx, mock.AnythingOfType("entity.WebhookJob")).Return(nil)

	dispatcher := usecase.NewWebhookDispatcher(events, new(MockSyncTrigger), publisher, zap.NewNop()).
		WithIdleAfter(15 * time.Minute).
		WithClock(func() time.Time { return now })
	queued, err := dispatcher.Replay(ctx, 50)

	require.NoError(t, err)
	assert.Equal(t, 2, queued)
	events.AssertExpectations(t)
	publisher.AssertCalled(t, "Enqueue", ctx, entity.WebhookJob{
		EventID:    due[1].ID.String(),
		Provider:   "quickbooks",
		EventType:  "Customer",
		Operation:  "Update",
		ResourceID: "58",
	})
}

func TestWebhookDispatcher_ProcessDue(t *testing.T) {
	ctx := context.Background()
	events := new(MockWebhookEventRepository)
	trigger := new(MockSyncTrigger)

	ok := &model.WebhookEvent{ID: uuid.New(), Provider: "xero", EventType: "CONTACT", ResourceID: "A-1"}
	bad := &model.WebhookEvent{ID: uuid.New(), Provider: "xero", EventType: "INVOICE", ResourceID: "X-INV-1"}
	pullErr := errors.New("xero unavailable")

	events.On("GetRetryableEvents", ctx, mock.AnythingOfType("time.Time"), 10).Return([]*model.WebhookEvent{ok, bad}, nil)
	events.On("MarkProcessing", ctx, mock.Anything).Return(nil)
	events.On("MarkProcessed", detached, ok.ID.String()).Return(nil)
	events.On("MarkFailed", detached, bad.ID.String(), pullErr).Return(nil)
	trigger.On("PullCustomerFromProvider", ctx, "A-1").Return(dto.PullSkipped, nil)
	trigger.On("PullInvoiceFromProvider", ctx, "X-INV-1").Return(dto.PullOutcome(""), pullErr)

	publisher := new(MockJobPublisher)
	dispatcher := usecase.NewWebhookDispatcher(events, trigger, publisher, zap.NewNop())
	succeeded, failed, err := dispatcher.ProcessDue(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	publisher.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	events.AssertExpectations(t)
}

func TestWebhookDispatcher_GetEvent(t *testing.T) {
	ctx := context.Background()
	events := new(MockWebhookEventRepository)
	stored := &model.WebhookEvent{ID: uuid.New(), Provider: "xero", EventType: "CONTACT", Status: model.WebhookStatusFailed}
	events.On("GetEvent", ctx, stored.ID.String()).Return(stored, nil)
	events.On("GetEvent", ctx, "missing").Return(nil, nil)

	dispatcher := usecase.NewWebhookDispatcher(events, new(MockSyncTrigger), new(MockJobPublisher), zap.NewNop())

	got, err := dispatcher.GetEvent(ctx, stored.ID.String())
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	_, err = dispatcher.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}
