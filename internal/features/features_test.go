package features

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

const day int64 = 86400

// MockEventSource is a mock implementation of EventSource
type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) CustomerEvents(ctx context.Context, customerID string, until int64) ([]*domain.Event, error) {
	args := m.Called(ctx, customerID, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func value(v float64) *float64 {
	return &v
}

func makeEvent(ts int64, eventType, channel string, v *float64) *domain.Event {
	return &domain.Event{
		EventID:    "evt_test",
		CustomerID: "cust_123",
		EventType:  eventType,
		Channel:    channel,
		Timestamp:  ts,
		Value:      v,
	}
}

func TestDerive_WindowBoundaries(t *testing.T) {
	// purchases on day 1 and day 20, derived at end of day 30
	asOf := 31 * day
	events := []*domain.Event{
		makeEvent(1*day, "purchase", "web", value(100)),
		makeEvent(20*day, "purchase", "web", value(50)),
	}

	vec := Derive("cust_123", asOf, events)

	// the day-1 purchase sits exactly 30 days back, outside the trailing window
	assert.Equal(t, 1.0, vec.Get("frequency_30d"))
	assert.Equal(t, 2.0, vec.Get("frequency_90d"))
	assert.Equal(t, 2.0, vec.Get("frequency_365d"))
	assert.Equal(t, 11.0, vec.Get("recency_days"))
}

func TestDerive_MonetaryAggregates(t *testing.T) {
	asOf := 100 * day
	events := []*domain.Event{
		makeEvent(95*day, "purchase", "web", value(100)),
		makeEvent(96*day, "purchase", "web", value(50)),
		makeEvent(97*day, "page_view", "web", nil),
	}

	vec := Derive("cust_123", asOf, events)

	assert.Equal(t, 150.0, vec.Get("monetary_sum_90d"))
	assert.Equal(t, 75.0, vec.Get("monetary_mean_90d"))
	assert.Equal(t, 100.0, vec.Get("monetary_max_90d"))
}

func TestDerive_EngagementRates(t *testing.T) {
	asOf := 100 * day
	events := []*domain.Event{
		makeEvent(90*day, "email_send", "email", nil),
		makeEvent(91*day, "email_send", "email", nil),
		makeEvent(92*day, "email_send", "email", nil),
		makeEvent(93*day, "email_send", "email", nil),
		makeEvent(94*day, "email_open", "email", nil),
		makeEvent(95*day, "email_open", "email", nil),
		makeEvent(96*day, "click", "email", nil),
	}

	vec := Derive("cust_123", asOf, events)

	assert.Equal(t, 0.5, vec.Get("open_rate"))
	assert.Equal(t, 0.5, vec.Get("click_rate"))
}

func TestDerive_NoEmailActivity(t *testing.T) {
	asOf := 100 * day
	events := []*domain.Event{
		makeEvent(95*day, "purchase", "web", value(10)),
	}

	vec := Derive("cust_123", asOf, events)

	assert.Equal(t, 0.0, vec.Get("open_rate"))
	assert.Equal(t, 0.0, vec.Get("click_rate"))
}

func TestDerive_ChannelOneHot(t *testing.T) {
	asOf := 100 * day
	events := []*domain.Event{
		makeEvent(95*day, "page_view", "email", nil),
		makeEvent(96*day, "page_view", "email", nil),
		makeEvent(97*day, "page_view", "web", nil),
	}

	vec := Derive("cust_123", asOf, events)

	assert.Equal(t, 1.0, vec.Get("channel_email"))
	assert.Equal(t, 0.0, vec.Get("channel_web"))
}

func TestDerive_UnknownChannelFoldsIntoOther(t *testing.T) {
	asOf := 100 * day
	events := []*domain.Event{
		makeEvent(95*day, "page_view", "kiosk", nil),
	}

	vec := Derive("cust_123", asOf, events)

	assert.Equal(t, 1.0, vec.Get("channel_other"))
}

func TestDerive_TierFromMetadata(t *testing.T) {
	asOf := 100 * day
	e := makeEvent(95*day, "purchase", "web", value(10))
	e.Metadata = `{"tier":"gold"}`

	vec := Derive("cust_123", asOf, []*domain.Event{e})

	assert.Equal(t, 1.0, vec.Get("tier_gold"))
	assert.Equal(t, 0.0, vec.Get("tier_basic"))
}

func TestDerive_EventsAfterCutoffIgnored(t *testing.T) {
	asOf := 100 * day
	events := []*domain.Event{
		makeEvent(95*day, "purchase", "web", value(10)),
		makeEvent(105*day, "purchase", "web", value(999)),
	}

	vec := Derive("cust_123", asOf, events)

	assert.Equal(t, 1.0, vec.Get("frequency_30d"))
	assert.Equal(t, 10.0, vec.Get("monetary_sum_90d"))
}

func TestDerive_StableLayout(t *testing.T) {
	asOf := 100 * day
	a := Derive("cust_1", asOf, []*domain.Event{makeEvent(95*day, "purchase", "web", value(10))})
	b := Derive("cust_2", asOf, []*domain.Event{makeEvent(90*day, "email_open", "email", nil)})

	assert.Equal(t, a.Names, b.Names)
	assert.Len(t, a.Values, len(a.Names))
	assert.Equal(t, SchemaVersion, a.SchemaVersion)
}

func TestComputer_Compute_NoHistory(t *testing.T) {
	source := new(MockEventSource)
	source.On("CustomerEvents", mock.Anything, "cust_new", mock.AnythingOfType("int64")).
		Return([]*domain.Event{}, nil)

	computer := NewComputer(source, zap.NewNop())

	vec, err := computer.Compute(context.Background(), "cust_new", 100*day)

	assert.Nil(t, vec)
	var insufficientErr *domain.InsufficientHistoryError
	assert.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, "cust_new", insufficientErr.CustomerID)
}

func TestComputer_Compute_SourceError(t *testing.T) {
	source := new(MockEventSource)
	source.On("CustomerEvents", mock.Anything, "cust_123", mock.AnythingOfType("int64")).
		Return(nil, errors.New("connection refused"))

	computer := NewComputer(source, zap.NewNop())

	vec, err := computer.Compute(context.Background(), "cust_123", 100*day)

	assert.Nil(t, vec)
	assert.Error(t, err)
}
