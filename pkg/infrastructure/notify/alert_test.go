package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"go.uber.org/zap"
)

var alertTime = time.Date(2025, 3, 10, 14, 5, 0, 0, time.UTC)

func sampleOrders() []entities.Order {
	return []entities.Order{
		{
			Supplier:    "Acme",
			TotalAmount: decimal.NewFromInt(12000),
			Items:       []entities.OrderLine{{PartID: "a", Quantity: 8}, {PartID: "b", Quantity: 2}},
		},
		{
			Supplier:    "Globex",
			TotalAmount: decimal.NewFromInt(500),
			Items:       []entities.OrderLine{{PartID: "c", Quantity: 5}},
		},
	}
}

func TestFormatOrderAlert(t *testing.T) {
	msg := FormatOrderAlert(sampleOrders(), alertTime)

	assert.Contains(t, msg, "📦 2件の発注を作成しました")
	assert.Contains(t, msg, "💰 総発注金額: ¥12,500")
	assert.Contains(t, msg, "・Acme: ¥12,000 (2品目)")
	assert.Contains(t, msg, "・Globex: ¥500 (1品目)")
	assert.Contains(t, msg, "2025/03/10 14:05:00")
}

func TestWebhookAlertSender(t *testing.T) {
	var gotAuth, gotMessage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, r.ParseForm())
		gotMessage = r.PostForm.Get("message")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWebhookAlertSender(server.URL, "secret", time.Second)
	require.NoError(t, sender.SendAlert(context.Background(), "hello 発注"))
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "hello 発注", gotMessage)
}

func TestWebhookAlertSender_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	err := NewWebhookAlertSender(server.URL, "bad", time.Second).SendAlert(context.Background(), "x")
	assert.ErrorContains(t, err, "401")
}

func TestWebhookAlertSender_DisabledWithoutToken(t *testing.T) {
	sender := NewWebhookAlertSender("http://127.0.0.1:1", "", time.Second)
	assert.False(t, sender.Enabled())
	assert.NoError(t, sender.SendAlert(context.Background(), "x"))
}

type stubSender struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (s *stubSender) SendAlert(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return s.err
}

func (s *stubSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// blockingSender holds every send until release is closed or ctx ends.
type blockingSender struct {
	started chan struct{}
	release chan struct{}
	result  chan error
}

func newBlockingSender() *blockingSender {
	return &blockingSender{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  make(chan error, 1),
	}
}

func (s *blockingSender) SendAlert(ctx context.Context, _ string) error {
	s.started <- struct{}{}
	var err error
	select {
	case <-s.release:
	case <-ctx.Done():
		err = ctx.Err()
	}
	s.result <- err
	return err
}

func confirmedEvent() events.Event {
	return events.NewEvent(events.OrdersConfirmedEvent, events.OrdersStream, events.OrdersConfirmed{Orders: sampleOrders()}, alertTime)
}

func TestAlertHandler(t *testing.T) {
	sender := &stubSender{}
	rec := NewRecorder()
	handler := NewAlertHandler(sender, rec, zap.NewNop(), func() time.Time { return alertTime })
	defer handler.Close()

	store := events.NewInMemoryEventStore(nil)
	require.NoError(t, store.Subscribe([]string{events.OrdersConfirmedEvent}, handler))
	require.NoError(t, store.AppendEvent(events.OrdersStream, confirmedEvent()))
	handler.Wait()

	messages := sender.sent()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "2件の発注")
	assert.Empty(t, rec.Notices())
}

func TestAlertHandler_SendFailureNotifies(t *testing.T) {
	sender := &stubSender{err: errors.New("down")}
	rec := NewRecorder()
	handler := NewAlertHandler(sender, rec, zap.NewNop(), func() time.Time { return alertTime })
	defer handler.Close()

	require.NoError(t, handler.Handle(confirmedEvent()))
	handler.Wait()

	assert.True(t, rec.Contains(Error, "LINE通知"))
}

func TestAlertHandler_EmptyBatchIsIgnored(t *testing.T) {
	sender := &stubSender{}
	handler := NewAlertHandler(sender, NewRecorder(), zap.NewNop(), time.Now)
	defer handler.Close()

	empty := events.NewEvent(events.OrdersConfirmedEvent, events.OrdersStream, events.OrdersConfirmed{}, alertTime)
	require.NoError(t, handler.Handle(empty))
	handler.Wait()
	assert.Empty(t, sender.sent())
}

func TestAlertHandler_HandleDoesNotWaitForSender(t *testing.T) {
	sender := newBlockingSender()
	handler := NewAlertHandler(sender, NewRecorder(), zap.NewNop(), func() time.Time { return alertTime })

	returned := make(chan error, 1)
	go func() { returned <- handler.Handle(confirmedEvent()) }()

	select {
	case err := <-returned:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Expected Handle to return while the sender is blocked, got no return")
	}

	<-sender.started
	close(sender.release)
	handler.Close()
	assert.NoError(t, <-sender.result)
}

func TestAlertHandler_CloseCancelsPendingSend(t *testing.T) {
	sender := newBlockingSender()
	rec := NewRecorder()
	handler := NewAlertHandler(sender, rec, zap.NewNop(), func() time.Time { return alertTime })

	require.NoError(t, handler.Handle(confirmedEvent()))
	<-sender.started
	handler.Close()

	assert.ErrorIs(t, <-sender.result, context.Canceled)
	assert.True(t, rec.Contains(Error, "LINE通知"))
	assert.Error(t, handler.Handle(confirmedEvent()))
}
