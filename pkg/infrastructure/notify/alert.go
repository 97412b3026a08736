package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"go.uber.org/zap"
)

// DefaultWebhookURL is the LINE Notify endpoint.
const DefaultWebhookURL = "https://notify-api.line.me/api/notify"

// AlertSender delivers an order alert text to an external channel.
type AlertSender interface {
	SendAlert(ctx context.Context, message string) error
}

// WebhookAlertSender posts alerts as a form-encoded message with a bearer token.
type WebhookAlertSender struct {
	client *resty.Client
	url    string
	token  string
}

func NewWebhookAlertSender(url, token string, timeout time.Duration) *WebhookAlertSender {
	if url == "" {
		url = DefaultWebhookURL
	}
	return &WebhookAlertSender{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		token:  token,
	}
}

// Enabled reports whether a token is configured.
func (s *WebhookAlertSender) Enabled() bool {
	return s.token != ""
}

func (s *WebhookAlertSender) SendAlert(ctx context.Context, message string) error {
	if !s.Enabled() {
		return nil
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.token).
		SetFormData(map[string]string{"message": message}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("alert endpoint returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// FormatOrderAlert summarises a confirmed batch of orders.
func FormatOrderAlert(orders []entities.Order, at time.Time) string {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}

	var b strings.Builder
	b.WriteString("🔔 BOM管理システム - 発注アラート\n\n")
	fmt.Fprintf(&b, "📦 %d件の発注を作成しました\n\n", len(orders))
	fmt.Fprintf(&b, "💰 総発注金額: %s\n\n", entities.FormatYen(total))
	b.WriteString("📋 発注先:\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "・%s: %s (%d品目)\n", o.Supplier, entities.FormatYen(o.TotalAmount), len(o.Items))
	}
	fmt.Fprintf(&b, "\n⏰ %s", at.Format("2006/01/02 15:04:05"))
	return b.String()
}

// AlertHandler forwards confirmed order batches to an AlertSender. Delivery
// runs on its own goroutine so publishers never wait on the endpoint; Close
// cancels in-flight sends and waits for them.
type AlertHandler struct {
	sender   AlertSender
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewAlertHandler(sender AlertSender, notifier Notifier, logger *zap.Logger, now func() time.Time) *AlertHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &AlertHandler{
		sender:   sender,
		notifier: notifier,
		logger:   logger,
		now:      now,
		timeout:  10 * time.Second,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Verify interface compliance
var _ events.EventHandler = (*AlertHandler)(nil)

func (h *AlertHandler) CanHandle(eventType string) bool {
	return eventType == events.OrdersConfirmedEvent
}

// Handle formats the alert and queues its delivery. Send failures are logged
// and reported through the notifier, not returned.
func (h *AlertHandler) Handle(event events.Event) error {
	payload, ok := event.Data().(events.OrdersConfirmed)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Data(), event.Type())
	}
	if len(payload.Orders) == 0 {
		return nil
	}
	message := FormatOrderAlert(payload.Orders, h.now())

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("alert handler closed")
	}
	h.wg.Add(1)
	go h.send(message, len(payload.Orders))
	return nil
}

func (h *AlertHandler) send(message string, orders int) {
	defer h.wg.Done()

	ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
	defer cancel()

	if err := h.sender.SendAlert(ctx, message); err != nil {
		h.logger.Error("order alert failed", zap.Error(err))
		h.notifier.Notify("LINE通知の送信に失敗しました", Error)
		return
	}
	h.logger.Info("order alert sent", zap.Int("orders", orders))
}

// Wait blocks until every queued alert has been delivered or has failed.
func (h *AlertHandler) Wait() {
	h.wg.Wait()
}

// Close cancels pending deliveries and waits for them to return. Later
// events are rejected.
func (h *AlertHandler) Close() {
	h.mu.Lock()
	h.closed = true
	h.cancel()
	h.mu.Unlock()
	h.wg.Wait()
}
