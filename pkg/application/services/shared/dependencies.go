package shared

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/vsinha/bomkit/pkg/application/state"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"go.uber.org/zap"
)

// Dependencies bundles the collaborators every application service uses.
type Dependencies struct {
	Store     repositories.DocumentStore
	State     *state.State
	Notifier  notify.Notifier
	Confirmer notify.Confirmer
	Events    events.EventStore
	Logger    *zap.Logger
	Clock     func() time.Time
	Rand      entities.RandSource
}

// WithDefaults fills unset optional collaborators. Store and State are required.
func (d Dependencies) WithDefaults() Dependencies {
	if d.State == nil {
		d.State = state.New()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Notifier == nil {
		d.Notifier = notify.NewLogNotifier(d.Logger)
	}
	if d.Confirmer == nil {
		d.Confirmer = notify.AutoConfirm(true)
	}
	if d.Events == nil {
		d.Events = events.NewInMemoryEventStore(d.Logger)
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return d
}

func (d Dependencies) Now() time.Time {
	return d.Clock()
}

// Today is the start of the current day.
func (d Dependencies) Today() time.Time {
	return entities.StartOfDay(d.Clock())
}

// Publish appends an activity event. Failures are logged only.
func (d Dependencies) Publish(stream, eventType string, data any) {
	if err := d.Events.AppendEvent(stream, events.NewEvent(eventType, stream, data, d.Now())); err != nil {
		d.Logger.Warn("append event failed", zap.String("event", eventType), zap.Error(err))
	}
}

// StoreFailure logs a failed store call, shows message as an error notice and
// returns the wrapped error.
func (d Dependencies) StoreFailure(message string, op string, err error) error {
	d.Logger.Error(op+" failed", zap.Error(err))
	d.Notifier.Notify(message, notify.Error)
	return fmt.Errorf("%s: %w", op, err)
}

// Invalid shows the validation messages, one per line, as a single error
// notice and returns verrs.
func (d Dependencies) Invalid(verrs *entities.ValidationErrors) error {
	d.Notifier.Notify(strings.Join(verrs.Messages(), "\n"), notify.Error)
	return verrs
}

// Confirm asks the confirmer and returns ErrCancelled on a no.
func (d Dependencies) Confirm(message string) error {
	if !d.Confirmer.Confirm(message) {
		return entities.ErrCancelled
	}
	return nil
}
