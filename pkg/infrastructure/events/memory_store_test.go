package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestInMemoryEventStore_AppendAndRead(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	require.NoError(t, store.AppendEvent(OrdersStream, NewEvent(OrderStatusChangedEvent, OrdersStream, StatusChanged{ID: "o1", Status: "ordered"}, at)))
	require.NoError(t, store.AppendEvent(OrdersStream, NewEvent(OrderDeletedEvent, OrdersStream, Deleted{ID: "o1"}, at)))
	require.NoError(t, store.AppendEvent(QuotesStream, NewEvent(QuoteDeletedEvent, QuotesStream, Deleted{ID: "q1"}, at)))

	orders, err := store.ReadEvents(OrdersStream, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 1, orders[0].Version())
	assert.Equal(t, 2, orders[1].Version())

	tail, err := store.ReadEvents(OrdersStream, 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, OrderDeletedEvent, tail[0].Type())

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := store.ReadEvents("missing", 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryEventStore_SubscribersRunSynchronously(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	var received []string
	handler := &HandlerFunc{
		Types: []string{OrdersConfirmedEvent},
		Fn: func(e Event) error {
			received = append(received, e.StreamID())
			return errors.New("webhook down")
		},
	}
	require.NoError(t, store.Subscribe([]string{OrdersConfirmedEvent}, handler))

	err := store.AppendEvent(OrdersStream, NewEvent(OrdersConfirmedEvent, OrdersStream, OrdersConfirmed{}, at))
	require.NoError(t, err, "handler errors do not fail the append")
	assert.Equal(t, []string{OrdersStream}, received)

	require.NoError(t, store.Unsubscribe(handler))
	require.NoError(t, store.AppendEvent(OrdersStream, NewEvent(OrdersConfirmedEvent, OrdersStream, OrdersConfirmed{}, at)))
	assert.Len(t, received, 1)
}

func TestInMemoryEventStore_Capacity(t *testing.T) {
	store := NewInMemoryEventStore(nil).WithCapacity(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendEvent(PartsStream, NewEvent(PartSavedEvent, PartsStream, PartSaved{}, at.Add(time.Duration(i)*time.Minute))))
	}

	all, err := store.ReadAllEvents(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].Version())
	assert.Equal(t, at.Add(4*time.Minute), all[2].Timestamp())
}
