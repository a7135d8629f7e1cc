package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Publisher_Record(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	pub.Record(context.Background(), Event{
		Actor:         "staff@example.com",
		ParticipantID: "p-1",
		Action:        ActionParticipantRegistered,
	})

	events := store.All()
	require.Len(t, events, 1)
	assert.Equal(t, ActionParticipantRegistered, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp defaulted when unset")
}

func Test_Worker_DrainsInbox(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Event, 8)
	worker := NewWorker(store, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	pub := NewAsyncPublisher(inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))
	pub.Record(context.Background(), Event{ParticipantID: "p-1", Action: ActionParticipantRegistered})
	pub.Record(context.Background(), Event{ParticipantID: "p-1", Action: ActionPaymentRecorded})

	require.Eventually(t, func() bool {
		return len(store.All()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	byParticipant, err := store.ListByParticipant(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Len(t, byParticipant, 2)
}

func Test_AsyncPublisher_FullInboxDrops(t *testing.T) {
	inbox := make(chan Event, 1)
	pub := NewAsyncPublisher(inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	pub.Record(context.Background(), Event{Action: ActionParticipantRegistered})
	pub.Record(context.Background(), Event{Action: ActionParticipantUpdated})

	assert.Len(t, inbox, 1, "second event dropped instead of blocking")
}
