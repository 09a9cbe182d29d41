package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/npblake/sponavi-crawler/internal/baseball"
)

type staticIDs struct{ id string }

func (s staticIDs) NewID() (string, error) { return s.id, nil }

func newTestServer(t *testing.T) []option.ClientOption {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return []option.ClientOption{option.WithGRPCConn(conn)}
}

func TestPublisherNotify(t *testing.T) {
	ctx := context.Background()
	opts := newTestServer(t)

	admin, err := pubsub.NewClient(ctx, "project-id", opts...)
	require.NoError(t, err)
	defer admin.Close()

	topic, err := admin.CreateTopic(ctx, "runs")
	require.NoError(t, err)
	sub, err := admin.CreateSubscription(ctx, "runs-sub", pubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	pub, err := Open(ctx, "project-id", "runs", staticIDs{id: "n-1"}, nil, opts...)
	require.NoError(t, err)
	defer pub.Close()

	sent := baseball.Notification{
		Event:   baseball.EventRunFinished,
		Message: "score scraping finished",
		Fields:  map[string]any{"games": 3},
		SentAt:  time.Date(2021, 9, 5, 1, 2, 3, 0, time.UTC),
	}
	require.NoError(t, pub.Notify(ctx, sent))

	recvCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	got := make(chan *pubsub.Message, 1)
	err = sub.Receive(recvCtx, func(_ context.Context, msg *pubsub.Message) {
		msg.Ack()
		select {
		case got <- msg:
		default:
		}
		cancel()
	})
	require.NoError(t, err)

	msg := <-got
	assert.Equal(t, baseball.EventRunFinished, msg.Attributes[AttrEvent])
	assert.Equal(t, "n-1", msg.Attributes[AttrNotificationID])

	var decoded baseball.Notification
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, "score scraping finished", decoded.Message)
	assert.Equal(t, sent.SentAt, decoded.SentAt)
	assert.InDelta(t, 3, decoded.Fields["games"], 0)
}

func TestOpenMissingTopic(t *testing.T) {
	ctx := context.Background()
	opts := newTestServer(t)

	_, err := Open(ctx, "project-id", "missing", nil, nil, opts...)
	require.ErrorContains(t, err, "does not exist")
}

func TestNotifyWithoutTopic(t *testing.T) {
	t.Parallel()

	err := New(nil, nil, nil).Notify(context.Background(), baseball.Notification{Event: baseball.EventRunStarted})
	require.Error(t, err)
}
