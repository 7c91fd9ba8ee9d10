//go:build integration

package broadcast

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldcheck/pkg/domain"
	"fieldcheck/pkg/testutil/containers"
)

// startBridge runs a bridge against its own hub, as one service instance
// would, and waits until the subscription is live.
func startBridge(t *testing.T, ctx context.Context, rc *containers.RedisContainer, channel string) (*Hub, *RedisBridge) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	hub := NewHub(logger, nil)
	bridge := NewRedisBridge(rc.Client, hub, logger, channel)

	go func() { _ = bridge.Run(ctx) }()

	// Redis reports subscriber counts per channel; wait until ours shows up
	// so publishes are not lost to subscription latency.
	require.Eventually(t, func() bool {
		counts, err := rc.Client.PubSubNumSub(ctx, channel).Result()
		return err == nil && counts[channel] >= 1
	}, 5*time.Second, 20*time.Millisecond)

	return hub, bridge
}

func TestRedisBridge_RoundTrip(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub, bridge := startBridge(t, ctx, rc, "fieldcheck.test.roundtrip")

	session := NewSession(domain.NewChannelID(), nil, slog.New(slog.DiscardHandler))
	hub.Subscribe(session)

	id := domain.NewSubmissionID()
	verifiedAt := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, bridge.Publish(ctx, Verified(id, verifiedAt)))

	select {
	case data := <-session.send:
		ev, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, EventSubmissionVerified, ev.Type)
		payload, ok := ev.Payload.(StatusPayload)
		require.True(t, ok)
		assert.Equal(t, id, payload.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("event never came back through the bridge")
	}
}

func TestRedisBridge_FansOutAcrossInstances(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const channel = "fieldcheck.test.fanout"
	hubA, bridgeA := startBridge(t, ctx, rc, channel)
	hubB, _ := startBridge(t, ctx, rc, channel)

	sessionA := NewSession(domain.NewChannelID(), nil, slog.New(slog.DiscardHandler))
	sessionB := NewSession(domain.NewChannelID(), nil, slog.New(slog.DiscardHandler))
	hubA.Subscribe(sessionA)
	hubB.Subscribe(sessionB)

	require.NoError(t, bridgeA.Publish(ctx, NewSubmission(map[string]string{"id": "cross"})))

	for name, session := range map[string]*Session{"instance A": sessionA, "instance B": sessionB} {
		select {
		case data := <-session.send:
			ev, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, EventNewSubmission, ev.Type, name)
		case <-time.After(5 * time.Second):
			t.Fatalf("%s never received the event", name)
		}
	}
}

func TestRedisBridge_DropsUndecodableFrames(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const channel = "fieldcheck.test.badframes"
	hub, bridge := startBridge(t, ctx, rc, channel)

	session := NewSession(domain.NewChannelID(), nil, slog.New(slog.DiscardHandler))
	hub.Subscribe(session)

	// Garbage straight onto the channel, then a valid frame: the bridge must
	// survive the former and deliver the latter.
	require.NoError(t, rc.Client.Publish(ctx, channel, "not json").Err())
	require.NoError(t, rc.Client.Publish(ctx, channel, `{"type":"NOPE","payload":{}}`).Err())
	require.NoError(t, bridge.Publish(ctx, NewSubmission(map[string]string{"id": "ok"})))

	select {
	case data := <-session.send:
		ev, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, EventNewSubmission, ev.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("valid frame never arrived after bad ones")
	}
}
