package controlplane

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfsync/nfsync/internal/syncer"
)

func TestHubBroadcastsToSubscribers(t *testing.T) {
	hub := NewEventHub()
	sub, cancel := hub.subscribe()
	defer cancel()

	hub.PublishEvent(syncer.PairStarted{Index: 1, Total: 2, Local: "/home/u/docs", Target: "backup/docs"})

	var frame struct {
		Type string             `json:"type"`
		Data syncer.PairStarted `json:"data"`
	}
	require.NoError(t, json.Unmarshal(<-sub, &frame))
	assert.Equal(t, "pair_started", frame.Type)
	assert.Equal(t, 1, frame.Data.Index)
	assert.Equal(t, "backup/docs", frame.Data.Target)
}

func TestHubResultFrame(t *testing.T) {
	hub := NewEventHub()
	sub, cancel := hub.subscribe()
	defer cancel()

	hub.PublishResult(syncer.Result{RunID: "run-1", Success: true, Message: "all 2 folders synced"})

	var frame struct {
		Type string        `json:"type"`
		Data syncer.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(<-sub, &frame))
	assert.Equal(t, "result", frame.Type)
	assert.Equal(t, "run-1", frame.Data.RunID)
	assert.True(t, frame.Data.Success)
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	hub := NewEventHub()
	sub, cancel := hub.subscribe()
	defer cancel()

	for i := 0; i < subBuffer+10; i++ {
		hub.PublishEvent(syncer.TransferOutput{Index: 1, Line: "x"})
	}

	// buffer holds exactly subBuffer frames; the rest were dropped
	assert.Len(t, sub, subBuffer)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewEventHub()
	sub, cancel := hub.subscribe()
	cancel()

	hub.PublishEvent(syncer.RunCancelled{Completed: 1, Total: 2})
	assert.Empty(t, sub)
}

func TestEventTypeNames(t *testing.T) {
	assert.Equal(t, "pair_started", eventType(syncer.PairStarted{}))
	assert.Equal(t, "pair_finished", eventType(syncer.PairFinished{}))
	assert.Equal(t, "transfer_output", eventType(syncer.TransferOutput{}))
	assert.Equal(t, "run_cancelled", eventType(syncer.RunCancelled{}))
}
