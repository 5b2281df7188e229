package stream

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ballpark-live/internal/models"
)

func hubTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, have %d", want, hub.ClientCount())
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(time.Second, hubTestLogger())
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Shutdown(context.Background())

	conn := dialHub(t, server)
	waitForClients(t, hub, 1)

	est := &models.Estimate{
		GameID:     "2026-07-01-HAN-YOG",
		Inning:     7,
		Outs:       1,
		Phase:      models.PhaseLate,
		PMixed:     0.61,
		PFinal:     0.62,
		Confidence: models.ConfidenceHigh,
	}
	hub.Broadcast(est)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got models.Estimate
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, est.GameID, got.GameID)
	assert.Equal(t, models.PhaseLate, got.Phase)
	assert.InDelta(t, 0.62, got.PFinal, 1e-9)
}

func TestHubMultipleClients(t *testing.T) {
	hub := NewHub(time.Second, hubTestLogger())
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Shutdown(context.Background())

	first := dialHub(t, server)
	second := dialHub(t, server)
	waitForClients(t, hub, 2)

	hub.Broadcast(&models.Estimate{GameID: "g1"})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(payload), "g1")
	}
}

func TestHubClientDisconnect(t *testing.T) {
	hub := NewHub(time.Second, hubTestLogger())
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Shutdown(context.Background())

	conn := dialHub(t, server)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub(time.Second, hubTestLogger())
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server)
	waitForClients(t, hub, 1)

	hub.Shutdown(context.Background())
	assert.Equal(t, 0, hub.ClientCount())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
