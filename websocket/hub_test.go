package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientWants(t *testing.T) {
	admin := &Client{scope: ""}
	coordinator := &Client{scope: "CITS1401"}

	assert.True(t, admin.wants("PHYS2001"), "admin scope receives every unit")
	assert.True(t, coordinator.wants("cits1401"), "unit match is case-insensitive")
	assert.False(t, coordinator.wants("PHYS2001"))
}

func TestStatusChangedReachesScopedClient(t *testing.T) {
	Start()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(w, r, "CITS1401", "CITS1401")
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Registration finishes just after the handshake; give the hub a beat.
	time.Sleep(100 * time.Millisecond)

	SendStatusChanged("CITS1401", "abc123", "Pending", "Approve")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var update ReviewUpdate
	require.NoError(t, json.Unmarshal(raw, &update))
	assert.Equal(t, "STATUS_CHANGED", update.Type)
	assert.Equal(t, "abc123", update.ApplicationID)
	assert.Equal(t, "CITS1401", update.UnitCode)
	assert.Equal(t, "Approve", update.Status)
	assert.False(t, update.Timestamp.IsZero())
}
