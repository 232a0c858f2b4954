package network

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lixenwraith/heartscroll/events"
)

func TestMessage_RoundTrip(t *testing.T) {
	at := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	data, err := NewSectionChangeMessage(events.SectionChange{From: 1, To: 2, Progress: 1}, at).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"section_change"`)

	msg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgSectionChange, msg.Type)
	assert.Equal(t, 1, msg.From)
	assert.Equal(t, 2, msg.To)
	assert.Equal(t, 1.0, msg.Progress)
	assert.True(t, at.Equal(msg.At))
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte(`{"from":1}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestPeer_SendDropsOnOverflow(t *testing.T) {
	p := newPeer(1, nil, "test", 1)

	assert.True(t, p.Send([]byte("a")))
	assert.False(t, p.Send([]byte("b")), "queue full drops")

	p.Close()
	p.Close()
	assert.False(t, p.Send([]byte("c")), "closed peer drops")
}

func TestBridge_DisabledWithoutAddress(t *testing.T) {
	b := NewBridge(events.NewBroadcaster(nil), nil)
	require.NoError(t, b.Init(DefaultConfig()))

	assert.False(t, b.Enabled())
	require.NoError(t, b.Start())
	assert.Empty(t, b.Addr())
	assert.Equal(t, 0, b.PeerCount())

	// Emitting with no server is harmless
	b.OnSectionChange(events.SectionChange{From: 0, To: 1, Progress: 1})
	require.NoError(t, b.Stop())
}

func TestBridge_InitRejectsShortReadTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.ReadTimeout = cfg.PingInterval

	b := NewBridge(events.NewBroadcaster(nil), nil)
	assert.Error(t, b.Init(cfg))
}

func TestBridge_MirrorsSectionChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bc := events.NewBroadcaster(nil)
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"

	b := NewBridge(bc, nil)
	require.NoError(t, b.Init(cfg))
	require.NoError(t, b.Start())
	defer b.Stop()

	url := "ws://" + b.Addr() + cfg.Path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	hello, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgHello, hello.Type)
	assert.Equal(t, 0, hello.To)

	require.Eventually(t, func() bool { return b.PeerCount() == 1 }, time.Second, 5*time.Millisecond)

	bc.Emit(events.SectionChange{From: 0, To: 1, Progress: 1})

	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	msg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgSectionChange, msg.Type)
	assert.Equal(t, 0, msg.From)
	assert.Equal(t, 1, msg.To)

	sent, dropped := b.Stats()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(0), dropped)

	require.NoError(t, b.Stop())
	assert.Equal(t, 0, bc.ListenerCount())
	assert.Equal(t, 0, b.PeerCount())
	require.NoError(t, b.Stop(), "stop is idempotent")
}

func TestBridge_HelloCarriesCurrentSection(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bc := events.NewBroadcaster(nil)
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"

	b := NewBridge(bc, nil)
	require.NoError(t, b.Init(cfg))
	require.NoError(t, b.Start())
	defer b.Stop()

	bc.Emit(events.SectionChange{From: 0, To: 2, Progress: 1})

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+b.Addr()+cfg.Path, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	hello, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 2, hello.To)
}

func TestPeerManager_MaxPeers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bc := events.NewBroadcaster(nil)
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.MaxPeers = 1

	b := NewBridge(bc, nil)
	require.NoError(t, b.Init(cfg))
	require.NoError(t, b.Start())
	defer b.Stop()

	url := "ws://" + b.Addr() + cfg.Path
	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	require.Eventually(t, func() bool { return b.PeerCount() == 1 }, time.Second, 5*time.Millisecond)

	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()

	// Rejected connection is closed by the server
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = second.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 1, b.PeerCount())
}
