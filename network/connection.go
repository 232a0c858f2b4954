package network

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// PeerID uniquely identifies a connected mirror client
type PeerID uint32

var (
	// ErrMaxPeers is returned when the peer limit is reached
	ErrMaxPeers = errors.New("max peers reached")

	// ErrClosed is returned when adding a peer after Close
	ErrClosed = errors.New("peer manager closed")
)

// Peer is one websocket client
type Peer struct {
	ID       PeerID
	Addr     string
	LastSeen atomic.Int64 // UnixNano

	conn *websocket.Conn

	// Send queue of encoded text frames
	sendCh chan []byte

	// Lifecycle
	closeCh   chan struct{}
	closeOnce sync.Once
}

func newPeer(id PeerID, conn *websocket.Conn, addr string, sendQueueSize int) *Peer {
	p := &Peer{
		ID:      id,
		Addr:    addr,
		conn:    conn,
		sendCh:  make(chan []byte, sendQueueSize),
		closeCh: make(chan struct{}),
	}
	p.LastSeen.Store(time.Now().UnixNano())
	return p
}

// Send queues a payload for transmission
// Returns false if the peer is closed or its queue is full
func (p *Peer) Send(payload []byte) bool {
	select {
	case <-p.closeCh:
		return false
	default:
	}

	select {
	case p.sendCh <- payload:
		return true
	default:
		return false
	}
}

// Close sends a best-effort close frame and drops the connection
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		close(p.closeCh)
		if p.conn == nil {
			return
		}
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
		_ = p.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		p.conn.Close()
	})
}

// readLoop discards client frames; it exists to process control frames and
// to notice disconnects
func (p *Peer) readLoop(cfg *Config) {
	defer p.Close()

	p.conn.SetReadLimit(512)
	p.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	p.conn.SetPongHandler(func(string) error {
		p.LastSeen.Store(time.Now().UnixNano())
		return p.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			return
		}
		p.LastSeen.Store(time.Now().UnixNano())
	}
}

// writeLoop sends queued frames and keeps the connection alive with pings
func (p *Peer) writeLoop(cfg *Config) {
	defer p.Close()

	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.closeCh:
			return
		case payload := <-p.sendCh:
			p.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

// PeerManager tracks connected clients
type PeerManager struct {
	mu     sync.RWMutex
	peers  map[PeerID]*Peer
	nextID atomic.Uint32
	config *Config
	wg     sync.WaitGroup
	closed bool

	onDisconnect func(PeerID)
}

// NewPeerManager creates a peer manager
func NewPeerManager(cfg *Config) *PeerManager {
	return &PeerManager{
		peers:  make(map[PeerID]*Peer),
		config: cfg,
	}
}

// Add registers an upgraded connection and starts its I/O loops
func (pm *PeerManager) Add(conn *websocket.Conn) (*Peer, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.closed {
		conn.Close()
		return nil, ErrClosed
	}
	if len(pm.peers) >= pm.config.MaxPeers {
		conn.Close()
		return nil, ErrMaxPeers
	}

	id := PeerID(pm.nextID.Add(1))
	peer := newPeer(id, conn, conn.RemoteAddr().String(), pm.config.SendQueueSize)
	pm.peers[id] = peer

	pm.wg.Add(3)
	go func() { defer pm.wg.Done(); peer.readLoop(pm.config) }()
	go func() { defer pm.wg.Done(); peer.writeLoop(pm.config) }()
	go func() { defer pm.wg.Done(); pm.monitorPeer(peer) }()

	return peer, nil
}

// monitorPeer removes the peer once it closes
func (pm *PeerManager) monitorPeer(peer *Peer) {
	<-peer.closeCh

	pm.mu.Lock()
	delete(pm.peers, peer.ID)
	pm.mu.Unlock()

	if pm.onDisconnect != nil {
		pm.onDisconnect(peer.ID)
	}
}

// Broadcast queues payload to every peer and returns how many dropped it
func (pm *PeerManager) Broadcast(payload []byte) (dropped int) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	for _, peer := range pm.peers {
		if !peer.Send(payload) {
			dropped++
		}
	}
	return dropped
}

// PeerCount returns current connected peer count
func (pm *PeerManager) PeerCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Close disconnects all peers and waits for their loops to exit
func (pm *PeerManager) Close() {
	pm.mu.Lock()
	pm.closed = true
	peers := make([]*Peer, 0, len(pm.peers))
	for _, peer := range pm.peers {
		peers = append(peers, peer)
	}
	pm.mu.Unlock()

	for _, peer := range peers {
		peer.Close()
	}
	pm.wg.Wait()
}
