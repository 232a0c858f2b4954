package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lixenwraith/heartscroll/core"
	"github.com/lixenwraith/heartscroll/events"
)

// Bridge mirrors section-change notifications to websocket clients
// It is a broadcast listener: delivery is fire-and-forget and never blocks
// the emitter. Clients that fall behind lose messages
type Bridge struct {
	config      *Config
	broadcaster *events.Broadcaster
	logger      *zap.Logger
	upgrader    websocket.Upgrader

	peers atomic.Pointer[PeerManager]

	mu        sync.Mutex
	server    *http.Server
	listener  net.Listener
	sub       *events.Subscription
	serveDone chan struct{}
	running   bool

	current atomic.Int64
	sent    atomic.Int64
	dropped atomic.Int64
}

// NewBridge creates a mirror for broadcaster (disabled until configured)
func NewBridge(broadcaster *events.Broadcaster, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		config:      DefaultConfig(),
		broadcaster: broadcaster,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Read-only mirror of public state; any origin may watch
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (b *Bridge) Name() string           { return "network" }
func (b *Bridge) Dependencies() []string { return nil }

// Init picks up a *Config from args
func (b *Bridge) Init(args ...any) error {
	for _, arg := range args {
		if cfg, ok := arg.(*Config); ok && cfg != nil {
			if cfg.Address != "" && cfg.ReadTimeout <= cfg.PingInterval {
				return fmt.Errorf("network: read timeout %s must exceed ping interval %s", cfg.ReadTimeout, cfg.PingInterval)
			}
			b.config = cfg
		}
	}
	return nil
}

// Enabled reports whether an address is configured
func (b *Bridge) Enabled() bool {
	return b.config.Address != ""
}

// Start binds the listener and subscribes to the broadcaster
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.Enabled() || b.running {
		return nil
	}

	ln, err := net.Listen("tcp", b.config.Address)
	if err != nil {
		return fmt.Errorf("network: listen %s: %w", b.config.Address, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(b.config.Path, b.handleWS)

	peers := NewPeerManager(b.config)
	peers.onDisconnect = func(id PeerID) {
		b.logger.Debug("mirror client disconnected", zap.Uint32("peer", uint32(id)))
	}
	b.peers.Store(peers)
	b.listener = ln
	b.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	b.serveDone = make(chan struct{})

	server, done := b.server, b.serveDone
	core.Go(func() {
		defer close(done)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger.Warn("mirror server stopped", zap.Error(err))
		}
	})

	b.sub = b.broadcaster.Subscribe(b)
	b.running = true
	b.logger.Info("broadcast mirror listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Stop unsubscribes, closes the server and disconnects every client
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}
	b.running = false

	b.sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := b.server.Shutdown(ctx)
	<-b.serveDone
	b.peers.Load().Close()
	return err
}

// Addr returns the bound address, empty when not running
func (b *Bridge) Addr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener == nil || !b.running {
		return ""
	}
	return b.listener.Addr().String()
}

// PeerCount returns the number of connected clients
func (b *Bridge) PeerCount() int {
	peers := b.peers.Load()
	if peers == nil {
		return 0
	}
	return peers.PeerCount()
}

// Stats returns total queued and dropped frames
func (b *Bridge) Stats() (sent, dropped int64) {
	return b.sent.Load(), b.dropped.Load()
}

// OnSectionChange implements events.Listener
func (b *Bridge) OnSectionChange(ev events.SectionChange) {
	b.current.Store(int64(ev.To))

	payload, err := NewSectionChangeMessage(ev, time.Now()).Encode()
	if err != nil {
		b.logger.Warn("encode section change", zap.Error(err))
		return
	}

	peers := b.peers.Load()
	if peers == nil {
		return
	}

	dropped := peers.Broadcast(payload)
	b.sent.Add(int64(peers.PeerCount() - dropped))
	if dropped > 0 {
		b.dropped.Add(int64(dropped))
		b.logger.Debug("mirror dropped frames", zap.Int("count", dropped))
	}
}

func (b *Bridge) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	peer, err := b.peers.Load().Add(conn)
	if err != nil {
		b.logger.Warn("mirror client rejected", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	b.logger.Debug("mirror client connected", zap.Uint32("peer", uint32(peer.ID)), zap.String("remote", peer.Addr))

	hello, err := NewHelloMessage(int(b.current.Load()), time.Now()).Encode()
	if err == nil {
		peer.Send(hello)
	}
}
