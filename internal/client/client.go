package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"landrush.ai/internal/protocol"
)

const (
	dialTimeout    = 5 * time.Second
	authTimeout    = 10 * time.Second
	writeTimeout   = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second

	// heartbeatMissFactor is how many silent intervals count as a dead
	// connection.
	heartbeatMissFactor = 3
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrNoPosition   = errors.New("no world snapshot received yet")
	ErrClosed       = errors.New("client closed")

	errServerShutdown = errors.New("server requested shutdown")
)

type Config struct {
	ServerURL string
	APIKey    string
	AgentID   string
	AgentName string

	HeartbeatInterval time.Duration
	ClaimTimeout      time.Duration
}

// Client owns one logical connection to the world server: dial, AUTH
// handshake, heartbeats, reconnect with jittered backoff, inbound dispatch
// to the Observer, and claim correlation. One Client per agent.
type Client struct {
	cfg Config
	obs Observer
	log *log.Logger

	startOnce sync.Once
	closeOnce sync.Once
	started   bool
	stop      chan struct{}
	done      chan struct{}

	mu      sync.RWMutex
	state   State
	conn    *websocket.Conn
	posX    int
	posY    int
	hasPos  bool
	lastAck time.Time

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   []*pendingClaim
}

func New(cfg Config, obs Observer, logger *log.Logger) *Client {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 15 * time.Second
	}
	if cfg.ClaimTimeout <= 0 {
		cfg.ClaimTimeout = 10 * time.Second
	}
	if obs == nil {
		obs = NopObserver{}
	}
	return &Client{
		cfg:   cfg,
		obs:   obs,
		log:   logger,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		state: StateDisconnected,
	}
}

func (c *Client) Start() {
	c.startOnce.Do(func() {
		c.started = true
		go c.run()
	})
}

// Close stops the client for good: no reconnect afterwards, all timers
// cancelled, every outstanding claim fails with connection_lost.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.setState(StateClosed)
		close(c.stop)
		c.dropConn()
		c.failAllPending(protocol.FailConnectionLost, "client closed")
		if c.started {
			<-c.done
		}
	})
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) IsConnected() bool { return c.State() == StateConnected }

// Position returns the agent's position from the last world update.
func (c *Client) Position() (x, y int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.posX, c.posY, c.hasPos
}

// Move sends a MOVE frame. Fire-and-forget: silently a no-op when not
// Connected.
func (c *Client) Move(direction string) {
	c.fireAndForget(protocol.MoveMsg{
		Type:            protocol.TypeMove,
		ProtocolVersion: protocol.Version,
		Direction:       direction,
	})
}

// OfferLand offers a parcel to one agent at a price. Fire-and-forget.
func (c *Client) OfferLand(x, y int, toAgentID string, priceCents int64) {
	c.fireAndForget(protocol.OfferLandMsg{
		Type:            protocol.TypeOfferLand,
		ProtocolVersion: protocol.Version,
		X:               x,
		Y:               y,
		ToAgentID:       toAgentID,
		PriceCents:      priceCents,
	})
}

// ListLand puts a parcel up for open sale. Fire-and-forget.
func (c *Client) ListLand(x, y int, priceCents int64) {
	c.fireAndForget(protocol.ListLandMsg{
		Type:            protocol.TypeListLand,
		ProtocolVersion: protocol.Version,
		X:               x,
		Y:               y,
		PriceCents:      priceCents,
	})
}

// RequestSpend forwards an opaque spend payload. Fire-and-forget.
func (c *Client) RequestSpend(payload []byte) {
	c.fireAndForget(protocol.SpendMsg{
		Type:            protocol.TypeSpend,
		ProtocolVersion: protocol.Version,
		Payload:         payload,
	})
}

func (c *Client) fireAndForget(v any) {
	if err := c.send(v); err != nil {
		if errors.Is(err, ErrNotConnected) {
			return
		}
		c.log.Printf("send failed: %v", err)
	}
}

func (c *Client) send(v any) error {
	c.mu.RLock()
	conn, st := c.conn, c.state
	c.mu.RUnlock()
	if st != StateConnected || conn == nil {
		return ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.state == StateClosed && s != StateClosed {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.state = s
	c.mu.Unlock()
	if prev != s {
		c.log.Printf("state %s -> %s", prev, s)
	}
}

func (c *Client) dropConn() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Client) run() {
	defer close(c.done)

	backoff := initialBackoff
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		c.setState(StateConnecting)
		authed, err := c.connectAndReadLoop()
		c.dropConn()
		c.failAllPending(protocol.FailConnectionLost, "connection lost")
		if authed {
			c.obs.Disconnected(err)
			backoff = initialBackoff
		}
		if err == nil || errors.Is(err, errServerShutdown) {
			c.setState(StateClosed)
			return
		}

		select {
		case <-c.stop:
			return
		default:
		}
		c.setState(StateReconnecting)
		c.log.Printf("reconnect in ~%v: %v", backoff, err)
		select {
		case <-c.stop:
			return
		case <-time.After(jitter(backoff)):
		}
		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// jitter spreads a delay by +/-20% so a fleet of agents does not stampede a
// restarting server.
func jitter(d time.Duration) time.Duration {
	f := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * f)
}

// connectAndReadLoop runs one connection from dial to death. authed reports
// whether the AUTH handshake completed (and the Connected callback fired).
func (c *Client) connectAndReadLoop() (authed bool, err error) {
	d := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, resp, err := d.Dial(c.cfg.ServerURL, http.Header{})
	if err != nil {
		return false, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.setState(StateAuthenticating)
	auth := protocol.AuthMsg{
		Type:            protocol.TypeAuth,
		ProtocolVersion: protocol.Version,
		APIKey:          c.cfg.APIKey,
		AgentID:         c.cfg.AgentID,
		AgentName:       c.cfg.AgentName,
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(auth); err != nil {
		_ = conn.Close()
		return false, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(authTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return false, err
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeAuthAck {
		_ = conn.Close()
		return false, fmt.Errorf("expected %s, got %q", protocol.TypeAuthAck, base.Type)
	}
	var ack protocol.AuthAckMsg
	if err := json.Unmarshal(msg, &ack); err != nil {
		_ = conn.Close()
		return false, err
	}
	if !ack.OK {
		_ = conn.Close()
		return false, fmt.Errorf("auth denied: %s %s", ack.Code, ack.Message)
	}

	now := time.Now()
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		_ = conn.Close()
		return false, nil
	}
	c.conn = conn
	c.lastAck = now
	c.mu.Unlock()
	c.setState(StateConnected)
	c.obs.Connected()

	hbStop := make(chan struct{})
	go c.heartbeatLoop(conn, hbStop)
	defer close(hbStop)

	readWindow := c.cfg.HeartbeatInterval * (heartbeatMissFactor + 1)
	for {
		select {
		case <-c.stop:
			_ = conn.Close()
			return true, nil
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(readWindow))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			return true, err
		}
		if err := c.dispatch(msg); err != nil {
			_ = conn.Close()
			return true, err
		}
	}
}

// heartbeatLoop sends HEARTBEAT frames while the connection lives and kills
// it when the server stops acknowledging them.
func (c *Client) heartbeatLoop(conn *websocket.Conn, hbStop chan struct{}) {
	t := time.NewTicker(c.cfg.HeartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-hbStop:
			return
		case <-t.C:
			c.mu.RLock()
			silent := time.Since(c.lastAck)
			c.mu.RUnlock()
			if silent > heartbeatMissFactor*c.cfg.HeartbeatInterval {
				c.log.Printf("heartbeat timeout after %v, dropping connection", silent.Round(time.Millisecond))
				_ = conn.Close()
				return
			}
			hb := protocol.HeartbeatMsg{
				Type:            protocol.TypeHeartbeat,
				ProtocolVersion: protocol.Version,
				SentAtUnixMS:    time.Now().UnixMilli(),
			}
			c.writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteJSON(hb)
			c.writeMu.Unlock()
			if err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// dispatch routes one inbound frame. Malformed or unrecognized frames are
// logged and dropped; the connection stays up. A non-nil error tears the
// connection down.
func (c *Client) dispatch(msg []byte) error {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		c.log.Printf("drop malformed frame: %v", err)
		return nil
	}

	switch base.Type {
	case protocol.TypeWorldUpdate:
		var m protocol.WorldUpdateMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			c.log.Printf("drop bad %s: %v", base.Type, err)
			return nil
		}
		c.mu.Lock()
		c.posX, c.posY = m.World.X, m.World.Y
		c.hasPos = true
		c.mu.Unlock()
		c.obs.WorldUpdated(m.World)

	case protocol.TypeLandClaimed:
		var m protocol.LandClaimedMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			c.log.Printf("drop bad %s: %v", base.Type, err)
			return nil
		}
		if m.OwnerAgentID == c.cfg.AgentID {
			c.resolveClaim(m.X, m.Y, ClaimResult{Success: true, X: m.X, Y: m.Y})
		}
		c.obs.LandClaimed(m)

	case protocol.TypeLandClaimDenied:
		var m protocol.LandClaimDeniedMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			c.log.Printf("drop bad %s: %v", base.Type, err)
			return nil
		}
		c.resolveClaim(m.X, m.Y, ClaimResult{X: m.X, Y: m.Y, Code: m.Code, Reason: m.Reason})
		c.obs.LandClaimDenied(m)

	case protocol.TypeLandTradeComplete:
		var m protocol.LandTradeCompleteMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			c.log.Printf("drop bad %s: %v", base.Type, err)
			return nil
		}
		c.obs.LandTradeCompleted(m)

	case protocol.TypeTransferReceived:
		var m protocol.TransferReceivedMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			c.log.Printf("drop bad %s: %v", base.Type, err)
			return nil
		}
		c.obs.TransferReceived(m)

	case protocol.TypeServerCommand:
		var m protocol.ServerCommandMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			c.log.Printf("drop bad %s: %v", base.Type, err)
			return nil
		}
		c.obs.ServerCommand(m)
		if m.Command == protocol.CommandShutdown {
			c.log.Printf("server command: shutdown")
			return errServerShutdown
		}

	case protocol.TypeHeartbeatAck:
		c.mu.Lock()
		c.lastAck = time.Now()
		c.mu.Unlock()

	default:
		c.log.Printf("drop unrecognized frame type %q", base.Type)
	}
	return nil
}
