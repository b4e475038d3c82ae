package client

import (
	"context"
	"time"

	"landrush.ai/internal/protocol"
)

// ClaimResult is the single resolution of one ClaimLandAndWait call.
// Success carries the claimed coordinates; failure carries a stable code
// (server denial codes pass through verbatim, client-side codes are
// protocol.FailTimeout and protocol.FailConnectionLost) plus a human reason.
type ClaimResult struct {
	Success bool   `json:"success"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// pendingClaim correlates one outbound CLAIM_LAND with its eventual
// confirmation or denial, matched by coordinates. The record is removed
// from the pending list under pendingMu by whichever path resolves it
// first; only the remover sends on ch, so resolution happens exactly once.
type pendingClaim struct {
	x, y int
	ch   chan ClaimResult
}

// ClaimLandAndWait issues a claim at the agent's current position and
// blocks until a matching confirmation, a matching denial, the claim
// timeout, ctx cancellation, or client close — whichever comes first.
// Concurrent calls are independent; each gets its own correlation record.
func (c *Client) ClaimLandAndWait(ctx context.Context) (ClaimResult, error) {
	if !c.IsConnected() {
		return ClaimResult{}, ErrNotConnected
	}
	x, y, ok := c.Position()
	if !ok {
		return ClaimResult{}, ErrNoPosition
	}

	p := &pendingClaim{x: x, y: y, ch: make(chan ClaimResult, 1)}
	c.pendingMu.Lock()
	c.pending = append(c.pending, p)
	c.pendingMu.Unlock()

	err := c.send(protocol.ClaimLandMsg{
		Type:            protocol.TypeClaimLand,
		ProtocolVersion: protocol.Version,
		X:               x,
		Y:               y,
	})
	if err != nil {
		if c.take(p) {
			return ClaimResult{}, err
		}
		// A response raced the send error; honor it.
		return <-p.ch, nil
	}

	timer := time.NewTimer(c.cfg.ClaimTimeout)
	defer timer.Stop()

	select {
	case res := <-p.ch:
		return res, nil
	case <-timer.C:
		if c.take(p) {
			return ClaimResult{X: x, Y: y, Code: protocol.FailTimeout, Reason: "no server reply within deadline"}, nil
		}
		// The response won the race with the timer; it is already in ch.
		return <-p.ch, nil
	case <-ctx.Done():
		if c.take(p) {
			return ClaimResult{}, ctx.Err()
		}
		return <-p.ch, nil
	case <-c.stop:
		if c.take(p) {
			return ClaimResult{X: x, Y: y, Code: protocol.FailConnectionLost, Reason: "client closed"}, nil
		}
		return <-p.ch, nil
	}
}

// resolveClaim resolves the oldest outstanding claim for (x, y), if any.
// Responses with no matching record are ignored, never misattributed.
func (c *Client) resolveClaim(x, y int, res ClaimResult) {
	c.pendingMu.Lock()
	var match *pendingClaim
	for i, p := range c.pending {
		if p.x == x && p.y == y {
			match = p
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.pendingMu.Unlock()
	if match != nil {
		match.ch <- res
	}
}

// failAllPending resolves every outstanding claim with a failure code.
// Used on connection loss and on close.
func (c *Client) failAllPending(code, reason string) {
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = nil
	c.pendingMu.Unlock()
	for _, p := range pending {
		p.ch <- ClaimResult{X: p.x, Y: p.y, Code: code, Reason: reason}
	}
}

// take removes p from the pending list, reporting whether the caller now
// owns its resolution.
func (c *Client) take(p *pendingClaim) bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for i, q := range c.pending {
		if q == p {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return true
		}
	}
	return false
}
