// Package tools exposes the outbound world actions as callable tools for
// the decision engine. Each entry point validates primitive arguments and
// returns a short human-readable result; server denial codes and reasons
// pass through verbatim.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"landrush.ai/internal/client"
	"landrush.ai/internal/engine"
	"landrush.ai/internal/protocol"
	"landrush.ai/internal/world"
)

// Actions is the slice of the connection client the tools call into.
type Actions interface {
	Move(direction string)
	ClaimLandAndWait(ctx context.Context) (client.ClaimResult, error)
	OfferLand(x, y int, toAgentID string, priceCents int64)
	ListLand(x, y int, priceCents int64)
	RequestSpend(payload []byte)
	IsConnected() bool
}

// WorldReader is the read-only cache view used by the status tool and the
// offer heuristic.
type WorldReader interface {
	World() (world.Snapshot, bool)
}

type Registry struct {
	actions Actions
	cache   WorldReader

	// basePriceCents anchors the auto-pricing heuristic of offer_best_land.
	basePriceCents int64
}

func NewRegistry(actions Actions, cache WorldReader, basePriceCents int64) *Registry {
	if basePriceCents <= 0 {
		basePriceCents = 100
	}
	return &Registry{actions: actions, cache: cache, basePriceCents: basePriceCents}
}

// Definitions lists the tools in the engine's function-calling format.
func (r *Registry) Definitions() []engine.ToolDefinition {
	return []engine.ToolDefinition{
		{
			Name:        "move",
			Description: "Move one cell up, down, left or right.",
			Parameters: json.RawMessage(`{"type":"object","properties":{
				"direction":{"type":"string","enum":["up","down","left","right"]}},
				"required":["direction"]}`),
		},
		{
			Name:        "claim_land",
			Description: "Claim the parcel you are standing on. Waits for the server's confirmation or denial.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
		{
			Name:        "offer_land",
			Description: "Offer one of your parcels to a specific agent at a price in cents.",
			Parameters: json.RawMessage(`{"type":"object","properties":{
				"x":{"type":"integer"},"y":{"type":"integer"},
				"to_agent_id":{"type":"string"},"price_cents":{"type":"integer"}},
				"required":["x","y","to_agent_id","price_cents"]}`),
		},
		{
			Name:        "list_land",
			Description: "List one of your parcels for open sale at a price in cents.",
			Parameters: json.RawMessage(`{"type":"object","properties":{
				"x":{"type":"integer"},"y":{"type":"integer"},
				"price_cents":{"type":"integer"}},
				"required":["x","y","price_cents"]}`),
		},
		{
			Name:        "offer_best_land",
			Description: "Offer your parcel closest to the nearest agent, priced by distance.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
		{
			Name:        "request_spend",
			Description: "Ask the server to spend balance on your behalf; payload is passed through.",
			Parameters: json.RawMessage(`{"type":"object","properties":{
				"payload":{"type":"object"}},"required":["payload"]}`),
		},
		{
			Name:        "status",
			Description: "Report connection state, position and balance.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
	}
}

// Execute runs one named tool. Unknown names and invalid arguments return
// errors; action outcomes (including denials) are text results.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	switch name {
	case "move":
		var a struct {
			Direction string `json:"direction"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("move: %w", err)
		}
		dir, err := ParseDirection(a.Direction)
		if err != nil {
			return "", err
		}
		r.actions.Move(string(dir))
		return fmt.Sprintf("moving %s", dir), nil

	case "claim_land":
		res, err := r.actions.ClaimLandAndWait(ctx)
		if err != nil {
			return "", err
		}
		return describeClaim(res), nil

	case "offer_land":
		var a struct {
			X          int    `json:"x"`
			Y          int    `json:"y"`
			ToAgentID  string `json:"to_agent_id"`
			PriceCents int64  `json:"price_cents"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("offer_land: %w", err)
		}
		if a.ToAgentID == "" {
			return "", fmt.Errorf("offer_land: to_agent_id is required")
		}
		if a.PriceCents <= 0 {
			return "", fmt.Errorf("offer_land: price_cents must be positive")
		}
		r.actions.OfferLand(a.X, a.Y, a.ToAgentID, a.PriceCents)
		return fmt.Sprintf("offered (%d,%d) to %s for %d cents", a.X, a.Y, a.ToAgentID, a.PriceCents), nil

	case "list_land":
		var a struct {
			X          int   `json:"x"`
			Y          int   `json:"y"`
			PriceCents int64 `json:"price_cents"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("list_land: %w", err)
		}
		if a.PriceCents <= 0 {
			return "", fmt.Errorf("list_land: price_cents must be positive")
		}
		r.actions.ListLand(a.X, a.Y, a.PriceCents)
		return fmt.Sprintf("listed (%d,%d) for %d cents", a.X, a.Y, a.PriceCents), nil

	case "offer_best_land":
		return r.offerBestLand()

	case "request_spend":
		var a struct {
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("request_spend: %w", err)
		}
		if len(a.Payload) == 0 {
			return "", fmt.Errorf("request_spend: payload is required")
		}
		r.actions.RequestSpend(a.Payload)
		return "spend requested", nil

	case "status":
		return r.status(), nil

	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

func describeClaim(res client.ClaimResult) string {
	if res.Success {
		return fmt.Sprintf("claimed parcel (%d,%d)", res.X, res.Y)
	}
	switch res.Code {
	case protocol.FailTimeout:
		return fmt.Sprintf("claim at (%d,%d) timed out waiting for the server", res.X, res.Y)
	case protocol.FailConnectionLost:
		return fmt.Sprintf("claim at (%d,%d) failed: connection lost", res.X, res.Y)
	default:
		if res.Reason != "" {
			return fmt.Sprintf("claim at (%d,%d) denied: %s (%s)", res.X, res.Y, res.Code, res.Reason)
		}
		return fmt.Sprintf("claim at (%d,%d) denied: %s", res.X, res.Y, res.Code)
	}
}

func (r *Registry) status() string {
	conn := "disconnected"
	if r.actions.IsConnected() {
		conn = "connected"
	}
	snap, ok := r.cache.World()
	if !ok {
		return fmt.Sprintf("%s; no world snapshot yet", conn)
	}
	return fmt.Sprintf("%s; at (%d,%d); balance %d cents; %d parcels owned",
		conn, snap.X, snap.Y, snap.BalanceCents, len(snap.OwnedLand))
}
