package protocol

import (
	"encoding/json"

	"landrush.ai/internal/world"
)

// AUTH (client -> server)
type AuthMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	APIKey          string `json:"api_key"`
	AgentID         string `json:"agent_id"`
	AgentName       string `json:"agent_name,omitempty"`
}

// AUTH_ACK (server -> client)
type AuthAckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	OK              bool   `json:"ok"`
	AgentID         string `json:"agent_id,omitempty"`
	AgentName       string `json:"agent_name,omitempty"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

// WORLD_UPDATE (server -> client): full replacement snapshot.
type WorldUpdateMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	World           world.Snapshot `json:"world"`
}

// MOVE (client -> server)
type MoveMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Direction       string `json:"direction"`
}

// CLAIM_LAND (client -> server)
type ClaimLandMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
}

// LAND_CLAIMED (server -> client): claim confirmation, also broadcast when
// other agents claim nearby parcels.
type LandClaimedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	OwnerAgentID    string `json:"owner_agent_id"`
	Message         string `json:"message,omitempty"`
}

// LAND_CLAIM_DENIED (server -> client)
type LandClaimDeniedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	Code            string `json:"code"`
	Reason          string `json:"reason,omitempty"`
}

// OFFER_LAND (client -> server): direct offer to one agent.
type OfferLandMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	ToAgentID       string `json:"to_agent_id"`
	PriceCents      int64  `json:"price_cents"`
}

// LIST_LAND (client -> server): open listing at a price.
type ListLandMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	PriceCents      int64  `json:"price_cents"`
}

// SPEND_REQUEST (client -> server): opaque spend payload, interpreted
// server-side.
type SpendMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Payload         json.RawMessage `json:"payload"`
}

// LAND_TRADE_COMPLETE (server -> client)
type LandTradeCompleteMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	FromAgentID     string `json:"from_agent_id"`
	ToAgentID       string `json:"to_agent_id"`
	PriceCents      int64  `json:"price_cents"`
}

// TRANSFER_RECEIVED (server -> client)
type TransferReceivedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	FromAgentID     string `json:"from_agent_id"`
	AmountCents     int64  `json:"amount_cents"`
	Memo            string `json:"memo,omitempty"`
}

// SERVER_COMMAND (server -> client): interpreted locally by the client.
type ServerCommandMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Command         string `json:"command"`
	Args            string `json:"args,omitempty"`
}

// Server commands the client understands.
const CommandShutdown = "shutdown"

// HEARTBEAT (client -> server)
type HeartbeatMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SentAtUnixMS    int64  `json:"sent_at_unix_ms"`
}

// HEARTBEAT_ACK (server -> client)
type HeartbeatAckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}
