package world

import "time"

// Snapshot is the agent's view of the world as of the last server push.
// It is replaced wholesale on every WORLD_UPDATE; fields are never merged
// across updates.
type Snapshot struct {
	GridW        int            `json:"grid_w"`
	GridH        int            `json:"grid_h"`
	X            int            `json:"x"`
	Y            int            `json:"y"`
	BalanceCents int64          `json:"balance_cents"`
	OwnedLand    []LandParcel   `json:"owned_land"`
	NearbyLand   []LandParcel   `json:"nearby_land"`
	NearbyAgents []AgentSummary `json:"nearby_agents"`
	KnownAgents  []AgentSummary `json:"known_agents"`
}

// LandParcel is a single grid cell. Uniqueness key is (X, Y).
type LandParcel struct {
	X            int    `json:"x"`
	Y            int    `json:"y"`
	OwnerAgentID string `json:"owner_agent_id,omitempty"`
}

// AgentSummary describes another agent as reported by the server.
type AgentSummary struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Status  string `json:"status,omitempty"`
}

// Event kinds recorded in the cache log.
const (
	EventLandClaimed      = "LAND_CLAIMED"
	EventLandClaimDenied  = "LAND_CLAIM_DENIED"
	EventTradeComplete    = "LAND_TRADE_COMPLETE"
	EventTransferReceived = "TRANSFER_RECEIVED"
)

// Event is one append-only log entry describing a notable occurrence.
type Event struct {
	Type    string    `json:"type"`
	Summary string    `json:"summary"`
	At      time.Time `json:"at"`
}
