package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	// client -> server
	TypeAuth      = "AUTH"
	TypeMove      = "MOVE"
	TypeClaimLand = "CLAIM_LAND"
	TypeOfferLand = "OFFER_LAND"
	TypeListLand  = "LIST_LAND"
	TypeSpend     = "SPEND_REQUEST"
	TypeHeartbeat = "HEARTBEAT"

	// server -> client
	TypeAuthAck           = "AUTH_ACK"
	TypeWorldUpdate       = "WORLD_UPDATE"
	TypeLandClaimed       = "LAND_CLAIMED"
	TypeLandClaimDenied   = "LAND_CLAIM_DENIED"
	TypeLandTradeComplete = "LAND_TRADE_COMPLETE"
	TypeTransferReceived  = "TRANSFER_RECEIVED"
	TypeServerCommand     = "SERVER_COMMAND"
	TypeHeartbeatAck      = "HEARTBEAT_ACK"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
