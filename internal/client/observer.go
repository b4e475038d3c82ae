package client

import (
	"landrush.ai/internal/protocol"
	"landrush.ai/internal/world"
)

// Observer receives connection lifecycle changes and inbound server
// messages, one method per kind. All methods are invoked from the client's
// own goroutine; implementations must not block for long and must not call
// back into blocking client operations.
type Observer interface {
	Connected()
	Disconnected(err error)

	WorldUpdated(snapshot world.Snapshot)
	LandClaimed(msg protocol.LandClaimedMsg)
	LandClaimDenied(msg protocol.LandClaimDeniedMsg)
	LandTradeCompleted(msg protocol.LandTradeCompleteMsg)
	TransferReceived(msg protocol.TransferReceivedMsg)
	ServerCommand(msg protocol.ServerCommandMsg)
}

// NopObserver implements Observer with no-ops, for embedding in tests and
// partial listeners.
type NopObserver struct{}

func (NopObserver) Connected()                                    {}
func (NopObserver) Disconnected(error)                            {}
func (NopObserver) WorldUpdated(world.Snapshot)                   {}
func (NopObserver) LandClaimed(protocol.LandClaimedMsg)           {}
func (NopObserver) LandClaimDenied(protocol.LandClaimDeniedMsg)   {}
func (NopObserver) LandTradeCompleted(protocol.LandTradeCompleteMsg) {}
func (NopObserver) TransferReceived(protocol.TransferReceivedMsg) {}
func (NopObserver) ServerCommand(protocol.ServerCommandMsg)       {}
