package agent

import (
	"fmt"
	"time"

	"landrush.ai/internal/protocol"
	"landrush.ai/internal/world"
)

// observer adapts the Service to the client's Observer interface. Methods
// run on the client's read goroutine, so they only stash state and nudge
// the scheduler; the actual decision work happens on the scheduler's
// goroutine.
type observer Service

func (o *observer) Connected() {
	s := (*Service)(o)
	if err := s.status.SetConnected(time.Now()); err != nil {
		s.log.Printf("status export: %v", err)
	}
}

func (o *observer) Disconnected(err error) {
	s := (*Service)(o)
	if serr := s.status.SetDisconnected(time.Now()); serr != nil {
		s.log.Printf("status export: %v", serr)
	}
}

func (o *observer) WorldUpdated(snap world.Snapshot) {
	(*Service)(o).cache.UpdateWorld(snap)
}

func (o *observer) LandClaimed(msg protocol.LandClaimedMsg) {
	s := (*Service)(o)
	s.recordEvent(world.EventLandClaimed,
		fmt.Sprintf("parcel (%d,%d) claimed by %s", msg.X, msg.Y, msg.OwnerAgentID))
}

func (o *observer) LandClaimDenied(msg protocol.LandClaimDeniedMsg) {
	s := (*Service)(o)
	s.recordEvent(world.EventLandClaimDenied,
		fmt.Sprintf("claim on (%d,%d) denied: %s", msg.X, msg.Y, msg.Reason))
}

func (o *observer) LandTradeCompleted(msg protocol.LandTradeCompleteMsg) {
	s := (*Service)(o)
	s.recordEvent(world.EventTradeComplete,
		fmt.Sprintf("parcel (%d,%d) traded from %s to %s for %d cents", msg.X, msg.Y, msg.FromAgentID, msg.ToAgentID, msg.PriceCents))
}

func (o *observer) TransferReceived(msg protocol.TransferReceivedMsg) {
	s := (*Service)(o)
	s.recordEvent(world.EventTransferReceived,
		fmt.Sprintf("received %d cents from %s", msg.AmountCents, msg.FromAgentID))
}

func (o *observer) ServerCommand(msg protocol.ServerCommandMsg) {
	s := (*Service)(o)
	s.log.Printf("server command: %s", msg.Command)
	if msg.Command == protocol.CommandShutdown {
		// Stop blocks on the client's read goroutine finishing, which is
		// the goroutine we are on. Hand it off.
		go s.Stop()
	}
}

// recordEvent puts a world event into the cache and the journal, then asks
// the scheduler for a reactive decision.
func (s *Service) recordEvent(kind, summary string) {
	now := time.Now()
	s.cache.PushEvent(world.Event{Type: kind, Summary: summary, At: now})
	s.journal.RecordEvent(now, kind, summary)
	s.log.Printf("event %s: %s", kind, summary)
	s.sched.Trigger()
}
