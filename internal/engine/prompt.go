package engine

import (
	"fmt"
	"strings"
	"time"

	"landrush.ai/internal/world"
)

// SystemPrompt is the static rules text sent with every decision request.
const SystemPrompt = `You are an autonomous agent living on a shared land grid.
You can move around, claim the parcel you stand on, offer or list parcels
you own for sale, and request spending. Land costs money; your balance is
tracked in cents. Act through the provided tools. Prefer claiming cheap
unowned parcels near your position, and sell parcels you do not need.
Call at most a few tools per turn.`

// BuildPrompt formats the current snapshot and recent events for the
// decision engine. Thin formatting only; no policy lives here.
func BuildPrompt(snap world.Snapshot, haveWorld bool, events []world.Event) string {
	var b strings.Builder
	if !haveWorld {
		b.WriteString("No world snapshot received yet. Wait for one before acting.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Grid: %dx%d. You are at (%d,%d). Balance: %d.%02d.\n",
		snap.GridW, snap.GridH, snap.X, snap.Y, snap.BalanceCents/100, snap.BalanceCents%100)

	fmt.Fprintf(&b, "Owned parcels (%d):", len(snap.OwnedLand))
	for _, p := range snap.OwnedLand {
		fmt.Fprintf(&b, " (%d,%d)", p.X, p.Y)
	}
	b.WriteString("\n")

	if len(snap.NearbyLand) > 0 {
		b.WriteString("Nearby parcels:\n")
		for _, p := range snap.NearbyLand {
			owner := p.OwnerAgentID
			if owner == "" {
				owner = "unowned"
			}
			fmt.Fprintf(&b, "  (%d,%d) %s\n", p.X, p.Y, owner)
		}
	}

	if len(snap.NearbyAgents) > 0 {
		b.WriteString("Nearby agents:\n")
		for _, a := range snap.NearbyAgents {
			fmt.Fprintf(&b, "  %s (%s) at (%d,%d) %s\n", a.Name, a.AgentID, a.X, a.Y, a.Status)
		}
	}

	if len(events) > 0 {
		b.WriteString("Recent events:\n")
		for _, ev := range events {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", ev.At.Format(time.TimeOnly), ev.Type, ev.Summary)
		}
	}

	b.WriteString("Decide your next action.\n")
	return b.String()
}
