package tools

import (
	"fmt"
)

// offerBestLand is local business policy, not a protocol contract: offer
// the owned parcel closest to the nearest agent, priced by Manhattan
// distance on top of the base price.
func (r *Registry) offerBestLand() (string, error) {
	snap, ok := r.cache.World()
	if !ok {
		return "", fmt.Errorf("offer_best_land: no world snapshot yet")
	}
	if len(snap.OwnedLand) == 0 {
		return "no parcels owned, nothing to offer", nil
	}
	if len(snap.NearbyAgents) == 0 {
		return "no agents nearby to offer to", nil
	}

	buyer := snap.NearbyAgents[0]
	best := manhattan(snap.X, snap.Y, buyer.X, buyer.Y)
	for _, a := range snap.NearbyAgents[1:] {
		if d := manhattan(snap.X, snap.Y, a.X, a.Y); d < best {
			buyer, best = a, d
		}
	}

	parcel := snap.OwnedLand[0]
	best = manhattan(parcel.X, parcel.Y, buyer.X, buyer.Y)
	for _, p := range snap.OwnedLand[1:] {
		if d := manhattan(p.X, p.Y, buyer.X, buyer.Y); d < best {
			parcel, best = p, d
		}
	}

	price := r.basePriceCents + int64(best)*r.basePriceCents/2
	r.actions.OfferLand(parcel.X, parcel.Y, buyer.AgentID, price)
	return fmt.Sprintf("offered (%d,%d) to %s for %d cents (distance %d)",
		parcel.X, parcel.Y, buyer.AgentID, price, best), nil
}

func manhattan(x1, y1, x2, y2 int) int {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
