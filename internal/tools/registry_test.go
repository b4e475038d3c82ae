package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"landrush.ai/internal/client"
	"landrush.ai/internal/protocol"
	"landrush.ai/internal/world"
)

type fakeActions struct {
	moves     []string
	offers    []string
	lists     []string
	spends    []string
	claimRes  client.ClaimResult
	claimErr  error
	connected bool
}

func (f *fakeActions) Move(d string) { f.moves = append(f.moves, d) }
func (f *fakeActions) ClaimLandAndWait(context.Context) (client.ClaimResult, error) {
	return f.claimRes, f.claimErr
}
func (f *fakeActions) OfferLand(x, y int, to string, price int64) {
	f.offers = append(f.offers, to)
}
func (f *fakeActions) ListLand(x, y int, price int64) { f.lists = append(f.lists, "listed") }
func (f *fakeActions) RequestSpend(p []byte)          { f.spends = append(f.spends, string(p)) }
func (f *fakeActions) IsConnected() bool              { return f.connected }

type fakeCache struct {
	snap world.Snapshot
	ok   bool
}

func (f *fakeCache) World() (world.Snapshot, bool) { return f.snap, f.ok }

func TestParseDirection(t *testing.T) {
	cases := map[string]Direction{
		"up": DirUp, "UP": DirUp, " Down ": DirDown,
		"lEfT": DirLeft, "right": DirRight,
	}
	for in, want := range cases {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Fatalf("ParseDirection(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "north", "upp", "u"} {
		if _, err := ParseDirection(in); err == nil {
			t.Fatalf("ParseDirection(%q): expected error", in)
		}
	}
}

func TestMoveToolNormalizesAndDispatches(t *testing.T) {
	fa := &fakeActions{connected: true}
	r := NewRegistry(fa, &fakeCache{}, 0)

	out, err := r.Execute(context.Background(), "move", json.RawMessage(`{"direction":"UP"}`))
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if out != "moving up" {
		t.Fatalf("unexpected result: %q", out)
	}
	if len(fa.moves) != 1 || fa.moves[0] != "up" {
		t.Fatalf("direction not normalized: %v", fa.moves)
	}
}

func TestMoveToolRejectsInvalidDirection(t *testing.T) {
	fa := &fakeActions{}
	r := NewRegistry(fa, &fakeCache{}, 0)

	if _, err := r.Execute(context.Background(), "move", json.RawMessage(`{"direction":"sideways"}`)); err == nil {
		t.Fatalf("expected error for invalid direction")
	}
	if len(fa.moves) != 0 {
		t.Fatalf("invalid direction must not dispatch: %v", fa.moves)
	}
}

func TestClaimToolReportsDenialVerbatim(t *testing.T) {
	fa := &fakeActions{claimRes: client.ClaimResult{
		X: 5, Y: 5, Code: protocol.DenyInsufficientBalance, Reason: "need 200 more cents",
	}}
	r := NewRegistry(fa, &fakeCache{}, 0)

	out, err := r.Execute(context.Background(), "claim_land", nil)
	if err != nil {
		t.Fatalf("claim_land: %v", err)
	}
	if !strings.Contains(out, protocol.DenyInsufficientBalance) || !strings.Contains(out, "need 200 more cents") {
		t.Fatalf("denial not passed through: %q", out)
	}
}

func TestClaimToolReportsSuccess(t *testing.T) {
	fa := &fakeActions{claimRes: client.ClaimResult{Success: true, X: 3, Y: 9}}
	r := NewRegistry(fa, &fakeCache{}, 0)

	out, err := r.Execute(context.Background(), "claim_land", nil)
	if err != nil {
		t.Fatalf("claim_land: %v", err)
	}
	if out != "claimed parcel (3,9)" {
		t.Fatalf("unexpected result: %q", out)
	}
}

func TestOfferLandValidatesArguments(t *testing.T) {
	r := NewRegistry(&fakeActions{}, &fakeCache{}, 0)
	for _, args := range []string{
		`{"x":1,"y":2,"price_cents":100}`,                      // missing agent
		`{"x":1,"y":2,"to_agent_id":"A2","price_cents":0}`,     // bad price
		`{"x":1,"y":2,"to_agent_id":"A2","price_cents":"ten"}`, // wrong type
	} {
		if _, err := r.Execute(context.Background(), "offer_land", json.RawMessage(args)); err == nil {
			t.Fatalf("expected error for args %s", args)
		}
	}
}

func TestOfferBestLandPicksNearestAgentAndParcel(t *testing.T) {
	fa := &fakeActions{}
	cache := &fakeCache{ok: true, snap: world.Snapshot{
		X: 0, Y: 0,
		OwnedLand: []world.LandParcel{{X: 0, Y: 9}, {X: 2, Y: 2}},
		NearbyAgents: []world.AgentSummary{
			{AgentID: "far", X: 10, Y: 10},
			{AgentID: "near", X: 1, Y: 1},
		},
	}}
	r := NewRegistry(fa, cache, 100)

	out, err := r.Execute(context.Background(), "offer_best_land", nil)
	if err != nil {
		t.Fatalf("offer_best_land: %v", err)
	}
	if len(fa.offers) != 1 || fa.offers[0] != "near" {
		t.Fatalf("expected offer to nearest agent, got %v", fa.offers)
	}
	// Parcel (2,2) is distance 2 from (1,1): price 100 + 2*50.
	if !strings.Contains(out, "(2,2)") || !strings.Contains(out, "200 cents") {
		t.Fatalf("unexpected result: %q", out)
	}
}

func TestUnknownToolErrors(t *testing.T) {
	r := NewRegistry(&fakeActions{}, &fakeCache{}, 0)
	if _, err := r.Execute(context.Background(), "teleport", nil); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestStatusTool(t *testing.T) {
	fa := &fakeActions{connected: true}
	cache := &fakeCache{ok: true, snap: world.Snapshot{X: 4, Y: 2, BalanceCents: 900,
		OwnedLand: []world.LandParcel{{X: 4, Y: 2}}}}
	r := NewRegistry(fa, cache, 0)

	out, err := r.Execute(context.Background(), "status", nil)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"connected", "(4,2)", "900", "1 parcels"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status missing %q: %q", want, out)
		}
	}
}
