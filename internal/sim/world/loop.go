package world

import (
	"context"
	"fmt"
	"sort"
	"time"

	"voidrift.gg/internal/protocol"
	"voidrift.gg/internal/sim/catalogs"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.tune.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingActions []ActionEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			w.stepInternal(pendingJoins, pendingLeaves, pendingActions)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingActions = pendingActions[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick using the same ordering
// semantics as the server loop. It is primarily intended for deterministic
// replays and tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, actions []ActionEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.stepInternal(joins, leaves, actions)
	return tick, w.stateDigest(tick)
}

func (w *World) joinPilot(name, shipClass string, out chan []byte) JoinResponse {
	if w.client != nil {
		return JoinResponse{Err: fmt.Errorf("pilot session already attached")}
	}
	if w.playerID == "" {
		if shipClass == "" {
			shipClass = firstShipClass(w.cats)
		}
		def, ok := w.cats.Ships.ByID[shipClass]
		if !ok {
			return JoinResponse{Err: fmt.Errorf("unknown ship class %q", shipClass)}
		}
		secDef := w.cats.Sectors.ByID[w.sectorID]
		s := NewShip(w.nextShipID(), def, secDef.Faction, Neutral, RolePlayer, w.stationPos())
		s.Name = name
		w.ships[s.ID] = s
		w.playerID = s.ID
	}
	w.client = &clientState{shipID: w.playerID, out: out}
	return JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ShipID:          w.playerID,
		SectorID:        w.sectorID,
		Params: protocol.SimParams{
			TickRateHz:        w.tune.TickRateHz,
			DecisionEveryTick: w.tune.DecisionEveryTicks,
			Seed:              w.cfg.Seed,
			GalaxyID:          w.cfg.GalaxyID,
		},
		Catalogs: protocol.CatalogDigests{
			ShipsDigest:      w.cats.Ships.Digest,
			ModulesDigest:    w.cats.Modules.Digest,
			FactionsDigest:   w.cats.Factions.Digest,
			SectorsDigest:    w.cats.Sectors.Digest,
			BountiesDigest:   w.cats.Bounties.Digest,
			MissionsDigest:   w.cats.Missions.Digest,
			BlueprintsDigest: w.cats.Blueprints.Digest,
		},
	}}
}

func firstShipClass(cats *catalogs.Catalogs) string {
	ids := make([]string, 0, len(cats.Ships.ByID))
	for id := range cats.Ships.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (w *World) handleLeave(shipID string) {
	if w.client != nil && w.client.shipID == shipID {
		w.client = nil
	}
}

// sendLatest delivers b without blocking the loop; when the client is slow
// the oldest frame is dropped to make room.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
