package world

import (
	"fmt"

	"voidrift.gg/internal/protocol"
)

// applyAct executes the pilot's commands in order. Each command gets its
// own CMD_RESULT; one failing never blocks the rest of the batch.
func (w *World) applyAct(s *Ship, act protocol.ActMsg, nowTick uint64) {
	for _, cmd := range act.Cmds {
		err := w.applyCmd(s, cmd)
		res := protocol.CmdResultEvent{Tick: nowTick, Ref: cmd.ID, OK: err == nil}
		if err != nil {
			res.Code = errCode(err)
			res.Message = err.Error()
		}
		w.emit(res)
	}
}

func (w *World) applyCmd(s *Ship, cmd protocol.CmdReq) error {
	switch cmd.Type {
	case protocol.CmdSetDestination:
		if cmd.Dest == nil {
			return fmt.Errorf("dest required")
		}
		s.SetDestination(Vec2{X: cmd.Dest[0], Y: cmd.Dest[1]})
		return nil

	case protocol.CmdSetSpeed:
		if cmd.Speed < 0 {
			return fmt.Errorf("speed must be >= 0")
		}
		s.DesiredSpeed = cmd.Speed
		return nil

	case protocol.CmdLockTarget:
		if cmd.TargetID == "" {
			return ErrNoTarget
		}
		if w.liveShip(cmd.TargetID) == nil && w.asteroids[cmd.TargetID] == nil {
			return ErrNoTarget
		}
		s.TargetID = cmd.TargetID
		return nil

	case protocol.CmdUnlockTarget:
		s.TargetID = ""
		return nil

	case protocol.CmdActivate:
		ref, err := ParseSlotRef(cmd.Slot)
		if err != nil {
			return ErrEmptySlot
		}
		return w.ActivateModule(s, ref)

	case protocol.CmdDeactivate:
		ref, err := ParseSlotRef(cmd.Slot)
		if err != nil {
			return ErrEmptySlot
		}
		w.DeactivateModule(s, ref, "manual")
		return nil

	case protocol.CmdRoutePower:
		switch PowerRouting(cmd.Power) {
		case PowerBalanced, PowerEngines, PowerWeapons:
			s.Power = PowerRouting(cmd.Power)
			return nil
		}
		return fmt.Errorf("bad power routing %q", cmd.Power)

	case protocol.CmdWarp:
		return w.Warp(s, cmd.SectorID)

	case protocol.CmdLaunchDrones:
		return s.LaunchDrones(cmd.Count)

	case protocol.CmdRecallDrones:
		s.RecallDrones()
		return nil

	case protocol.CmdLootWreck:
		return w.LootWreck(s, cmd.WreckID)

	case protocol.CmdFleetOrder:
		switch FleetOrder(cmd.Order) {
		case OrderFollow, OrderHold, OrderDefend:
			s.AI.Order = FleetOrder(cmd.Order)
			w.FleetOrderAll(s.ID, FleetOrder(cmd.Order))
			return nil
		}
		return fmt.Errorf("bad fleet order %q", cmd.Order)

	case protocol.CmdAcceptBounty:
		return w.AcceptBounty(cmd.BountyID)

	case protocol.CmdAcceptMission:
		return w.AcceptMission(cmd.MissionID)

	case protocol.CmdStartJob:
		return w.StartJob(s, cmd.BlueprintID)

	case protocol.CmdCancelJob:
		return w.CancelJob(s, cmd.JobID)

	case protocol.CmdDeliverCargo:
		if cmd.Item == "" || cmd.Amount <= 0 {
			return fmt.Errorf("item and amount required")
		}
		return w.DeliverCargo(s, cmd.Item, cmd.Amount)

	case protocol.CmdLaunchFleet:
		return w.LaunchFleetShip(s)

	case protocol.CmdDockFleet:
		return w.DockFleetShip(s, cmd.TargetID)
	}
	return fmt.Errorf("unknown command %q", cmd.Type)
}
