package world

import "math"

const arriveTolerance = 5.0

// SetDestination points the ship at dest at full throttle. Controllers and
// the player command layer both go through here.
func (s *Ship) SetDestination(dest Vec2) {
	d := dest
	s.Dest = &d
	if s.DesiredSpeed <= 0 {
		s.DesiredSpeed = s.BaseMaxSpeed
	}
}

func (s *Ship) ClearDestination() {
	s.Dest = nil
	s.DesiredSpeed = 0
}

// effectiveMaxSpeed composes every speed modifier multiplicatively on the
// base max speed. Order never matters; they are all plain scalars.
func (s *Ship) effectiveMaxSpeed(propFactor float64, tick uint64) float64 {
	return s.BaseMaxSpeed * propFactor * s.webbed(tick) * s.AuraSpeed * s.powerSpeedFactor()
}

// updateMovement accelerates toward min(desired, effective max), turns
// toward the desired heading at the ship's turn rate and integrates the
// position. Deceleration is twice the acceleration rate.
func (s *Ship) updateMovement(dt float64, tick uint64, propFactor float64) {
	if s.Destroyed {
		return
	}
	brake := math.Inf(1)
	if s.Dest != nil {
		d := Dist(s.Pos, *s.Dest)
		if d <= arriveTolerance {
			s.Dest = nil
			s.DesiredSpeed = 0
		} else {
			s.DesiredHeading = HeadingTo(s.Pos, *s.Dest)
			// Bleed speed on final approach so we do not orbit the point.
			brake = d / 2
		}
	}

	eff := s.effectiveMaxSpeed(propFactor, tick)
	want := s.DesiredSpeed
	if want > eff {
		want = eff
	}
	if want > brake {
		want = brake
	}
	if want < 0 {
		want = 0
	}
	if s.Speed < want {
		s.Speed += s.Accel * dt
		if s.Speed > want {
			s.Speed = want
		}
	} else if s.Speed > want {
		s.Speed -= 2 * s.Accel * dt
		if s.Speed < want {
			s.Speed = want
		}
	}

	s.Heading = turnToward(s.Heading, s.DesiredHeading, s.TurnRate*dt)
	if s.Speed > 0 {
		s.Pos.X += math.Cos(s.Heading) * s.Speed * dt
		s.Pos.Y += math.Sin(s.Heading) * s.Speed * dt
	}
}
