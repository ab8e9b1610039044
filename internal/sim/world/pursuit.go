package world

import "math"

// PursuitDecision is what a chasing controller should do next. The
// evaluator is pure: it never touches the world, so the same inputs always
// yield the same decision and tests can drive it as a table.
type PursuitDecision string

const (
	DecideContinue  PursuitDecision = "CONTINUE"
	DecideIntercept PursuitDecision = "INTERCEPT"
	DecideTackle    PursuitDecision = "TACKLE"
	DecideDisengage PursuitDecision = "DISENGAGE"
)

// PursuitContext is everything the evaluator is allowed to see. Callers
// assemble it from the chaser, the target and the tuning; the evaluator
// has no other inputs.
type PursuitContext struct {
	ChaserPos      Vec2
	ChaserMaxSpeed float64
	TargetPos      Vec2
	TargetLive     bool

	// Radial speed of the target away from the chaser; negative while the
	// gap closes.
	TargetAwaySpeed float64

	Home         Vec2
	ElapsedChase float64 // seconds since the chase started
	MaxChase     float64
	MaxHomeDist  float64

	NearbyAllies int // live same-faction hulls inside the chaser's aggro bubble

	TackleRange      float64
	TargetWebbed     bool
	InterceptMinDist float64
	InterceptReady   bool
}

// EvaluatePursuit decides the next pursuit action in strict priority
// order: give up (target gone, chase too long, or drifted too far from
// home), then tackle when in range of an unwebbed target, then burn the
// intercept charge when the target is far off and pulling away faster
// than the chaser could ever close, else keep chasing. The reason names
// the winning condition; controllers surface it in alert and
// deactivation text.
func EvaluatePursuit(ctx PursuitContext) (PursuitDecision, string) {
	if !ctx.TargetLive {
		return DecideDisengage, "target lost"
	}
	if ctx.MaxChase > 0 && ctx.ElapsedChase >= ctx.MaxChase {
		return DecideDisengage, "chase expired"
	}
	if ctx.MaxHomeDist > 0 && Dist(ctx.ChaserPos, ctx.Home) >= ctx.MaxHomeDist {
		return DecideDisengage, "leash limit"
	}
	d := Dist(ctx.ChaserPos, ctx.TargetPos)
	if d <= ctx.TackleRange && !ctx.TargetWebbed {
		return DecideTackle, "in tackle range"
	}
	if ctx.InterceptReady && d >= ctx.InterceptMinDist &&
		ctx.TargetAwaySpeed > 0 && ctx.TargetAwaySpeed >= ctx.ChaserMaxSpeed {
		return DecideIntercept, "target escaping"
	}
	return DecideContinue, "closing"
}

// pursuitContext assembles the evaluator's view for a chaser in this
// world. Target liveness is an id lookup; a stale id reads as gone.
func (w *World) pursuitContext(s *Ship) PursuitContext {
	ctx := PursuitContext{
		ChaserPos:        s.Pos,
		ChaserMaxSpeed:   s.BaseMaxSpeed,
		Home:             s.AI.Home,
		MaxChase:         w.tune.Pursuit.MaxChaseSeconds,
		MaxHomeDist:      w.tune.Pursuit.MaxHomeDistance,
		TackleRange:      w.tune.Pursuit.TackleRange,
		InterceptMinDist: w.tune.Pursuit.InterceptMinDist,
	}
	now := w.tick.Load()
	if now > s.AI.ChaseStartTick {
		ctx.ElapsedChase = float64(now-s.AI.ChaseStartTick) / float64(w.tune.TickRateHz)
	}
	ctx.InterceptReady = now >= s.AI.InterceptReadyAt
	for _, o := range w.shipsSorted() {
		if o.ID == s.ID || o.Destroyed || o.Faction != s.Faction {
			continue
		}
		if Dist(s.Pos, o.Pos) <= w.aggroRange(s) {
			ctx.NearbyAllies++
		}
	}
	if t := w.liveShip(s.AI.TargetID); t != nil {
		ctx.TargetLive = true
		ctx.TargetPos = t.Pos
		ctx.TargetWebbed = t.webbed(now) < 1
		ctx.TargetAwaySpeed = radialSpeed(s.Pos, t)
	}
	return ctx
}

// radialSpeed projects the target's velocity onto the chaser-to-target
// axis; positive means the gap is opening.
func radialSpeed(from Vec2, t *Ship) float64 {
	u := t.Pos.Sub(from)
	l := u.Len()
	if l == 0 {
		return 0
	}
	vx := t.Speed * math.Cos(t.Heading)
	vy := t.Speed * math.Sin(t.Heading)
	return (vx*u.X + vy*u.Y) / l
}
