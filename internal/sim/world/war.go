package world

import (
	"sort"

	"voidrift.gg/internal/protocol"
	"voidrift.gg/internal/sim/catalogs"
	"voidrift.gg/internal/sim/tuning"
)

// warLedger tracks the front line over the contested sectors: per sector,
// per coalition, a bounded point score. Points come from periodic pressure
// shifts weighted by faction tier, from kills in the sector and from ore
// deliveries. A coalition holding every contested sector wins the war;
// victory is announced once.
type warLedger struct {
	tune    tuning.War
	sectors []string // contested, sorted
	points  map[string]map[string]float64
	holders map[string][]string // contenders per sector, sorted

	victor        string
	victoryCalled bool
}

func newWarLedger(cats *catalogs.Catalogs, tune tuning.War) *warLedger {
	l := &warLedger{
		tune:    tune,
		points:  map[string]map[string]float64{},
		holders: map[string][]string{},
	}
	coalitions := map[string]bool{}
	for _, f := range cats.Factions.ByID {
		c := f.Coalition
		if c == "" {
			c = f.ID
		}
		if !f.Hostile {
			coalitions[c] = true
		}
	}
	var all []string
	for c := range coalitions {
		all = append(all, c)
	}
	sort.Strings(all)
	for id, s := range cats.Sectors.ByID {
		if !s.Contested {
			continue
		}
		l.sectors = append(l.sectors, id)
		l.points[id] = map[string]float64{}
		l.holders[id] = all
	}
	sort.Strings(l.sectors)
	return l
}

func (l *warLedger) addPoints(sector, coalition string, pts float64) {
	m, ok := l.points[sector]
	if !ok {
		return
	}
	m[coalition] += pts
	if m[coalition] > l.tune.MaxPoints {
		m[coalition] = l.tune.MaxPoints
	}
}

func (l *warLedger) addKill(sector, coalition string) {
	l.addPoints(sector, coalition, l.tune.KillWeight)
}

// control names the leading coalition of a sector, empty on a tie.
func (l *warLedger) control(sector string) string {
	m := l.points[sector]
	best, bestPts := "", 0.0
	tied := false
	for _, c := range sortedCoalitions(m) {
		switch {
		case m[c] > bestPts:
			best, bestPts, tied = c, m[c], false
		case m[c] == bestPts && bestPts > 0:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best
}

// checkVictory reports a coalition holding every contested sector. The
// result latches: once called, it never fires again.
func (l *warLedger) checkVictory() (string, bool) {
	if l.victoryCalled || len(l.sectors) == 0 {
		return "", false
	}
	first := l.control(l.sectors[0])
	if first == "" {
		return "", false
	}
	for _, s := range l.sectors[1:] {
		if l.control(s) != first {
			return "", false
		}
	}
	l.victor = first
	l.victoryCalled = true
	return first, true
}

func sortedCoalitions(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// stepWar applies the periodic pressure shift and checks for victory.
// Each contender in a contested sector rolls pressure proportional to its
// strongest faction tier; the roll uses the world rng so replays agree.
func (w *World) stepWar() {
	now := w.tick.Load()
	if w.tune.War.ShiftIntervalTicks <= 0 || now%uint64(w.tune.War.ShiftIntervalTicks) != 0 {
		return
	}
	for _, sector := range w.war.sectors {
		for _, coalition := range w.war.holders[sector] {
			tier := w.topTier(coalition)
			pts := w.tune.War.TierWeight * float64(tier) * w.rng.Float64()
			w.war.addPoints(sector, coalition, pts)
		}
		if lead := w.war.control(sector); lead != "" {
			w.emit(protocol.WarShiftEvent{Tick: now, SectorID: sector, Faction: lead, Points: w.war.points[sector][lead]})
		}
	}
	if victor, ok := w.war.checkVictory(); ok {
		w.emit(protocol.WarVictoryEvent{Tick: now, Coalition: victor})
	}
}

// topTier is the highest faction tier inside a coalition.
func (w *World) topTier(coalition string) int {
	top := 1
	for _, f := range w.cats.Factions.ByID {
		c := f.Coalition
		if c == "" {
			c = f.ID
		}
		if c == coalition && f.Tier > top {
			top = f.Tier
		}
	}
	return top
}
