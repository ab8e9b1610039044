package world

// Metrics is a point-in-time summary published after every tick; the
// transport layer serves the latest copy without touching the loop.
type Metrics struct {
	Tick      uint64  `json:"tick"`
	Sector    string  `json:"sector"`
	Ships     int     `json:"ships"`
	Asteroids int     `json:"asteroids"`
	Wrecks    int     `json:"wrecks"`
	Missions  int     `json:"missions"`
	Jobs      int     `json:"jobs"`
	Credits   float64 `json:"credits"`

	QueueDepths QueueDepths `json:"queue_depths"`
	StepMS      float64     `json:"step_ms"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

// LastMetrics is safe to call from any goroutine.
func (w *World) LastMetrics() Metrics {
	if v, ok := w.lastMetrics.Load().(Metrics); ok {
		return v
	}
	return Metrics{}
}
