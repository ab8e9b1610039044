package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ShippedFileMatchesDefaults(t *testing.T) {
	got, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("shipped tuning drifted from defaults:\ngot  %+v\nwant %+v", got, Defaults())
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "tick_rate_hz: 20\npursuit:\n  tackle_range: 90\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TickRateHz != 20 || got.Pursuit.TackleRange != 90 {
		t.Fatalf("overrides ignored: %+v", got)
	}
	// Everything not mentioned stays at the baseline.
	if got.Pursuit.MaxChaseSeconds != Defaults().Pursuit.MaxChaseSeconds {
		t.Fatalf("defaults lost: %+v", got.Pursuit)
	}
	if got.Bounty != Defaults().Bounty {
		t.Fatalf("bounty defaults lost: %+v", got.Bounty)
	}
}

func TestLoad_MissingFileReturnsDefaultsAndError(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("missing file load succeeded")
	}
	if got != Defaults() {
		t.Fatalf("missing file did not fall back to defaults")
	}
}
