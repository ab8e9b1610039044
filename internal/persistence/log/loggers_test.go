package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"voidrift.gg/internal/sim/world"
)

func readJSONL(t *testing.T, path string, out func([]byte)) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	for sc.Scan() {
		out(sc.Bytes())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	n := 0
	readJSONL(t, path, func([]byte) { n++ })
	return n
}

func TestTickLogger_AppendsReadableLines(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)

	for tick := uint64(0); tick < 5; tick++ {
		err := l.WriteTick(world.TickLogEntry{
			Tick:   tick,
			Sector: "sec_haven",
			Digest: "d",
		})
		if err != nil {
			t.Fatalf("write tick %d: %v", tick, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "ticks", "ticks-*.jsonl.zst"))
	if err != nil || len(files) != 1 {
		t.Fatalf("tick files = %v (%v)", files, err)
	}

	var got []world.TickLogEntry
	readJSONL(t, files[0], func(line []byte) {
		var e world.TickLogEntry
		if err := json.Unmarshal(line, &e); err != nil {
			t.Fatalf("line: %v", err)
		}
		got = append(got, e)
	})
	if len(got) != 5 {
		t.Fatalf("entries = %d", len(got))
	}
	for i, e := range got {
		if e.Tick != uint64(i) || e.Sector != "sec_haven" {
			t.Fatalf("entry %d = %+v", i, e)
		}
	}
}

func TestSegmentWriter_RotatesByRecordCount(t *testing.T) {
	dir := t.TempDir()
	w := NewSegmentWriter(dir, "events", 2)
	for i := 0; i < 5; i++ {
		if err := w.Append(map[string]any{"t": i}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "events-*.jsonl.zst"))
	if len(files) != 3 {
		t.Fatalf("segments = %v", files)
	}
	for i, want := range []int{2, 2, 1} {
		path := filepath.Join(dir, fmt.Sprintf("events-%06d.jsonl.zst", i+1))
		if got := countLines(t, path); got != want {
			t.Fatalf("%s: %d lines, want %d", path, got, want)
		}
	}
}

func TestSegmentWriter_ResumesNumberingAfterRestart(t *testing.T) {
	dir := t.TempDir()

	w1 := NewSegmentWriter(dir, "events", 100)
	if err := w1.Append(map[string]any{"t": 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	w2 := NewSegmentWriter(dir, "events", 100)
	if err := w2.Append(map[string]any{"t": 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "events-000001.jsonl.zst")); err != nil {
		t.Fatalf("first segment: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "events-000002.jsonl.zst")); err != nil {
		t.Fatalf("second segment missing: %v", err)
	}
}

func TestSegmentWriter_AppendAfterCloseStartsNewSegment(t *testing.T) {
	dir := t.TempDir()
	w := NewSegmentWriter(dir, "events", 100)
	if err := w.Append(map[string]any{"t": 1, "type": "ALERT"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A closed writer reopens transparently on the next append.
	if err := w.Append(map[string]any{"t": 2}); err != nil {
		t.Fatalf("append after close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "events-*.jsonl.zst"))
	if len(files) != 2 {
		t.Fatalf("segments = %v", files)
	}
	n := 0
	readJSONL(t, files[0], func(line []byte) {
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("line: %v", err)
		}
		if m["type"] != "ALERT" {
			t.Fatalf("line = %s", line)
		}
		n++
	})
	if n != 1 {
		t.Fatalf("lines = %d", n)
	}
}
