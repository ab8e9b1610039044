// Package log persists the simulation's append-only streams as JSON lines
// inside zstd segments. Segments are cut by record count rather than wall
// clock, so replay tooling can walk a tick range in file order without
// caring when it was recorded.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"voidrift.gg/internal/sim/world"
)

// SegmentWriter appends JSON lines to numbered zstd segments, starting a
// fresh segment every recordsPerSegment lines. Numbering survives a
// restart: before the first segment opens, the writer scans the directory
// and continues after the highest number already on disk.
type SegmentWriter struct {
	dir    string
	prefix string
	perSeg int

	mu  sync.Mutex
	seq int
	n   int
	f   *os.File
	enc *zstd.Encoder
	buf *bufio.Writer
}

func NewSegmentWriter(dir, prefix string, recordsPerSegment int) *SegmentWriter {
	if recordsPerSegment <= 0 {
		recordsPerSegment = 1
	}
	return &SegmentWriter{dir: dir, prefix: prefix, perSeg: recordsPerSegment}
}

// Append marshals v onto the current segment, rotating first when the
// segment is full or the writer was closed.
func (w *SegmentWriter) Append(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.enc == nil || w.n >= w.perSeg {
		if err := w.rotateLocked(); err != nil {
			return err
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.buf.Write(b); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	w.n++
	return w.buf.Flush()
}

func (w *SegmentWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeSegmentLocked()
}

func (w *SegmentWriter) rotateLocked() error {
	if err := w.closeSegmentLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if w.seq == 0 {
		w.seq = w.lastSeqOnDisk()
	}
	w.seq++
	f, err := os.OpenFile(w.segmentPath(w.seq), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.buf = bufio.NewWriterSize(enc, 128*1024)
	w.n = 0
	return nil
}

func (w *SegmentWriter) closeSegmentLocked() error {
	var err1 error
	if w.buf != nil {
		_ = w.buf.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.buf = nil
	return err1
}

func (w *SegmentWriter) segmentPath(seq int) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%06d.jsonl.zst", w.prefix, seq))
}

// lastSeqOnDisk finds the highest segment number already written under
// the prefix, so a restarted appender never clobbers history.
func (w *SegmentWriter) lastSeqOnDisk() int {
	matches, _ := filepath.Glob(filepath.Join(w.dir, w.prefix+"-*.jsonl.zst"))
	last := 0
	for _, m := range matches {
		var n int
		if _, err := fmt.Sscanf(filepath.Base(m), w.prefix+"-%d.jsonl.zst", &n); err == nil && n > last {
			last = n
		}
	}
	return last
}

// ticksPerSegment keeps one segment around six minutes of history at the
// default tick rate.
const ticksPerSegment = 3600

// TickLogger records one line per simulation tick: the acts applied, the
// events emitted and the closing state digest.
type TickLogger struct{ w *SegmentWriter }

func NewTickLogger(galaxyDir string) *TickLogger {
	return &TickLogger{w: NewSegmentWriter(filepath.Join(galaxyDir, "ticks"), "ticks", ticksPerSegment)}
}

func (l *TickLogger) WriteTick(v world.TickLogEntry) error { return l.w.Append(v) }
func (l *TickLogger) Close() error                         { return l.w.Close() }
