package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"voidrift.gg/internal/persistence/indexdb"
	persistlog "voidrift.gg/internal/persistence/log"
	"voidrift.gg/internal/persistence/snapshot"
	"voidrift.gg/internal/sim/catalogs"
	"voidrift.gg/internal/sim/tuning"
	"voidrift.gg/internal/sim/world"
	"voidrift.gg/internal/transport/ws"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "http listen address")
		galaxyID    = flag.String("galaxy", "galaxy_1", "galaxy id")
		seed        = flag.Int64("seed", 1337, "galaxy seed (used only when starting fresh)")
		startSector = flag.String("sector", "", "start sector id (default: first sector in catalog)")
		configDir   = flag.String("configs", "./configs", "config directory")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		tuningPath  = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite read-model index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	galaxyDir := filepath.Join(*dataDir, "galaxies", *galaxyID)
	_ = os.MkdirAll(galaxyDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	// Optional read-model index (does not affect sim determinism).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(galaxyDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index db: upsert catalogs: %v", err)
		}
	}

	// Create the world, fresh or resumed from a snapshot.
	var w *world.World
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(galaxyDir)
	}
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.GalaxyID != "" && snap.Header.GalaxyID != *galaxyID {
			logger.Fatalf("snapshot galaxy id mismatch: flag=%s snap=%s", *galaxyID, snap.Header.GalaxyID)
		}
		w, err = world.NewWorldFromSnapshot(snap, cats, tune)
		if err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d sector=%s", filepath.Base(snapshotToLoad), w.Tick(), w.SectorID())
	} else {
		sector := strings.TrimSpace(*startSector)
		if sector == "" {
			sector = firstSectorID(cats)
		}
		w, err = world.NewWorld(world.WorldConfig{
			GalaxyID:    *galaxyID,
			StartSector: sector,
			Seed:        *seed,
		}, cats, tune)
		if err != nil {
			logger.Fatalf("world: %v", err)
		}
		logger.Printf("fresh galaxy=%s sector=%s seed=%d", *galaxyID, sector, *seed)
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(galaxyDir)
	defer tickLog.Close()
	if idx != nil {
		w.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
	} else {
		w.SetTickLogger(tickLog)
	}

	// Snapshot writer, off the loop goroutine.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := filepath.Join(galaxyDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
			}
		}
	}()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	srv := ws.NewServer(w, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(w.LastMetrics())
	})
	mux.HandleFunc("/v1/ws", srv.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)

	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Close()
	}()

	logger.Printf("listening on %s", *addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func firstSectorID(cats *catalogs.Catalogs) string {
	ids := make([]string, 0, len(cats.Sectors.ByID))
	for id := range cats.Sectors.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// latestSnapshot picks the highest-tick snapshot in <galaxyDir>/snapshots.
func latestSnapshot(galaxyDir string) string {
	dir := filepath.Join(galaxyDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	best, bestTick := "", int64(-1)
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if n > bestTick {
			best, bestTick = filepath.Join(dir, name), n
		}
	}
	return best
}

// multiTickLogger fans a tick entry out to the JSONL log and the index.
type multiTickLogger struct {
	a *persistlog.TickLogger
	b *indexdb.SQLiteIndex
}

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	err := m.a.WriteTick(entry)
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return err
}
