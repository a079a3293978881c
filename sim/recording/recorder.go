// Package recording persists simulation results into a SQLite database so
// runs can be compared after the process exits.
package recording

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/loadreg/sim"
	"github.com/inference-sim/loadreg/sim/trace"
)

// ErrUnknownRun is returned when a run ID is not in the database.
var ErrUnknownRun = errors.New("unknown run")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	strategy TEXT NOT NULL,
	num_servers INTEGER NOT NULL,
	sim_time REAL NOT NULL,
	seed INTEGER NOT NULL,
	total_arrivals INTEGER NOT NULL,
	processed INTEGER NOT NULL,
	dropped INTEGER NOT NULL,
	in_flight INTEGER NOT NULL,
	avg_response_time REAL NOT NULL,
	utilization REAL NOT NULL,
	throughput REAL NOT NULL,
	drop_rate REAL NOT NULL,
	config TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS events (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	time REAL NOT NULL,
	kind TEXT NOT NULL,
	request_id INTEGER NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT NOT NULL,
	series TEXT NOT NULL,
	time REAL NOT NULL,
	value INTEGER NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS response_times (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	value REAL NOT NULL
);`,
}

// Series names stored in the samples table.
const (
	SeriesQueue = "queue"
	SeriesBusy  = "busy"
)

// Recorder writes results into a SQLite database.
type Recorder struct {
	*sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: coherent.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating schema in %s: %w", path, err)
		}
	}
	logrus.Debugf("recording database ready: %s", path)
	return &Recorder{DB: db, path: path}, nil
}

// Path returns the database location.
func (r *Recorder) Path() string {
	return r.path
}

// Record stores res under a fresh run ID in a single transaction and
// returns the ID.
func (r *Recorder) Record(res *sim.Result) (string, error) {
	if res == nil {
		return "", errors.New("recording a nil result")
	}
	id := xid.New()
	runID := id.String()

	cfgJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(res.Config)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}

	tx, err := r.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	if err := writeRun(tx, runID, id.Time(), cfgJSON, res); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("recording run %s: %w", runID, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run %s: %w", runID, err)
	}

	logrus.Infof("Recorded run %s (%d events) into %s", runID, len(res.Events), r.path)
	return runID, nil
}

func writeRun(tx *sql.Tx, runID string, created time.Time, cfgJSON string, res *sim.Result) error {
	_, err := tx.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, created.Unix(), string(res.Config.Strategy), res.Config.NumServers,
		res.Config.SimTime, res.Config.Seed,
		res.TotalArrivals, res.Processed, res.Dropped, res.InFlight,
		res.AvgResponseTime, res.Utilization, res.Throughput, res.DropRate, cfgJSON)
	if err != nil {
		return err
	}

	events, err := tx.Prepare(`INSERT INTO events VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer events.Close()
	for i, ev := range res.Events {
		if _, err := events.Exec(runID, i, ev.Time, string(ev.Kind), ev.RequestID); err != nil {
			return err
		}
	}

	samples, err := tx.Prepare(`INSERT INTO samples VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer samples.Close()
	for series, points := range map[string][]sim.Sample{
		SeriesQueue: res.QueueTimeSeries,
		SeriesBusy:  res.BusyTimeSeries,
	} {
		for _, p := range points {
			if _, err := samples.Exec(runID, series, p.Time, p.Value); err != nil {
				return err
			}
		}
	}

	rts, err := tx.Prepare(`INSERT INTO response_times VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer rts.Close()
	for i, v := range res.ResponseTimes {
		if _, err := rts.Exec(runID, i, v); err != nil {
			return err
		}
	}
	return nil
}

// RunSummary is the stored aggregate view of one run.
type RunSummary struct {
	RunID           string
	CreatedAt       time.Time
	Strategy        sim.Strategy
	NumServers      int
	SimTime         float64
	Seed            int64
	TotalArrivals   int
	Processed       int
	Dropped         int
	InFlight        int
	AvgResponseTime float64
	Utilization     float64
	Throughput      float64
	DropRate        float64
	Config          sim.Config

	EventCount  int
	SampleCount int
	DropsByKind map[trace.Kind]int
}

// Summary reads back the aggregates of a recorded run.
func (r *Recorder) Summary(runID string) (RunSummary, error) {
	s := RunSummary{RunID: runID, DropsByKind: make(map[trace.Kind]int)}
	var created int64
	var strategy, cfgJSON string
	err := r.QueryRow(`SELECT created_at, strategy, num_servers, sim_time, seed,
		total_arrivals, processed, dropped, in_flight,
		avg_response_time, utilization, throughput, drop_rate, config
		FROM runs WHERE run_id = ?`, runID).Scan(
		&created, &strategy, &s.NumServers, &s.SimTime, &s.Seed,
		&s.TotalArrivals, &s.Processed, &s.Dropped, &s.InFlight,
		&s.AvgResponseTime, &s.Utilization, &s.Throughput, &s.DropRate, &cfgJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("reading run %s: %w", runID, err)
	}
	s.CreatedAt = time.Unix(created, 0)
	s.Strategy = sim.Strategy(strategy)
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(cfgJSON, &s.Config); err != nil {
		return RunSummary{}, fmt.Errorf("decoding config of run %s: %w", runID, err)
	}

	if err := r.QueryRow(`SELECT COUNT(*) FROM events WHERE run_id = ?`, runID).Scan(&s.EventCount); err != nil {
		return RunSummary{}, fmt.Errorf("counting events of run %s: %w", runID, err)
	}
	if err := r.QueryRow(`SELECT COUNT(*) FROM samples WHERE run_id = ?`, runID).Scan(&s.SampleCount); err != nil {
		return RunSummary{}, fmt.Errorf("counting samples of run %s: %w", runID, err)
	}

	rows, err := r.Query(`SELECT kind, COUNT(*) FROM events WHERE run_id = ? GROUP BY kind`, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("reading drops of run %s: %w", runID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return RunSummary{}, err
		}
		if k := trace.Kind(kind); k.IsDrop() {
			s.DropsByKind[k] = n
		}
	}
	return s, rows.Err()
}

// Runs lists recorded run IDs, oldest first.
func (r *Recorder) Runs() ([]string, error) {
	rows, err := r.Query(`SELECT run_id FROM runs ORDER BY created_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Events reads back a run's event log in its original order.
func (r *Recorder) Events(runID string) ([]trace.Record, error) {
	rows, err := r.Query(`SELECT time, kind, request_id FROM events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading events of run %s: %w", runID, err)
	}
	defer rows.Close()
	var out []trace.Record
	for rows.Next() {
		var rec trace.Record
		var kind string
		if err := rows.Scan(&rec.Time, &kind, &rec.RequestID); err != nil {
			return nil, err
		}
		rec.Kind = trace.Kind(kind)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.DB.Close()
}
