package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jogendra123/git-xrays/internal/domain"
)

// Bundle is every pipeline's output for one analysis, the unit Save
// persists transactionally (spec §4.8).
type Bundle struct {
	Hotspot    domain.HotspotReport
	Knowledge  domain.KnowledgeReport
	Coupling   domain.CouplingReport
	Pain       domain.PainReport
	Anemic     domain.AnemicReport
	GodClass   domain.GodClassReport
	Complexity domain.ComplexityReport
	Cluster    domain.ClusterReport
	Effort     domain.EffortReport
	DX         domain.DXReport
}

// Store is the embedded analytical store backing run persistence and
// comparison, grounded on the sibling pack repo's iocache/schema split
// (huangsam/hotspot) but collapsed into one package since git-xrays
// supports a single SQLite backend rather than SQLite/MySQL/Postgres.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// brings it up to the latest migration version.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists run and its full bundle in a single transaction
// (spec §4.8: "save is transactional per run").
func (s *Store) Save(run domain.Run, bundle Bundle) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	if err := insertRun(tx, run); err != nil {
		return err
	}

	inserters := []func(*sql.Tx, string, Bundle) error{
		insertHotspot, insertKnowledge, insertCoupling, insertPain,
		insertAnemic, insertGodClass, insertComplexity, insertClusters,
		insertEffort, insertDX,
	}

	for _, ins := range inserters {
		if err := ins(tx, run.RunID, bundle); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertRun(tx *sql.Tx, run domain.Run) error {
	effortJSON, err := json.Marshal(run.EffortCoefficients)
	if err != nil {
		return fmt.Errorf("marshal effort coefficients: %w", err)
	}

	dxWeightsJSON, err := json.Marshal(run.DXWeights)
	if err != nil {
		return fmt.Errorf("marshal dx weights: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO runs
		(run_id, repo_path, window_days, started_at, ended_at, dx_score,
		 total_files, total_commits, total_authors, dri, effort_coefficients, dx_weights)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.RepoPath, run.WindowDays, run.StartedAt, run.EndedAt, run.DXScore,
		run.TotalFiles, run.TotalCommits, run.TotalAuthors, run.DRI, string(effortJSON), string(dxWeightsJSON))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

func insertHotspot(tx *sql.Tx, runID string, b Bundle) error {
	for _, f := range b.Hotspot.Files {
		_, err := tx.Exec(`INSERT INTO hotspot_files
			(run_id, path, frequency, churn, hotspot_score, rework_ratio) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, f.Path, f.Frequency, f.Churn, f.HotspotScore, f.ReworkRatio)
		if err != nil {
			return fmt.Errorf("insert hotspot_files: %w", err)
		}
	}

	return nil
}

func insertKnowledge(tx *sql.Tx, runID string, b Bundle) error {
	for _, f := range b.Knowledge.Files {
		_, err := tx.Exec(`INSERT INTO knowledge_files
			(run_id, path, primary_author, primary_pct, kdi, is_island) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, f.Path, f.PrimaryAuthor, f.PrimaryPct, f.KDI, f.IsIsland)
		if err != nil {
			return fmt.Errorf("insert knowledge_files: %w", err)
		}
	}

	return nil
}

func insertCoupling(tx *sql.Tx, runID string, b Bundle) error {
	for _, p := range b.Coupling.Pairs {
		_, err := tx.Exec(`INSERT INTO coupling_pairs
			(run_id, file_a, file_b, shared_commits, union_commits, jaccard, support, lift)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, p.FileA, p.FileB, p.SharedCommits, p.UnionCommits, p.Jaccard, p.Support, p.Lift)
		if err != nil {
			return fmt.Errorf("insert coupling_pairs: %w", err)
		}
	}

	return nil
}

func insertPain(tx *sql.Tx, runID string, b Bundle) error {
	for _, p := range b.Pain.Files {
		_, err := tx.Exec(`INSERT INTO file_pain
			(run_id, path, size_norm, distance_norm, volatility_norm, pain) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, p.Path, p.SizeNorm, p.DistanceNorm, p.VolatilityNorm, p.Pain)
		if err != nil {
			return fmt.Errorf("insert file_pain: %w", err)
		}
	}

	return nil
}

func insertAnemic(tx *sql.Tx, runID string, b Bundle) error {
	for _, c := range b.Anemic.Classes {
		_, err := tx.Exec(`INSERT INTO anemic_classes
			(run_id, file, name, fields, behavior_methods, dbsi, orchestration_pressure, ams, is_anemic, touch_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, c.File, c.Name, c.Fields, c.BehaviorMethods, c.DBSI, c.OrchestrationPressure, c.AMS, c.IsAnemic, c.TouchCount)
		if err != nil {
			return fmt.Errorf("insert anemic_classes: %w", err)
		}
	}

	return nil
}

func insertGodClass(tx *sql.Tx, runID string, b Bundle) error {
	for _, c := range b.GodClass.Classes {
		_, err := tx.Exec(`INSERT INTO godclass_classes
			(run_id, file, name, method_count, field_count, wmc, tcc, gcs, is_god_class)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, c.File, c.Name, c.MethodCount, c.FieldCount, c.WMC, c.TCC, c.GCS, c.IsGodClass)
		if err != nil {
			return fmt.Errorf("insert godclass_classes: %w", err)
		}
	}

	return nil
}

func insertComplexity(tx *sql.Tx, runID string, b Bundle) error {
	for _, f := range b.Complexity.Functions {
		_, err := tx.Exec(`INSERT INTO complexity_functions
			(run_id, file, name, line, cyclomatic, cognitive, max_nesting, branches, except_paths, length)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, f.File, f.Name, f.Line, f.Cyclomatic, f.Cognitive, f.MaxNesting, f.Branches, f.ExceptPaths, f.Length)
		if err != nil {
			return fmt.Errorf("insert complexity_functions: %w", err)
		}
	}

	return nil
}

func insertClusters(tx *sql.Tx, runID string, b Bundle) error {
	for _, c := range b.Cluster.Clusters {
		_, err := tx.Exec(`INSERT INTO cluster_summaries
			(run_id, cluster_id, size, centroid_file_count, centroid_churn, centroid_add_ratio, label)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, c.ID, c.Size, c.Centroid[0], c.Centroid[1], c.Centroid[2], string(c.Label))
		if err != nil {
			return fmt.Errorf("insert cluster_summaries: %w", err)
		}
	}

	for _, d := range b.Cluster.Drift {
		_, err := tx.Exec(`INSERT INTO cluster_drift
			(run_id, label, first_pct, second_pct, drift, stable) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, string(d.Label), d.FirstPct, d.SecondPct, d.Drift, d.Stable)
		if err != nil {
			return fmt.Errorf("insert cluster_drift: %w", err)
		}
	}

	return nil
}

func insertEffort(tx *sql.Tx, runID string, b Bundle) error {
	for _, f := range b.Effort.Files {
		contributionsJSON, err := json.Marshal(f.Contributions)
		if err != nil {
			return fmt.Errorf("marshal contributions: %w", err)
		}

		_, err = tx.Exec(`INSERT INTO effort_files (run_id, path, rei, contributions) VALUES (?, ?, ?, ?)`,
			runID, f.Path, f.REI, string(contributionsJSON))
		if err != nil {
			return fmt.Errorf("insert effort_files: %w", err)
		}
	}

	return nil
}

func insertDX(tx *sql.Tx, runID string, b Bundle) error {
	for _, f := range b.DX.Files {
		_, err := tx.Exec(`INSERT INTO dx_cognitive_files
			(run_id, path, complexity_norm, coordination_norm, knowledge_norm, change_rate_norm, load)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, f.Path, f.ComplexityN, f.CoordinationN, f.KnowledgeN, f.ChangeRateN, f.Load)
		if err != nil {
			return fmt.Errorf("insert dx_cognitive_files: %w", err)
		}
	}

	return nil
}

// ErrNotFound is returned when a run id has no matching row. Wraps
// domain.ErrNotFound so callers can match on either sentinel.
var ErrNotFound = fmt.Errorf("run not found: %w", domain.ErrNotFound)

// ListRepos returns every distinct repo_path with at least one run.
func (s *Store) ListRepos() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT repo_path FROM runs ORDER BY repo_path`)
	if err != nil {
		return nil, fmt.Errorf("list repos: %w", err)
	}

	defer rows.Close()

	var out []string

	for rows.Next() {
		var repo string
		if err := rows.Scan(&repo); err != nil {
			return nil, err
		}

		out = append(out, repo)
	}

	return out, rows.Err()
}

// ListRuns returns every run recorded for repo, newest first.
func (s *Store) ListRuns(repo string) ([]domain.Run, error) {
	rows, err := s.db.Query(`SELECT run_id, repo_path, window_days, started_at, ended_at, dx_score,
		total_files, total_commits, total_authors, dri, effort_coefficients, dx_weights
		FROM runs WHERE repo_path = ? ORDER BY started_at DESC`, repo)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	defer rows.Close()

	var out []domain.Run

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, run)
	}

	return out, rows.Err()
}

// GetRun fetches one run by id.
func (s *Store) GetRun(runID string) (domain.Run, error) {
	row := s.db.QueryRow(`SELECT run_id, repo_path, window_days, started_at, ended_at, dx_score,
		total_files, total_commits, total_authors, dri, effort_coefficients, dx_weights
		FROM runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return domain.Run{}, ErrNotFound
	}

	return run, err
}

// QueryTable returns every row of table belonging to runID as generic
// column->value maps, for the REST boundary's per-kind endpoints
// (spec §6: "one endpoint per child table"). table must be one of the
// fixed child-table names; callers do not accept it from request
// bodies, only from a closed set of route constants.
func (s *Store) QueryTable(runID, table string) ([]map[string]any, error) {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT * FROM %s WHERE run_id = ?`, table), runID) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", table, err)
	}

	var out []map[string]any

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range vals {
			ptrs[i] = &vals[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}

		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}

		out = append(out, row)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (domain.Run, error) {
	var (
		run                          domain.Run
		dxScore                      sql.NullFloat64
		effortJSON, dxWeightsJSON    string
	)

	err := r.Scan(&run.RunID, &run.RepoPath, &run.WindowDays, &run.StartedAt, &run.EndedAt, &dxScore,
		&run.TotalFiles, &run.TotalCommits, &run.TotalAuthors, &run.DRI, &effortJSON, &dxWeightsJSON)
	if err != nil {
		return domain.Run{}, err
	}

	if dxScore.Valid {
		run.DXScore = &dxScore.Float64
	}

	if err := json.Unmarshal([]byte(effortJSON), &run.EffortCoefficients); err != nil {
		return domain.Run{}, fmt.Errorf("unmarshal effort coefficients: %w", err)
	}

	if err := json.Unmarshal([]byte(dxWeightsJSON), &run.DXWeights); err != nil {
		return domain.Run{}, fmt.Errorf("unmarshal dx weights: %w", err)
	}

	return run, nil
}

// comparisonTables lists every run-comparison-eligible child table: the
// ones keyed by a natural file/function path rather than a cluster id
// (spec §4.8: "joins two runs on file_path per child table").
var comparisonTables = []struct {
	table     string
	keyCols   []string
	metricCol string
}{
	{"hotspot_files", []string{"path"}, "hotspot_score"},
	{"knowledge_files", []string{"path"}, "kdi"},
	{"file_pain", []string{"path"}, "pain"},
	{"anemic_classes", []string{"file", "name"}, "ams"},
	{"godclass_classes", []string{"file", "name"}, "gcs"},
	{"complexity_functions", []string{"file", "name", "line"}, "cognitive"},
	{"effort_files", []string{"path"}, "rei"},
	{"dx_cognitive_files", []string{"path"}, "load"},
	{"coupling_pairs", []string{"file_a", "file_b"}, "jaccard"},
}

// Compare joins runA against runB on each comparable child table's
// natural key and classifies every row's change (spec §4.8).
func (s *Store) Compare(runA, runB string) (RunComparison, error) {
	if _, err := s.GetRun(runA); err != nil {
		return RunComparison{}, fmt.Errorf("run %s: %w", runA, err)
	}

	if _, err := s.GetRun(runB); err != nil {
		return RunComparison{}, fmt.Errorf("run %s: %w", runB, err)
	}

	out := RunComparison{RunA: runA, RunB: runB}

	for _, cfg := range comparisonTables {
		table, err := s.compareTable(runA, runB, cfg.table, cfg.keyCols, cfg.metricCol)
		if err != nil {
			return RunComparison{}, err
		}

		out.Tables = append(out.Tables, table)
	}

	return out, nil
}

func (s *Store) compareTable(runA, runB, table string, keyCols []string, metricCol string) (TableComparison, error) {
	before, err := s.loadMetrics(runA, table, keyCols, metricCol)
	if err != nil {
		return TableComparison{}, err
	}

	after, err := s.loadMetrics(runB, table, keyCols, metricCol)
	if err != nil {
		return TableComparison{}, err
	}

	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}

	for k := range after {
		keys[k] = struct{}{}
	}

	var rows []RowComparison

	for k := range keys {
		b, hasBefore := before[k]
		a, hasAfter := after[k]

		switch {
		case hasBefore && hasAfter:
			rows = append(rows, RowComparison{Key: k, Before: b, After: a, Delta: a - b, Status: statusFor(table, b, a)})
		case hasAfter:
			rows = append(rows, RowComparison{Key: k, After: a, Delta: a, Status: StatusNew})
		default:
			rows = append(rows, RowComparison{Key: k, Before: b, Delta: -b, Status: StatusRemoved})
		}
	}

	return TableComparison{Table: table, Rows: rows}, nil
}

func (s *Store) loadMetrics(runID, table string, keyCols []string, metricCol string) (map[string]float64, error) {
	cols := strings.Join(keyCols, ", ")

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE run_id = ?`, cols, metricCol, table)

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	defer rows.Close()

	out := make(map[string]float64)

	for rows.Next() {
		keyVals := make([]any, len(keyCols))
		keyPtrs := make([]any, len(keyCols))

		for i := range keyVals {
			keyPtrs[i] = &keyVals[i]
		}

		var metric float64

		dest := append(keyPtrs, &metric)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}

		parts := make([]string, len(keyVals))
		for i, v := range keyVals {
			parts[i] = fmt.Sprintf("%v", v)
		}

		out[strings.Join(parts, "|")] = metric
	}

	return out, rows.Err()
}
