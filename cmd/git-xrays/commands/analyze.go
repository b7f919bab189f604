package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jogendra123/git-xrays/internal/config"
	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/gitadapter"
	"github.com/jogendra123/git-xrays/internal/observability"
	"github.com/jogendra123/git-xrays/internal/orchestrator"
	"github.com/jogendra123/git-xrays/internal/store"
)

const windowSuffix = "d"

// selectableAnalyses lists the per-analysis display flags accepted
// alongside --all; all nine pipelines always run (later runs are
// compared table-by-table, so a partial run would corrupt history),
// but the flags narrow what analyze-repo prints.
var selectableAnalyses = []string{
	"hotspot", "knowledge", "coupling", "pain", "anemic",
	"godclass", "complexity", "cluster", "effort", "dx",
}

// AnalyzeCommand holds flag-bound state for `analyze-repo`.
type AnalyzeCommand struct {
	window     string
	at         string
	from       string
	to         string
	dbPath     string
	configPath string
	listRuns   bool
	serve      bool
	port       int
	selected   map[string]bool
	all        bool
}

// NewAnalyzeCommand builds the analyze-repo command.
func NewAnalyzeCommand() *cobra.Command {
	ac := &AnalyzeCommand{selected: make(map[string]bool)}

	cmd := &cobra.Command{
		Use:   "analyze-repo <path>",
		Short: "Mine a repository's history and source tree for code-health signals",
		Args:  cobra.ExactArgs(1),
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.window, "window", "90d", "Trailing window size, e.g. 90d")
	cmd.Flags().StringVar(&ac.at, "at", "", "Analyze a single point-in-time snapshot at this ref")
	cmd.Flags().StringVar(&ac.from, "from", "", "Start ref for an explicit commit range")
	cmd.Flags().StringVar(&ac.to, "to", "", "End ref for an explicit commit range")
	cmd.Flags().StringVar(&ac.dbPath, "db", "", "Run-store database path (default ~/.git-xrays/runs.db)")
	cmd.Flags().StringVar(&ac.configPath, "config", "", "Path to a git-xrays.yaml config file (defaults searched in . and $HOME/.git-xrays)")
	cmd.Flags().BoolVar(&ac.listRuns, "list-runs", false, "List prior runs for this repository and exit")
	cmd.Flags().BoolVar(&ac.serve, "serve", false, "Start the REST boundary after analyzing")
	cmd.Flags().IntVar(&ac.port, "port", 8085, "Port for --serve")
	cmd.Flags().BoolVar(&ac.all, "all", false, "Run every pipeline over full history, ignoring --window; cannot be combined with --from/--to")

	for _, name := range selectableAnalyses {
		var enabled bool

		cmd.Flags().BoolVar(&enabled, name, false, fmt.Sprintf("Include the %s report in output", name))
		ac.selected[name] = false
	}

	return cmd
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) error {
	path := args[0]
	if path == "" {
		return ErrMissingPath
	}

	if err := ac.validateFlags(); err != nil {
		return err
	}

	ac.readSelectedAnalyses(cmd)

	cfg, err := config.Load(viper.New(), ac.configPath)
	if err != nil {
		return fmt.Errorf("%w: load config: %v", domain.ErrInput, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := observability.NewProviders(ctx, "git-xrays", "dev", parseLogLevel(cfg.Logging.Level), cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		if shutdownErr := providers.Shutdown(ctx); shutdownErr != nil {
			providers.Logger.WarnContext(ctx, "observability shutdown failed", "error", shutdownErr)
		}
	}()

	dbPath, err := ac.resolveDBPath(cfg)
	if err != nil {
		return err
	}

	runStore, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("%w: open run store at %s: %v", domain.ErrStore, dbPath, err)
	}
	defer runStore.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: resolve path %s: %v", domain.ErrInput, path, err)
	}

	if ac.listRuns {
		return ac.printRuns(cmd.OutOrStdout(), runStore, absPath)
	}

	repo, err := gitadapter.OpenLibGit2Repository(absPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	windowDays := cfg.Analysis.WindowDays

	if cmd.Flags().Changed("window") {
		windowDays, err = parseWindowDays(ac.window)
		if err != nil {
			return err
		}
	}

	if ac.all {
		windowDays = 0
	}

	opts := orchestrator.Options{
		RepoPath:   absPath,
		WindowDays: windowDays,
		AtRef:      ac.at,
		FromRef:    ac.from,
		ToRef:      ac.to,
		KMeansSeed: cfg.Analysis.KMeansSeed,
	}

	providers.Logger.InfoContext(ctx, "starting analysis", "path", absPath, "window_days", windowDays)

	result, err := orchestrator.Run(ctx, repo, repo, opts, providers.Tracer, providers.Logger, providers.Meter)
	if err != nil {
		return err
	}

	result.Run.RunID = newRunID()

	if err := runStore.Save(result.Run, result.Bundle); err != nil {
		return fmt.Errorf("%w: persist run: %v", domain.ErrStore, err)
	}

	ac.printSelectedReports(cmd.OutOrStdout(), result)

	serve := cfg.Server.Enabled
	if cmd.Flags().Changed("serve") {
		serve = ac.serve
	}

	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port = ac.port
	}

	if serve {
		return ServeREST(ctx, runStore, fmt.Sprintf(":%d", port), providers.Logger)
	}

	return nil
}

// parseLogLevel maps a config-file level name to slog.Level, defaulting
// to Info for anything unrecognized.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (ac *AnalyzeCommand) validateFlags() error {
	hasAt := ac.at != ""
	hasRange := ac.from != "" || ac.to != ""

	if hasAt && hasRange {
		return ErrMutuallyExclusiveRefs
	}

	if (ac.from == "") != (ac.to == "") {
		return ErrIncompleteRange
	}

	if ac.all && hasRange {
		return ErrAllExcludesRange
	}

	return nil
}

func (ac *AnalyzeCommand) readSelectedAnalyses(cmd *cobra.Command) {
	for _, name := range selectableAnalyses {
		v, err := cmd.Flags().GetBool(name)
		if err == nil {
			ac.selected[name] = v
		}
	}
}

func (ac *AnalyzeCommand) anyExplicitlySelected() bool {
	for _, v := range ac.selected {
		if v {
			return true
		}
	}

	return false
}

func (ac *AnalyzeCommand) resolveDBPath(cfg *config.Config) (string, error) {
	if ac.dbPath != "" {
		return ac.dbPath, nil
	}

	if cfg != nil && cfg.Store.DBPath != "" {
		return cfg.Store.DBPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolve home directory: %v", domain.ErrInput, err)
	}

	dir := filepath.Join(home, ".git-xrays")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create store directory: %v", domain.ErrStore, err)
	}

	return filepath.Join(dir, "runs.db"), nil
}

func (ac *AnalyzeCommand) printRuns(w io.Writer, s *store.Store, repoPath string) error {
	runs, err := s.ListRuns(repoPath)
	if err != nil {
		return fmt.Errorf("%w: list runs: %v", domain.ErrStore, err)
	}

	fmt.Fprintf(w, "Runs for %s (%d):\n", repoPath, len(runs))

	for _, r := range runs {
		fmt.Fprintf(w, "  %s  started=%s  files=%d  commits=%d  dri=%.3f\n",
			r.RunID, r.StartedAt.Format(time.RFC3339), r.TotalFiles, r.TotalCommits, r.DRI)
	}

	return nil
}

func (ac *AnalyzeCommand) printSelectedReports(w io.Writer, result orchestrator.Result) {
	showAll := ac.all || !ac.anyExplicitlySelected()

	fmt.Fprintf(w, "run %s analyzed %s (%d files, %d commits)\n",
		result.Run.RunID, result.Run.RepoPath, result.Run.TotalFiles, result.Run.TotalCommits)

	if showAll || ac.selected["hotspot"] {
		fmt.Fprintf(w, "hotspot: %d files scored\n", len(result.Bundle.Hotspot.Files))
	}

	if showAll || ac.selected["knowledge"] {
		fmt.Fprintf(w, "knowledge: dri=%.3f across %d files\n", result.Bundle.Knowledge.DRI, len(result.Bundle.Knowledge.Files))
	}

	if showAll || ac.selected["coupling"] {
		fmt.Fprintf(w, "coupling: %d pairs\n", len(result.Bundle.Coupling.Pairs))
	}

	if showAll || ac.selected["pain"] {
		fmt.Fprintf(w, "pain: %d files\n", len(result.Bundle.Pain.Files))
	}

	if showAll || ac.selected["anemic"] {
		fmt.Fprintf(w, "anemic: %d classes\n", len(result.Bundle.Anemic.Classes))
	}

	if showAll || ac.selected["godclass"] {
		fmt.Fprintf(w, "godclass: %d classes\n", len(result.Bundle.GodClass.Classes))
	}

	if showAll || ac.selected["complexity"] {
		fmt.Fprintf(w, "complexity: %d functions\n", len(result.Bundle.Complexity.Functions))
	}

	if showAll || ac.selected["cluster"] {
		fmt.Fprintf(w, "cluster: k=%d\n", result.Bundle.Cluster.K)
	}

	if showAll || ac.selected["effort"] {
		fmt.Fprintf(w, "effort: r_squared=%.3f\n", result.Bundle.Effort.RSquared)
	}

	if showAll || ac.selected["dx"] {
		fmt.Fprintf(w, "dx: score=%.3f\n", result.Bundle.DX.DXScore)
	}
}

// parseWindowDays parses a "<N>d" window spec, defaulting to days when no
// suffix is present.
func parseWindowDays(spec string) (int, error) {
	trimmed := strings.TrimSuffix(spec, windowSuffix)

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid window %q: %v", domain.ErrInput, spec, err)
	}

	return n, nil
}

func newRunID() string {
	return uuid.NewString()
}
