package service

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/id"
	"github.com/kgdevtools/lca-auth-sub003/internal/importer"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
	"github.com/kgdevtools/lca-auth-sub003/internal/watcher"
)

// Import statuses reported per file.
const (
	ImportStatusImported = metrics.ImportImported
	ImportStatusSkipped  = metrics.ImportSkipped
	ImportStatusFailed   = metrics.ImportFailed
)

// ImportOptions tune one import run.
type ImportOptions struct {
	// Force imports files whose fingerprint is already in the ledger.
	Force bool
	// TournamentID links imported games to a tournament.
	TournamentID string
}

// ImportResult reports what happened to one file.
type ImportResult struct {
	Path         string            `json:"path"`
	Kind         domain.ImportKind `json:"kind,omitempty"`
	Status       string            `json:"status"`
	Fingerprint  string            `json:"fingerprint,omitempty"`
	TournamentID string            `json:"tournament_id,omitempty"`
	Table        string            `json:"table,omitempty"`
	Rows         int               `json:"rows"`
	Error        string            `json:"error,omitempty"`
}

// ImportSummary reports a run over many files.
type ImportSummary struct {
	RunID    string         `json:"run_id"`
	Results  []ImportResult `json:"results"`
	Imported int            `json:"imported"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
}

// ImportService loads dropped files into the store. Each file is imported
// once per content fingerprint; the ledger remembers what was seen.
type ImportService struct {
	store       *sqlite.Store
	ledger      *store.Store
	opponents   *OpponentService
	search      *SearchService
	metrics     *metrics.Recorder
	logger      *slog.Logger
	concurrency int
}

// NewImportService creates an import service. opponents and search may be
// nil when nothing needs refreshing after a standings import.
func NewImportService(
	db *sqlite.Store,
	ledger *store.Store,
	opponents *OpponentService,
	searchSvc *SearchService,
	rec *metrics.Recorder,
	logger *slog.Logger,
	concurrency int,
) *ImportService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ImportService{
		store:       db,
		ledger:      ledger,
		opponents:   opponents,
		search:      searchSvc,
		metrics:     rec,
		logger:      logger,
		concurrency: concurrency,
	}
}

// ImportPaths imports every supported file among paths. Directories are
// walked; hidden files and unsupported extensions are left alone. One
// failing file does not stop the others. The returned error is only set
// when ctx ends the run or a path cannot be listed.
func (s *ImportService) ImportPaths(ctx context.Context, paths []string, opts ImportOptions) (*ImportSummary, error) {
	files, err := collectImportFiles(paths)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{RunID: id.RunID(), Results: make([]ImportResult, len(files))}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary.Results[i] = s.importFile(gctx, summary.RunID, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range summary.Results {
		switch r.Status {
		case ImportStatusImported:
			summary.Imported++
		case ImportStatusSkipped:
			summary.Skipped++
		case ImportStatusFailed:
			summary.Failed++
		}
	}

	s.logger.Info("import run finished",
		"run_id", summary.RunID,
		"files", len(files),
		"imported", summary.Imported,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", time.Since(start),
	)
	return summary, nil
}

// ImportFile imports a single file.
func (s *ImportService) ImportFile(ctx context.Context, path string, opts ImportOptions) ImportResult {
	return s.importFile(ctx, id.RunID(), path, opts)
}

// Consume imports the files reported by events until the channel closes or
// ctx ends. Removed files are left in the store.
func (s *ImportService) Consume(ctx context.Context, events <-chan watcher.Event, opts ImportOptions) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.Importable() {
				s.logger.Debug("dropped file removed", "event", ev)
				continue
			}
			if _, supported := importer.KindForFile(ev.Path); !supported {
				continue
			}
			res := s.ImportFile(ctx, ev.Path, opts)
			s.logger.Debug("watched file handled", "event", ev, "status", res.Status)
		}
	}
}

// ListImports pages through the ledger, newest first.
func (s *ImportService) ListImports(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.ImportRecord], error) {
	return s.ledger.ListImports(ctx, params)
}

// Forget drops a fingerprint from the ledger so the file is imported again
// the next time it is dropped.
func (s *ImportService) Forget(ctx context.Context, fingerprint string) error {
	return s.ledger.ForgetImport(ctx, strings.TrimSpace(fingerprint))
}

func (s *ImportService) importFile(ctx context.Context, runID, path string, opts ImportOptions) (result ImportResult) {
	result = ImportResult{Path: path}
	kind, ok := importer.KindForFile(path)
	if !ok {
		result.Status = ImportStatusFailed
		result.Error = domainerrors.Validationf("unsupported file type %q", filepath.Ext(path)).Error()
		return result
	}
	result.Kind = kind

	defer func() {
		s.metrics.ImportFile(string(kind), result.Status)
		if result.Status == ImportStatusImported {
			s.metrics.ImportRows(string(kind), result.Rows)
		}
	}()

	fail := func(err error) ImportResult {
		result.Status = ImportStatusFailed
		result.Error = err.Error()
		s.logger.Warn("import failed", "path", path, "kind", kind, "error", err)
		return result
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("read file: %w", err))
	}
	fp, err := importer.Fingerprint(bytes.NewReader(data))
	if err != nil {
		return fail(fmt.Errorf("fingerprint: %w", err))
	}
	result.Fingerprint = fp

	if !opts.Force {
		seen, err := s.ledger.HasImport(ctx, fp)
		if err != nil {
			return fail(fmt.Errorf("check ledger: %w", err))
		}
		if seen {
			result.Status = ImportStatusSkipped
			s.logger.Debug("import skipped, already seen", "path", path, "fingerprint", fp)
			return result
		}
	}

	switch kind {
	case domain.ImportKindStandings:
		err = s.importStandings(ctx, path, data, &result)
	case domain.ImportKindTournaments:
		err = s.importTournaments(ctx, data, &result)
	case domain.ImportKindGames:
		err = s.importGames(ctx, path, data, opts, &result)
	}
	if err != nil {
		return fail(err)
	}

	rec := &domain.ImportRecord{
		Fingerprint:  fp,
		RunID:        runID,
		Path:         path,
		Kind:         kind,
		TournamentID: result.TournamentID,
		Table:        result.Table,
		Rows:         result.Rows,
	}
	if err := s.ledger.RecordImport(ctx, rec); err != nil {
		return fail(fmt.Errorf("record import: %w", err))
	}

	result.Status = ImportStatusImported
	s.logger.Info("file imported",
		"path", path,
		"kind", kind,
		"rows", result.Rows,
		"tournament_id", result.TournamentID,
		"table", result.Table,
	)
	return result
}

func (s *ImportService) importStandings(ctx context.Context, path string, data []byte, result *ImportResult) error {
	standings, err := importer.ParseStandingsHTML(bytes.NewReader(data))
	if err != nil {
		return err
	}

	t := standings.Tournament
	if t.String("id") == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t["id"] = importer.TournamentIDFor(base)
		if t.String("name") == "" {
			t["name"] = base
		}
	}
	tournamentID := t.String("id")
	if tournamentID == "" {
		return domainerrors.Validationf("cannot derive a tournament id for %s", filepath.Base(path))
	}
	t["source"] = filepath.Base(path)

	if err := s.store.UpsertTournament(ctx, t); err != nil {
		return err
	}
	if err := s.store.ReplacePlayers(ctx, tournamentID, standings.Players); err != nil {
		return err
	}

	if s.opponents != nil {
		s.opponents.ClearCache(tournamentID)
	}
	if s.search != nil {
		if _, err := s.search.ReindexTournament(ctx, tournamentID); err != nil {
			s.logger.Warn("failed to reindex tournament after import",
				"tournament_id", tournamentID,
				"error", err,
			)
		}
	}

	result.TournamentID = tournamentID
	result.Rows = len(standings.Players)
	return nil
}

func (s *ImportService) importTournaments(ctx context.Context, data []byte, result *ImportResult) error {
	rows, err := importer.ParseTournamentCSV(bytes.NewReader(data))
	if err != nil {
		return err
	}
	for i, row := range rows {
		if err := s.store.UpsertTournament(ctx, row); err != nil {
			return fmt.Errorf("tournament row %d: %w", i+1, err)
		}
	}
	result.Rows = len(rows)
	return nil
}

func (s *ImportService) importGames(ctx context.Context, path string, data []byte, opts ImportOptions, result *ImportResult) error {
	table := importer.TableNameForFile(path)
	if table == "" {
		return domainerrors.Validationf("cannot derive a game table for %s", filepath.Base(path))
	}
	games, err := importer.SplitPGN(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if len(games) == 0 {
		return importer.ErrNoRows
	}

	n, err := s.store.ReplaceGames(ctx, table, importer.GameRows(games, opts.TournamentID))
	if err != nil {
		return err
	}
	result.Table = table
	result.TournamentID = opts.TournamentID
	result.Rows = n
	return nil
}

// collectImportFiles expands directories and keeps supported files, sorted
// and without duplicates.
func collectImportFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if strings.HasPrefix(d.Name(), ".") && p != root {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := importer.KindForFile(p); ok {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
