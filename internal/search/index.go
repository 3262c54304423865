package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// PlayerIndex wraps a Bleve index of player standings.
//
// All public methods are safe for concurrent use. Rebuild takes the write
// lock; everything else shares the read lock.
type PlayerIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Discards output if nil
}

// mappingVersion changes whenever buildIndexMapping does. A mismatch on
// open recreates the index empty; the caller reindexes from the store.
const mappingVersion = "1"

const batchSize = 500

// NewPlayerIndex opens the index under opts.DataPath, creating it when
// missing, unreadable, or built with an older mapping. created reports
// whether the caller must repopulate it.
func NewPlayerIndex(opts Options) (idx *PlayerIndex, created bool, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, false, fmt.Errorf("create search dir: %w", err)
	}
	indexPath := filepath.Join(opts.DataPath, "players.bleve")
	versionPath := filepath.Join(opts.DataPath, "players.version")

	var index bleve.Index
	needsRebuild := false

	if _, statErr := os.Stat(indexPath); statErr == nil {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, recreating", "new_version", mappingVersion)
			needsRebuild = true
		case string(existing) != mappingVersion:
			logger.Info("search index mapping changed, recreating",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
				needsRebuild = true
				index = nil
			}
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, false, fmt.Errorf("remove old index: %w", err)
		}
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, false, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		created = true
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened search index", "path", indexPath)
	}

	return &PlayerIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, created, nil
}

// Close releases the index.
func (p *PlayerIndex) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index.Close()
}

// Shutdown implements the DI shutdown hook.
func (p *PlayerIndex) Shutdown() error {
	return p.Close()
}

// IndexPlayers adds or replaces docs in chunks of batchSize.
func (p *PlayerIndex) IndexPlayers(docs []*PlayerDocument) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := p.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := p.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteTournament removes every document of one tournament and returns how
// many were removed.
func (p *PlayerIndex) DeleteTournament(tournamentID string) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	q := bleve.NewTermQuery(tournamentID)
	q.SetField("tournament_id")

	removed := 0
	for {
		req := bleve.NewSearchRequestOptions(q, batchSize, 0, false)
		res, err := p.index.Search(req)
		if err != nil {
			return removed, fmt.Errorf("find tournament docs: %w", err)
		}
		if len(res.Hits) == 0 {
			return removed, nil
		}

		batch := p.index.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := p.index.Batch(batch); err != nil {
			return removed, fmt.Errorf("delete tournament docs: %w", err)
		}
		removed += len(res.Hits)
	}
}

// DocumentCount returns the number of indexed players.
func (p *PlayerIndex) DocumentCount() (uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index.DocCount()
}

// Rebuild drops the index and creates an empty one. It blocks every other
// operation until done.
func (p *PlayerIndex) Rebuild() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(p.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(p.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	p.index = index
	p.logger.Info("rebuilt search index", "path", p.path)
	return nil
}
