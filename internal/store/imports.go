package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
)

// RecordImport stores rec under its fingerprint. Recording the same
// fingerprint again replaces the earlier record.
func (s *Store) RecordImport(ctx context.Context, rec *domain.ImportRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil || rec.Fingerprint == "" {
		return ErrInvalidInput
	}
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal import record: %w", err)
	}

	key := buildKey(importPrefix, rec.Fingerprint)
	defer releaseKey(key)
	logKey := buildKey(importLogPrefix, logStamp(rec.ImportedAt), ":", rec.Fingerprint)
	defer releaseKey(logKey)

	return s.db.Update(func(txn *badger.Txn) error {
		if prev, err := readImport(txn, key); err == nil {
			oldLog := []byte(importLogPrefix + logStamp(prev.ImportedAt) + ":" + prev.Fingerprint)
			if err := txn.Delete(oldLog); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(logKey, []byte(rec.Fingerprint))
	})
}

// HasImport reports whether a file with this fingerprint was imported.
func (s *Store) HasImport(ctx context.Context, fingerprint string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := buildKey(importPrefix, fingerprint)
	defer releaseKey(key)
	return s.exists(key)
}

// GetImport returns the record stored for fingerprint.
func (s *Store) GetImport(ctx context.Context, fingerprint string) (*domain.ImportRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := buildKey(importPrefix, fingerprint)
	defer releaseKey(key)

	var rec domain.ImportRecord
	if err := s.get(key, &rec); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get import %s: %w", fingerprint, err)
	}
	return &rec, nil
}

// ForgetImport removes a record so the same file is imported again the
// next time it is seen.
func (s *Store) ForgetImport(ctx context.Context, fingerprint string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := buildKey(importPrefix, fingerprint)
	defer releaseKey(key)

	return s.db.Update(func(txn *badger.Txn) error {
		rec, err := readImport(txn, key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := txn.Delete([]byte(importLogPrefix + logStamp(rec.ImportedAt) + ":" + rec.Fingerprint)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// ListImports returns import records, newest first.
func (s *Store) ListImports(ctx context.Context, params PaginationParams) (*PaginatedResult[domain.ImportRecord], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params.Validate()

	after, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, ErrInvalidInput.WithCause(err)
	}

	result := &PaginatedResult[domain.ImportRecord]{Items: []domain.ImportRecord{}}
	prefix := []byte(importLogPrefix)

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(bytes.Clone(prefix), 0xFF)
		if after != "" {
			seek = []byte(after)
		}

		var lastKey string
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			k := string(it.Item().Key())
			if k == after {
				continue
			}
			if len(result.Items) == params.Limit {
				result.HasMore = true
				break
			}

			fingerprint, verr := it.Item().ValueCopy(nil)
			if verr != nil {
				return verr
			}
			rec, err := readImport(txn, []byte(importPrefix+string(fingerprint)))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			result.Items = append(result.Items, *rec)
			lastKey = k
		}
		if result.HasMore {
			result.NextCursor = EncodeCursor(lastKey)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return result, nil
}

func readImport(txn *badger.Txn, key []byte) (*domain.ImportRecord, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	var rec domain.ImportRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return nil, err
	}
	return &rec, nil
}
