package store

import (
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
)

// Sentinel errors returned by the ledger.
var (
	ErrNotFound     = domainerrors.NotFound("import record not found")
	ErrInvalidInput = domainerrors.Validation("invalid import record")
)
