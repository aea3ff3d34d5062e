package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"daio-rewards/internal/domain"
	"daio-rewards/internal/observability"
	"daio-rewards/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a tracked wallet. Returns ErrDuplicateKey if address exists.
func (s *WalletStore) Insert(ctx context.Context, w *domain.TrackedWallet) (err error) {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}
	defer observeQuery("insert_wallet", time.Now(), &err)

	addedAt := w.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO tracked_wallets (address, added_at)
		VALUES ($1, $2)
	`, w.Address, addedAt.UTC())
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert tracked wallet: %w", err)
	}
	return nil
}

// Delete removes a tracked wallet. Returns ErrNotFound if not exists.
func (s *WalletStore) Delete(ctx context.Context, address string) (err error) {
	defer observeQuery("delete_wallet", time.Now(), &err)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tracked_wallets WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete tracked wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Get retrieves a tracked wallet by address. Returns ErrNotFound if not exists.
func (s *WalletStore) Get(ctx context.Context, address string) (_ *domain.TrackedWallet, err error) {
	defer observeQuery("get_wallet", time.Now(), &err)

	var w domain.TrackedWallet
	err = s.pool.QueryRow(ctx, `
		SELECT address, added_at
		FROM tracked_wallets
		WHERE address = $1
	`, address).Scan(&w.Address, &w.AddedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get tracked wallet: %w", err)
	}
	return &w, nil
}

// List retrieves all tracked wallets, ordered by added_at ASC, address ASC.
func (s *WalletStore) List(ctx context.Context) (_ []*domain.TrackedWallet, err error) {
	defer observeQuery("list_wallets", time.Now(), &err)

	rows, err := s.pool.Query(ctx, `
		SELECT address, added_at
		FROM tracked_wallets
		ORDER BY added_at ASC, address ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tracked wallets: %w", err)
	}

	wallets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.TrackedWallet, error) {
		var w domain.TrackedWallet
		if err := row.Scan(&w.Address, &w.AddedAt); err != nil {
			return nil, err
		}
		return &w, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan tracked wallets: %w", err)
	}
	return wallets, nil
}

// observeQuery records latency and failure of a postgres operation.
// Not-found and duplicate results are outcomes, not failures.
func observeQuery(operation string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrDuplicateKey) || errors.Is(err, storage.ErrInvalidInput) {
		err = nil
	}
	observability.RecordDBQuery("postgres", operation, time.Since(start).Seconds(), err)
}
