package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine"
)

// OpenStore connects to the primary (and the replica, if configured) with the adapter
// named in cfg.AdapterType and builds a postgresengine.Store on top.
// The returned close function releases all connections; it is never nil on success.
func OpenStore(ctx context.Context, cfg Config, options ...postgresengine.Option) (*postgresengine.Store, func(), error) {
	options = append([]postgresengine.Option{postgresengine.WithLockTimeout(cfg.LockTimeout)}, options...)

	switch cfg.AdapterType {
	case AdapterPGXPool:
		return openPGXStore(ctx, cfg, options)
	case AdapterSQLDB:
		return openSQLDBStore(ctx, cfg, options)
	case AdapterSQLXDB:
		return openSQLXStore(ctx, cfg, options)
	default:
		return nil, nil, errors.Join(ErrInvalidConfig, fmt.Errorf("unsupported adapter %q", cfg.AdapterType))
	}
}

func openPGXStore(ctx context.Context, cfg Config, options []postgresengine.Option) (*postgresengine.Store, func(), error) {
	primary, err := NewPGXPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.HasReplica() {
		store, storeErr := postgresengine.NewStoreFromPGXPool(primary, options...)
		if storeErr != nil {
			primary.Close()
			return nil, nil, storeErr
		}

		return store, primary.Close, nil
	}

	replica, err := NewPGXPool(ctx, cfg.DatabaseReplicaURL)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		replica.Close()
		primary.Close()
	}

	store, err := postgresengine.NewStoreFromPGXPoolWithReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}

func openSQLDBStore(ctx context.Context, cfg Config, options []postgresengine.Option) (*postgresengine.Store, func(), error) {
	primary, err := NewSQLDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.HasReplica() {
		store, storeErr := postgresengine.NewStoreFromSQLDB(primary, options...)
		if storeErr != nil {
			_ = primary.Close()
			return nil, nil, storeErr
		}

		return store, func() { _ = primary.Close() }, nil
	}

	replica, err := NewSQLDB(ctx, cfg.DatabaseReplicaURL)
	if err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		_ = replica.Close()
		_ = primary.Close()
	}

	store, err := postgresengine.NewStoreFromSQLDBWithReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}

func openSQLXStore(ctx context.Context, cfg Config, options []postgresengine.Option) (*postgresengine.Store, func(), error) {
	primary, err := NewSQLXDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.HasReplica() {
		store, storeErr := postgresengine.NewStoreFromSQLX(primary, options...)
		if storeErr != nil {
			_ = primary.Close()
			return nil, nil, storeErr
		}

		return store, func() { _ = primary.Close() }, nil
	}

	replica, err := NewSQLXDB(ctx, cfg.DatabaseReplicaURL)
	if err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		_ = replica.Close()
		_ = primary.Close()
	}

	store, err := postgresengine.NewStoreFromSQLXWithReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}
