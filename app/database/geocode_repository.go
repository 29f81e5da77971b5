package database

import (
	"context"
	"database/sql"
	"fmt"
)

var _ GeocodeRepository = (*GeocodeRepo)(nil)

// GeocodeRepo handles the durable address -> place name cache
type GeocodeRepo struct {
	db *DB
}

func NewGeocodeRepo(db *DB) *GeocodeRepo {
	return &GeocodeRepo{db: db}
}

func (r *GeocodeRepo) GetEntry(ctx context.Context, addressKey string) (*GeocodeEntry, error) {
	var entry GeocodeEntry
	err := r.db.QueryRowContext(ctx, `
		SELECT address_key, location_name, formatted_address, created_at
		FROM geocode_cache
		WHERE address_key = ?
	`, addressKey).Scan(&entry.AddressKey, &entry.LocationName, &entry.FormattedAddress, &entry.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geocode entry: %w", err)
	}

	return &entry, nil
}

func (r *GeocodeRepo) UpsertEntry(ctx context.Context, entry GeocodeEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_key, location_name, formatted_address)
		VALUES (?, ?, ?)
		ON CONFLICT (address_key) DO UPDATE SET
			location_name = excluded.location_name,
			formatted_address = excluded.formatted_address
	`, entry.AddressKey, entry.LocationName, entry.FormattedAddress)
	if err != nil {
		return fmt.Errorf("failed to upsert geocode entry: %w", err)
	}
	return nil
}

func (r *GeocodeRepo) GetEntryCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM geocode_cache").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get geocode entry count: %w", err)
	}
	return count, nil
}
