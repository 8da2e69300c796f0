package mysql

import (
	"context"
	"database/sql"

	"stayfinder/internal/domain"
)

// Repo stores one row per hotel id: the latest full payload plus created/
// updated timestamps. Upserts are last-write-wins per id; concurrent writers
// for the same id are serialized by the primary key.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertHotel(ctx context.Context, rec domain.HotelRecord) error {
	if rec.HotelID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, upsertHotelSQL, rec.HotelID, string(rec.Payload))
	return err
}

func (r *Repo) GetHotel(ctx context.Context, hotelID string) (domain.HotelRecord, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, hotelID)

	var rec domain.HotelRecord
	var payload []byte
	var created, updated sql.NullTime

	if err := row.Scan(&rec.HotelID, &payload, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return domain.HotelRecord{}, domain.ErrNotFound
		}
		return domain.HotelRecord{}, err
	}
	rec.Payload = payload
	if created.Valid {
		rec.CreatedAt = created.Time
	}
	if updated.Valid {
		rec.UpdatedAt = updated.Time
	}
	return rec, nil
}
