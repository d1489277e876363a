package audit

import (
	"context"
	"fmt"

	bk "github.com/hanksha/tbz-booking-console/booking"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository stores settled booking mutations. It accepts a *pgxpool.Pool or
// a single *pgx.Conn.
type Repository struct{ db DB }

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) RecordMutation(ctx context.Context, entry bk.JournalEntry) error {
	sql := `
			INSERT INTO "booking-console".mutation_log (id, "bookingId", action, "actorId", "previousStatus", "targetStatus", outcome, message, "settledAt")
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
		`

	_, err := r.db.Exec(ctx, sql,
		entry.ID,
		entry.BookingID,
		string(entry.Action),
		entry.ActorID,
		string(entry.Previous),
		string(entry.Target),
		entry.Outcome.String(),
		entry.Message,
		entry.SettledAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record mutation for booking %v: %w", entry.BookingID, err)
	}

	return nil
}

func (r *Repository) History(ctx context.Context, bookingID int64) ([]bk.JournalEntry, error) {
	sql := `
			SELECT id::text, "bookingId", action, "actorId", "previousStatus", "targetStatus", outcome, message, "settledAt"
			FROM "booking-console".mutation_log
			WHERE "bookingId"=$1
			ORDER BY "settledAt" DESC;
		`

	rows, err := r.db.Query(ctx, sql, bookingID)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch history of booking %v: %w", bookingID, err)
	}

	defer rows.Close()

	entries := []bk.JournalEntry{}

	for rows.Next() {
		var (
			entry                             bk.JournalEntry
			action, previous, target, outcome string
		)

		err := rows.Scan(
			&entry.ID,
			&entry.BookingID,
			&action,
			&entry.ActorID,
			&previous,
			&target,
			&outcome,
			&entry.Message,
			&entry.SettledAt,
		)

		if err != nil {
			return nil, fmt.Errorf("error scanning mutation row: %w", err)
		}

		entry.Action = bk.Action(action)
		entry.Previous = bk.Status(previous)
		entry.Target = bk.Status(target)
		entry.Outcome = bk.ParseOutcome(outcome)

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mutation rows: %w", err)
	}

	return entries, nil
}
