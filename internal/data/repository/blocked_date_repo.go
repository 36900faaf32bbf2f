package repository

import (
	"context"
	"fmt"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/pkg/database"

	"go.uber.org/zap"
)

type BlockedDateRepository interface {
	// FindByDate returns all block records covering the date, whole-day
	// and partial alike.
	FindByDate(ctx context.Context, date time.Time) ([]*entity.BlockedDate, error)
}

type blockedDateRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBlockedDateRepository(db database.PgxIface, log *zap.Logger) BlockedDateRepository {
	return &blockedDateRepository{
		db:  db,
		log: log.With(zap.String("repository", "blocked_date")),
	}
}

func (r *blockedDateRepository) FindByDate(ctx context.Context, date time.Time) ([]*entity.BlockedDate, error) {
	query := `
		SELECT id, blocked_date, COALESCE(start_time, ''), COALESCE(end_time, ''), reason, blocked_by, created_at
		FROM blocked_dates
		WHERE blocked_date = $1
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		r.log.Error("Failed to find blocked dates",
			zap.Error(err),
			zap.Time("date", date),
		)
		return nil, fmt.Errorf("find blocked dates for %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var blocks []*entity.BlockedDate
	for rows.Next() {
		var b entity.BlockedDate
		err := rows.Scan(
			&b.ID,
			&b.Date,
			&b.StartTime,
			&b.EndTime,
			&b.Reason,
			&b.BlockedBy,
			&b.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan blocked date row", zap.Error(err))
			return nil, fmt.Errorf("scan blocked date row: %w", err)
		}
		blocks = append(blocks, &b)
	}

	return blocks, nil
}
