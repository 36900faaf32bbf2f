package repository

import (
	"context"
	"fmt"

	"interview-booking/internal/data/entity"
	"interview-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SlotConfigRepository interface {
	// FindActiveByDay returns the active config for a day of week, or nil
	// when the day has none.
	FindActiveByDay(ctx context.Context, dayOfWeek int) (*entity.TimeSlotConfig, error)
	FindAll(ctx context.Context) ([]*entity.TimeSlotConfig, error)
}

type slotConfigRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSlotConfigRepository(db database.PgxIface, log *zap.Logger) SlotConfigRepository {
	return &slotConfigRepository{
		db:  db,
		log: log.With(zap.String("repository", "slot_config")),
	}
}

func (r *slotConfigRepository) FindActiveByDay(ctx context.Context, dayOfWeek int) (*entity.TimeSlotConfig, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, slot_duration, capacity, active, created_at, updated_at
		FROM time_slot_configs
		WHERE day_of_week = $1 AND active = TRUE
	`

	var cfg entity.TimeSlotConfig
	err := r.db.QueryRow(ctx, query, dayOfWeek).Scan(
		&cfg.ID,
		&cfg.DayOfWeek,
		&cfg.StartTime,
		&cfg.EndTime,
		&cfg.SlotDuration,
		&cfg.Capacity,
		&cfg.Active,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find slot config",
			zap.Error(err),
			zap.Int("day_of_week", dayOfWeek),
		)
		return nil, fmt.Errorf("find slot config for day %d: %w", dayOfWeek, err)
	}

	return &cfg, nil
}

func (r *slotConfigRepository) FindAll(ctx context.Context) ([]*entity.TimeSlotConfig, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, slot_duration, capacity, active, created_at, updated_at
		FROM time_slot_configs
		ORDER BY day_of_week
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list slot configs", zap.Error(err))
		return nil, fmt.Errorf("list slot configs: %w", err)
	}
	defer rows.Close()

	var configs []*entity.TimeSlotConfig
	for rows.Next() {
		var cfg entity.TimeSlotConfig
		err := rows.Scan(
			&cfg.ID,
			&cfg.DayOfWeek,
			&cfg.StartTime,
			&cfg.EndTime,
			&cfg.SlotDuration,
			&cfg.Capacity,
			&cfg.Active,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan slot config row", zap.Error(err))
			return nil, fmt.Errorf("scan slot config row: %w", err)
		}
		configs = append(configs, &cfg)
	}

	return configs, nil
}
