package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AvailabilityRepository хранит еженедельные шаблоны доступности
type AvailabilityRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewAvailabilityRepository создаёт новый репозиторий
func NewAvailabilityRepository(pool *pgxpool.Pool, logger *zap.Logger) *AvailabilityRepository {
	return &AvailabilityRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// GetTemplate собирает шаблон ментора. Без строк в БД возвращает пустой шаблон.
func (r *AvailabilityRepository) GetTemplate(ctx context.Context, mentorID int64) (*model.AvailabilityTemplate, error) {
	return r.getTemplate(ctx, r.Pool(), mentorID)
}

func (r *AvailabilityRepository) getTemplate(ctx context.Context, q base.Querier, mentorID int64) (*model.AvailabilityTemplate, error) {
	tpl := model.NewAvailabilityTemplate(mentorID)

	err := q.QueryRow(ctx, `
		SELECT version, updated_at
		FROM availability_templates
		WHERE mentor_id = $1
	`, mentorID).Scan(&tpl.Version, &tpl.UpdatedAt)
	if err != nil && !base.IsNotFound(err) {
		return nil, fmt.Errorf("get availability template: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT weekday, start_minute, end_minute
		FROM availability_ranges
		WHERE mentor_id = $1
		ORDER BY weekday, start_minute
	`, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get availability ranges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var weekday int
		var rng model.TimeRange
		if err := rows.Scan(&weekday, &rng.Start, &rng.End); err != nil {
			return nil, fmt.Errorf("scan availability range: %w", err)
		}
		w := model.Weekday(weekday)
		if !w.Valid() {
			r.logger.Warn("Skipping range with invalid weekday",
				zap.Int64("mentor_id", mentorID),
				zap.Int("weekday", weekday))
			continue
		}
		tpl.Days[w].Ranges = append(tpl.Days[w].Ranges, rng)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability ranges: %w", err)
	}

	return tpl, nil
}

// ReplaceDays заменяет интервалы указанных дней одной транзакцией и
// увеличивает версию шаблона. Интервалы должны быть уже провалидированы.
func (r *AvailabilityRepository) ReplaceDays(ctx context.Context, mentorID int64, days map[model.Weekday][]model.TimeRange) (*model.AvailabilityTemplate, error) {
	weekdays := make([]model.Weekday, 0, len(days))
	for w := range days {
		weekdays = append(weekdays, w)
	}
	sort.Slice(weekdays, func(i, j int) bool { return weekdays[i] < weekdays[j] })

	var tpl *model.AvailabilityTemplate
	err := r.InTx(ctx, func(tx pgx.Tx) error {
		// Блокируем шаблон ментора, параллельные правки идут последовательно
		_, err := tx.Exec(ctx, `
			INSERT INTO availability_templates (mentor_id, version, updated_at)
			VALUES ($1, 1, now())
			ON CONFLICT (mentor_id) DO UPDATE
			SET version = availability_templates.version + 1,
				updated_at = now()
		`, mentorID)
		if err != nil {
			return fmt.Errorf("bump template version: %w", err)
		}

		for _, w := range weekdays {
			_, err := tx.Exec(ctx,
				`DELETE FROM availability_ranges WHERE mentor_id = $1 AND weekday = $2`,
				mentorID, int(w))
			if err != nil {
				return fmt.Errorf("clear %s ranges: %w", w, err)
			}

			for _, rng := range days[w] {
				_, err := tx.Exec(ctx, `
					INSERT INTO availability_ranges (mentor_id, weekday, start_minute, end_minute)
					VALUES ($1, $2, $3, $4)
				`, mentorID, int(w), rng.Start, rng.End)
				if err != nil {
					return fmt.Errorf("insert %s range %s: %w", w, rng, err)
				}
			}
		}

		tpl, err = r.getTemplate(ctx, tx, mentorID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("replace availability days: %w", err)
	}

	return tpl, nil
}
