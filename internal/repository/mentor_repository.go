package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MentorRepository struct {
	*base.Repository
}

func NewMentorRepository(pool *pgxpool.Pool) *MentorRepository {
	return &MentorRepository{Repository: base.NewRepository(pool)}
}

// Create регистрирует ментора. ID приходит из сервиса идентификации,
// повторная регистрация обновляет профиль.
func (r *MentorRepository) Create(ctx context.Context, mentor *model.Mentor) error {
	query := `
		INSERT INTO mentors (id, display_name, telegram_chat_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
			telegram_chat_id = EXCLUDED.telegram_chat_id
		RETURNING created_at
	`

	err := r.Pool().QueryRow(ctx, query,
		mentor.ID,
		mentor.DisplayName,
		mentor.TelegramChatID,
	).Scan(&mentor.CreatedAt)

	if err != nil {
		return fmt.Errorf("create mentor: %w", err)
	}

	return nil
}

// GetByID получает ментора по ID
func (r *MentorRepository) GetByID(ctx context.Context, id int64) (*model.Mentor, error) {
	query := `
		SELECT id, display_name, telegram_chat_id, created_at
		FROM mentors
		WHERE id = $1
	`

	var mentor model.Mentor
	err := r.Pool().QueryRow(ctx, query, id).Scan(
		&mentor.ID,
		&mentor.DisplayName,
		&mentor.TelegramChatID,
		&mentor.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Ментор не найден
		}
		return nil, fmt.Errorf("get mentor by id: %w", err)
	}

	return &mentor, nil
}

// ListIDs возвращает ID всех менторов
func (r *MentorRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.Pool().Query(ctx, `SELECT id FROM mentors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan mentor id: %w", err)
	}

	return ids, nil
}

// GetPricing получает тарифы ментора, nil если не настроены
func (r *MentorRepository) GetPricing(ctx context.Context, mentorID int64) (*model.PricingRule, error) {
	query := `
		SELECT mentor_id, currency, min_session_minutes, granularity_minutes
		FROM pricing_rules
		WHERE mentor_id = $1
	`

	rule := &model.PricingRule{Rates: map[model.SessionMode]int64{}}
	err := r.Pool().QueryRow(ctx, query, mentorID).Scan(
		&rule.MentorID,
		&rule.Currency,
		&rule.MinSessionMinutes,
		&rule.GranularityMinutes,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pricing rule: %w", err)
	}

	rows, err := r.Pool().Query(ctx, `SELECT mode, rate FROM pricing_rates WHERE mentor_id = $1`, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get pricing rates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mode string
		var rate int64
		if err := rows.Scan(&mode, &rate); err != nil {
			return nil, fmt.Errorf("scan pricing rate: %w", err)
		}
		rule.Rates[model.SessionMode(mode)] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pricing rates: %w", err)
	}

	return rule, nil
}

// UpsertPricing заменяет тарифы ментора целиком
func (r *MentorRepository) UpsertPricing(ctx context.Context, rule *model.PricingRule) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO pricing_rules (mentor_id, currency, min_session_minutes, granularity_minutes, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (mentor_id) DO UPDATE
			SET currency = EXCLUDED.currency,
				min_session_minutes = EXCLUDED.min_session_minutes,
				granularity_minutes = EXCLUDED.granularity_minutes,
				updated_at = now()
		`, rule.MentorID, rule.Currency, rule.MinSessionMinutes, rule.Granularity())
		if err != nil {
			return fmt.Errorf("upsert pricing rule: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM pricing_rates WHERE mentor_id = $1`, rule.MentorID); err != nil {
			return fmt.Errorf("clear pricing rates: %w", err)
		}

		for mode, rate := range rule.Rates {
			_, err := tx.Exec(ctx,
				`INSERT INTO pricing_rates (mentor_id, mode, rate) VALUES ($1, $2, $3)`,
				rule.MentorID, string(mode), rate)
			if err != nil {
				return fmt.Errorf("insert pricing rate %s: %w", mode, err)
			}
		}

		return nil
	})
}
