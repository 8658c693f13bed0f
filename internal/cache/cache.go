// Package cache кэш проекций календаря ментора.
//
// Ключи содержат счётчик поколения ментора, поэтому инвалидация -
// одно увеличение счётчика, старые записи доживают до TTL и не читаются.
package cache

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
)

// ProjectionCache хранит уже спроецированные слоты.
// Поколение читается до проекции и передаётся в Set: результат, посчитанный
// до инвалидации, сохранится под старым поколением и не будет прочитан.
type ProjectionCache interface {
	Generation(ctx context.Context, mentorID int64) (int64, error)
	// Get возвращает слоты и true при попадании
	Get(ctx context.Context, mentorID, generation int64, key string) ([]model.ConcreteSlot, bool, error)
	Set(ctx context.Context, mentorID, generation int64, key string, slots []model.ConcreteSlot) error
	// InvalidateMentor делает недоступными все записи ментора
	InvalidateMentor(ctx context.Context, mentorID int64) error
}

func generationKey(mentorID int64) string {
	return fmt.Sprintf("projection:gen:%d", mentorID)
}

func entryKey(mentorID, generation int64, key string) string {
	return fmt.Sprintf("projection:%d:%d:%s", mentorID, generation, key)
}
