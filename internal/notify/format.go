package notify

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
)

var weekdayNames = [model.DaysInWeek]string{
	"Воскресенье",
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
}

var modeNames = map[model.SessionMode]string{
	model.SessionModeChat:  "чат",
	model.SessionModeVoice: "голос",
	model.SessionModeVideo: "видео",
}

// weekdayName название дня недели на русском
func weekdayName(w model.Weekday) string {
	if !w.Valid() {
		return "Неизвестно"
	}
	return weekdayNames[w]
}

// formatSessionDate дата занятия: 19.10.2026 (Понедельник)
func formatSessionDate(date time.Time) string {
	return fmt.Sprintf("%s (%s)", date.Format("02.01.2006"), weekdayName(model.WeekdayOf(date)))
}

// formatDuration длительность в минутах: 45 мин, 1 ч, 1 ч 30 мин
func formatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

func modeName(m model.SessionMode) string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return string(m)
}
