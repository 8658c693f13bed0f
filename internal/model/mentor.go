package model

import "time"

type Mentor struct {
	ID             int64     `json:"id"`
	DisplayName    string    `json:"display_name"`
	TelegramChatID *int64    `json:"-"` // указатель - может быть nil, наружу не отдаём
	CreatedAt      time.Time `json:"created_at"`
}
