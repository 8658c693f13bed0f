package model

import (
	"fmt"
	"strings"
)

// SessionMode канал связи для занятия
type SessionMode string

const (
	SessionModeChat  SessionMode = "chat"
	SessionModeVoice SessionMode = "voice"
	SessionModeVideo SessionMode = "video"
)

// AllSessionModes все поддерживаемые режимы в стабильном порядке
var AllSessionModes = []SessionMode{SessionModeChat, SessionModeVoice, SessionModeVideo}

// ParseSessionMode разбирает режим занятия, неизвестные значения отклоняются
func ParseSessionMode(s string) (SessionMode, error) {
	mode := SessionMode(strings.ToLower(strings.TrimSpace(s)))
	if !mode.Valid() {
		return "", fmt.Errorf("unknown session mode %q", s)
	}
	return mode, nil
}

// Valid проверяет что режим входит в закрытый список
func (m SessionMode) Valid() bool {
	switch m {
	case SessionModeChat, SessionModeVoice, SessionModeVideo:
		return true
	}
	return false
}

func (m *SessionMode) UnmarshalText(text []byte) error {
	parsed, err := ParseSessionMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
