package appstate

import (
	"errors"
	"time"

	"github.com/trezcool/shiksha/core"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnknownLanguage      = errors.New("unknown language")
	ErrUnknownNotification  = errors.New("unknown notification type")
)

type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

func ParseLanguage(s string) (Language, error) {
	switch lang := Language(core.CleanString(s, true)); lang {
	case LanguageEnglish, LanguageHindi:
		return lang, nil
	}
	return "", ErrUnknownLanguage
}

// Toggle switches between English and Hindi.
func (l Language) Toggle() Language {
	if l == LanguageHindi {
		return LanguageEnglish
	}
	return LanguageHindi
}

type NotificationType string

const (
	NotificationHomework     NotificationType = "homework"
	NotificationCompetition  NotificationType = "competition"
	NotificationMarks        NotificationType = "marks"
	NotificationAnnouncement NotificationType = "announcement"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationHomework, NotificationCompetition, NotificationMarks, NotificationAnnouncement:
		return true
	}
	return false
}

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"` // UTC
	Read      bool             `json:"read"`
}

// NewNotification contains what is needed to push a notification to a session.
type NewNotification struct {
	Type    NotificationType `json:"type" validate:"required,oneof=homework competition marks announcement"`
	Title   string           `json:"title" validate:"required"`
	Message string           `json:"message" validate:"required"`
}

// State is the app-wide state of one session: connectivity, sync, language and notifications.
type State struct {
	Online        bool           `json:"online"`
	SyncStatus    SyncStatus     `json:"sync_status"`
	Language      Language       `json:"language"`
	Notifications []Notification `json:"notifications"` // newest first
	Loading       bool           `json:"loading"`
	LastSyncedAt  *time.Time     `json:"last_synced_at,omitempty"`
}

func InitialState(online bool) State {
	return State{
		Online:        online,
		SyncStatus:    SyncIdle,
		Language:      LanguageEnglish,
		Notifications: []Notification{},
	}
}

func (st State) UnreadCount() int {
	var n int
	for _, notif := range st.Notifications {
		if !notif.Read {
			n++
		}
	}
	return n
}

// Clone returns a copy that does not share its notifications with st.
func (st State) Clone() State {
	notifs := make([]Notification, len(st.Notifications))
	copy(notifs, st.Notifications)
	st.Notifications = notifs
	if st.LastSyncedAt != nil {
		t := *st.LastSyncedAt
		st.LastSyncedAt = &t
	}
	return st
}
