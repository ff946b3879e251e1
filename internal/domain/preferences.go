package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Theme enumerates display themes.
type Theme string

const (
	ThemeLight  Theme = "LIGHT"
	ThemeDark   Theme = "DARK"
	ThemeSystem Theme = "SYSTEM"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// DashboardView enumerates the default landing views.
type DashboardView string

const (
	DashboardViewMine DashboardView = "MY_TICKETS"
	DashboardViewAll  DashboardView = "ALL_TICKETS"
	DashboardViewStats DashboardView = "STATS"
)

// Valid reports whether v is a known view.
func (v DashboardView) Valid() bool {
	return v == DashboardViewMine || v == DashboardViewAll || v == DashboardViewStats
}

// DisplayPreferences controls presentation.
type DisplayPreferences struct {
	Theme       Theme `bson:"theme" json:"theme"`
	CompactMode bool  `bson:"compactMode" json:"compactMode"`
}

// NotificationPreferences controls per-user delivery.
type NotificationPreferences struct {
	EmailEnabled    bool `bson:"emailEnabled" json:"emailEnabled"`
	OnStatusChange  bool `bson:"onStatusChange" json:"onStatusChange"`
	OnCommentAdded  bool `bson:"onCommentAdded" json:"onCommentAdded"`
	DailyDigest     bool `bson:"dailyDigest" json:"dailyDigest"`
}

// DashboardPreferences controls the landing view.
type DashboardPreferences struct {
	DefaultView DashboardView `bson:"defaultView" json:"defaultView"`
	PageSize    int           `bson:"pageSize" json:"pageSize"`
}

// AccessibilityPreferences controls accessibility toggles.
type AccessibilityPreferences struct {
	HighContrast bool `bson:"highContrast" json:"highContrast"`
	LargeText    bool `bson:"largeText" json:"largeText"`
}

// UserPreferences is the one-per-user settings bag, created lazily on first
// read and fully replaceable.
type UserPreferences struct {
	ID            primitive.ObjectID       `bson:"_id,omitempty" json:"-"`
	UserID        string                   `bson:"userId" json:"userId"`
	Display       DisplayPreferences       `bson:"display" json:"display"`
	Notifications NotificationPreferences  `bson:"notifications" json:"notifications"`
	Dashboard     DashboardPreferences     `bson:"dashboard" json:"dashboard"`
	Accessibility AccessibilityPreferences `bson:"accessibility" json:"accessibility"`
	UpdatedAt     time.Time                `bson:"updatedAt" json:"updatedAt"`
}

// DefaultPreferences returns the lazily-created settings for a user.
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID: userID,
		Display: DisplayPreferences{
			Theme: ThemeSystem,
		},
		Notifications: NotificationPreferences{
			EmailEnabled:   true,
			OnStatusChange: true,
			OnCommentAdded: true,
		},
		Dashboard: DashboardPreferences{
			DefaultView: DashboardViewMine,
			PageSize:    20,
		},
	}
}
