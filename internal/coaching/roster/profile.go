package roster

import (
	"errors"
	"strings"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/day"
)

const (
	RoleClient = "client"
	RoleCoach  = "coach"

	// CoachSenderID marks chat messages written by the coach.
	CoachSenderID = "coach"
)

var (
	ErrClientInactive      = errors.New("client account is inactive")
	ErrSubscriptionExpired = errors.New("client subscription expired")
)

type ClientProfile struct {
	ID                    string      `json:"id"`
	Email                 string      `json:"email"`
	Name                  string      `json:"name"`
	Role                  string      `json:"role"`
	Targets               day.Targets `json:"targets"`
	IsActive              bool        `json:"isActive"`
	SubscriptionExpiresAt *time.Time  `json:"subscriptionExpiresAt,omitempty"`
	HasUnreadCoachMsg     bool        `json:"hasUnreadCoachMsg"`
	HasUnreadClientMsg    bool        `json:"hasUnreadClientMsg"`
	Messages              []Message   `json:"messages,omitempty"`
	CreatedAt             time.Time   `json:"createdAt"`
}

// NewClientProfile is the profile a freshly signed-up account gets.
func NewClientProfile(id, email string, createdAt time.Time) ClientProfile {
	return ClientProfile{
		ID:        id,
		Email:     email,
		Name:      email,
		Role:      RoleClient,
		Targets:   day.InitialTargets,
		IsActive:  true,
		CreatedAt: createdAt,
	}
}

// CheckAccess rejects clients the coach deactivated or whose license ran out.
func (p ClientProfile) CheckAccess(now time.Time) error {
	if !p.IsActive {
		return ErrClientInactive
	}
	if p.SubscriptionExpiresAt != nil && now.After(*p.SubscriptionExpiresAt) {
		return ErrSubscriptionExpired
	}
	return nil
}

func (p ClientProfile) DisplayName() string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	return p.Email
}

// LicenseExpiry is the expiry of a license of days days granted at now.
func LicenseExpiry(now time.Time, days int) *time.Time {
	if days <= 0 {
		return nil
	}
	expiresAt := now.AddDate(0, 0, days)
	return &expiresAt
}

type StatusUpdate struct {
	IsActive bool `json:"isActive"`
	// ExtendDays, when positive, moves the subscription expiry to now + ExtendDays.
	ExtendDays int `json:"extendDays"`
}

type NewClient struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	LicenseDays int    `json:"license_days"`
}

func (n NewClient) Validate() error {
	if !strings.Contains(n.Email, "@") {
		return errors.New("invalid email")
	}
	if len(n.Password) < 6 {
		return errors.New("password too short")
	}
	if n.LicenseDays < 0 {
		return errors.New("license days must not be negative")
	}
	return nil
}
