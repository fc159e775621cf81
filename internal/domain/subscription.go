package domain

import (
	"math"
	"time"
)

// SubscriptionPlan names a recurring cleaning package.
type SubscriptionPlan string

const (
	PlanBasic    SubscriptionPlan = "basic"
	PlanStandard SubscriptionPlan = "standard"
	PlanPremium  SubscriptionPlan = "premium"
)

// Frequency is how often visits happen within a period.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// SubscriptionStatus of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// SubscriptionAction is a client-driven status change.
type SubscriptionAction string

const (
	ActionPause  SubscriptionAction = "pause"
	ActionResume SubscriptionAction = "resume"
	ActionCancel SubscriptionAction = "cancel"
)

// SubscriptionPeriod is the length of one billing period.
const SubscriptionPeriod = 30 * 24 * time.Hour

var (
	planPrices = map[SubscriptionPlan]float64{
		PlanBasic:    49.99,
		PlanStandard: 89.99,
		PlanPremium:  149.99,
	}
	visitsPerPeriod = map[Frequency]int{
		FrequencyWeekly:   4,
		FrequencyBiweekly: 2,
		FrequencyMonthly:  1,
	}
)

// SubscriptionPrice returns the per-period price for plan and frequency.
// ok is false when either is unknown.
func SubscriptionPrice(plan SubscriptionPlan, freq Frequency) (price float64, ok bool) {
	base, ok := planPrices[plan]
	if !ok {
		return 0, false
	}
	visits, ok := visitsPerPeriod[freq]
	if !ok {
		return 0, false
	}
	return math.Round(base*float64(visits)*100) / 100, true
}

// NextSubscriptionStatus applies action to the current status.
// ok is false when the move is not allowed.
func NextSubscriptionStatus(current SubscriptionStatus, action SubscriptionAction) (next SubscriptionStatus, ok bool) {
	switch action {
	case ActionPause:
		if current == SubscriptionActive {
			return SubscriptionPaused, true
		}
	case ActionResume:
		if current == SubscriptionPaused {
			return SubscriptionActive, true
		}
	case ActionCancel:
		if current == SubscriptionActive || current == SubscriptionPaused {
			return SubscriptionCancelled, true
		}
	}
	return current, false
}

// Subscription is a recurring cleaning plan held by a client.
type Subscription struct {
	ID                 string             `json:"id"`
	ClientID           string             `json:"clientId"`
	CleanerID          *string            `json:"cleanerId,omitempty"`
	Plan               SubscriptionPlan   `json:"plan"`
	Frequency          Frequency          `json:"frequency"`
	Price              float64            `json:"price"`
	Status             SubscriptionStatus `json:"status"`
	AutoRenew          bool               `json:"autoRenew"`
	CurrentPeriodStart time.Time          `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time          `json:"currentPeriodEnd"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// CreateSubscriptionRequest represents a new subscription.
type CreateSubscriptionRequest struct {
	Plan      SubscriptionPlan `json:"plan" binding:"required,oneof=basic standard premium"`
	Frequency Frequency        `json:"frequency" binding:"required,oneof=weekly biweekly monthly"`
	CleanerID *string          `json:"cleanerId"`
	AutoRenew *bool            `json:"autoRenew"`
}

// UpdateSubscriptionRequest carries a status action.
type UpdateSubscriptionRequest struct {
	Action SubscriptionAction `json:"action" binding:"required,oneof=pause resume cancel"`
}
