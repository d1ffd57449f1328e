package model

import "time"

type Tier string

const (
	TierFree     Tier = "FREE"
	TierPremium  Tier = "PREMIUM"
	TierLifetime Tier = "LIFETIME"
)

func (t Tier) IsPremium() bool {
	return t == TierPremium || t == TierLifetime
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionTrialing SubscriptionStatus = "TRIALING"
	SubscriptionPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
	SubscriptionExpired  SubscriptionStatus = "EXPIRED"
)

func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// UserSubscription is written by the payment webhook consumer and only read here.
type UserSubscription struct {
	UserID           string             `bson:"_id" json:"user_id"`
	Tier             Tier               `bson:"tier" json:"tier"`
	Status           SubscriptionStatus `bson:"status" json:"status"`
	Features         map[string]bool    `bson:"features,omitempty" json:"features,omitempty"`
	CurrentPeriodEnd *time.Time         `bson:"current_period_end,omitempty" json:"current_period_end,omitempty"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

type ProductType string

const ProductStreakShield ProductType = "STREAK_SHIELD"

type UserPurchase struct {
	PurchaseID        string      `bson:"_id" json:"id"`
	UserID            string      `bson:"user_id" json:"user_id"`
	Product           ProductType `bson:"product" json:"product"`
	Quantity          int         `bson:"quantity" json:"quantity"`
	QuantityRemaining int         `bson:"quantity_remaining" json:"quantity_remaining"`
	PurchasedAt       time.Time   `bson:"purchased_at" json:"purchased_at"`
}

// UseOne consumes a single unit and reports whether one was available. It
// never takes QuantityRemaining below zero.
func (p *UserPurchase) UseOne() bool {
	if p.QuantityRemaining <= 0 {
		p.QuantityRemaining = 0
		return false
	}
	p.QuantityRemaining--
	return true
}
