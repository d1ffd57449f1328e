package usecase

import (
	"testing"

	"goaltracker/errs"
	"goaltracker/model"

	"github.com/stretchr/testify/assert"
)

func TestCheckEntitlement(t *testing.T) {
	insights := Requirement{Tier: model.TierPremium, Features: []string{FeatureAIInsights}}

	tests := []struct {
		name    string
		sub     *model.UserSubscription
		req     Requirement
		allowed bool
	}{
		{"no subscription is free", nil, insights, false},
		{"free tier", &model.UserSubscription{Tier: model.TierFree, Status: model.SubscriptionActive}, insights, false},
		{"premium without feature", &model.UserSubscription{
			Tier: model.TierPremium, Status: model.SubscriptionActive,
			Features: map[string]bool{FeatureAIInsights: false},
		}, insights, false},
		{"premium with feature", &model.UserSubscription{
			Tier: model.TierPremium, Status: model.SubscriptionActive,
			Features: map[string]bool{FeatureAIInsights: true},
		}, insights, true},
		{"canceled premium", &model.UserSubscription{
			Tier: model.TierPremium, Status: model.SubscriptionCanceled,
			Features: map[string]bool{FeatureAIInsights: true},
		}, insights, false},
		{"trialing lifetime", &model.UserSubscription{
			Tier: model.TierLifetime, Status: model.SubscriptionTrialing,
		}, Requirement{Tier: model.TierPremium}, true},
		{"free needs nothing", nil, Requirement{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEntitlement(EntitlementFrom(tt.sub), tt.req)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, errs.KindSubscriptionRequired, errs.KindOf(err))
		})
	}
}

func TestEntitlementFromNilIsFreeActive(t *testing.T) {
	e := EntitlementFrom(nil)
	assert.Equal(t, model.TierFree, e.Tier)
	assert.Equal(t, model.SubscriptionActive, e.Status)
	assert.False(t, e.Premium())
}
