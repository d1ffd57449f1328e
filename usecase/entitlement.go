package usecase

import (
	"goaltracker/errs"
	"goaltracker/model"
)

// Feature keys checked by the gate.
const (
	FeatureAIInsights = "aiInsights"
	FeatureGuardians  = "guardians"
)

type Entitlement struct {
	Tier     model.Tier
	Status   model.SubscriptionStatus
	Features map[string]bool
}

// Requirement is what an operation demands of the caller's entitlement. An
// empty Tier means any tier.
type Requirement struct {
	Tier     model.Tier
	Features []string
}

func EntitlementFrom(sub *model.UserSubscription) Entitlement {
	if sub == nil {
		return Entitlement{Tier: model.TierFree, Status: model.SubscriptionActive}
	}
	return Entitlement{Tier: sub.Tier, Status: sub.Status, Features: sub.Features}
}

func (e Entitlement) Premium() bool {
	return e.Tier.IsPremium() && e.Status.IsActive()
}

// CheckEntitlement allows or denies an operation. It stops at the first
// failing condition: the tier check, then each feature in order.
func CheckEntitlement(e Entitlement, req Requirement) error {
	if req.Tier.IsPremium() && !e.Premium() {
		return errs.SubscriptionRequired("a premium subscription is required")
	}
	for _, key := range req.Features {
		if !e.Features[key] {
			return errs.SubscriptionRequired("feature %q is not enabled for this account", key)
		}
	}
	return nil
}
