package usecase

import (
	"context"

	"goaltracker/model"
	"goaltracker/utils"
)

// SubscriptionService reads the subscription and purchase rows written by the
// payment webhook consumer and answers entitlement questions.
type SubscriptionService struct {
	repos Repositories
}

func NewSubscriptionService(repos Repositories) *SubscriptionService {
	return &SubscriptionService{repos: repos}
}

// Subscription returns the caller's subscription row, or a FREE row when the
// user has never subscribed.
func (svc *SubscriptionService) Subscription(ctx context.Context, userID string) (*model.UserSubscription, error) {
	sub, err := svc.repos.Subscriptions.FindSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &model.UserSubscription{UserID: userID, Tier: model.TierFree, Status: model.SubscriptionActive}
	}
	return sub, nil
}

func (svc *SubscriptionService) Entitlement(ctx context.Context, userID string) (Entitlement, error) {
	sub, err := svc.Subscription(ctx, userID)
	if err != nil {
		return Entitlement{}, err
	}
	return EntitlementFrom(sub), nil
}

// Require is the guard every gated operation calls before doing any work.
func (svc *SubscriptionService) Require(ctx context.Context, id model.Identity, req Requirement) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	ent, err := svc.Entitlement(ctx, id.UserID)
	if err != nil {
		return err
	}
	if err := CheckEntitlement(ent, req); err != nil {
		utils.TrackEntitlementDenial(string(req.Tier))
		return err
	}
	return nil
}

func (svc *SubscriptionService) ListPurchases(ctx context.Context, id model.Identity) ([]model.UserPurchase, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return svc.repos.Purchases.ListPurchases(ctx, id.UserID)
}
