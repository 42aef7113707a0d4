package katcha

import (
	"context"
	"fmt"
	"net/http"
)

// SubscriptionPlan describes the active plan of the account
type SubscriptionPlan struct {
	Type  string  `json:"subscription_type"`
	Start *string `json:"subscription_start"`
	End   *string `json:"subscription_end"`
}

// SubscriptionInfo is the backend's view of subscription entitlements
type SubscriptionInfo struct {
	IsValid      bool             `json:"is_valid"`
	TargetLimit  int              `json:"target_limit"`
	Subscription SubscriptionPlan `json:"subscription"`
}

// GetSubscription fetches the current subscription state
func (c *Client) GetSubscription(ctx context.Context) (*SubscriptionInfo, error) {
	resp, err := c.Call(ctx, http.MethodGet, "/api/subscription", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var info SubscriptionInfo
	if err := resp.Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

type subscriptionUpdate struct {
	SubscriptionType string `json:"subscription_type"`
}

// UpdateSubscription reports a plan change to the backend
func (c *Client) UpdateSubscription(ctx context.Context, planType string) error {
	resp, err := c.Call(ctx, http.MethodPost, "/api/subscription", subscriptionUpdate{SubscriptionType: planType})
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return resp.Err()
}
