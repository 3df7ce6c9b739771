package subscriptions

import "time"

// Access is the evaluated gate state for one barbershop subscription record.
// Pure function of (now, record); no database access here.
type Access struct {
	IsTrial               bool `json:"is_trial"`
	TrialExpired          bool `json:"trial_expired"`
	DaysRemaining         int  `json:"days_remaining"`
	HasActiveSubscription bool `json:"has_active_subscription"`
}

// Blocked reports whether the feature gate should engage.
func (a Access) Blocked() bool {
	return a.TrialExpired && !a.HasActiveSubscription
}

// Evaluate computes the trial/paid/expired state for a tenant.
//
//   - nil record: treated as an expired trial (fail closed).
//   - suspended/cancelled: expired regardless of plan type or dates.
//   - paid plan: active iff no end date, or the end date is strictly in the
//     future. Trial fields are ignored.
//   - trial with no end date: active trial with a nominal 7 days remaining.
//   - trial with an end date: expired once now passes it; days remaining is
//     the whole-day floor, never negative.
func Evaluate(now time.Time, sub *BarbershopSubscription) Access {
	if sub == nil {
		return Access{TrialExpired: true}
	}

	if sub.Status == StatusSuspended || sub.Status == StatusCancelled {
		return Access{TrialExpired: true}
	}

	if sub.PlanType != PlanTypeTrial {
		active := sub.SubscriptionEndsAt == nil || sub.SubscriptionEndsAt.After(now)
		return Access{
			TrialExpired:          !active,
			HasActiveSubscription: active,
		}
	}

	if sub.TrialEndsAt == nil {
		return Access{IsTrial: true, DaysRemaining: 7}
	}

	if now.After(*sub.TrialEndsAt) {
		return Access{IsTrial: true, TrialExpired: true}
	}

	days := int(sub.TrialEndsAt.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return Access{IsTrial: true, DaysRemaining: days}
}
