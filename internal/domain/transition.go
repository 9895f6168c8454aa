package domain

import (
	customError "github.com/segyhp/lease-engine/pkg/errors"
)

// validateTransition checks target against the allowed moves out of current.
// Unknown current states allow nothing.
func validateTransition(entity string, transitions map[string][]string, current, target string) error {
	for _, s := range transitions[current] {
		if s == target {
			return nil
		}
	}
	return customError.WrapInvalidTransition(entity, current, target)
}

// CanTransitionLease reports whether a lease may move from current to target.
func CanTransitionLease(current, target string) bool {
	return validateTransition("lease", leaseTransitions, current, target) == nil
}

// CanTransitionPayment reports whether a payment may move from current to target.
func CanTransitionPayment(current, target string) bool {
	return validateTransition("payment", paymentTransitions, current, target) == nil
}
