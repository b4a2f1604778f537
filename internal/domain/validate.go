package domain

import (
	"fmt"
	"strings"
)

// ValidatePayee checks required fields on a Payee. Name and city may be
// empty: the encoder substitutes fallbacks for them.
func ValidatePayee(p Payee) error {
	if strings.TrimSpace(p.Key) == "" {
		return fmt.Errorf("key is required")
	}
	return nil
}

// ValidateTier checks required fields on a Tier.
func ValidateTier(t Tier) error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", t.Amount.String())
	}
	if !t.Amount.Equal(t.Amount.Round(2)) {
		return fmt.Errorf("amount must have at most two decimal places, got %s", t.Amount.String())
	}
	return nil
}

// ValidateCatalog checks every tier and rejects duplicate ids.
func ValidateCatalog(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	seen := make(map[string]struct{}, len(tiers))
	for i, t := range tiers {
		if err := ValidateTier(t); err != nil {
			return fmt.Errorf("tier %d: %w", i, err)
		}
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("duplicate tier id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
