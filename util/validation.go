package util

import "fmt"

// HasDuplicates reports the first value that occurs more than once in items.
func HasDuplicates[T comparable](items []T) (bool, T) {
	seen := make(map[T]struct{}, len(items))
	for _, item := range items {
		if _, exists := seen[item]; exists {
			return true, item
		}
		seen[item] = struct{}{}
	}

	var zero T

	return false, zero
}

// ValidateNoDuplicateDenoms returns an error if a denom appears twice in one
// batch. The oracle module keeps a single prevote and vote per denom, so a
// duplicate would make the batch ambiguous.
func ValidateNoDuplicateDenoms(denoms []string) error {
	if hasDup, denom := HasDuplicates(denoms); hasDup {
		return fmt.Errorf("duplicate denom detected: %s", denom)
	}

	return nil
}
