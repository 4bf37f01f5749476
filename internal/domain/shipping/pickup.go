package shipping

import (
	"strings"
)

// DefaultPickupName is the storefront's own pickup location. Shipments for
// catalog orders collect from here when it exists; otherwise the first
// registered location is used.
const DefaultPickupName = "Primary"

// pickupCodeMaxLen is the courier's limit on pickup location names
const pickupCodeMaxLen = 36

// DerivePickupCode builds the per-artisan pickup location code from the
// artisan's email: lowercased, non-alphanumerics stripped, truncated to the
// courier's name limit. The derivation is deterministic so repeat shipments
// resolve the same location.
func DerivePickupCode(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	var b strings.Builder
	for _, r := range email {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) > pickupCodeMaxLen {
		code = code[:pickupCodeMaxLen]
	}
	return code
}

// Truncate clips a payload field to the courier's field limit. The courier
// rejects over-long fields with a 422, so clipping beats bouncing the order.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
