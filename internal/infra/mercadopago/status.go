package mercadopago

import (
	"fmt"
	"strconv"
	"strings"
)

// MapStatus maps the provider payment status to our transaction status.
// Only "approved" gets a distinct local name; everything else is passed
// through so the audit trail keeps the provider vocabulary.
func MapStatus(s string) string {
	if strings.TrimSpace(s) == "approved" {
		return "completed"
	}
	return strings.TrimSpace(s)
}

// BuildExternalReference encodes the checkout correlation key carried on the
// provider payment: "<planID>|<barbershopID>|<userID>".
func BuildExternalReference(planID, barbershopID, userID uint) string {
	return fmt.Sprintf("%d|%d|%d", planID, barbershopID, userID)
}

// ParseExternalReference decodes the correlation key. A missing or malformed
// reference means the callback cannot be correlated to our records and must
// be treated as a terminal no-op by the caller.
func ParseExternalReference(ref string) (planID, barbershopID, userID uint, err error) {
	parts := strings.Split(strings.TrimSpace(ref), "|")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("external reference %q: want 3 segments, got %d", ref, len(parts))
	}

	ids := make([]uint, 3)
	for i, p := range parts {
		v, convErr := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("external reference %q: segment %d: %w", ref, i, convErr)
		}
		ids[i] = uint(v)
	}
	return ids[0], ids[1], ids[2], nil
}
