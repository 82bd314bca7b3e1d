package domain

import "time"

// ExpiryWarningWindow is how far ahead an expiry date counts as "expiring soon".
const ExpiryWarningWindow = 30 * 24 * time.Hour

type Validity string

const (
	ValidityValid        Validity = "valid"
	ValidityExpiringSoon Validity = "expiring_soon"
	ValidityExpired      Validity = "expired"
)

// ClassifyExpiry derives a document's validity from its expiry date alone.
func ClassifyExpiry(expiry *Date, now time.Time, window time.Duration) Validity {
	if expiry == nil || expiry.IsZero() {
		return ValidityValid
	}
	switch {
	case expiry.Before(now):
		return ValidityExpired
	case expiry.After(now) && !expiry.After(now.Add(window)):
		return ValidityExpiringSoon
	default:
		return ValidityValid
	}
}

func (d Document) Validity(now time.Time) Validity {
	return ClassifyExpiry(d.ExpiryDate, now, ExpiryWarningWindow)
}
