// internal/ledger/errors.go
package ledger

import "errors"

// Every ledger operation fails with exactly one of these kinds. They
// are checked before any state is written, so a failed operation never
// leaves a partial mutation behind.
var (
	ErrUnauthorized           = errors.New("caller is not authorized for this operation")
	ErrInvalidParameter       = errors.New("invalid parameter")
	ErrPropertyNotFound       = errors.New("property not found")
	ErrFundingClosed          = errors.New("funding window is closed")
	ErrExceedsSupply          = errors.New("purchase exceeds remaining token supply")
	ErrInsufficientPayment    = errors.New("payment does not match the required amount")
	ErrBelowMinimumInvestment = errors.New("payment is below the minimum investment")
	ErrNoTokensSold           = errors.New("no tokens sold for this property")
	ErrDistributionNotFound   = errors.New("distribution not found")
	ErrNoHolding              = errors.New("caller holds no tokens in this property")
	ErrAlreadyClaimed         = errors.New("revenue already claimed for this distribution")

	// ErrLedgerInconsistent signals a defensive conservation check
	// failure. The enclosing transaction is rolled back.
	ErrLedgerInconsistent = errors.New("ledger state is inconsistent")
)

// ErrorCode maps a ledger error to the stable code surfaced in API
// responses. Unknown errors map to INTERNAL_ERROR.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrInvalidParameter):
		return "INVALID_PARAMETER"
	case errors.Is(err, ErrPropertyNotFound):
		return "PROPERTY_NOT_FOUND"
	case errors.Is(err, ErrFundingClosed):
		return "FUNDING_CLOSED"
	case errors.Is(err, ErrExceedsSupply):
		return "EXCEEDS_SUPPLY"
	case errors.Is(err, ErrInsufficientPayment):
		return "INSUFFICIENT_PAYMENT"
	case errors.Is(err, ErrBelowMinimumInvestment):
		return "BELOW_MINIMUM_INVESTMENT"
	case errors.Is(err, ErrNoTokensSold):
		return "NO_TOKENS_SOLD"
	case errors.Is(err, ErrDistributionNotFound):
		return "DISTRIBUTION_NOT_FOUND"
	case errors.Is(err, ErrNoHolding):
		return "NO_HOLDING"
	case errors.Is(err, ErrAlreadyClaimed):
		return "ALREADY_CLAIMED"
	default:
		return "INTERNAL_ERROR"
	}
}
