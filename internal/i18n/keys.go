// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAdminAccessDenied      = "admin.access_denied"

	// Properties
	KeyPropertyListed   = "property.listed"
	KeyPropertyNotFound = "property.not_found"
	KeyPropertyExpired  = "property.expired"
	KeyPropertyFunded   = "property.funded"

	// Token sale
	KeyPurchaseSuccess        = "purchase.success"
	KeyPurchaseFundingClosed  = "purchase.funding_closed"
	KeyPurchaseExceedsSupply  = "purchase.exceeds_supply"
	KeyPurchaseWrongPayment   = "purchase.wrong_payment"
	KeyPurchaseBelowMinimum   = "purchase.below_minimum"

	// Revenue
	KeyDistributionOpened   = "distribution.opened"
	KeyDistributionNotFound = "distribution.not_found"
	KeyClaimSuccess         = "claim.success"
	KeyClaimAlreadyClaimed  = "claim.already_claimed"
	KeyClaimNoHolding       = "claim.no_holding"

	// Payments
	KeyPaymentSuccess = "payment.success"
	KeyPaymentFailed  = "payment.failed"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// File uploads
	KeyUploadSuccess     = "upload.success"
	KeyUploadFailed      = "upload.failed"
	KeyUploadInvalidType = "upload.invalid_type"
)
