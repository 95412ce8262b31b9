package services

// Business outcome codes returned to the HTTP layer. A service method
// returns a code for every deterministic rejection; a Go error means a
// store or crypto failure and maps to an opaque 500.
const (
	CodeInvalidPhone       = "invalid_phone"
	CodeMissingPassword    = "missing_password"
	CodeNeedsPasswordSetup = "needs_password_setup"
	CodeInvalidPassword    = "invalid_password"
	CodeLocked             = "locked"
	CodeNotFound           = "not_found"
	CodeInactiveAdmin      = "inactive_admin"
	CodeInactiveManager    = "inactive_manager"

	CodeWeakPassword     = "weak_password"
	CodePasswordMismatch = "password_mismatch"
	CodeAlreadyExists    = "already_exists"
	CodeAlreadySet       = "already_set"
	CodePhoneNotVerified = "phone_not_verified"

	CodeCooldown      = "cooldown"
	CodeSMSSendFailed = "sms_send_failed"
	CodeInvalidCode   = "invalid_code"
	CodeExpiredCode   = "expired_code"
	CodeNoCode        = "no_code"

	CodeNotSet       = "not_set"
	CodeMissingToken = "missing_token"
	CodeInvalidToken = "invalid_token"
	CodeExpiredToken = "expired_token"

	CodeInvalidPayload        = "invalid_payload"
	CodeInvalidResidentNumber = "invalid_resident_number"
	CodeDuplicateResident     = "duplicate_resident"

	CodeUnauthorized = "unauthorized"
)
