package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON           = "INVALID_JSON"
	ErrCodeMissingField          = "MISSING_FIELD"
	ErrCodeInvalidCoupon         = "INVALID_COUPON"
	ErrCodeProductNotFound       = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity       = "INVALID_QUANTITY"
	ErrCodeItemNotInCart         = "ITEM_NOT_IN_CART"
	ErrCodeEmptyCart             = "EMPTY_CART"
	ErrCodeAddressRequired       = "ADDRESS_REQUIRED"
	ErrCodeAddressNotFound       = "ADDRESS_NOT_FOUND"
	ErrCodeInvalidAddress        = "INVALID_ADDRESS"
	ErrCodeInvalidStep           = "INVALID_STEP"
	ErrCodeNoCheckout            = "NO_CHECKOUT"
	ErrCodeInvalidPaymentMethod  = "INVALID_PAYMENT_METHOD"
	ErrCodeOrderFailed           = "ORDER_FAILED"
	ErrCodeOrderNotFound         = "ORDER_NOT_FOUND"
	ErrCodePaymentVerification   = "PAYMENT_VERIFICATION_FAILED"
	ErrCodeNoPendingPayment      = "NO_PENDING_PAYMENT"
	ErrCodeInvalidPhone          = "INVALID_PHONE"
	ErrCodeInvalidName           = "INVALID_NAME"
	ErrCodeIncompleteOTP         = "INCOMPLETE_OTP"
	ErrCodeInvalidOTP            = "INVALID_OTP"
	ErrCodeResendCooldown        = "RESEND_COOLDOWN"
	ErrCodeInvalidAuthStep       = "INVALID_AUTH_STEP"
	ErrCodeNotAuthenticated      = "NOT_AUTHENTICATED"
	ErrCodeSessionExpired        = "SESSION_EXPIRED"
	ErrCodeSessionNotFound       = "SESSION_NOT_FOUND"
	ErrCodeUpstream              = "UPSTREAM_ERROR"
	ErrCodeInternalError         = "INTERNAL_ERROR"
	ErrCodeOrderNotCancellable   = "ORDER_NOT_CANCELLABLE"
	ErrCodeWishlistItemNotFound  = "WISHLIST_ITEM_NOT_FOUND"
	ErrCodeInvalidOTPDigit       = "INVALID_OTP_DIGIT"
	ErrCodeCheckoutInconsistency = "CHECKOUT_INCONSISTENT"
	ErrCodePaymentPending        = "PAYMENT_PENDING"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code, so a sentinel with extra detail still
// satisfies errors.Is against the plain sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetail returns a copy of the error with detail appended to the message.
func (e *DomainError) WithDetail(detail string) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message + ": " + detail}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidCoupon         = NewDomainError(ErrCodeInvalidCoupon, "Invalid or expired coupon code")
	ErrProductNotFound       = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidQuantity       = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be between 1 and 100")
	ErrItemNotInCart         = NewDomainError(ErrCodeItemNotInCart, "Item not in cart")
	ErrEmptyCart             = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrAddressRequired       = NewDomainError(ErrCodeAddressRequired, "Please select a shipping address")
	ErrAddressNotFound       = NewDomainError(ErrCodeAddressNotFound, "Address not found")
	ErrInvalidStep           = NewDomainError(ErrCodeInvalidStep, "This action is not available at the current checkout step")
	ErrNoCheckout            = NewDomainError(ErrCodeNoCheckout, "No checkout in progress")
	ErrInvalidPaymentMethod  = NewDomainError(ErrCodeInvalidPaymentMethod, "Payment method must be online or cash_on_delivery")
	ErrOrderFailed           = NewDomainError(ErrCodeOrderFailed, "Failed to place order")
	ErrOrderNotFound         = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrOrderNotCancellable   = NewDomainError(ErrCodeOrderNotCancellable, "Order can no longer be cancelled")
	ErrPaymentVerification   = NewDomainError(ErrCodePaymentVerification, "Payment verification failed")
	ErrNoPendingPayment      = NewDomainError(ErrCodeNoPendingPayment, "No payment is awaiting confirmation")
	ErrInvalidPhone          = NewDomainError(ErrCodeInvalidPhone, "Please enter a valid 10-digit phone number")
	ErrInvalidName           = NewDomainError(ErrCodeInvalidName, "Please enter your name")
	ErrIncompleteOTP         = NewDomainError(ErrCodeIncompleteOTP, "Please enter the 6-digit code")
	ErrInvalidOTPDigit       = NewDomainError(ErrCodeInvalidOTPDigit, "OTP cells accept a single digit")
	ErrInvalidOTP            = NewDomainError(ErrCodeInvalidOTP, "Invalid OTP. Please try again.")
	ErrResendCooldown        = NewDomainError(ErrCodeResendCooldown, "Please wait before requesting a new code")
	ErrInvalidAuthStep       = NewDomainError(ErrCodeInvalidAuthStep, "This action is not available at the current sign-in step")
	ErrNotAuthenticated      = NewDomainError(ErrCodeNotAuthenticated, "Please sign in to continue")
	ErrSessionExpired        = NewDomainError(ErrCodeSessionExpired, "Your session has expired. Please sign in again.")
	ErrSessionNotFound       = NewDomainError(ErrCodeSessionNotFound, "Session not found")
	ErrInvalidAddress        = NewDomainError(ErrCodeInvalidAddress, "Address is incomplete")
	ErrWishlistItemNotFound  = NewDomainError(ErrCodeWishlistItemNotFound, "Item not in wishlist")
	ErrCheckoutInconsistency = NewDomainError(ErrCodeCheckoutInconsistency, "Checkout could not be completed")
	ErrPaymentPending        = NewDomainError(ErrCodePaymentPending, "Your cart is locked while a payment is awaiting confirmation")
)
