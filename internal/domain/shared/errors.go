package shared

// DomainError is a business-rule violation with a stable machine code.
// Handlers map the code onto an HTTP status; the message is safe to show
// to API clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Errors shared across bounded contexts.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrAlreadyClaimed      = NewDomainError("ALREADY_CLAIMED", "Order has already been claimed by another artisan")
	ErrDuplicateNumber     = NewDomainError("DUPLICATE_NUMBER", "Generated number is already taken")
	ErrPaymentRequired     = NewDomainError("PAYMENT_REQUIRED", "Outstanding payment must be settled first")
	ErrThreadLocked        = NewDomainError("THREAD_LOCKED", "Conversation is currently handled by support")
)
