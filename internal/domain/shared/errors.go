package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
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
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	// ErrDataIntegrity signals a key whose referenced master record is missing.
	ErrDataIntegrity = NewDomainError("DATA_INTEGRITY", "Referenced master record is missing")
	// ErrTransientStore signals a retryable store failure (timeout, lock contention).
	ErrTransientStore = NewDomainError("TRANSIENT_STORE", "Transient store failure")
	// ErrRunAborted signals that a closing run was aborted before the ledger commit.
	ErrRunAborted = NewDomainError("RUN_ABORTED", "Closing run aborted, ledger unchanged")
	// ErrRunInProgress signals that another run already holds the dataset lock.
	ErrRunInProgress = NewDomainError("RUN_IN_PROGRESS", "A run for this dataset and job date is already in progress")
)
