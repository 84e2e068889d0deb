package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrModelFailed        = fmt.Errorf("language model request failed")
	ErrCreationFailed     = fmt.Errorf("playlist creation failed")

	// Model output errors
	ErrMalformedOutput = fmt.Errorf("malformed model output")
	ErrSchemaViolation = fmt.Errorf("model output schema violation")

	// Persistence errors
	ErrNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
