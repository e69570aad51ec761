package errors

import "errors"

// AppError carries a typed application error across layers
type AppError struct {
	Err  error
	Type string
}

const (
	NotFound                  = "NotFound"
	notFoundMessage           = "record not found"
	ValidationError           = "ValidationError"
	validationErrorMessage    = "validation error"
	RepositoryError           = "RepositoryError"
	repositoryErrorMessage    = "error in repository operation"
	NotAuthenticated          = "NotAuthenticated"
	notAuthenticatedMessage   = "not authenticated"
	NotAuthorized             = "NotAuthorized"
	notAuthorizedMessage      = "not authorized"
	ConfigurationError        = "ConfigurationError"
	configurationErrorMessage = "missing required configuration"
	TransportError            = "TransportError"
	transportErrorMessage     = "error reaching the messaging gateway"
	GatewayError              = "GatewayError"
	gatewayErrorMessage       = "messaging gateway rejected the request"
	UnknownError              = "UnknownError"
	unknownErrorMessage       = "something went wrong"
)

func NewAppError(err error, errType string) *AppError {
	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func NewAppErrorWithType(errType string) *AppError {
	var err error

	switch errType {
	case NotFound:
		err = errors.New(notFoundMessage)
	case ValidationError:
		err = errors.New(validationErrorMessage)
	case RepositoryError:
		err = errors.New(repositoryErrorMessage)
	case NotAuthenticated:
		err = errors.New(notAuthenticatedMessage)
	case NotAuthorized:
		err = errors.New(notAuthorizedMessage)
	case ConfigurationError:
		err = errors.New(configurationErrorMessage)
	case TransportError:
		err = errors.New(transportErrorMessage)
	case GatewayError:
		err = errors.New(gatewayErrorMessage)
	default:
		err = errors.New(unknownErrorMessage)
	}

	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func (appErr *AppError) Error() string {
	return appErr.Err.Error()
}
