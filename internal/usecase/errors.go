package usecase

import "errors"

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeLeadNoEmail     = "LEAD_NO_EMAIL"
	CodeInvalidPlatform = "INVALID_PLATFORM"
	CodeNotConnected    = "PLATFORM_NOT_CONNECTED"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeInvalidDate     = "INVALID_DATE"
)

// DomainError vem da entrada do cliente ou do estado dos dados dele.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// DomainErrorCode devolve o código do primeiro DomainError na cadeia de err.
func DomainErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// TechnicalError é falha de infraestrutura (banco, broker, API remota).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func notFound(message string) error {
	return &DomainError{Code: CodeNotFound, Message: message}
}
