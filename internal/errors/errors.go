package errors

import "encoding/json"

type SatsPointErrorType int

const (
	UnknownError SatsPointErrorType = iota
	InvalidKeyFormatError
	InvalidKeyMaterialError
	NotAuthenticatedError
	PersistedStateCorruptError
)

const (
	InvoiceCreationError SatsPointErrorType = 2000 + iota
	InvalidAmountError
	PaymentNotFoundError
	ChargeStateError
)

const (
	QrNotRecognizedError SatsPointErrorType = 3000 + iota
	DeviceAccessDeniedError
)

func New(code SatsPointErrorType, err error) SatsPointError {
	return SatsPointError{Err: err, Message: err.Error(), Code: code}
}

type SatsPointError struct {
	Message string `json:"message"`
	Err     error
	Code    SatsPointErrorType `json:"code"`
}

func (e SatsPointError) Error() string {
	j, err := json.Marshal(&e)
	if err != nil {
		return e.Message
	}
	return string(j)
}

func (e SatsPointError) Unwrap() error {
	return e.Err
}

// Is matches on the error code so callers can use errors.Is against
// the sentinels in types.go.
func (e SatsPointError) Is(target error) bool {
	t, ok := target.(SatsPointError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}
