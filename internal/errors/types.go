package errors

import "fmt"

var errMap = map[SatsPointErrorType]SatsPointError{
	InvalidKeyFormatError:      invalidKeyFormat,
	InvalidKeyMaterialError:    invalidKeyMaterial,
	NotAuthenticatedError:      notAuthenticated,
	PersistedStateCorruptError: persistedStateCorrupt,
	InvoiceCreationError:       invoiceCreation,
	InvalidAmountError:         invalidAmount,
	PaymentNotFoundError:       paymentNotFound,
	ChargeStateError:           chargeState,
	QrNotRecognizedError:       qrNotRecognized,
	DeviceAccessDeniedError:    deviceAccessDenied,
	UnknownError:               unknown,
}

var (
	invalidKeyFormat      = SatsPointError{Err: fmt.Errorf("secret key must be 64 lowercase hex characters")}
	invalidKeyMaterial    = SatsPointError{Err: fmt.Errorf("could not derive public key")}
	notAuthenticated      = SatsPointError{Err: fmt.Errorf("not logged in")}
	persistedStateCorrupt = SatsPointError{Err: fmt.Errorf("persisted session is corrupt")}
	invoiceCreation       = SatsPointError{Err: fmt.Errorf("could not create invoice")}
	invalidAmount         = SatsPointError{Err: fmt.Errorf("invalid amount")}
	paymentNotFound       = SatsPointError{Err: fmt.Errorf("payment not found")}
	chargeState           = SatsPointError{Err: fmt.Errorf("charge not allowed in this state")}
	qrNotRecognized       = SatsPointError{Err: fmt.Errorf("no qr code recognized")}
	deviceAccessDenied    = SatsPointError{Err: fmt.Errorf("camera access denied")}
	unknown               = SatsPointError{Err: fmt.Errorf("unknown error")}
)

func Create(code SatsPointErrorType) SatsPointError {
	if e, ok := errMap[code]; ok {
		e.Code = code
		e.Message = e.Err.Error()
		return e
	}
	e := unknown
	e.Code = UnknownError
	e.Message = e.Err.Error()
	return e
}
