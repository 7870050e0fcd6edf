package api

import "errors"

// Kind classifies a failed call so the front-end can render connectivity
// problems differently from business-rule rejections.
type Kind int

const (
	// KindAuth covers 401 responses and rejected credentials.
	KindAuth Kind = iota + 1
	// KindValidation covers non-401 4xx responses carrying a backend
	// "detail" message, e.g. a duplicate assignment.
	KindValidation
	// KindServer covers 5xx responses and unparsable error bodies.
	KindServer
	// KindNetwork covers transport failures with no HTTP response.
	KindNetwork
	// KindTimeout covers requests abandoned after the configured
	// timeout.
	KindTimeout
)

// User-facing messages, as the dashboard showed them.
const (
	msgInvalidCredentials = "Usuario o contraseña incorrectos"
	msgUnauthorized       = "No autorizado"
	msgNetworkError       = "Error de conexión. Verifique su conexión a internet"
	msgServerError        = "Error del servidor. Por favor intente más tarde"
	msgTimeout            = "Tiempo de espera agotado. Intente nuevamente"
)

// Error is the one error type the client raises. Message is always safe
// to show to the user; Status is the HTTP status, or 0 when no response
// was received.
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

func kindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return kindOf(err) == KindAuth }

// IsValidation reports whether err is a backend payload rejection.
func IsValidation(err error) bool { return kindOf(err) == KindValidation }

// IsServer reports whether err is a server-side failure.
func IsServer(err error) bool { return kindOf(err) == KindServer }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return kindOf(err) == KindNetwork }

// IsTimeout reports whether err is an abandoned request.
func IsTimeout(err error) bool { return kindOf(err) == KindTimeout }

// IsDuplicate reports whether err is the backend's duplicate-assignment
// conflict. The bulk assignment flow treats these as soft failures.
func IsDuplicate(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindValidation && apiErr.Status == 409
}
