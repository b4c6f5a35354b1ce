package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST       ErrCode = "REQUEST_FAILED"
	BAD_REQUEST          ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND            ErrCode = "NOT_FOUND"
	LOCKED               ErrCode = "LOCKED"
	CONFLICT             ErrCode = "CONFLICT"
	OUTSIDE_AVAILABILITY ErrCode = "OUTSIDE_AVAILABILITY"
	SERVICE_NOT_ALLOWED  ErrCode = "SERVICE_NOT_ALLOWED"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("resource not found")
	ErrLocked              = errors.New("resource is locked")
	ErrOutsideAvailability = errors.New("placement is outside availability")
	ErrServiceNotAllowed   = errors.New("service is not allowed on this block")
	ErrAppointmentConflict = errors.New("placement conflicts with another appointment")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
