package pkg

import (
	"errors"
	"net/http"
)

// RestError 统一错误码：HTTP 状态 + 稳定 code + message。
// service 层只返回这里的值，handler 层负责转成响应。
type RestError struct {
	Status  int
	Code    string
	Message string
}

func (e *RestError) Error() string { return e.Message }

var (
	// 400 Bad Request
	ErrInvalidRequest     = &RestError{http.StatusBadRequest, "4000", "INVALID REQUEST"}
	ErrJWTException       = &RestError{http.StatusBadRequest, "4001", "JWT EXCEPTION"}
	ErrAuthHeaderInvalid  = &RestError{http.StatusBadRequest, "4002", "INVALID AUTHORIZATION HEADER"}
	ErrJWTUnsupported     = &RestError{http.StatusBadRequest, "4003", "UNSUPPORTED JWT TOKEN"}
	ErrJWTIllegalClaim    = &RestError{http.StatusBadRequest, "4004", "ILLEGAL JWT CLAIM"}
	ErrRefreshInvalid     = &RestError{http.StatusBadRequest, "4005", "INVALID REFRESH TOKEN"}
	ErrEmailDuplication   = &RestError{http.StatusBadRequest, "4006", "DUPLICATED EMAIL"}
	ErrVerifyCodeNotFound = &RestError{http.StatusBadRequest, "4007", "VERIFICATION TOKEN NOT FOUND"}

	// 401 Unauthorized
	ErrJWTMalformed        = &RestError{http.StatusUnauthorized, "4011", "MALFORMED JWT"}
	ErrJWTSignatureInvalid = &RestError{http.StatusUnauthorized, "4012", "INVALID JWT SIGNATURE"}
	ErrJWTExpired          = &RestError{http.StatusUnauthorized, "4013", "EXPIRED JWT TOKEN"}
	ErrLoginFailed         = &RestError{http.StatusUnauthorized, "4014", "LOGIN FAILED"}

	// 403 Forbidden
	ErrNotServerMember = &RestError{http.StatusForbidden, "4030", "NOT A SERVER MEMBER"}
	ErrNoPermission    = &RestError{http.StatusForbidden, "4031", "NO PERMISSION"}

	// 404 Not Found
	ErrEmailNotFound   = &RestError{http.StatusNotFound, "4040", "EMAIL NOT FOUND"}
	ErrPasswordInvalid = &RestError{http.StatusNotFound, "4041", "PASSWORD INVALID"}

	// 500 Internal Server Error
	ErrMailSendFail         = &RestError{http.StatusInternalServerError, "5001", "MAIL SEND FAIL"}
	ErrVerifyCodeDuplicated = &RestError{http.StatusInternalServerError, "5002", "VERIFICATION TOKEN DUPLICATION"}
	ErrInternalServer       = &RestError{http.StatusInternalServerError, "5003", "INTERNAL SERVER ERROR"}
	ErrFileProcessingFail   = &RestError{http.StatusInternalServerError, "5004", "FILE PROCESSING FAIL"}
)

// From 任意 error 归一到 RestError，未分类的一律 5003
func From(err error) *RestError {
	var re *RestError
	if errors.As(err, &re) {
		return re
	}
	return ErrInternalServer
}
