package domain

import (
	"errors"
	"fmt"
)

// ErrorCode é o código estável devolvido ao cliente no envelope de erro.
type ErrorCode string

// Autenticação.
const (
	ErrCodeMissingToken          ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidTokenFormat    ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrCodeInvalidTokenStructure ErrorCode = "INVALID_TOKEN_STRUCTURE"
	ErrCodeInvalidSignature      ErrorCode = "INVALID_SIGNATURE"
	ErrCodeTokenExpired          ErrorCode = "TOKEN_EXPIRED"
	ErrCodeUserInactive          ErrorCode = "USER_INACTIVE"
	ErrCodeVerification          ErrorCode = "VERIFICATION_ERROR"
)

// Autorização.
const (
	ErrCodeMissingUserInfo          ErrorCode = "MISSING_USER_INFO"
	ErrCodeInsufficientPermissions  ErrorCode = "INSUFFICIENT_PERMISSIONS"
	ErrCodeMissingTenantAssociation ErrorCode = "MISSING_TENANT_ASSOCIATION"
)

var errorMessages = map[ErrorCode]string{
	ErrCodeMissingToken:             "Missing authentication token",
	ErrCodeInvalidTokenFormat:       "Invalid authentication token format",
	ErrCodeInvalidTokenStructure:    "Invalid authentication token structure",
	ErrCodeInvalidSignature:         "Invalid authentication signature",
	ErrCodeTokenExpired:             "Authentication token expired",
	ErrCodeUserInactive:             "User does not exist or is disabled",
	ErrCodeVerification:             "Authentication token verification failed",
	ErrCodeMissingUserInfo:          "Missing user identity",
	ErrCodeInsufficientPermissions:  "Insufficient permissions",
	ErrCodeMissingTenantAssociation: "Tenant administrator has no tenant association",
}

// Authorization indica se o código é de autorização (403) e não de autenticação (401).
func (c ErrorCode) Authorization() bool {
	switch c {
	case ErrCodeMissingUserInfo, ErrCodeInsufficientPermissions, ErrCodeMissingTenantAssociation:
		return true
	}
	return false
}

// Error carrega o código estável, a mensagem pública e a causa interna (não exposta).
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message é a mensagem pública padrão do código.
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return string(c)
}

// NewError monta um *Error com a mensagem padrão do código.
func NewError(code ErrorCode, cause error) *Error {
	return &Error{Code: code, Message: code.Message(), Err: cause}
}

// CodeOf extrai o ErrorCode de err; erros desconhecidos viram VERIFICATION_ERROR.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeVerification
}
