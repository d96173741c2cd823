// File: internal/common/context_keys.go
package common

const (
	// UserIDKey is the context key for storing the authenticated user's ID
	UserIDKey = "userID"
	// UserClaimsKey stores the whole claims object
	UserClaimsKey = "userClaims"
	// RequestIDKey is the context key for the request id
	RequestIDKey = "requestID"
)
