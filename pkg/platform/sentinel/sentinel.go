package sentinel

import "errors"

// Sentinel errors for infrastructure facts. The upstream client and stores
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store or upstream
// - ErrExpired: credential has expired
// - ErrUnauthorized: upstream rejected the credential
// - ErrInFlight: a verification request is already in flight for the session
// - ErrUnavailable: upstream or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInFlight     = errors.New("request in flight")
	ErrUnavailable  = errors.New("unavailable")
)
