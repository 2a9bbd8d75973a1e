// Package repository contains data access logic backed by Postgres. This file
// defines sentinel errors reused across repositories so that handlers can
// distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrTicketNotFound indicates that no ticket exists with the given id.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrInvalidTimezone indicates the caller supplied a timezone name the
// database does not recognize. Handlers should translate this into a 400.
var ErrInvalidTimezone = errors.New("unknown timezone")

// ErrCredentialNotFound indicates no active credential matches the given id.
var ErrCredentialNotFound = errors.New("credential not found")

// ErrEmptyName is returned by catalog resolution when the supplied name is
// empty after trimming. No row is ever created for an empty name.
var ErrEmptyName = errors.New("empty name")
