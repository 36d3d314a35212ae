// Package repository holds the raw-SQL data access layer. Sentinel errors
// defined here let the service and handler layers distinguish failure
// scenarios without depending on driver specifics.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. Handlers
// translate it into an HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrTableConflict is returned by the reservation insert when a chosen
// table became occupied between allocation and commit. The service layer
// reacts by re-running allocation; it never reaches handlers directly.
var ErrTableConflict = errors.New("table already reserved for an overlapping slot")
