package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers map
// these to HTTP status codes with errors.Is.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden is returned when the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidDomain is returned when an email does not belong to an allowed
	// university domain. Raised before any repository or network call.
	ErrInvalidDomain = errors.New("email domain not allowed")

	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned on sign-in with a wrong email/password
	// pair. Deliberately generic; it never reveals which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAlreadyMember is returned when the user has already joined the group.
	ErrAlreadyMember = errors.New("already a member of this group")

	// ErrGroupFull is returned when a join would exceed the group's capacity.
	ErrGroupFull = errors.New("group is full")

	// ErrNotMember is returned when leaving a group the user never joined.
	ErrNotMember = errors.New("not a member of this group")

	// ErrOwnerCannotLeave is returned when the group owner attempts to leave.
	// The owner is pinned as the first member and may only edit or delete the group.
	ErrOwnerCannotLeave = errors.New("group owner cannot leave the group")
)
