package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrMissingModel       = errors.New("trailer model not selected")
	ErrMissingTheme       = errors.New("color theme not selected")
	ErrGenerationInFlight = errors.New("generation already in progress")
)

const (
	// EmptyResultMessage is surfaced when a collaborator succeeds without an image.
	EmptyResultMessage = "Image generation returned no result."
	// UnknownErrorMessage is surfaced when a collaborator fails without a reason.
	UnknownErrorMessage = "An unknown error occurred."
)
