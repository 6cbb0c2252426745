package models

import "errors"

// Sentinel errors shared across the catalog, ledger, issuance and dialogue
// layers. Callers match them with errors.Is; each one maps to a recovery
// path in the dialogue (reprompt, explanatory reply, generic failure, or a
// post-booking warning).

// ErrValidation covers malformed or out-of-range user input. Always
// recovered locally with a reprompt; the dialogue state does not change.
var ErrValidation = errors.New("validation failed")

// ErrNotFound is returned for an unknown show id or booking id.
var ErrNotFound = errors.New("not found")

// ErrCapacity signals that a seat reservation would exceed the show's
// remaining seats, including the case where a concurrent session took the
// seats between the dialogue check and the decrement.
var ErrCapacity = errors.New("not enough seats")

// ErrPersistence wraps store failures. The transition that hit it does not
// advance.
var ErrPersistence = errors.New("store unavailable")

// ErrDelivery marks a rendering or notification failure after the booking
// row is committed. The reservation stands; only the ticket delivery is
// affected.
var ErrDelivery = errors.New("ticket delivery failed")
