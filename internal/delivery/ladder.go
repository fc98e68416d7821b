// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package delivery

import "github.com/tomtom215/pushward/internal/payload"

// State is a step of the per-device delivery ladder.
type State string

const (
	StateEncryptedSend     State = "ENCRYPTED_SEND"
	StatePlainSend         State = "PLAIN_SEND"
	StateRetryPlain        State = "RETRY_PLAIN"
	StateRetrySelfDownload State = "RETRY_SELF_DOWNLOAD"
	StateDoneSuccess       State = "DONE_SUCCESS"
	StateDoneFailure       State = "DONE_FAILURE"
)

// Outcome is the classified result of one send attempt.
type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeTooLarge Outcome = "TOO_LARGE"
	OutcomeFailed   Outcome = "FAILED"
)

// Policy controls the size-failure transitions.
type Policy struct {
	// AllowPlain permits ENCRYPTED_SEND -> RETRY_PLAIN. When false a size
	// failure of the encrypted payload goes straight to self-download.
	AllowPlain bool

	// Ladder enables size-failure retries at all. Web Push runs without it.
	Ladder bool
}

// Initial returns the first state for a device.
func Initial(hasKey bool) State {
	if hasKey {
		return StateEncryptedSend
	}
	return StatePlainSend
}

// Next returns the state following s after outcome. Terminal states are
// absorbing.
func Next(s State, outcome Outcome, p Policy) State {
	if s.Terminal() {
		return s
	}

	switch outcome {
	case OutcomeSuccess:
		return StateDoneSuccess
	case OutcomeTooLarge:
		if !p.Ladder {
			return StateDoneFailure
		}
		switch s {
		case StateEncryptedSend:
			if p.AllowPlain {
				return StateRetryPlain
			}
			return StateRetrySelfDownload
		case StateRetryPlain:
			return StateRetrySelfDownload
		default:
			return StateDoneFailure
		}
	default:
		return StateDoneFailure
	}
}

// Terminal reports whether s ends the ladder.
func (s State) Terminal() bool {
	return s == StateDoneSuccess || s == StateDoneFailure
}

// Retry reports whether s is a fallback step after a size failure.
func (s State) Retry() bool {
	return s == StateRetryPlain || s == StateRetrySelfDownload
}

// Variant is the payload variant sent in state s. Terminal states have none.
func (s State) Variant() payload.Variant {
	switch s {
	case StateEncryptedSend:
		return payload.VariantEncrypted
	case StatePlainSend, StateRetryPlain:
		return payload.VariantPlain
	case StateRetrySelfDownload:
		return payload.VariantSelfDownload
	default:
		return ""
	}
}
