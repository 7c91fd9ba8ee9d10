// Package domain holds typed identifier primitives shared across the service.
//
// IDs are distinct types over uuid.UUID so a submission id can never be passed
// where a channel id is expected. Parsing enforces "valid, non-empty, non-nil"
// at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "fieldcheck/pkg/domainerrors"
)

// SubmissionID identifies a single address-verification submission.
type SubmissionID uuid.UUID

// ChannelID identifies one live client session channel (one browser tab).
type ChannelID uuid.UUID

// NewSubmissionID returns a fresh random submission id.
func NewSubmissionID() SubmissionID {
	return SubmissionID(uuid.New())
}

// NewChannelID returns a fresh random channel id.
func NewChannelID() ChannelID {
	return ChannelID(uuid.New())
}

// ParseSubmissionID validates and returns a SubmissionID.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SubmissionID{}, err
	}
	return SubmissionID(u), nil
}

// ParseChannelID validates and returns a ChannelID.
func ParseChannelID(s string) (ChannelID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ChannelID{}, err
	}
	return ChannelID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}

func (id SubmissionID) String() string { return uuid.UUID(id).String() }
func (id ChannelID) String() string    { return uuid.UUID(id).String() }

// IsNil reports whether the id is the zero value.
func (id SubmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ChannelID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the id as its canonical UUID string so ids serialize as
// plain strings in JSON payloads.
func (id SubmissionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *SubmissionID) UnmarshalText(data []byte) error {
	parsed, err := ParseSubmissionID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ChannelID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ChannelID) UnmarshalText(data []byte) error {
	parsed, err := ParseChannelID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
