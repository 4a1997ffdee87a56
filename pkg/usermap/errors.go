package usermap

import (
	"errors"

	"github.com/samcharles93/visualforge/pkg/taglist"
)

var (
	// ErrInvalidMagic is the format-validation error: the container does not
	// carry the expected magic.
	ErrInvalidMagic = errors.New("usermap: invalid magic")
	// ErrMissingTaglist is the missing-resource error for the tag catalog.
	ErrMissingTaglist = taglist.ErrMissing
	// ErrUnknownCodec is returned when no registered codec accepts a container.
	ErrUnknownCodec = errors.New("usermap: no codec for container")
	// ErrOffsetUnset is returned when updating a record that was never decoded.
	ErrOffsetUnset = errors.New("usermap: record offset not captured")
)
