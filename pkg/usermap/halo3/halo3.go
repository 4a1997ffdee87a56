// Package halo3 implements the Halo 3 usermap ("sandbox.map") container.
package halo3

import (
	"errors"
	"fmt"
	"io"

	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/taglist"
	"github.com/samcharles93/visualforge/pkg/usermap"
)

const (
	// Name identifies the codec in a usermap.Registry.
	Name = "halo3"
	// GameID keys the Halo 3 content directory.
	GameID = "4D5307E6"
)

// Codec is the Halo 3 usermap codec. The zero value is not usable; use New.
type Codec struct {
	objectTableOffset int64
	order             endian.Endian
}

var _ usermap.Codec = (*Codec)(nil)

// ErrTableOffset is returned by a codec configured with an object table
// offset that overlaps the header or the tag-usage table.
var ErrTableOffset = errors.New("halo3: object table offset out of range")

type Option func(*Codec)

// WithObjectTableOffset overrides DefaultObjectTableOffset. Offsets outside
// [0x270, 0x294] make every decode and update fail with ErrTableOffset.
func WithObjectTableOffset(off int64) Option {
	return func(c *Codec) {
		c.objectTableOffset = off
	}
}

// WithEndian overrides the container byte order. Retail files are big-endian.
func WithEndian(e endian.Endian) Option {
	return func(c *Codec) {
		c.order = e
	}
}

func New(opts ...Option) *Codec {
	c := &Codec{
		objectTableOffset: DefaultObjectTableOffset,
		order:             endian.BigEndian,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Name() string   { return Name }
func (c *Codec) GameID() string { return GameID }

// ObjectTableOffset reports the configured placement table start.
func (c *Codec) ObjectTableOffset() int64 { return c.objectTableOffset }

func (c *Codec) checkLayout() error {
	if c.objectTableOffset < minObjectTableOffset || c.objectTableOffset > maxObjectTableOffset {
		return fmt.Errorf("%w: %#x not in [%#x, %#x]", ErrTableOffset,
			c.objectTableOffset, minObjectTableOffset, maxObjectTableOffset)
	}
	return nil
}

func (c *Codec) Validate(s *endian.Stream) error {
	if err := c.checkLayout(); err != nil {
		return err
	}
	s.SetEndian(c.order)
	if err := s.SeekTo(MagicOffset); err != nil {
		return err
	}
	magic, err := s.ReadAscii(len(Magic))
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: container too short", usermap.ErrInvalidMagic)
	}
	if err != nil {
		return err
	}
	if magic != Magic {
		return fmt.Errorf("%w: got %q at %#x, want %q", usermap.ErrInvalidMagic, magic, MagicOffset, Magic)
	}
	return nil
}

// DecodeHeader validates the container and reads only its header.
func (c *Codec) DecodeHeader(s *endian.Stream) (*usermap.Header, error) {
	if err := c.Validate(s); err != nil {
		return nil, err
	}
	h, err := readHeader(s)
	if err != nil {
		return nil, fmt.Errorf("halo3: read header: %w", err)
	}
	return h, nil
}

// Decode reads the whole container. The tag list for the decoded map id is
// required; without it no model is returned.
func (c *Codec) Decode(s *endian.Stream, tags taglist.Source) (*usermap.Usermap, error) {
	h, err := c.DecodeHeader(s)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		return nil, fmt.Errorf("halo3: no tag list source: %w", usermap.ErrMissingTaglist)
	}
	catalog, err := tags.Load(GameID, h.MapID)
	if err != nil {
		return nil, fmt.Errorf("halo3: load tag list for map %d: %w", h.MapID, err)
	}

	placements, err := c.readPlacements(s)
	if err != nil {
		return nil, err
	}
	usages, err := readTagUsages(s, catalog)
	if err != nil {
		return nil, err
	}
	usermap.Bind(placements, usages)

	return &usermap.Usermap{
		Game:       Name,
		Header:     *h,
		Placements: placements,
		TagUsages:  usages,
		Catalog:    catalog,
	}, nil
}

func (c *Codec) UpdateHeader(s *endian.Stream, h *usermap.Header) error {
	s.SetEndian(c.order)
	if err := writeHeader(s, h); err != nil {
		return fmt.Errorf("halo3: write header: %w", err)
	}
	return nil
}

func (c *Codec) UpdatePlacement(s *endian.Stream, p *usermap.Placement) error {
	if err := c.checkLayout(); err != nil {
		return err
	}
	if p.Offset == 0 {
		return usermap.ErrOffsetUnset
	}
	s.SetEndian(c.order)
	if err := writePlacement(s, p); err != nil {
		return fmt.Errorf("halo3: write placement %d at %#x: %w", p.Index, p.Offset, err)
	}
	return nil
}

func (c *Codec) UpdateTagUsage(s *endian.Stream, u *usermap.TagUsage) error {
	if u.Offset == 0 {
		return usermap.ErrOffsetUnset
	}
	s.SetEndian(c.order)
	if err := writeTagUsage(s, u); err != nil {
		return fmt.Errorf("halo3: write tag usage %d at %#x: %w", u.Index, u.Offset, err)
	}
	return nil
}
