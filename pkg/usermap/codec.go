package usermap

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/taglist"
)

// Codec reads and writes the usermap container of one title.
//
// Decode either returns a complete Usermap or an error and no model. Update
// methods seek to the offsets captured by Decode and rewrite only the fields
// the record owns; reserved bytes are skipped, never zeroed.
type Codec interface {
	// Name is a short identifier such as "halo3".
	Name() string
	// GameID keys the title's content directory.
	GameID() string
	// Validate checks the container magic, failing with ErrInvalidMagic.
	Validate(s *endian.Stream) error
	// DecodeHeader validates the container and reads only its header. It
	// needs no tag catalog.
	DecodeHeader(s *endian.Stream) (*Header, error)
	Decode(s *endian.Stream, tags taglist.Source) (*Usermap, error)
	UpdateHeader(s *endian.Stream, h *Header) error
	UpdatePlacement(s *endian.Stream, p *Placement) error
	UpdateTagUsage(s *endian.Stream, u *TagUsage) error
}

// Registry holds codecs by name.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[string]Codec, len(codecs))}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register adds c, replacing any codec with the same name.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Name()] = c
}

func (r *Registry) Lookup(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	return c, ok
}

// Names returns the registered codec names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.codecs))
	for n := range r.codecs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Detect returns the first codec, by name order, whose Validate accepts the
// stream. I/O errors other than a magic mismatch abort detection.
func (r *Registry) Detect(s *endian.Stream) (Codec, error) {
	for _, name := range r.Names() {
		c, _ := r.Lookup(name)
		err := c.Validate(s)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrInvalidMagic) {
			return nil, fmt.Errorf("detect %s: %w", name, err)
		}
	}
	return nil, ErrUnknownCodec
}
