// Package forge manages open usermap containers.
//
// A Session owns one container file for its whole life: the file is opened,
// its codec detected and the map decoded in Open, and every later edit is
// written back through the same stream. All Session methods are safe for
// concurrent use; calls are serialized on the session's mutex.
package forge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/samcharles93/visualforge/internal/logger"
	"github.com/samcharles93/visualforge/internal/mapfile"
	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/taglist"
	"github.com/samcharles93/visualforge/pkg/usermap"
	"github.com/samcharles93/visualforge/pkg/usermap/halo3"
)

var (
	ErrIndex    = errors.New("forge: index out of range")
	ErrReadOnly = errors.New("forge: session is read-only")
	ErrClosed   = errors.New("forge: session closed")
)

// Options configures how a container is opened.
type Options struct {
	// Registry detects the container codec. Nil uses DefaultRegistry().
	Registry *usermap.Registry
	// Tags supplies tag catalogs. Required by Open, unused by ReadHeader.
	Tags taglist.Source
	// Logger receives lookup misses and lifecycle events. Nil takes the
	// logger from the context.
	Logger   logger.Logger
	UseMmap  bool
	ReadOnly bool
}

// DefaultRegistry returns a registry holding every supported codec.
func DefaultRegistry(opts ...halo3.Option) *usermap.Registry {
	return usermap.NewRegistry(halo3.New(opts...))
}

func (o Options) registry() *usermap.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return DefaultRegistry()
}

func (o Options) logger(ctx context.Context) logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.FromContext(ctx)
}

// openStream opens path and wraps it in a big-endian stream. The caller
// owns the returned closer.
func openStream(path string, opts Options) (*endian.Stream, io.Closer, error) {
	var (
		rws io.ReadWriteSeeker
		c   io.Closer
	)
	if opts.UseMmap {
		open := mapfile.OpenWritable
		if opts.ReadOnly {
			open = mapfile.Open
		}
		f, err := open(path)
		if err != nil {
			return nil, nil, err
		}
		rws, c = f, f
	} else {
		flag := os.O_RDWR
		if opts.ReadOnly {
			flag = os.O_RDONLY
		}
		f, err := os.OpenFile(path, flag, 0)
		if err != nil {
			return nil, nil, err
		}
		rws, c = f, f
	}

	var seeker io.Seeker = rws
	if opts.ReadOnly {
		seeker = endian.ReadOnly(rws)
	}
	s, err := endian.NewStream(seeker, endian.BigEndian)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return s, c, nil
}

// HeaderInfo is the result of ReadHeader.
type HeaderInfo struct {
	Game   string
	GameID string
	Header usermap.Header
}

// ReadHeader detects the container at path and reads its header only. It
// needs no tag catalog and always opens the file read-only.
func ReadHeader(ctx context.Context, path string, opts Options) (*HeaderInfo, error) {
	opts.ReadOnly = true
	s, c, err := openStream(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = c.Close() }()

	codec, err := opts.registry().Detect(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	h, err := codec.DecodeHeader(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts.logger(ctx).Debug("read usermap header", "path", path, "game", codec.Name(), "map_id", h.MapID)
	return &HeaderInfo{Game: codec.Name(), GameID: codec.GameID(), Header: *h}, nil
}

// Session is an open, decoded container.
type Session struct {
	mu       sync.Mutex
	path     string
	stream   *endian.Stream
	closer   io.Closer
	codec    usermap.Codec
	m        *usermap.Usermap
	log      logger.Logger
	readOnly bool
	closed   bool
}

// Open opens and decodes the container at path. On error nothing stays
// open.
func Open(ctx context.Context, path string, opts Options) (*Session, error) {
	log := opts.logger(ctx).With("path", path)

	s, c, err := openStream(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	cleanup := func() { _ = c.Close() }

	codec, err := opts.registry().Detect(s)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := codec.Decode(s, opts.Tags)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log = log.With("game", codec.Name())
	for _, i := range m.Unresolved() {
		u := &m.TagUsages[i]
		if u.Ident == -1 {
			continue
		}
		log.Warn("tag not in tag list", "index", i, "ident", fmt.Sprintf("0x%08x", uint32(u.Ident)))
	}
	log.Debug("opened usermap", "map_id", m.Header.MapID, "name", m.Header.Name, "read_only", opts.ReadOnly)

	return &Session{
		path:     path,
		stream:   s,
		closer:   c,
		codec:    codec,
		m:        m,
		log:      log,
		readOnly: opts.ReadOnly,
	}, nil
}

func (s *Session) Path() string { return s.path }

func (s *Session) Game() string { return s.codec.Name() }

func (s *Session) GameID() string { return s.codec.GameID() }

func (s *Session) ReadOnly() bool { return s.readOnly }

func (s *Session) Header() usermap.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Header
}

// Catalog returns the tag catalog the session was decoded against.
func (s *Session) Catalog() *taglist.Catalog {
	return s.m.Catalog
}

// Placements returns a copy of the placement table, or only the records
// that refer to a tag-usage entry when placedOnly is set.
func (s *Session) Placements(placedOnly bool) []usermap.Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]usermap.Placement, 0, len(s.m.Placements))
	for _, p := range s.m.Placements {
		if placedOnly && !p.Placed() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Session) Placement(i int) (usermap.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.m.Placements) {
		return usermap.Placement{}, fmt.Errorf("%w: placement %d", ErrIndex, i)
	}
	return s.m.Placements[i], nil
}

// TagUsages returns a copy of the tag-usage table, or only the records with
// a non-zero count on the map when usedOnly is set.
func (s *Session) TagUsages(usedOnly bool) []usermap.TagUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]usermap.TagUsage, 0, len(s.m.TagUsages))
	for _, u := range s.m.TagUsages {
		if usedOnly && u.CountOnMap == 0 {
			continue
		}
		out = append(out, cloneUsage(u))
	}
	return out
}

func (s *Session) TagUsage(i int) (usermap.TagUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.m.TagUsages) {
		return usermap.TagUsage{}, fmt.Errorf("%w: tag usage %d", ErrIndex, i)
	}
	return cloneUsage(s.m.TagUsages[i]), nil
}

func cloneUsage(u usermap.TagUsage) usermap.TagUsage {
	u.Placements = slices.Clone(u.Placements)
	if u.Tag != nil {
		t := *u.Tag
		u.Tag = &t
	}
	return u
}

func (s *Session) writable() error {
	if s.closed {
		return ErrClosed
	}
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

// UpdateHeader applies fn to a copy of the header and writes it back.
func (s *Session) UpdateHeader(fn func(h *usermap.Header)) (usermap.Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return usermap.Header{}, err
	}
	h := s.m.Header
	fn(&h)
	if err := s.codec.UpdateHeader(s.stream, &h); err != nil {
		return usermap.Header{}, err
	}
	// Re-read so the model reflects truncation applied by the codec.
	stored, err := s.codec.DecodeHeader(s.stream)
	if err != nil {
		return usermap.Header{}, err
	}
	s.m.Header = *stored
	s.log.Info("updated header", "name", stored.Name)
	return *stored, nil
}

// UpdatePlacement applies fn to a copy of placement i and writes it back.
// The record's index and offset cannot be changed.
func (s *Session) UpdatePlacement(i int, fn func(p *usermap.Placement)) (usermap.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return usermap.Placement{}, err
	}
	if i < 0 || i >= len(s.m.Placements) {
		return usermap.Placement{}, fmt.Errorf("%w: placement %d", ErrIndex, i)
	}
	p := s.m.Placements[i]
	fn(&p)
	p.Index, p.Offset = s.m.Placements[i].Index, s.m.Placements[i].Offset
	if err := s.codec.UpdatePlacement(s.stream, &p); err != nil {
		return usermap.Placement{}, err
	}
	s.m.Placements[i] = p
	usermap.Bind(s.m.Placements, s.m.TagUsages)
	s.log.Info("updated placement", "index", i, "tag_index", p.TagIndex)
	return s.m.Placements[i], nil
}

// UpdateTagUsage applies fn to a copy of tag-usage record i and writes it
// back. A changed ident is resolved again against the catalog.
func (s *Session) UpdateTagUsage(i int, fn func(u *usermap.TagUsage)) (usermap.TagUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return usermap.TagUsage{}, err
	}
	if i < 0 || i >= len(s.m.TagUsages) {
		return usermap.TagUsage{}, fmt.Errorf("%w: tag usage %d", ErrIndex, i)
	}
	prev := s.m.TagUsages[i]
	u := cloneUsage(prev)
	fn(&u)
	u.Index, u.Offset = prev.Index, prev.Offset
	if err := s.codec.UpdateTagUsage(s.stream, &u); err != nil {
		return usermap.TagUsage{}, err
	}
	u.Tag = nil
	if tag, ok := s.m.Catalog.Lookup(u.Ident); ok {
		u.Tag = &usermap.ResolvedTag{Tag: tag, Index: i}
	} else if u.Ident != -1 {
		s.log.Warn("tag not in tag list", "index", i, "ident", fmt.Sprintf("0x%08x", uint32(u.Ident)))
	}
	s.m.TagUsages[i] = u
	usermap.Bind(s.m.Placements, s.m.TagUsages)
	s.log.Info("updated tag usage", "index", i, "ident", u.Ident)
	return cloneUsage(s.m.TagUsages[i]), nil
}

// Sync flushes written records to disk without closing the session.
func (s *Session) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if f, ok := s.closer.(interface{ Sync() error }); ok && !s.readOnly {
		return f.Sync()
	}
	return nil
}

// Close flushes and releases the container. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.closer.Close()
	s.log.Debug("closed usermap")
	return err
}
