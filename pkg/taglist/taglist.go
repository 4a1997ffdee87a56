// Package taglist reads the per-map tag lists that resolve usermap tag
// identifiers to tag classes and paths.
//
// A tag list is a gzip-compressed JSON document:
//
//	{"MapName": "...", "MapID": 30, "Tags": [{"TagClass": "bloc", "TagPath": "...", "DatumIndex": 3}]}
package taglist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

var (
	// ErrMissing is returned when a tag list or asset is absent. It wraps
	// fs.ErrNotExist.
	ErrMissing = fmt.Errorf("taglist: missing resource: %w", fs.ErrNotExist)
	// ErrCorrupt is returned when a tag list cannot be decompressed or parsed.
	ErrCorrupt = errors.New("taglist: corrupt tag list")
	// ErrInvalidPath is returned for tag paths that would leave the content
	// directory.
	ErrInvalidPath = errors.New("taglist: path escapes content directory")
)

// Tag is one tag definition.
type Tag struct {
	Class      string `json:"TagClass"`
	Path       string `json:"TagPath"`
	DatumIndex int32  `json:"DatumIndex"`
}

// Document is the decoded tag-list payload.
type Document struct {
	MapName string `json:"MapName"`
	MapID   int32  `json:"MapID"`
	Tags    []Tag  `json:"Tags"`
}

// Catalog is an ordered tag list indexed by datum index.
type Catalog struct {
	mapName string
	mapID   int32
	tags    []Tag
	byDatum map[int32]int
}

// NewCatalog indexes doc. When a datum index repeats, the first tag wins.
func NewCatalog(doc Document) *Catalog {
	c := &Catalog{
		mapName: doc.MapName,
		mapID:   doc.MapID,
		tags:    doc.Tags,
		byDatum: make(map[int32]int, len(doc.Tags)),
	}
	for i, t := range doc.Tags {
		if _, dup := c.byDatum[t.DatumIndex]; !dup {
			c.byDatum[t.DatumIndex] = i
		}
	}
	return c
}

func (c *Catalog) MapName() string { return c.mapName }
func (c *Catalog) MapID() int32    { return c.mapID }
func (c *Catalog) Len() int        { return len(c.tags) }

// Tags returns the tags in document order. The slice must not be modified.
func (c *Catalog) Tags() []Tag { return c.tags }

// Lookup finds a tag by datum index.
func (c *Catalog) Lookup(datumIndex int32) (Tag, bool) {
	if c == nil {
		return Tag{}, false
	}
	i, ok := c.byDatum[datumIndex]
	if !ok {
		return Tag{}, false
	}
	return c.tags[i], true
}

// Decode decompresses and parses a tag list.
func Decode(r io.Reader) (*Catalog, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer func() { _ = zr.Close() }()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return NewCatalog(doc), nil
}

// DecodeBytes is Decode over an in-memory tag list.
func DecodeBytes(b []byte) (*Catalog, error) {
	return Decode(bytes.NewReader(b))
}

// Encode writes doc as a gzip-compressed JSON tag list.
func Encode(w io.Writer, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(w)
	if _, err := zw.Write(raw); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}
