package taglist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Source locates the tag list for a map of a given game.
type Source interface {
	Load(gameID string, mapID int32) (*Catalog, error)
}

const (
	// Extension is the file extension of tag-list files.
	Extension = ".vftl"

	taglistDir = "Taglists"
	assetDir   = "Assets"
	assetExt   = ".obj"
)

// Dir loads tag lists from a content directory laid out as
// <Root>/<gameID>/Taglists/<mapID>.vftl.
type Dir struct {
	Root string
}

// Path returns the tag-list path for a map.
func (d Dir) Path(gameID string, mapID int32) string {
	return filepath.Join(d.Root, gameID, taglistDir, strconv.FormatInt(int64(mapID), 10)+Extension)
}

func (d Dir) Load(gameID string, mapID int32) (*Catalog, error) {
	path := d.Path(gameID, mapID)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// AssetPath returns the model file for a tag path, or ErrMissing when the
// content directory has none. Tag paths may use either separator; paths that
// leave the asset directory fail with ErrInvalidPath.
func (d Dir) AssetPath(gameID, tagPath string) (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(tagPath, `\`, "/"))
	if !filepath.IsLocal(gameID) || !filepath.IsLocal(rel+assetExt) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, tagPath)
	}
	path := filepath.Join(d.Root, gameID, assetDir, rel+assetExt)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return "", err
	}
	return path, nil
}

type staticKey struct {
	game  string
	mapID int32
}

// Static is an in-memory Source.
type Static struct {
	catalogs map[staticKey]*Catalog
}

// NewStatic returns an empty Static source.
func NewStatic() *Static {
	return &Static{catalogs: make(map[staticKey]*Catalog)}
}

// Add registers c for a game and map, replacing any previous catalog.
func (s *Static) Add(gameID string, mapID int32, c *Catalog) *Static {
	s.catalogs[staticKey{game: gameID, mapID: mapID}] = c
	return s
}

func (s *Static) Load(gameID string, mapID int32) (*Catalog, error) {
	c, ok := s.catalogs[staticKey{game: gameID, mapID: mapID}]
	if !ok {
		return nil, fmt.Errorf("%w: %s map %d", ErrMissing, gameID, mapID)
	}
	return c, nil
}
