// Package api serves open usermap containers over HTTP.
package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/samcharles93/visualforge/internal/forge"
)

type Config struct {
	// MapsDir bounds the paths clients may open.
	MapsDir string
	Forge   forge.Options
}

type Server struct {
	store   *SessionStore
	mapsDir string
	opts    forge.Options
}

func NewServer(store *SessionStore, cfg Config) *Server {
	if store == nil {
		store = NewSessionStore()
	}
	return &Server{
		store:   store,
		mapsDir: cfg.MapsDir,
		opts:    cfg.Forge,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/usermaps", s.handleOpen)
	e.GET("/v1/usermaps", s.handleList)
	e.GET("/v1/usermaps/:id", s.handleGet)
	e.DELETE("/v1/usermaps/:id", s.handleClose)
	e.PATCH("/v1/usermaps/:id/header", s.handlePatchHeader)

	e.GET("/v1/usermaps/:id/objects", s.handleListObjects)
	e.GET("/v1/usermaps/:id/objects/:index", s.handleGetObject)
	e.PATCH("/v1/usermaps/:id/objects/:index", s.handlePatchObject)

	e.GET("/v1/usermaps/:id/tags", s.handleListTags)
	e.GET("/v1/usermaps/:id/tags/:index", s.handleGetTag)
	e.PATCH("/v1/usermaps/:id/tags/:index", s.handlePatchTag)
}

// Close closes every open session.
func (s *Server) Close() error {
	return s.store.CloseAll()
}

// resolvePath maps a client path onto the maps directory, rejecting paths
// that would leave it.
func (s *Server) resolvePath(p string) (string, error) {
	if s.mapsDir == "" {
		return "", fmt.Errorf("maps directory not configured")
	}
	p = filepath.FromSlash(strings.TrimSpace(p))
	if p == "" {
		return "", newInvalidRequest("path is required")
	}
	if !filepath.IsLocal(p) {
		return "", newInvalidRequest(fmt.Sprintf("path %q escapes the maps directory", p))
	}
	return filepath.Join(s.mapsDir, p), nil
}

func (s *Server) handleOpen(c *echo.Context) error {
	req, err := decodeJSON[OpenRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	full, err := s.resolvePath(req.Path)
	if err != nil {
		return writeFailure(c, err)
	}
	opts := s.opts
	opts.ReadOnly = opts.ReadOnly || req.ReadOnly
	session, err := forge.Open(c.Request().Context(), full, opts)
	if err != nil {
		return writeFailure(c, err)
	}
	rec := s.store.Add(req.Path, session)
	return c.JSON(http.StatusCreated, sessionDTO(rec.ID, rec.Path, session))
}

func (s *Server) handleList(c *echo.Context) error {
	recs := s.store.List()
	out := make([]SessionDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, sessionDTO(rec.ID, rec.Path, rec.Session))
	}
	return c.JSON(http.StatusOK, newList(out))
}

func (s *Server) session(c *echo.Context) (*sessionRecord, bool) {
	id := c.Param("id")
	if id == "" {
		return nil, false
	}
	return s.store.Get(id)
}

func (s *Server) handleGet(c *echo.Context) error {
	rec, ok := s.session(c)
	if !ok {
		return writeNotFound(c, "usermap not found")
	}
	return c.JSON(http.StatusOK, sessionDTO(rec.ID, rec.Path, rec.Session))
}

func (s *Server) handleClose(c *echo.Context) error {
	id := c.Param("id")
	rec, ok := s.store.Remove(id)
	if !ok {
		return writeNotFound(c, "usermap not found")
	}
	if err := rec.Session.Close(); err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, DeleteResponse{
		ID:      id,
		Object:  "usermap",
		Deleted: true,
	})
}

func (s *Server) handlePatchHeader(c *echo.Context) error {
	rec, ok := s.session(c)
	if !ok {
		return writeNotFound(c, "usermap not found")
	}
	patch, err := decodeJSON[HeaderPatch](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	h, err := rec.Session.UpdateHeader(patch.apply)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, HeaderFrom(h))
}

func (s *Server) handleListObjects(c *echo.Context) error {
	rec, ok := s.session(c)
	if !ok {
		return writeNotFound(c, "usermap not found")
	}
	ps := rec.Session.Placements(boolParam(c, "placed"))
	out := make([]PlacementDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, PlacementFrom(p))
	}
	return c.JSON(http.StatusOK, newList(out))
}

func (s *Server) handleGetObject(c *echo.Context) error {
	rec, ok := s.session(c)
	if !ok {
		return writeNotFound(c, "usermap not found")
	}
	i, err := indexParam(c)
	if err != nil {
		return writeFailure(c, err)
	}
	p, err := rec.Session.Placement(i)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, PlacementFrom(p))
}

func (s *Server) handlePatchObject(c *echo.Context) error {
	rec, ok := s.session(c)
	if !ok {
		return writeNotFound(c, "usermap not found")
	}
	i, err := indexParam(c)
	if err != nil {
		return writeFailure(c, err)
	}
	patch, err := decodeJSON[PlacementPatch](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	p, err := rec.Session.UpdatePlacement(i, patch.apply)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, PlacementFrom(p))
}

func (s *Server) handleListTags(c *echo.Context) error {
	rec, ok := s.session(c)
	if !ok {
		return writeNotFound(c, "usermap not found")
	}
	us := rec.Session.TagUsages(boolParam(c, "used"))
	out := make([]TagUsageDTO, 0, len(us))
	for _, u := range us {
		out = append(out, TagUsageFrom(u))
	}
	return c.JSON(http.StatusOK, newList(out))
}

func (s *Server) handleGetTag(c *echo.Context) error {
	rec, ok := s.session(c)
	if !ok {
		return writeNotFound(c, "usermap not found")
	}
	i, err := indexParam(c)
	if err != nil {
		return writeFailure(c, err)
	}
	u, err := rec.Session.TagUsage(i)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, TagUsageFrom(u))
}

func (s *Server) handlePatchTag(c *echo.Context) error {
	rec, ok := s.session(c)
	if !ok {
		return writeNotFound(c, "usermap not found")
	}
	i, err := indexParam(c)
	if err != nil {
		return writeFailure(c, err)
	}
	patch, err := decodeJSON[TagUsagePatch](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	u, err := rec.Session.UpdateTagUsage(i, patch.apply)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, TagUsageFrom(u))
}

func indexParam(c *echo.Context) (int, error) {
	raw := c.Param("index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newInvalidRequest(fmt.Sprintf("invalid index %q", raw))
	}
	return i, nil
}

func boolParam(c *echo.Context, name string) bool {
	q := c.QueryParam(name)
	return q == "1" || strings.EqualFold(q, "true")
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
