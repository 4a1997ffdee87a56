package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/samcharles93/visualforge/internal/forge"
	"github.com/samcharles93/visualforge/internal/logger"
	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/taglist"
	"github.com/samcharles93/visualforge/pkg/usermap"
	"github.com/samcharles93/visualforge/pkg/usermap/halo3"
)

const testMapID = 7

// writeContainer writes a container with one placement of tag usage 0 into
// dir and returns its file name.
func writeContainer(t *testing.T, dir, name string, mapID int32) string {
	t.Helper()

	buf := endian.NewBuffer(make([]byte, halo3.MinContainerSize))
	s, err := endian.NewStream(buf, endian.BigEndian)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	if err := s.SeekTo(halo3.MagicOffset); err != nil {
		t.Fatalf("SeekTo: %v", err)
	}
	if err := s.WriteAscii(halo3.Magic, len(halo3.Magic)); err != nil {
		t.Fatalf("write magic: %v", err)
	}
	c := halo3.New()
	if err := c.UpdateHeader(s, &usermap.Header{Name: "Guardian", MapID: mapID}); err != nil {
		t.Fatalf("UpdateHeader: %v", err)
	}
	for i := 0; i < halo3.ObjectCount; i++ {
		p := usermap.Placement{Offset: halo3.DefaultObjectTableOffset + int64(i)*halo3.ObjectRecordSize, TagIndex: -1}
		if i == 0 {
			p.TagIndex = 0
		}
		if err := c.UpdatePlacement(s, &p); err != nil {
			t.Fatalf("UpdatePlacement: %v", err)
		}
	}
	for i := 0; i < halo3.TagCount; i++ {
		u := usermap.TagUsage{Offset: halo3.TagTableOffset + int64(i)*halo3.TagRecordSize, Ident: -1}
		if i == 0 {
			u.Ident, u.CountOnMap = 3, 1
		}
		if err := c.UpdateTagUsage(s, &u); err != nil {
			t.Fatalf("UpdateTagUsage: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return name
}

type testEnv struct {
	e   *echo.Echo
	dir string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	tags := taglist.NewStatic().Add(halo3.GameID, testMapID, taglist.NewCatalog(taglist.Document{
		MapID: testMapID,
		Tags:  []taglist.Tag{{Class: "bloc", Path: "objects\\props\\barrel", DatumIndex: 3}},
	}))
	server := NewServer(NewSessionStore(), Config{
		MapsDir: dir,
		Forge: forge.Options{
			Tags:   tags,
			Logger: logger.Nop(),
		},
	})
	t.Cleanup(func() { _ = server.Close() })
	e := echo.New()
	server.Register(e)
	return testEnv{e: e, dir: dir}
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %s: %v", rec.Body.String(), err)
	}
	return out
}

func errorType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody[struct {
		Error ErrorBody `json:"error"`
	}](t, rec)
	return body.Error.Type
}

func (env testEnv) open(t *testing.T, body string) SessionDTO {
	t.Helper()
	rec := doJSON(t, env.e, http.MethodPost, "/v1/usermaps", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open status: got %d body=%s", rec.Code, rec.Body.String())
	}
	return decodeBody[SessionDTO](t, rec)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeContainer(t, env.dir, "guardian.map", testMapID)

	created := env.open(t, `{"path":"guardian.map"}`)
	if !strings.HasPrefix(created.ID, "um_") || created.Game != "halo3" || created.Header.Name != "Guardian" {
		t.Fatalf("open: got %+v", created)
	}

	rec := doJSON(t, env.e, http.MethodGet, "/v1/usermaps", "")
	list := decodeBody[ListResponse[SessionDTO]](t, rec)
	if len(list.Data) != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("list: got %+v", list)
	}

	rec = doJSON(t, env.e, http.MethodGet, "/v1/usermaps/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status: got %d", rec.Code)
	}

	rec = doJSON(t, env.e, http.MethodDelete, "/v1/usermaps/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if del := decodeBody[DeleteResponse](t, rec); !del.Deleted {
		t.Fatalf("delete: got %+v", del)
	}

	rec = doJSON(t, env.e, http.MethodGet, "/v1/usermaps/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d want 404", rec.Code)
	}
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeContainer(t, env.dir, "other.map", 99)
	if err := os.WriteFile(filepath.Join(env.dir, "junk.map"), make([]byte, 0x200), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantType string
	}{
		{"escape", `{"path":"../secret.map"}`, http.StatusBadRequest, "invalid_request_error"},
		{"absolute", `{"path":"/etc/passwd"}`, http.StatusBadRequest, "invalid_request_error"},
		{"empty", `{"path":""}`, http.StatusBadRequest, "invalid_request_error"},
		{"unknown field", `{"path":"a.map","mode":"rw"}`, http.StatusBadRequest, "invalid_request_error"},
		{"missing file", `{"path":"nope.map"}`, http.StatusNotFound, "not_found_error"},
		{"not a usermap", `{"path":"junk.map"}`, http.StatusUnprocessableEntity, "invalid_usermap_error"},
		{"no tag list", `{"path":"other.map"}`, http.StatusFailedDependency, "missing_taglist_error"},
	}
	for _, tt := range tests {
		rec := doJSON(t, env.e, http.MethodPost, "/v1/usermaps", tt.body)
		if rec.Code != tt.wantCode {
			t.Fatalf("%s: status got %d want %d body=%s", tt.name, rec.Code, tt.wantCode, rec.Body.String())
		}
		if got := errorType(t, rec); got != tt.wantType {
			t.Fatalf("%s: error type got %q want %q", tt.name, got, tt.wantType)
		}
	}
}

func TestObjects(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeContainer(t, env.dir, "guardian.map", testMapID)
	id := env.open(t, `{"path":"guardian.map"}`).ID
	base := "/v1/usermaps/" + id + "/objects"

	all := decodeBody[ListResponse[PlacementDTO]](t, doJSON(t, env.e, http.MethodGet, base, ""))
	if len(all.Data) != halo3.ObjectCount {
		t.Fatalf("objects: got %d want %d", len(all.Data), halo3.ObjectCount)
	}
	placed := decodeBody[ListResponse[PlacementDTO]](t, doJSON(t, env.e, http.MethodGet, base+"?placed=true", ""))
	if len(placed.Data) != 1 || placed.Data[0].Usage != 0 {
		t.Fatalf("placed objects: got %+v", placed.Data)
	}

	rec := doJSON(t, env.e, http.MethodPatch, base+"/0", `{"x":12.5,"yaw_degrees":90,"team":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status: got %d body=%s", rec.Code, rec.Body.String())
	}
	p := decodeBody[PlacementDTO](t, rec)
	if p.X != 12.5 || p.Team != 3 {
		t.Fatalf("patched object: got %+v", p)
	}
	if math.Abs(float64(p.Yaw)-math.Pi/2) > 1e-5 {
		t.Fatalf("yaw: got %v want pi/2", p.Yaw)
	}
	if math.Abs(float64(p.Forward.X)-1) > 1e-5 {
		t.Fatalf("forward after quarter turn: got %+v", p.Forward)
	}

	got := decodeBody[PlacementDTO](t, doJSON(t, env.e, http.MethodGet, base+"/0", ""))
	if got.X != 12.5 {
		t.Fatalf("get after patch: got %+v", got)
	}

	if rec := doJSON(t, env.e, http.MethodGet, base+"/640", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("out of range: got %d want 404", rec.Code)
	}
	if rec := doJSON(t, env.e, http.MethodGet, base+"/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad index: got %d want 400", rec.Code)
	}
}

func TestTags(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeContainer(t, env.dir, "guardian.map", testMapID)
	id := env.open(t, `{"path":"guardian.map"}`).ID
	base := "/v1/usermaps/" + id + "/tags"

	used := decodeBody[ListResponse[TagUsageDTO]](t, doJSON(t, env.e, http.MethodGet, base+"?used=true", ""))
	if len(used.Data) != 1 {
		t.Fatalf("used tags: got %d want 1", len(used.Data))
	}
	tag := used.Data[0]
	if tag.Tag == nil || tag.Tag.Path != "objects\\props\\barrel" || len(tag.Placements) != 1 {
		t.Fatalf("tag 0: got %+v", tag)
	}

	rec := doJSON(t, env.e, http.MethodPatch, base+"/0", `{"design_time_max":16,"cost":2.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[TagUsageDTO](t, rec); got.DesignTimeMax != 16 || got.Cost != 2.5 {
		t.Fatalf("patched tag: got %+v", got)
	}

	rec = doJSON(t, env.e, http.MethodGet, base+"/5", "")
	if got := decodeBody[TagUsageDTO](t, rec); got.Tag != nil || got.Ident != -1 {
		t.Fatalf("unused tag: got %+v", got)
	}
}

func TestPatchHeader(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeContainer(t, env.dir, "guardian.map", testMapID)
	id := env.open(t, `{"path":"guardian.map"}`).ID

	rec := doJSON(t, env.e, http.MethodPatch, "/v1/usermaps/"+id+"/header", `{"name":"Guardian Remix Extended","author":"me"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status: got %d body=%s", rec.Code, rec.Body.String())
	}
	h := decodeBody[HeaderDTO](t, rec)
	if h.Name != "Guardian Remix " || h.Author != "me" || h.MapID != testMapID {
		t.Fatalf("header: got %+v", h)
	}
}

func TestReadOnlySessionRejectsPatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeContainer(t, env.dir, "guardian.map", testMapID)
	id := env.open(t, `{"path":"guardian.map","read_only":true}`).ID

	rec := doJSON(t, env.e, http.MethodPatch, "/v1/usermaps/"+id+"/objects/0", `{"team":1}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("patch read-only: got %d want 409", rec.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for _, path := range []string{"/v1/usermaps/missing", "/v1/usermaps/missing/objects", "/v1/usermaps/missing/tags/0"} {
		if rec := doJSON(t, env.e, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: got %d want 404", path, rec.Code)
		}
	}
}
