package forge

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/samcharles93/visualforge/internal/logger"
	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/taglist"
	"github.com/samcharles93/visualforge/pkg/usermap"
	"github.com/samcharles93/visualforge/pkg/usermap/halo3"
)

const (
	testMapID  = 7
	crateDatum = 3
)

// writeContainer builds a Halo 3 container with one resolved tag usage (0),
// one unresolved usage (1) and two placements of the resolved tag.
func writeContainer(t *testing.T) string {
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
	h := usermap.Header{Name: "Crate Run", Author: "forger", MapID: testMapID, MaximumBudget: 1000}
	if err := c.UpdateHeader(s, &h); err != nil {
		t.Fatalf("UpdateHeader: %v", err)
	}
	for i := 0; i < halo3.ObjectCount; i++ {
		p := usermap.Placement{
			Index:    i,
			Offset:   halo3.DefaultObjectTableOffset + int64(i)*halo3.ObjectRecordSize,
			TagIndex: -1,
		}
		if i == 2 || i == 4 {
			p.TagIndex = 0
			p.Pose = usermap.Pose{X: float32(i), Y: 1, Z: 2}
		}
		if err := c.UpdatePlacement(s, &p); err != nil {
			t.Fatalf("UpdatePlacement %d: %v", i, err)
		}
	}
	for i := 0; i < halo3.TagCount; i++ {
		u := usermap.TagUsage{
			Index:  i,
			Offset: halo3.TagTableOffset + int64(i)*halo3.TagRecordSize,
			Ident:  -1,
		}
		switch i {
		case 0:
			u.Ident, u.CountOnMap, u.RuntimeMax, u.Cost = crateDatum, 2, 8, 5
		case 1:
			u.Ident, u.CountOnMap = 0x7E57, 1
		}
		if err := c.UpdateTagUsage(s, &u); err != nil {
			t.Fatalf("UpdateTagUsage %d: %v", i, err)
		}
	}

	path := filepath.Join(t.TempDir(), "sandbox.map")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func testSource() taglist.Source {
	return taglist.NewStatic().Add(halo3.GameID, testMapID, taglist.NewCatalog(taglist.Document{
		MapName: "Sandbox",
		MapID:   testMapID,
		Tags: []taglist.Tag{
			{Class: "bloc", Path: "objects\\props\\crate", DatumIndex: crateDatum},
			{Class: "weap", Path: "objects\\weapons\\rifle", DatumIndex: 11},
		},
	}))
}

type entry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries *[]entry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: new([]entry)}
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, entry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any)  { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)   { l.add("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)   { l.add("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any)  { l.add("error", msg, args) }
func (l *recordingLogger) With(args ...any) logger.Logger { return l }
func (l *recordingLogger) WithGroup(string) logger.Logger { return l }

func (l *recordingLogger) count(level, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range *l.entries {
		if e.level == level && e.msg == msg {
			n++
		}
	}
	return n
}

func (l *recordingLogger) find(level, msg string) []any {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range *l.entries {
		if e.level == level && e.msg == msg {
			return e.args
		}
	}
	panic(fmt.Sprintf("no %s entry %q", level, msg))
}
