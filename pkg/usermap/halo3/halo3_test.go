package halo3

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/taglist"
	"github.com/samcharles93/visualforge/pkg/usermap"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	c := New()
	s, _ := newFixture().stream(t)
	if err := c.Validate(s); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := newFixture()
	copy(bad.b[MagicOffset:], "mapx")
	s, _ = bad.stream(t)
	if err := c.Validate(s); !errors.Is(err, usermap.ErrInvalidMagic) {
		t.Fatalf("Validate bad magic: got %v want %v", err, usermap.ErrInvalidMagic)
	}

	short, err := endian.NewStream(endian.NewBuffer(make([]byte, MagicOffset+2)), endian.BigEndian)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	if err := c.Validate(short); !errors.Is(err, usermap.ErrInvalidMagic) {
		t.Fatalf("Validate short: got %v want %v", err, usermap.ErrInvalidMagic)
	}
}

func TestDecodeRejectsBadMagicBeforeCatalog(t *testing.T) {
	t.Parallel()

	f := newFixture()
	copy(f.b[MagicOffset:], "xxxx")
	s, _ := f.stream(t)
	m, err := New().Decode(s, crateSource())
	if !errors.Is(err, usermap.ErrInvalidMagic) {
		t.Fatalf("Decode: got %v want %v", err, usermap.ErrInvalidMagic)
	}
	if m != nil {
		t.Fatalf("Decode returned a model on failure")
	}
}

func TestDecodeHeader(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.i32(offCreationDate, 1190000000)
	f.i32(offModificationDate, 1190003600)
	binaryPut16(f.b, offSpawnedObjectCount, 12)
	for i, v := range []float32{-100, 100, -50, 50, -10, 40} {
		f.f32(offWorldBounds+4*i, v)
	}
	f.f32(offBudgets, 10000)
	f.f32(offBudgets+4, 2500)

	s, _ := f.stream(t)
	h, err := New().DecodeHeader(s)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Name != "Crate Run" || h.Description != "crates everywhere" || h.Author != "forger" {
		t.Fatalf("identity: got %q/%q/%q", h.Name, h.Description, h.Author)
	}
	if h.CreationName != "Origin" || h.CreationAuthor != "builder" {
		t.Fatalf("creation identity: got %q/%q", h.CreationName, h.CreationAuthor)
	}
	if h.CreationDate != 1190000000 || h.ModificationDate != 1190003600 {
		t.Fatalf("dates: got %d/%d", h.CreationDate, h.ModificationDate)
	}
	if h.MapID != testMapID {
		t.Fatalf("map id: got %d want %d", h.MapID, testMapID)
	}
	if h.SpawnedObjectCount != 12 {
		t.Fatalf("spawned: got %d want 12", h.SpawnedObjectCount)
	}
	want := usermap.Bounds{Min: -10, Max: 40}
	if h.WorldBoundsZ != want {
		t.Fatalf("z bounds: got %+v want %+v", h.WorldBoundsZ, want)
	}
	if h.MaximumBudget != 10000 || h.CurrentBudget != 2500 {
		t.Fatalf("budgets: got %v/%v", h.MaximumBudget, h.CurrentBudget)
	}
}

func binaryPut16(b []byte, off int, v int16) {
	b[off] = byte(uint16(v) >> 8)
	b[off+1] = byte(v)
}

func TestDecodeBindsPlacementsAndTags(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.usage(0, crateDatum, 2, 1.5)
	f.usage(1, 99, 1, 3)
	f.usage(2, 11, 0, 5)
	f.placement(0, 0, 1, 2, 3)
	f.placement(5, 0, 4, 5, 6)
	f.placement(6, 1, 0, 0, 0)
	f.placement(7, 2, 0, 0, 0)
	f.placement(9, 300, 0, 0, 0)

	s, _ := f.stream(t)
	m, err := New().Decode(s, crateSource())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.Game != Name {
		t.Fatalf("game: got %q want %q", m.Game, Name)
	}
	if len(m.Placements) != ObjectCount || len(m.TagUsages) != TagCount {
		t.Fatalf("table sizes: got %d/%d", len(m.Placements), len(m.TagUsages))
	}

	crate := m.TagUsages[0]
	if !crate.Resolved() {
		t.Fatalf("tag usage 0 did not resolve")
	}
	if crate.Tag.Path != "objects\\props\\crate" || crate.Tag.Class != "bloc" {
		t.Fatalf("tag usage 0: got %+v", crate.Tag.Tag)
	}
	if crate.Tag.Index != 0 {
		t.Fatalf("runtime index: got %d want 0", crate.Tag.Index)
	}
	if crate.Cost != 1.5 || crate.CountOnMap != 2 || crate.RuntimeMax != 10 {
		t.Fatalf("tag usage 0 counters: got %+v", crate)
	}
	if !slices.Equal(crate.Placements, []int{0, 5}) {
		t.Fatalf("bound placements: got %v want [0 5]", crate.Placements)
	}

	if m.TagUsages[1].Resolved() {
		t.Fatalf("ident 99 should not resolve")
	}
	if got := m.Unresolved(); !slices.Contains(got, 1) || slices.Contains(got, 0) || slices.Contains(got, 2) {
		t.Fatalf("unresolved: got %v", got)
	}
	if m.TagUsages[2].Tag.Index != 2 {
		t.Fatalf("runtime index of usage 2: got %d want 2", m.TagUsages[2].Tag.Index)
	}
	if len(m.TagUsages[2].Placements) != 0 {
		t.Fatalf("zero CountOnMap should collect nothing, got %v", m.TagUsages[2].Placements)
	}

	p := m.Placements[5]
	if p.Index != 5 || p.Offset != int64(f.placementOffset(5)) {
		t.Fatalf("placement 5 position: got index %d offset %#x", p.Index, p.Offset)
	}
	if p.Pose.X != 4 || p.Pose.Y != 5 || p.Pose.Z != 6 || p.Team != 8 || p.RespawnTime != 30 {
		t.Fatalf("placement 5: got %+v", p)
	}
	if u, ok := m.UsageOf(5); !ok || u.Index != 0 {
		t.Fatalf("UsageOf(5): got %v %v", u, ok)
	}
	if m.Placements[6].Usage != 1 {
		t.Fatalf("placement 6 usage: got %d want 1", m.Placements[6].Usage)
	}
	if len(m.TagUsages[1].Placements) != 0 {
		t.Fatalf("unresolved usage 1 placements: got %v want none", m.TagUsages[1].Placements)
	}
	if m.Placements[9].Usage != -1 || m.Placements[3].Usage != -1 {
		t.Fatalf("out-of-range and unused placements should be unbound")
	}
	if m.Catalog.MapID() != testMapID {
		t.Fatalf("catalog map id: got %d", m.Catalog.MapID())
	}
}

func TestDecodeMissingTaglist(t *testing.T) {
	t.Parallel()

	s, _ := newFixture().stream(t)
	m, err := New().Decode(s, taglist.NewStatic())
	if !errors.Is(err, usermap.ErrMissingTaglist) {
		t.Fatalf("Decode: got %v want %v", err, usermap.ErrMissingTaglist)
	}
	if m != nil {
		t.Fatalf("Decode returned a model without a tag list")
	}

	s, _ = newFixture().stream(t)
	if _, err := New().Decode(s, nil); !errors.Is(err, usermap.ErrMissingTaglist) {
		t.Fatalf("Decode nil source: got %v want %v", err, usermap.ErrMissingTaglist)
	}
}

func TestUpdateWithoutChangesIsIdentity(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.usage(0, crateDatum, 1, 2)
	f.placement(3, 0, 7, 8, 9)
	s, buf := f.stream(t)

	c := New()
	m, err := c.Decode(s, crateSource())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := c.UpdateHeader(s, &m.Header); err != nil {
		t.Fatalf("UpdateHeader: %v", err)
	}
	for i := range m.Placements {
		if err := c.UpdatePlacement(s, &m.Placements[i]); err != nil {
			t.Fatalf("UpdatePlacement %d: %v", i, err)
		}
	}
	for i := range m.TagUsages {
		if err := c.UpdateTagUsage(s, &m.TagUsages[i]); err != nil {
			t.Fatalf("UpdateTagUsage %d: %v", i, err)
		}
	}
	if !bytes.Equal(buf.Bytes(), f.b) {
		for i := range f.b {
			if buf.Bytes()[i] != f.b[i] {
				t.Fatalf("container changed at %#x: got %#x want %#x", i, buf.Bytes()[i], f.b[i])
			}
		}
		t.Fatalf("container length changed: got %d want %d", buf.Len(), len(f.b))
	}
}

func TestUpdatePlacementTouchesOwnedFieldsOnly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.usage(0, crateDatum, 1, 2)
	f.placement(3, 0, 7, 8, 9)
	s, buf := f.stream(t)

	c := New()
	m, err := c.Decode(s, crateSource())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := m.Placements[3]
	p.Pose.X = -12.5
	p.Pose.Yaw = 1.25
	p.Team = 2
	p.RespawnTime = 60
	if err := c.UpdatePlacement(s, &p); err != nil {
		t.Fatalf("UpdatePlacement: %v", err)
	}

	off := f.placementOffset(3)
	for _, reserved := range []int{0, 0x0B, 0x28, 0x3E, 0x40, 0x42, ObjectRecordSize - 1} {
		if got := buf.Bytes()[off+reserved]; got != fill {
			t.Fatalf("reserved byte +%#x: got %#x want %#x", reserved, got, fill)
		}
	}
	if got := buf.Bytes()[off+ObjectRecordSize+placementTagIndex]; got != 0xFF {
		t.Fatalf("next record disturbed: got %#x", got)
	}

	again, err := c.Decode(s, crateSource())
	if err != nil {
		t.Fatalf("Decode after update: %v", err)
	}
	got := again.Placements[3]
	if got.Pose != p.Pose || got.Team != 2 || got.RespawnTime != 60 {
		t.Fatalf("placement after update: got %+v want %+v", got, p)
	}
}

func TestUpdateTagUsage(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.usage(4, crateDatum, 1, 2)
	s, _ := f.stream(t)

	c := New()
	m, err := c.Decode(s, crateSource())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	u := m.TagUsages[4]
	u.DesignTimeMax = 32
	u.Cost = 7.5
	if err := c.UpdateTagUsage(s, &u); err != nil {
		t.Fatalf("UpdateTagUsage: %v", err)
	}
	again, err := c.Decode(s, crateSource())
	if err != nil {
		t.Fatalf("Decode after update: %v", err)
	}
	if got := again.TagUsages[4]; got.DesignTimeMax != 32 || got.Cost != 7.5 || got.Ident != crateDatum {
		t.Fatalf("tag usage after update: got %+v", got)
	}
	if got := again.TagUsages[5].Ident; got != -1 {
		t.Fatalf("neighbour ident: got %d want -1", got)
	}
}

func TestUpdateHeaderTruncatesName(t *testing.T) {
	t.Parallel()

	s, buf := newFixture().stream(t)
	c := New()
	h, err := c.DecodeHeader(s)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	descBefore := append([]byte(nil), buf.Bytes()[offDescription:offDescription+descriptionSize]...)

	h.Name = "A Very Long Variant Name"
	if err := c.UpdateHeader(s, h); err != nil {
		t.Fatalf("UpdateHeader: %v", err)
	}
	got, err := c.DecodeHeader(s)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if want := "A Very Long Var"; got.Name != want {
		t.Fatalf("name: got %q want %q", got.Name, want)
	}
	if !bytes.Equal(buf.Bytes()[offDescription:offDescription+descriptionSize], descBefore) {
		t.Fatalf("description bytes changed")
	}
	if got.Description != "crates everywhere" {
		t.Fatalf("description: got %q", got.Description)
	}
}

func TestUpdateRequiresDecodedOffset(t *testing.T) {
	t.Parallel()

	s, _ := newFixture().stream(t)
	c := New()
	if err := c.UpdatePlacement(s, &usermap.Placement{}); !errors.Is(err, usermap.ErrOffsetUnset) {
		t.Fatalf("UpdatePlacement: got %v want %v", err, usermap.ErrOffsetUnset)
	}
	if err := c.UpdateTagUsage(s, &usermap.TagUsage{}); !errors.Is(err, usermap.ErrOffsetUnset) {
		t.Fatalf("UpdateTagUsage: got %v want %v", err, usermap.ErrOffsetUnset)
	}
}

func TestWithObjectTableOffset(t *testing.T) {
	t.Parallel()

	s, _ := newFixture().stream(t)
	c := New(WithObjectTableOffset(0x279))
	if c.ObjectTableOffset() != 0x279 {
		t.Fatalf("ObjectTableOffset: got %#x", c.ObjectTableOffset())
	}
	m, err := c.Decode(s, crateSource())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, want := m.Placements[1].Offset, int64(0x279+ObjectRecordSize); got != want {
		t.Fatalf("placement 1 offset: got %#x want %#x", got, want)
	}
}

func TestObjectTableOffsetBounds(t *testing.T) {
	t.Parallel()

	for _, off := range []int64{0, -1, 0x26F, TagTableOffset - ObjectCount*ObjectRecordSize + 1} {
		s, _ := newFixture().stream(t)
		c := New(WithObjectTableOffset(off))
		if err := c.Validate(s); !errors.Is(err, ErrTableOffset) {
			t.Fatalf("Validate with offset %#x: got %v want %v", off, err, ErrTableOffset)
		}
		p := usermap.Placement{Offset: DefaultObjectTableOffset}
		if err := c.UpdatePlacement(s, &p); !errors.Is(err, ErrTableOffset) {
			t.Fatalf("UpdatePlacement with offset %#x: got %v want %v", off, err, ErrTableOffset)
		}
	}

	for _, off := range []int64{0x270, DefaultObjectTableOffset, 0x279, TagTableOffset - ObjectCount*ObjectRecordSize} {
		s, _ := newFixture().stream(t)
		if err := New(WithObjectTableOffset(off)).Validate(s); err != nil {
			t.Fatalf("Validate with offset %#x: %v", off, err)
		}
	}
}

func TestFitName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"exactly fifteen", "exactly fifteen"},
		{"sixteen letters!", "sixteen letters"},
		{"fourteen chars\U0001F600", "fourteen chars"},
	}
	for _, tt := range tests {
		if got := fitName(tt.in); got != tt.want {
			t.Fatalf("fitName(%q): got %q want %q", tt.in, got, tt.want)
		}
	}
}
