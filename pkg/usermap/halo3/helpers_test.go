package halo3

import (
	"encoding/binary"
	"math"
	"testing"
	"unicode/utf16"

	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/taglist"
)

const (
	fill       = 0xCD
	testMapID  = 7
	crateDatum = 3
)

type fixture struct {
	b []byte
}

// newFixture builds a container with every byte set to fill, a valid magic,
// and all placement and tag-usage records marked unused.
func newFixture() *fixture {
	f := &fixture{b: make([]byte, MinContainerSize)}
	for i := range f.b {
		f.b[i] = fill
	}
	copy(f.b[MagicOffset:], Magic)
	f.i32(offMapID, testMapID)
	for i := 0; i < ObjectCount; i++ {
		f.placement(i, -1, 0, 0, 0)
	}
	for i := 0; i < TagCount; i++ {
		f.usage(i, -1, 0, 0)
	}
	f.identity(offCreationName, offCreationDescription, offCreationAuthor, "Origin", "first cut", "builder")
	f.identity(offName, offDescription, offAuthor, "Crate Run", "crates everywhere", "forger")
	return f
}

func (f *fixture) i32(off int, v int32) {
	binary.BigEndian.PutUint32(f.b[off:], uint32(v))
}

func (f *fixture) f32(off int, v float32) {
	binary.BigEndian.PutUint32(f.b[off:], math.Float32bits(v))
}

func (f *fixture) identity(nameOff, descOff, authorOff int, name, desc, author string) {
	units := utf16.Encode([]rune(name))
	for i := 0; i < nameSlotUnits; i++ {
		var u uint16
		if i < len(units) {
			u = units[i]
		}
		binary.BigEndian.PutUint16(f.b[nameOff+2*i:], u)
	}
	field := make([]byte, descriptionSize)
	copy(field, desc)
	copy(f.b[descOff:], field)
	field = make([]byte, authorSize)
	copy(field, author)
	copy(f.b[authorOff:], field)
}

func (f *fixture) placementOffset(i int) int {
	return DefaultObjectTableOffset + i*ObjectRecordSize
}

func (f *fixture) placement(i int, tagIndex int32, x, y, z float32) {
	off := f.placementOffset(i)
	f.i32(off+placementTagIndex, tagIndex)
	for j, v := range []float32{x, y, z, 0, 0, 0} {
		f.f32(off+placementPose+4*j, v)
	}
	f.b[off+placementTeam] = 8
	f.b[off+placementRespawnTime] = 30
}

func (f *fixture) usage(i int, ident int32, countOnMap uint8, cost float32) {
	off := TagTableOffset + i*TagRecordSize
	f.i32(off, ident)
	f.b[off+4] = 0
	f.b[off+5] = 10
	f.b[off+6] = countOnMap
	f.b[off+7] = 10
	f.f32(off+8, cost)
}

func (f *fixture) stream(t *testing.T) (*endian.Stream, *endian.Buffer) {
	t.Helper()
	buf := endian.NewBuffer(append([]byte(nil), f.b...))
	s, err := endian.NewStream(buf, endian.BigEndian)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	return s, buf
}

func crateCatalog() *taglist.Catalog {
	return taglist.NewCatalog(taglist.Document{
		MapName: "Sandbox",
		MapID:   testMapID,
		Tags: []taglist.Tag{
			{Class: "bloc", Path: "objects\\props\\crate", DatumIndex: crateDatum},
			{Class: "weap", Path: "objects\\weapons\\rifle", DatumIndex: 11},
		},
	})
}

func crateSource() taglist.Source {
	return taglist.NewStatic().Add(GameID, testMapID, crateCatalog())
}
