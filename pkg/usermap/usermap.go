// Package usermap models Forge map variants ("usermaps") independently of
// the title that produced them.
//
// A Codec decodes a container into a Usermap and writes individual records
// back to the offsets they were decoded from. Records are never relocated:
// the container layout is fixed, and write-back touches only the fields a
// record owns.
package usermap

import "github.com/samcharles93/visualforge/pkg/taglist"

// Bounds is a min/max pair along one world axis.
type Bounds struct {
	Min float32
	Max float32
}

// Header is the container's global header.
type Header struct {
	CreationDate        int32
	CreationName        string
	CreationDescription string
	CreationAuthor      string

	ModificationDate int32
	Name             string
	Description      string
	Author           string

	MapID              int32
	SpawnedObjectCount int16

	WorldBoundsX Bounds
	WorldBoundsY Bounds
	WorldBoundsZ Bounds

	MaximumBudget float32
	CurrentBudget float32
}

// Pose is a spawn position and orientation. Angles are radians.
type Pose struct {
	X, Y, Z          float32
	Yaw, Pitch, Roll float32
}

// Placement is one object placement record.
type Placement struct {
	// Index is the record's position in the placement table.
	Index int
	// Offset is the absolute container offset captured at decode time.
	Offset int64
	// TagIndex is a position in the tag-usage table, or negative when unused.
	TagIndex    int32
	Pose        Pose
	Team        uint8
	RespawnTime uint8
	// Usage is the bound tag-usage table position, or -1. Set by Bind.
	Usage int
}

// Placed reports whether the record refers to a tag-usage entry.
func (p *Placement) Placed() bool {
	return p.TagIndex >= 0
}

// ResolvedTag is a catalog tag attached to a tag-usage record.
type ResolvedTag struct {
	taglist.Tag
	// Index is the runtime tag index: the owning record's table position.
	Index int
}

// TagUsage is one tag-usage (budget) record.
type TagUsage struct {
	Index  int
	Offset int64
	Ident  int32
	// Tag is nil when Ident has no entry in the catalog.
	Tag           *ResolvedTag
	RuntimeMin    uint8
	RuntimeMax    uint8
	CountOnMap    uint8
	DesignTimeMax uint8
	Cost          float32
	// Placements lists placement table positions bound to this record. It is
	// derived by Bind and never persisted.
	Placements []int
}

// Resolved reports whether Ident was found in the catalog.
func (u *TagUsage) Resolved() bool {
	return u.Tag != nil
}

// Usermap is a decoded container.
type Usermap struct {
	// Game names the codec that produced the map.
	Game       string
	Header     Header
	Placements []Placement
	TagUsages  []TagUsage
	Catalog    *taglist.Catalog
}

// UsageOf returns the tag-usage record bound to placement i.
func (m *Usermap) UsageOf(i int) (*TagUsage, bool) {
	if i < 0 || i >= len(m.Placements) {
		return nil, false
	}
	u := m.Placements[i].Usage
	if u < 0 || u >= len(m.TagUsages) {
		return nil, false
	}
	return &m.TagUsages[u], true
}

// PlacedObjects returns the placements bound to tag-usage record i.
func (m *Usermap) PlacedObjects(i int) []*Placement {
	if i < 0 || i >= len(m.TagUsages) {
		return nil
	}
	idx := m.TagUsages[i].Placements
	out := make([]*Placement, 0, len(idx))
	for _, p := range idx {
		out = append(out, &m.Placements[p])
	}
	return out
}

// Unresolved returns the table positions of tag-usage records whose Ident
// did not resolve against the catalog.
func (m *Usermap) Unresolved() []int {
	var out []int
	for i := range m.TagUsages {
		if m.TagUsages[i].Tag == nil {
			out = append(out, i)
		}
	}
	return out
}
