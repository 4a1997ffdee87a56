package halo3

import (
	"fmt"

	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/taglist"
	"github.com/samcharles93/visualforge/pkg/usermap"
)

func (c *Codec) readPlacements(s *endian.Stream) ([]usermap.Placement, error) {
	out := make([]usermap.Placement, ObjectCount)
	for i := range out {
		off := c.objectTableOffset + int64(i)*ObjectRecordSize
		if err := readPlacement(s, off, &out[i]); err != nil {
			return nil, fmt.Errorf("halo3: read placement %d at %#x: %w", i, off, err)
		}
		out[i].Index = i
	}
	return out, nil
}

func readPlacement(s *endian.Stream, off int64, p *usermap.Placement) error {
	var err error
	p.Offset = off
	p.Usage = -1

	if err = s.SeekTo(off + placementTagIndex); err != nil {
		return err
	}
	if p.TagIndex, err = s.ReadInt32(); err != nil {
		return err
	}
	if err = s.SeekTo(off + placementPose); err != nil {
		return err
	}
	for _, f := range poseFields(&p.Pose) {
		if *f, err = s.ReadFloat(); err != nil {
			return err
		}
	}
	if err = s.SeekTo(off + placementTeam); err != nil {
		return err
	}
	if p.Team, err = s.ReadByte(); err != nil {
		return err
	}
	if err = s.SeekTo(off + placementRespawnTime); err != nil {
		return err
	}
	p.RespawnTime, err = s.ReadByte()
	return err
}

func writePlacement(s *endian.Stream, p *usermap.Placement) error {
	if err := s.SeekTo(p.Offset + placementTagIndex); err != nil {
		return err
	}
	if err := s.WriteInt32(p.TagIndex); err != nil {
		return err
	}
	if err := s.SeekTo(p.Offset + placementPose); err != nil {
		return err
	}
	for _, f := range poseFields(&p.Pose) {
		if err := s.WriteFloat(*f); err != nil {
			return err
		}
	}
	if err := s.SeekTo(p.Offset + placementTeam); err != nil {
		return err
	}
	if err := s.WriteByte(p.Team); err != nil {
		return err
	}
	if err := s.SeekTo(p.Offset + placementRespawnTime); err != nil {
		return err
	}
	return s.WriteByte(p.RespawnTime)
}

// poseFields lists the pose in on-disk order.
func poseFields(p *usermap.Pose) []*float32 {
	return []*float32{&p.X, &p.Y, &p.Z, &p.Yaw, &p.Pitch, &p.Roll}
}

// readTagUsages reads the tag-usage table and resolves each ident against
// catalog. Misses leave Tag nil.
func readTagUsages(s *endian.Stream, catalog *taglist.Catalog) ([]usermap.TagUsage, error) {
	out := make([]usermap.TagUsage, TagCount)
	for i := range out {
		u := &out[i]
		u.Index = i
		u.Offset = TagTableOffset + int64(i)*TagRecordSize
		if err := readTagUsage(s, u); err != nil {
			return nil, fmt.Errorf("halo3: read tag usage %d at %#x: %w", i, u.Offset, err)
		}
		if tag, ok := catalog.Lookup(u.Ident); ok {
			u.Tag = &usermap.ResolvedTag{Tag: tag, Index: i}
		}
	}
	return out, nil
}

func readTagUsage(s *endian.Stream, u *usermap.TagUsage) error {
	var err error
	if err = s.SeekTo(u.Offset); err != nil {
		return err
	}
	if u.Ident, err = s.ReadInt32(); err != nil {
		return err
	}
	for _, f := range countFields(u) {
		if *f, err = s.ReadByte(); err != nil {
			return err
		}
	}
	u.Cost, err = s.ReadFloat()
	return err
}

func writeTagUsage(s *endian.Stream, u *usermap.TagUsage) error {
	if err := s.SeekTo(u.Offset); err != nil {
		return err
	}
	if err := s.WriteInt32(u.Ident); err != nil {
		return err
	}
	for _, f := range countFields(u) {
		if err := s.WriteByte(*f); err != nil {
			return err
		}
	}
	return s.WriteFloat(u.Cost)
}

func countFields(u *usermap.TagUsage) []*uint8 {
	return []*uint8{&u.RuntimeMin, &u.RuntimeMax, &u.CountOnMap, &u.DesignTimeMax}
}
