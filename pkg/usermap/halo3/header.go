package halo3

import (
	"unicode/utf16"

	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/usermap"
)

func readHeader(s *endian.Stream) (*usermap.Header, error) {
	var h usermap.Header
	var err error

	if err = s.SeekTo(offCreationDate); err != nil {
		return nil, err
	}
	if h.CreationDate, err = s.ReadInt32(); err != nil {
		return nil, err
	}
	if h.CreationName, h.CreationDescription, h.CreationAuthor, err = readIdentity(s, offCreationName, offCreationDescription, offCreationAuthor); err != nil {
		return nil, err
	}

	if err = s.SeekTo(offModificationDate); err != nil {
		return nil, err
	}
	if h.ModificationDate, err = s.ReadInt32(); err != nil {
		return nil, err
	}
	if h.Name, h.Description, h.Author, err = readIdentity(s, offName, offDescription, offAuthor); err != nil {
		return nil, err
	}

	if err = s.SeekTo(offMapID); err != nil {
		return nil, err
	}
	if h.MapID, err = s.ReadInt32(); err != nil {
		return nil, err
	}
	if err = s.SeekTo(offSpawnedObjectCount); err != nil {
		return nil, err
	}
	if h.SpawnedObjectCount, err = s.ReadInt16(); err != nil {
		return nil, err
	}

	if err = s.SeekTo(offWorldBounds); err != nil {
		return nil, err
	}
	for _, b := range []*usermap.Bounds{&h.WorldBoundsX, &h.WorldBoundsY, &h.WorldBoundsZ} {
		if b.Min, err = s.ReadFloat(); err != nil {
			return nil, err
		}
		if b.Max, err = s.ReadFloat(); err != nil {
			return nil, err
		}
	}

	if err = s.SeekTo(offBudgets); err != nil {
		return nil, err
	}
	if h.MaximumBudget, err = s.ReadFloat(); err != nil {
		return nil, err
	}
	if h.CurrentBudget, err = s.ReadFloat(); err != nil {
		return nil, err
	}
	return &h, nil
}

// readIdentity reads a name/description/author triple.
func readIdentity(s *endian.Stream, nameOff, descOff, authorOff int64) (name, desc, author string, err error) {
	if err = s.SeekTo(nameOff); err != nil {
		return
	}
	if name, err = s.ReadUTF16(nameUnits); err != nil {
		return
	}
	if err = s.SeekTo(descOff); err != nil {
		return
	}
	if desc, err = s.ReadAscii(descriptionSize); err != nil {
		return
	}
	if err = s.SeekTo(authorOff); err != nil {
		return
	}
	author, err = s.ReadAscii(authorSize)
	return
}

func writeHeader(s *endian.Stream, h *usermap.Header) error {
	if err := s.SeekTo(offCreationDate); err != nil {
		return err
	}
	if err := s.WriteInt32(h.CreationDate); err != nil {
		return err
	}
	if err := writeIdentity(s, offCreationName, offCreationDescription, offCreationAuthor, h.CreationName, h.CreationDescription, h.CreationAuthor); err != nil {
		return err
	}

	if err := s.SeekTo(offModificationDate); err != nil {
		return err
	}
	if err := s.WriteInt32(h.ModificationDate); err != nil {
		return err
	}
	if err := writeIdentity(s, offName, offDescription, offAuthor, h.Name, h.Description, h.Author); err != nil {
		return err
	}

	if err := s.SeekTo(offMapID); err != nil {
		return err
	}
	if err := s.WriteInt32(h.MapID); err != nil {
		return err
	}
	if err := s.SeekTo(offSpawnedObjectCount); err != nil {
		return err
	}
	if err := s.WriteInt16(h.SpawnedObjectCount); err != nil {
		return err
	}

	if err := s.SeekTo(offWorldBounds); err != nil {
		return err
	}
	for _, b := range []usermap.Bounds{h.WorldBoundsX, h.WorldBoundsY, h.WorldBoundsZ} {
		if err := s.WriteFloat(b.Min); err != nil {
			return err
		}
		if err := s.WriteFloat(b.Max); err != nil {
			return err
		}
	}

	if err := s.SeekTo(offBudgets); err != nil {
		return err
	}
	if err := s.WriteFloat(h.MaximumBudget); err != nil {
		return err
	}
	return s.WriteFloat(h.CurrentBudget)
}

func writeIdentity(s *endian.Stream, nameOff, descOff, authorOff int64, name, desc, author string) error {
	if err := s.SeekTo(nameOff); err != nil {
		return err
	}
	if err := s.WriteUTF16(fitName(name), nameSlotUnits); err != nil {
		return err
	}
	if err := s.SeekTo(descOff); err != nil {
		return err
	}
	if err := s.WriteAscii(desc, descriptionSize); err != nil {
		return err
	}
	if err := s.SeekTo(authorOff); err != nil {
		return err
	}
	return s.WriteAscii(author, authorSize)
}

// fitName truncates a name so that it and its terminator fit the name slot.
// Without the terminator a later read would run into the description bytes.
func fitName(name string) string {
	units := utf16.Encode([]rune(name))
	if len(units) < nameSlotUnits {
		return name
	}
	units = units[:nameSlotUnits-1]
	if last := units[len(units)-1]; utf16.IsSurrogate(rune(last)) && last < 0xDC00 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units))
}
