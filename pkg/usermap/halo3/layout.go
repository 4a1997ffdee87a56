package halo3

// Container layout. All offsets are absolute from the start of the file and
// all multi-byte values are big-endian.
const (
	Magic       = "mapv"
	MagicOffset = 0x138

	offCreationDate        = 0x42
	offCreationName        = 0x48
	offCreationDescription = 0x68
	offCreationAuthor      = 0xE8
	offModificationDate    = 0x114
	offName                = 0x150
	offDescription         = 0x170
	offAuthor              = 0x1F0
	offMapID               = 0x228
	offSpawnedObjectCount  = 0x246
	offWorldBounds         = 0x24C
	offBudgets             = 0x268

	// nameUnits is the width read for variant names; nameSlotUnits is the
	// space actually available before the description that follows.
	nameUnits       = 0x1F
	nameSlotUnits   = 0x10
	descriptionSize = 0x80
	authorSize      = 0x13
)

// Placement table.
const (
	// DefaultObjectTableOffset is where the placement table starts. Some
	// builds of the original tooling read from 0x279; it stays configurable
	// until pinned against more sample files.
	DefaultObjectTableOffset = 0x278
	ObjectCount              = 640
	ObjectRecordSize         = 0x54

	// The placement table must start after the budgets and end before the
	// tag-usage table.
	minObjectTableOffset = offBudgets + 8
	maxObjectTableOffset = TagTableOffset - ObjectCount*ObjectRecordSize

	placementTagIndex    = 0x0C
	placementPose        = 0x10
	placementTeam        = 0x3F
	placementRespawnTime = 0x41
)

// Tag-usage table.
const (
	TagTableOffset = 0xD494
	TagCount       = 0x100
	TagRecordSize  = 0x0C
)

// MinContainerSize is the smallest container that holds both tables.
const MinContainerSize = TagTableOffset + TagCount*TagRecordSize
