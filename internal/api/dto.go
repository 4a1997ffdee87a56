package api

import (
	"github.com/samcharles93/visualforge/internal/forge"
	"github.com/samcharles93/visualforge/internal/vecmath"
	"github.com/samcharles93/visualforge/pkg/usermap"
)

type OpenRequest struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"read_only,omitempty"`
}

type ListResponse[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}

func newList[T any](data []T) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Object: "list", Data: data}
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type BoundsDTO struct {
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

type HeaderDTO struct {
	CreationDate        int32  `json:"creation_date"`
	CreationName        string `json:"creation_name"`
	CreationDescription string `json:"creation_description"`
	CreationAuthor      string `json:"creation_author"`
	ModificationDate    int32  `json:"modification_date"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	Author              string `json:"author"`
	MapID               int32  `json:"map_id"`
	SpawnedObjectCount  int16  `json:"spawned_object_count"`

	WorldBounds struct {
		X BoundsDTO `json:"x"`
		Y BoundsDTO `json:"y"`
		Z BoundsDTO `json:"z"`
	} `json:"world_bounds"`

	MaximumBudget float32 `json:"maximum_budget"`
	CurrentBudget float32 `json:"current_budget"`
}

// HeaderFrom converts a header to its wire form.
func HeaderFrom(h usermap.Header) HeaderDTO {
	out := HeaderDTO{
		CreationDate:        h.CreationDate,
		CreationName:        h.CreationName,
		CreationDescription: h.CreationDescription,
		CreationAuthor:      h.CreationAuthor,
		ModificationDate:    h.ModificationDate,
		Name:                h.Name,
		Description:         h.Description,
		Author:              h.Author,
		MapID:               h.MapID,
		SpawnedObjectCount:  h.SpawnedObjectCount,
		MaximumBudget:       h.MaximumBudget,
		CurrentBudget:       h.CurrentBudget,
	}
	out.WorldBounds.X = BoundsDTO(h.WorldBoundsX)
	out.WorldBounds.Y = BoundsDTO(h.WorldBoundsY)
	out.WorldBounds.Z = BoundsDTO(h.WorldBoundsZ)
	return out
}

type SessionDTO struct {
	ID       string    `json:"id"`
	Object   string    `json:"object"`
	Game     string    `json:"game"`
	GameID   string    `json:"game_id"`
	Path     string    `json:"path"`
	ReadOnly bool      `json:"read_only"`
	Header   HeaderDTO `json:"header"`
}

func sessionDTO(id, path string, s *forge.Session) SessionDTO {
	return SessionDTO{
		ID:       id,
		Object:   "usermap",
		Game:     s.Game(),
		GameID:   s.GameID(),
		Path:     path,
		ReadOnly: s.ReadOnly(),
		Header:   HeaderFrom(s.Header()),
	}
}

type Vector3DTO struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type PlacementDTO struct {
	Index       int     `json:"index"`
	Offset      int64   `json:"offset"`
	TagIndex    int32   `json:"tag_index"`
	Usage       int     `json:"usage"`
	X           float32 `json:"x"`
	Y           float32 `json:"y"`
	Z           float32 `json:"z"`
	Yaw         float32 `json:"yaw"`
	Pitch       float32 `json:"pitch"`
	Roll        float32 `json:"roll"`
	Team        uint8   `json:"team"`
	RespawnTime uint8   `json:"respawn_time"`

	// Derived orientation, for clients that edit in degrees or basis vectors.
	Degrees Vector3DTO `json:"degrees"`
	Right   Vector3DTO `json:"right"`
	Forward Vector3DTO `json:"forward"`
	Up      Vector3DTO `json:"up"`
}

// PlacementFrom converts a placement to its wire form, adding the derived
// orientation in degrees and as basis vectors.
func PlacementFrom(p usermap.Placement) PlacementDTO {
	b := vecmath.FromYawPitchRoll(p.Pose.Yaw, p.Pose.Pitch, p.Pose.Roll)
	return PlacementDTO{
		Index:       p.Index,
		Offset:      p.Offset,
		TagIndex:    p.TagIndex,
		Usage:       p.Usage,
		X:           p.Pose.X,
		Y:           p.Pose.Y,
		Z:           p.Pose.Z,
		Yaw:         p.Pose.Yaw,
		Pitch:       p.Pose.Pitch,
		Roll:        p.Pose.Roll,
		Team:        p.Team,
		RespawnTime: p.RespawnTime,
		Degrees: Vector3DTO{
			X: vecmath.Degrees(p.Pose.Yaw),
			Y: vecmath.Degrees(p.Pose.Pitch),
			Z: vecmath.Degrees(p.Pose.Roll),
		},
		Right:   Vector3DTO(b.Right),
		Forward: Vector3DTO(b.Forward),
		Up:      Vector3DTO(b.Up),
	}
}

type TagDTO struct {
	Class      string `json:"class"`
	Path       string `json:"path"`
	DatumIndex int32  `json:"datum_index"`
	Index      int    `json:"index"`
}

type TagUsageDTO struct {
	Index         int     `json:"index"`
	Offset        int64   `json:"offset"`
	Ident         int32   `json:"ident"`
	Tag           *TagDTO `json:"tag"`
	RuntimeMin    uint8   `json:"runtime_min"`
	RuntimeMax    uint8   `json:"runtime_max"`
	CountOnMap    uint8   `json:"count_on_map"`
	DesignTimeMax uint8   `json:"design_time_max"`
	Cost          float32 `json:"cost"`
	Placements    []int   `json:"placements"`
}

func TagUsageFrom(u usermap.TagUsage) TagUsageDTO {
	out := TagUsageDTO{
		Index:         u.Index,
		Offset:        u.Offset,
		Ident:         u.Ident,
		RuntimeMin:    u.RuntimeMin,
		RuntimeMax:    u.RuntimeMax,
		CountOnMap:    u.CountOnMap,
		DesignTimeMax: u.DesignTimeMax,
		Cost:          u.Cost,
		Placements:    u.Placements,
	}
	if out.Placements == nil {
		out.Placements = []int{}
	}
	if u.Tag != nil {
		out.Tag = &TagDTO{
			Class:      u.Tag.Class,
			Path:       u.Tag.Path,
			DatumIndex: u.Tag.DatumIndex,
			Index:      u.Tag.Index,
		}
	}
	return out
}

// PlacementPatch holds the placement fields a client may change. Angles may
// be given in radians or degrees; degrees win when both are set.
type PlacementPatch struct {
	TagIndex     *int32   `json:"tag_index,omitempty"`
	X            *float32 `json:"x,omitempty"`
	Y            *float32 `json:"y,omitempty"`
	Z            *float32 `json:"z,omitempty"`
	Yaw          *float32 `json:"yaw,omitempty"`
	Pitch        *float32 `json:"pitch,omitempty"`
	Roll         *float32 `json:"roll,omitempty"`
	YawDegrees   *float32 `json:"yaw_degrees,omitempty"`
	PitchDegrees *float32 `json:"pitch_degrees,omitempty"`
	RollDegrees  *float32 `json:"roll_degrees,omitempty"`
	Team         *uint8   `json:"team,omitempty"`
	RespawnTime  *uint8   `json:"respawn_time,omitempty"`
}

func (pp PlacementPatch) apply(p *usermap.Placement) {
	set(&p.TagIndex, pp.TagIndex)
	set(&p.Pose.X, pp.X)
	set(&p.Pose.Y, pp.Y)
	set(&p.Pose.Z, pp.Z)
	set(&p.Pose.Yaw, pp.Yaw)
	set(&p.Pose.Pitch, pp.Pitch)
	set(&p.Pose.Roll, pp.Roll)
	setDegrees(&p.Pose.Yaw, pp.YawDegrees)
	setDegrees(&p.Pose.Pitch, pp.PitchDegrees)
	setDegrees(&p.Pose.Roll, pp.RollDegrees)
	set(&p.Team, pp.Team)
	set(&p.RespawnTime, pp.RespawnTime)
}

type TagUsagePatch struct {
	Ident         *int32   `json:"ident,omitempty"`
	RuntimeMin    *uint8   `json:"runtime_min,omitempty"`
	RuntimeMax    *uint8   `json:"runtime_max,omitempty"`
	CountOnMap    *uint8   `json:"count_on_map,omitempty"`
	DesignTimeMax *uint8   `json:"design_time_max,omitempty"`
	Cost          *float32 `json:"cost,omitempty"`
}

func (tp TagUsagePatch) apply(u *usermap.TagUsage) {
	set(&u.Ident, tp.Ident)
	set(&u.RuntimeMin, tp.RuntimeMin)
	set(&u.RuntimeMax, tp.RuntimeMax)
	set(&u.CountOnMap, tp.CountOnMap)
	set(&u.DesignTimeMax, tp.DesignTimeMax)
	set(&u.Cost, tp.Cost)
}

type HeaderPatch struct {
	CreationDate        *int32   `json:"creation_date,omitempty"`
	CreationName        *string  `json:"creation_name,omitempty"`
	CreationDescription *string  `json:"creation_description,omitempty"`
	CreationAuthor      *string  `json:"creation_author,omitempty"`
	ModificationDate    *int32   `json:"modification_date,omitempty"`
	Name                *string  `json:"name,omitempty"`
	Description         *string  `json:"description,omitempty"`
	Author              *string  `json:"author,omitempty"`
	SpawnedObjectCount  *int16   `json:"spawned_object_count,omitempty"`
	MaximumBudget       *float32 `json:"maximum_budget,omitempty"`
	CurrentBudget       *float32 `json:"current_budget,omitempty"`
}

func (hp HeaderPatch) apply(h *usermap.Header) {
	set(&h.CreationDate, hp.CreationDate)
	set(&h.CreationName, hp.CreationName)
	set(&h.CreationDescription, hp.CreationDescription)
	set(&h.CreationAuthor, hp.CreationAuthor)
	set(&h.ModificationDate, hp.ModificationDate)
	set(&h.Name, hp.Name)
	set(&h.Description, hp.Description)
	set(&h.Author, hp.Author)
	set(&h.SpawnedObjectCount, hp.SpawnedObjectCount)
	set(&h.MaximumBudget, hp.MaximumBudget)
	set(&h.CurrentBudget, hp.CurrentBudget)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDegrees(dst *float32, deg *float32) {
	if deg != nil {
		*dst = vecmath.Radians(*deg)
	}
}
