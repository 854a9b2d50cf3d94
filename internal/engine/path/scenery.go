package path

// TypeID identifies a scenery type for style lookup. Built-in types occupy
// the low range; application types start at UserTypeBase.
type TypeID uint16

// Built-in scenery type identifiers.
const (
	TypeVisual TypeID = iota
	TypeEventMarker
	TypeJunction
	TypeLevelPortal
	TypeLightSource
)

// UserTypeBase is the first type id available for application-registered
// scenery types.
const UserTypeBase TypeID = 64

// MaxSceneryTypes bounds the scenery type space.
const MaxSceneryTypes = 256

// Scenery is an attachment to a path point. Exactly one concrete variant
// backs each instance; interpretation sites type-switch over the variants.
type Scenery interface {
	// Type returns the type id used for style lookup.
	Type() TypeID

	scenery()
}

// Visual is a sprite attachment with a world-space size. Application scenery
// types reuse Visual with a TypeID at or above UserTypeBase so a registered
// style can take over drawing.
type Visual struct {
	ID            TypeID // 0 means TypeVisual
	Sprite        uint32 // texture handle, resolved by the texture manager
	Width, Height float32
}

func (v Visual) Type() TypeID {
	if v.ID >= UserTypeBase {
		return v.ID
	}
	return TypeVisual
}
func (Visual) scenery() {}

// EventMarker is a named gameplay trigger.
type EventMarker struct {
	Name string
	ID   int
}

func (EventMarker) Type() TypeID { return TypeEventMarker }
func (EventMarker) scenery()     {}

// JunctionKind describes the topology of a junction trigger.
type JunctionKind uint8

const (
	JunctionFork  JunctionKind = iota // exits only
	JunctionMerge                     // joins only
	JunctionTee                       // two of three choices
	JunctionCross                     // all three choices
)

// Choice is one junction connection: a target path and a position on it.
// An empty PathName means no choice in that direction.
type Choice struct {
	PathName string
	Z        float32
}

// Valid reports whether the choice points somewhere.
func (c Choice) Valid() bool { return c.PathName != "" }

// JunctionTrigger links the owning path to up to three other paths. Target
// paths are soft references by name, resolved at query time; the trigger does
// not require them to exist.
type JunctionTrigger struct {
	Kind                  JunctionKind
	Left, Right, Straight Choice
}

func (JunctionTrigger) Type() TypeID { return TypeJunction }
func (JunctionTrigger) scenery()     {}

// LevelPortal transfers into a named level at an entrance.
type LevelPortal struct {
	LevelName string
	Entrance  int
}

func (LevelPortal) Type() TypeID { return TypeLevelPortal }
func (LevelPortal) scenery()     {}

// LightSource attaches a point light to the path.
type LightSource struct {
	Color     [3]float32
	Radius    float32
	Intensity float32
	ID        int
}

func (LightSource) Type() TypeID { return TypeLightSource }
func (LightSource) scenery()     {}
