package gamemap

// TileKind identifies the type of a map tile.
type TileKind uint8

const (
	TileWall TileKind = iota
	TileFloor
	TileGrass
	TileWater
	TileTree
	TileDoor
)

// tileNames maps the world description's legend values to tile kinds.
var tileNames = map[string]TileKind{
	"wall":  TileWall,
	"floor": TileFloor,
	"grass": TileGrass,
	"water": TileWater,
	"tree":  TileTree,
	"door":  TileDoor,
}

// Tile holds the kind and collision flag for one map cell.
type Tile struct {
	Kind     TileKind
	Walkable bool
}

// MakeTile returns the canonical tile for kind. Walls, water and trees form
// the collidable layer.
func MakeTile(kind TileKind) Tile {
	switch kind {
	case TileFloor, TileGrass, TileDoor:
		return Tile{Kind: kind, Walkable: true}
	}
	return Tile{Kind: kind}
}

// MakeWall returns a blocking wall tile.
func MakeWall() Tile { return MakeTile(TileWall) }

// MakeFloor returns a passable floor tile.
func MakeFloor() Tile { return MakeTile(TileFloor) }
