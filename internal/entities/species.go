package entities

// Species is the catalog template shared by every creature of a kind.
// It is read-only data fetched from the external catalog.
type Species struct {
	ID        int
	Name      string
	BaseHP    int
	Types     []string
	Moves     []MoveRef
	SpriteURL string
}

// MoveRef is a move as listed on a species, before the move itself is
// fetched for its power and type.
type MoveRef struct {
	Name      string
	URL       string
	LearnedAt int
	Method    string
}

// LearnMethodLevelUp is the only learn method battle move pools draw from.
const LearnMethodLevelUp = "level-up"

// Move is a fully resolved move. Power is 0 when the catalog reports no
// power value (status moves).
type Move struct {
	Name  string
	Power int
	Type  string
}

// TypeRelations holds the damage relations of one attacking type against
// defender type names.
type TypeRelations struct {
	DoubleDamageTo []string
	HalfDamageTo   []string
	NoDamageTo     []string
}
