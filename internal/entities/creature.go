package entities

import "strings"

// Creature is one owned pokedex row. The (OwnerID, Tag) pair is unique;
// the tag is assigned at capture time and never changes while the row exists.
type Creature struct {
	OwnerID    string
	SpeciesID  int
	Name       string
	Level      int
	Tag        string
	Experience int
}

// DisplayName returns the species name with a capitalized first letter,
// the way the bot renders creatures in chat.
func (c *Creature) DisplayName() string {
	return Capitalize(c.Name)
}

// Capitalize upper-cases the first letter of a species or move name.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// PartySize is the fixed number of party slots.
const PartySize = 6

// EmptySlot marks an unassigned party position.
const EmptySlot = "-"

// Party is a trainer's ordered active roster. Each slot holds a lowercase
// tag or EmptySlot.
type Party [PartySize]string

// NewParty returns a party with every slot empty.
func NewParty() *Party {
	var p Party
	for i := range p {
		p[i] = EmptySlot
	}
	return &p
}

// Tags returns the non-empty slots in order.
func (p *Party) Tags() []string {
	tags := make([]string, 0, PartySize)
	for _, slot := range p {
		if slot != EmptySlot {
			tags = append(tags, slot)
		}
	}
	return tags
}

// Contains reports whether the tag occupies any slot.
func (p *Party) Contains(tag string) bool {
	tag = strings.ToLower(tag)
	for _, slot := range p {
		if slot == tag {
			return true
		}
	}
	return false
}

// IsEmpty reports whether every slot is unassigned.
func (p *Party) IsEmpty() bool {
	for _, slot := range p {
		if slot != EmptySlot {
			return false
		}
	}
	return true
}
