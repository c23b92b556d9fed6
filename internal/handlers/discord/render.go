package discord

import (
	"fmt"
	"strings"

	"github.com/treacherygg/pokebot/internal/entities"
	"github.com/treacherygg/pokebot/internal/services/collection"
)

// messageLimit is Discord's hard cap on message content.
const messageLimit = 2000

// pokedexPageSize is how many pokedex rows fit on one page.
const pokedexPageSize = 15

// chunkMessage splits long content on line boundaries so every piece
// fits under the Discord message limit. A single oversized line is hard
// split.
func chunkMessage(content string) []string {
	if len(content) <= messageLimit {
		return []string{content}
	}

	var chunks []string
	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		for len(line) > messageLimit {
			if b.Len() > 0 {
				chunks = append(chunks, b.String())
				b.Reset()
			}
			chunks = append(chunks, line[:messageLimit])
			line = line[messageLimit:]
		}
		if b.Len() > 0 && b.Len()+len(line)+1 > messageLimit {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// renderParty renders the six party slots, one per line.
func renderParty(party *entities.Party) string {
	var b strings.Builder
	b.WriteString("**Party**\n")
	for i, slot := range party {
		fmt.Fprintf(&b, "%d. %s\n", i+1, slot)
	}
	return strings.TrimRight(b.String(), "\n")
}

// pokedexPages renders collection entries into numbered text pages.
func pokedexPages(entries []*collection.Entry) []string {
	if len(entries) == 0 {
		return []string{"Your pokedex is empty. Go catch something!"}
	}

	pageCount := (len(entries) + pokedexPageSize - 1) / pokedexPageSize
	pages := make([]string, 0, pageCount)
	for start := 0; start < len(entries); start += pokedexPageSize {
		end := start + pokedexPageSize
		if end > len(entries) {
			end = len(entries)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**Pokedex** (page %d/%d)\n", len(pages)+1, pageCount)
		for _, entry := range entries[start:end] {
			fmt.Fprintf(&b, "`%s` #%d %s — lvl %d, exp %s\n",
				entry.Creature.Tag,
				entry.Creature.SpeciesID,
				entry.Creature.DisplayName(),
				entry.Creature.Level,
				entry.Progress(),
			)
		}
		pages = append(pages, b.String())
	}
	return pages
}
