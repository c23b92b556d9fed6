package pokeapi

import "github.com/treacherygg/pokebot/internal/entities"

// Wire DTOs for the catalog's JSON shapes, converted at the boundary so
// the rest of the codebase only sees entity types.

type namedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pokemonDTO struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Stats []struct {
		BaseStat int      `json:"base_stat"`
		Stat     namedRef `json:"stat"`
	} `json:"stats"`
	Types []struct {
		Slot int      `json:"slot"`
		Type namedRef `json:"type"`
	} `json:"types"`
	Moves []struct {
		Move                namedRef `json:"move"`
		VersionGroupDetails []struct {
			LevelLearnedAt  int      `json:"level_learned_at"`
			MoveLearnMethod namedRef `json:"move_learn_method"`
		} `json:"version_group_details"`
	} `json:"moves"`
	Sprites struct {
		Other struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
}

func (d *pokemonDTO) toSpecies() *entities.Species {
	species := &entities.Species{
		ID:        d.ID,
		Name:      d.Name,
		BaseHP:    d.baseHP(),
		SpriteURL: d.Sprites.Other.OfficialArtwork.FrontDefault,
	}

	for _, t := range d.Types {
		species.Types = append(species.Types, t.Type.Name)
	}

	// Flatten version-group details: one ref per move, keeping the
	// lowest level-up learn level when the move has one.
	for _, m := range d.Moves {
		ref := entities.MoveRef{Name: m.Move.Name, URL: m.Move.URL}
		levelUpAt := -1
		for _, vg := range m.VersionGroupDetails {
			if vg.MoveLearnMethod.Name != entities.LearnMethodLevelUp {
				continue
			}
			if levelUpAt < 0 || vg.LevelLearnedAt < levelUpAt {
				levelUpAt = vg.LevelLearnedAt
			}
		}
		if levelUpAt >= 0 {
			ref.Method = entities.LearnMethodLevelUp
			ref.LearnedAt = levelUpAt
		} else if len(m.VersionGroupDetails) > 0 {
			ref.Method = m.VersionGroupDetails[0].MoveLearnMethod.Name
			ref.LearnedAt = m.VersionGroupDetails[0].LevelLearnedAt
		}
		species.Moves = append(species.Moves, ref)
	}

	return species
}

func (d *pokemonDTO) baseHP() int {
	for _, s := range d.Stats {
		if s.Stat.Name == "hp" {
			return s.BaseStat
		}
	}
	if len(d.Stats) > 0 {
		return d.Stats[0].BaseStat
	}
	return entities.FallbackBaseHP
}

type moveDTO struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Power *int     `json:"power"`
	Type  namedRef `json:"type"`
}

type typeDTO struct {
	Name            string `json:"name"`
	DamageRelations struct {
		DoubleDamageTo []namedRef `json:"double_damage_to"`
		HalfDamageTo   []namedRef `json:"half_damage_to"`
		NoDamageTo     []namedRef `json:"no_damage_to"`
	} `json:"damage_relations"`
}

type speciesDTO struct {
	Name           string `json:"name"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

type evolutionDetailDTO struct {
	Trigger  namedRef  `json:"trigger"`
	MinLevel *int      `json:"min_level"`
	Item     *namedRef `json:"item"`
}

type evolutionChainDTO struct {
	Chain chainLinkDTO `json:"chain"`
}

type chainLinkDTO struct {
	Species          namedRef             `json:"species"`
	EvolutionDetails []evolutionDetailDTO `json:"evolution_details"`
	EvolvesTo        []chainLinkDTO       `json:"evolves_to"`
}

func (d *chainLinkDTO) toLink() *entities.ChainLink {
	link := &entities.ChainLink{
		SpeciesID:   idFromURL(d.Species.URL),
		SpeciesName: d.Species.Name,
	}
	for _, det := range d.EvolutionDetails {
		detail := entities.EvolutionDetail{
			Trigger:  det.Trigger.Name,
			MinLevel: det.MinLevel,
		}
		if det.Item != nil {
			detail.Item = det.Item.Name
		}
		link.Details = append(link.Details, detail)
	}
	for i := range d.EvolvesTo {
		link.EvolvesTo = append(link.EvolvesTo, d.EvolvesTo[i].toLink())
	}
	return link
}
