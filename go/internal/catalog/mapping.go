package catalog

import (
	marvel "github.com/mcdev12/dreamteams/go/clients/marvel_client"
	"github.com/mcdev12/dreamteams/go/internal/models"
)

func mapExternalCharacter(c marvel.Character) models.Character {
	return models.Character{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.Thumbnail.URL(),
	}
}

func mapExternalCharacters(cs []marvel.Character) []models.Character {
	out := make([]models.Character, len(cs))
	for i, c := range cs {
		out[i] = mapExternalCharacter(c)
	}
	return out
}
