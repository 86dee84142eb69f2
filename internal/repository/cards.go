package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/holotable/holotable-server-go/internal/catalog"
)

// ImportCards upserts catalog records into the cards table and returns how
// many were written.
func ImportCards(ctx context.Context, db execer, cards []catalog.CardRecord) (int, error) {
	imported := 0
	for _, c := range cards {
		def, err := c.Definition()
		if err != nil {
			return imported, err
		}
		if _, err := db.Exec(ctx, `
			INSERT INTO cards (
				blueprint_id, title, side, category, card_types, uniqueness,
				destiny, deploy_cost, power, ability, forfeit, location_kind, game_text
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (blueprint_id) DO UPDATE SET
				title = EXCLUDED.title, side = EXCLUDED.side, category = EXCLUDED.category,
				card_types = EXCLUDED.card_types, uniqueness = EXCLUDED.uniqueness,
				destiny = EXCLUDED.destiny, deploy_cost = EXCLUDED.deploy_cost,
				power = EXCLUDED.power, ability = EXCLUDED.ability, forfeit = EXCLUDED.forfeit,
				location_kind = EXCLUDED.location_kind, game_text = EXCLUDED.game_text`,
			def.BlueprintID,
			def.Title,
			string(def.Side),
			string(def.Category),
			buildCardType(def.Types, def.Keywords),
			def.Unique,
			def.Destiny,
			def.DeployCost,
			def.Power,
			def.Ability,
			def.Forfeit,
			def.LocationKind,
			c.GameText,
		); err != nil {
			return imported, fmt.Errorf("failed to insert card %s: %w", def.BlueprintID, err)
		}
		imported++
	}
	return imported, nil
}

func buildCardType(types, keywords []string) string {
	result := strings.Join(types, " ")
	if len(keywords) > 0 {
		result += " — " + strings.Join(keywords, ", ")
	}
	return result
}
