package bias

import (
	"fmt"

	"trading-coach/internal/models"
)

func anchoringRule() Rule {
	return Rule{
		Type:        models.BiasAnchoring,
		Name:        "Anchoring",
		Description: "Reliance too heavily on the first piece of information encountered (anchor)",
		Symptoms: []string{
			"Fixing on entry price",
			"Holding for \"breakeven\"",
			"Ignoring new price action",
		},
		Checks: []Check{heldWithoutMovement},
	}
}

// heldWithoutMovement counts trades that barely moved yet were held long.
// With RequireBracketOrders only trades carrying both a stop and a target count.
func heldWithoutMovement(in Input) Hit {
	anchored := 0
	for _, t := range in.Trades {
		if in.Config.RequireBracketOrders && !t.HasBracket() {
			continue
		}
		if t.PriceMove() < in.Config.AnchorMaxMove && t.DurationMinutes > in.Config.AnchorMinMinutes {
			anchored++
		}
	}
	if anchored <= in.Config.AnchorMinTrades {
		return Hit{}
	}
	return Hit{
		Fired:      true,
		Confidence: 50,
		Severity:   models.SeverityMedium,
		Evidence:   fmt.Sprintf("%d trades held with minimal price movement", anchored),
	}
}
