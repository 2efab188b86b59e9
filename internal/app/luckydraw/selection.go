package luckydraw

import (
	"math/rand/v2"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// Selection é uma entrada sorteada para um tier, com a ordem global de revelação.
type Selection struct {
	Entry domain.Entry
	Tier  domain.PrizeTier
	Order int
}

// Select sorteia ganhadores tier a tier, na ordem declarada.
//
// Cada entrada elegível tem a mesma chance, então quem tem mais entradas tem mais chances.
// Entradas sorteadas saem do pool. Com preventDup, as demais entradas do participante também
// saem, e ele não aparece em outro tier nem duas vezes no mesmo tier. Tiers maiores que o pool
// recebem apenas o que sobrou; pool vazio gera zero ganhadores.
// exclude remove fingerprints antes do primeiro tier. A mesma semente em rng reproduz o resultado.
func Select(pool []domain.Entry, tiers []domain.PrizeTier, exclude map[string]struct{}, preventDup bool, rng *rand.Rand) []Selection {
	remaining := make([]domain.Entry, 0, len(pool))
	for _, e := range pool {
		if _, skip := exclude[e.UserFingerprint]; skip {
			continue
		}
		remaining = append(remaining, e)
	}

	var result []Selection
	order := 0
	for _, tier := range tiers {
		for n := 0; n < tier.Count && len(remaining) > 0; n++ {
			i := rng.IntN(len(remaining))
			chosen := remaining[i]
			remaining = append(remaining[:i], remaining[i+1:]...)

			order++
			result = append(result, Selection{Entry: chosen, Tier: tier, Order: order})

			if preventDup {
				remaining = withoutFingerprint(remaining, chosen.UserFingerprint)
			}
		}
	}
	return result
}

func withoutFingerprint(entries []domain.Entry, fingerprint string) []domain.Entry {
	kept := entries[:0]
	for _, e := range entries {
		if e.UserFingerprint != fingerprint {
			kept = append(kept, e)
		}
	}
	return kept
}
