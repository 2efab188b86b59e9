package luckydraw

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/lucky-draw/internal/domain"
	"github.com/marcelojr/lucky-draw/internal/platform/random"
)

func entradasPorParticipante(counts map[string]int) []domain.Entry {
	base := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	var pool []domain.Entry
	n := 0
	// Ordem fixa dos participantes para o pool ser determinístico.
	for _, fp := range []string{"ana", "bia", "caio", "davi", "eva", "fabio"} {
		for i := 0; i < counts[fp]; i++ {
			n++
			pool = append(pool, domain.Entry{
				ID:              domain.EntryID(fmt.Sprintf("entry-%02d", n)),
				UserFingerprint: fp,
				CreatedAt:       base.Add(time.Duration(n) * time.Second),
			})
		}
	}
	return pool
}

var tiersPrimeiroESegundo = []domain.PrizeTier{
	{Tier: domain.TierFirst, Name: "TV", Count: 1},
	{Tier: domain.TierSecond, Name: "Caneca", Count: 2},
}

func TestSelect_QuandoTresParticipantes_DevePreencherTodosOsTiers(t *testing.T) {
	pool := entradasPorParticipante(map[string]int{"ana": 1, "bia": 1, "caio": 1})

	selecoes := Select(pool, tiersPrimeiroESegundo, nil, true, random.New(1))

	require.Len(t, selecoes, 3)
	assert.Equal(t, domain.TierFirst, selecoes[0].Tier.Tier)
	assert.Equal(t, domain.TierSecond, selecoes[1].Tier.Tier)
	assert.Equal(t, domain.TierSecond, selecoes[2].Tier.Tier)

	vistos := map[string]bool{}
	for i, s := range selecoes {
		assert.Equal(t, i+1, s.Order)
		assert.False(t, vistos[s.Entry.UserFingerprint], "participante repetido: %s", s.Entry.UserFingerprint)
		vistos[s.Entry.UserFingerprint] = true
	}
}

func TestSelect_QuandoPoolMenorQueVagas_DevePreencherParcialmente(t *testing.T) {
	pool := entradasPorParticipante(map[string]int{"ana": 1, "bia": 1})

	selecoes := Select(pool, tiersPrimeiroESegundo, nil, true, random.New(1))

	require.Len(t, selecoes, 2)
	assert.Equal(t, domain.TierFirst, selecoes[0].Tier.Tier)
	assert.Equal(t, domain.TierSecond, selecoes[1].Tier.Tier)
	assert.NotEqual(t, selecoes[0].Entry.UserFingerprint, selecoes[1].Entry.UserFingerprint)
}

func TestSelect_QuandoPoolVazio_NaoDeveSortearNinguem(t *testing.T) {
	selecoes := Select(nil, tiersPrimeiroESegundo, nil, true, random.New(1))

	assert.Empty(t, selecoes)
}

func TestSelect_QuandoMesmaSemente_DeveReproduzirResultado(t *testing.T) {
	pool := entradasPorParticipante(map[string]int{"ana": 3, "bia": 2, "caio": 1, "davi": 4, "eva": 1})
	tiers := []domain.PrizeTier{
		{Tier: domain.TierFirst, Count: 1},
		{Tier: domain.TierSecond, Count: 2},
		{Tier: domain.TierConsolation, Count: 3},
	}

	primeira := Select(pool, tiers, nil, true, random.New(99))
	segunda := Select(pool, tiers, nil, true, random.New(99))

	assert.Equal(t, primeira, segunda)
}

func TestSelect_QuandoPreventDup_NenhumParticipanteGanhaDuasVezes(t *testing.T) {
	pool := entradasPorParticipante(map[string]int{"ana": 5, "bia": 3, "caio": 2, "davi": 1, "eva": 1, "fabio": 4})
	tiers := []domain.PrizeTier{
		{Tier: domain.TierFirst, Count: 1},
		{Tier: domain.TierSecond, Count: 2},
		{Tier: domain.TierThird, Count: 2},
		{Tier: domain.TierConsolation, Count: 5},
	}

	for seed := int64(0); seed < 200; seed++ {
		selecoes := Select(pool, tiers, nil, true, random.New(seed))

		// Só há 6 participantes distintos para 10 vagas.
		require.Len(t, selecoes, 6, "seed %d", seed)
		vistos := map[string]bool{}
		for i, s := range selecoes {
			require.Equal(t, i+1, s.Order, "seed %d", seed)
			require.False(t, vistos[s.Entry.UserFingerprint], "seed %d repetiu %s", seed, s.Entry.UserFingerprint)
			vistos[s.Entry.UserFingerprint] = true
		}
	}
}

func TestSelect_QuandoDuplicatasPermitidas_EntradaNaoRepeteMasParticipantePode(t *testing.T) {
	pool := entradasPorParticipante(map[string]int{"ana": 3})
	tiers := []domain.PrizeTier{
		{Tier: domain.TierFirst, Count: 1},
		{Tier: domain.TierSecond, Count: 5},
	}

	selecoes := Select(pool, tiers, nil, false, random.New(3))

	// Três entradas sustentam três vitórias do mesmo participante, sem repetir entrada.
	require.Len(t, selecoes, 3)
	entradas := map[domain.EntryID]bool{}
	for _, s := range selecoes {
		assert.Equal(t, "ana", s.Entry.UserFingerprint)
		assert.False(t, entradas[s.Entry.ID])
		entradas[s.Entry.ID] = true
	}
}

func TestSelect_QuandoExcluiParticipante_NaoDeveSorteaLo(t *testing.T) {
	pool := entradasPorParticipante(map[string]int{"ana": 5, "bia": 1})

	for seed := int64(0); seed < 50; seed++ {
		selecoes := Select(pool, tiersPrimeiroESegundo, map[string]struct{}{"ana": {}}, true, random.New(seed))

		require.Len(t, selecoes, 1)
		assert.Equal(t, "bia", selecoes[0].Entry.UserFingerprint)
	}
}

func TestSelect_ChancePorEntrada_ProporcionalAoNumeroDeEntradas(t *testing.T) {
	pool := entradasPorParticipante(map[string]int{"ana": 3, "bia": 1})
	tiers := []domain.PrizeTier{{Tier: domain.TierFirst, Count: 1}}

	const rodadas = 4000
	vitoriasAna := 0
	for seed := int64(0); seed < rodadas; seed++ {
		if Select(pool, tiers, nil, true, random.New(seed))[0].Entry.UserFingerprint == "ana" {
			vitoriasAna++
		}
	}

	assert.InDelta(t, 0.75, float64(vitoriasAna)/rodadas, 0.04)
}
