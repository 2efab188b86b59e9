package reveal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

var t0 = time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)

func ganhadores(n int) []domain.Winner {
	ws := make([]domain.Winner, n)
	// Fora de ordem de propósito: o sequencer ordena por SelectionOrder.
	for i := range ws {
		order := n - i
		ws[i] = domain.Winner{ID: domain.WinnerID(string(rune('a' + order - 1))), SelectionOrder: order}
	}
	return ws
}

func TestSequencer_CicloCompleto_DeveSeguirOrdemDeSelecao(t *testing.T) {
	seq := NewSequencer(ganhadores(2), 5*time.Second)

	assert.Equal(t, PhaseIdle, seq.State().Phase)

	st := seq.Start(t0)
	assert.Equal(t, State{Phase: PhaseRevealing, Index: 0, Since: t0}, st)
	atual, ok := seq.Current()
	require.True(t, ok)
	assert.Equal(t, 1, atual.SelectionOrder)

	// Antes da duração o tick não muda nada.
	assert.Equal(t, st, seq.Tick(t0.Add(4*time.Second)))

	st = seq.Tick(t0.Add(5 * time.Second))
	assert.Equal(t, PhaseRevealed, st.Phase)
	assert.Len(t, seq.Revealed(), 1)

	st = seq.Step(t0.Add(6 * time.Second))
	assert.Equal(t, PhaseRevealing, st.Phase)
	assert.Equal(t, 1, st.Index)
	atual, _ = seq.Current()
	assert.Equal(t, 2, atual.SelectionOrder)

	st = seq.Step(t0.Add(7 * time.Second))
	assert.Equal(t, PhaseRevealed, st.Phase)

	st = seq.Step(t0.Add(8 * time.Second))
	assert.Equal(t, PhaseComplete, st.Phase)
	assert.Len(t, seq.Revealed(), 2)
	_, ok = seq.Current()
	assert.False(t, ok)
}

func TestSequencer_Complete_EhTerminalEIdempotente(t *testing.T) {
	seq := NewSequencer(ganhadores(3), time.Second)
	seq.Start(t0)

	st := seq.SkipToEnd()
	assert.Equal(t, PhaseComplete, st.Phase)

	assert.Equal(t, st, seq.SkipToEnd())
	assert.Equal(t, st, seq.Step(t0.Add(time.Minute)))
	assert.Equal(t, st, seq.Tick(t0.Add(time.Minute)))
	assert.Equal(t, st, seq.Start(t0.Add(time.Minute)))
}

func TestSequencer_SkipToEnd_DeQualquerEstado(t *testing.T) {
	estados := map[string]func(*Sequencer){
		"idle":      func(*Sequencer) {},
		"revealing": func(s *Sequencer) { s.Start(t0) },
		"revealed":  func(s *Sequencer) { s.Start(t0); s.Step(t0) },
	}
	for nome, preparar := range estados {
		t.Run(nome, func(t *testing.T) {
			seq := NewSequencer(ganhadores(2), time.Second)
			preparar(seq)

			assert.Equal(t, PhaseComplete, seq.SkipToEnd().Phase)
		})
	}
}

func TestSequencer_Reset_DeveRecomecarComMesmaLista(t *testing.T) {
	seq := NewSequencer(ganhadores(2), time.Second)
	seq.Start(t0)
	seq.SkipToEnd()

	assert.Equal(t, State{Phase: PhaseIdle}, seq.Reset())

	st := seq.Start(t0)
	assert.Equal(t, PhaseRevealing, st.Phase)
	assert.Equal(t, 0, st.Index)
	assert.Len(t, seq.Winners(), 2)
}

func TestSequencer_QuandoSemGanhadores_StartVaiDiretoParaComplete(t *testing.T) {
	seq := NewSequencer(nil, time.Second)

	assert.Equal(t, PhaseComplete, seq.Start(t0).Phase)
	assert.Empty(t, seq.Revealed())
}

func TestTransition_EventosSemEfeito_MantemEstado(t *testing.T) {
	idle := State{Phase: PhaseIdle}
	assert.Equal(t, idle, Transition(idle, Event{Kind: EventTick, At: t0}, 2, time.Second))

	revealed := State{Phase: PhaseRevealed, Index: 0, Since: t0}
	assert.Equal(t, revealed, Transition(revealed, Event{Kind: EventTick, At: t0.Add(time.Hour)}, 2, time.Second))
	assert.Equal(t, revealed, Transition(revealed, Event{Kind: EventStart, At: t0}, 2, time.Second))
}
