// Pacote reveal conduz a revelação dos ganhadores na tela, um por vez, em ordem de seleção.
// O estado é local da sessão e nunca é persistido.
package reveal

import (
	"sort"
	"time"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRevealing
	PhaseRevealed
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRevealing:
		return "revealing"
	case PhaseRevealed:
		return "revealed"
	case PhaseComplete:
		return "complete"
	}
	return "unknown"
}

// State é a posição atual da revelação. Index só tem sentido em revealing/revealed.
type State struct {
	Phase Phase
	Index int
	Since time.Time
}

type EventKind int

const (
	EventStart EventKind = iota
	EventTick
	EventStep
	EventSkip
	EventReset
)

type Event struct {
	Kind EventKind
	At   time.Time
}

// Transition é a função pura da máquina: total é o número de ganhadores e duration o tempo de
// cada animação. Eventos sem efeito no estado atual devolvem o próprio estado.
func Transition(s State, ev Event, total int, duration time.Duration) State {
	switch ev.Kind {
	case EventReset:
		return State{Phase: PhaseIdle}
	case EventSkip:
		return State{Phase: PhaseComplete, Since: ev.At}
	}

	switch s.Phase {
	case PhaseIdle:
		if ev.Kind == EventStart || ev.Kind == EventStep {
			return revealAt(0, total, ev.At)
		}
	case PhaseRevealing:
		switch ev.Kind {
		case EventTick:
			if ev.At.Sub(s.Since) >= duration {
				return State{Phase: PhaseRevealed, Index: s.Index, Since: ev.At}
			}
		case EventStep:
			return State{Phase: PhaseRevealed, Index: s.Index, Since: ev.At}
		}
	case PhaseRevealed:
		if ev.Kind == EventStep {
			return revealAt(s.Index+1, total, ev.At)
		}
	}
	return s
}

func revealAt(i, total int, at time.Time) State {
	if i >= total {
		return State{Phase: PhaseComplete, Since: at}
	}
	return State{Phase: PhaseRevealing, Index: i, Since: at}
}

// Sequencer guarda a lista fixa de ganhadores e o estado corrente. Não é seguro para uso concorrente.
type Sequencer struct {
	winners  []domain.Winner
	duration time.Duration
	state    State
}

func NewSequencer(winners []domain.Winner, duration time.Duration) *Sequencer {
	ordered := append([]domain.Winner(nil), winners...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SelectionOrder < ordered[j].SelectionOrder
	})
	return &Sequencer{winners: ordered, duration: duration}
}

func (s *Sequencer) apply(kind EventKind, at time.Time) State {
	s.state = Transition(s.state, Event{Kind: kind, At: at}, len(s.winners), s.duration)
	return s.state
}

func (s *Sequencer) Start(now time.Time) State { return s.apply(EventStart, now) }

func (s *Sequencer) Tick(now time.Time) State { return s.apply(EventTick, now) }

// Step conclui a animação atual ou avança para o próximo ganhador.
func (s *Sequencer) Step(now time.Time) State { return s.apply(EventStep, now) }

func (s *Sequencer) SkipToEnd() State {
	if s.state.Phase == PhaseComplete {
		return s.state
	}
	return s.apply(EventSkip, time.Time{})
}

func (s *Sequencer) Reset() State { return s.apply(EventReset, time.Time{}) }

func (s *Sequencer) State() State { return s.state }

func (s *Sequencer) Winners() []domain.Winner {
	return append([]domain.Winner(nil), s.winners...)
}

// Current devolve o ganhador em destaque, se houver.
func (s *Sequencer) Current() (domain.Winner, bool) {
	switch s.state.Phase {
	case PhaseRevealing, PhaseRevealed:
		return s.winners[s.state.Index], true
	}
	return domain.Winner{}, false
}

// Revealed devolve os ganhadores já exibidos por completo.
func (s *Sequencer) Revealed() []domain.Winner {
	switch s.state.Phase {
	case PhaseComplete:
		return s.Winners()
	case PhaseRevealed:
		return append([]domain.Winner(nil), s.winners[:s.state.Index+1]...)
	case PhaseRevealing:
		return append([]domain.Winner(nil), s.winners[:s.state.Index]...)
	}
	return nil
}
