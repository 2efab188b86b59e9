package reveal

import (
	"context"
	"time"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// Ticker abstrai time.Ticker para testes dirigirem o tempo.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }

func (r realTicker) Stop() { r.t.Stop() }

func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Driver roda o Sequencer em tempo real: cada tick pode concluir a animação e, após Hold
// em revealed, avança para o próximo ganhador.
type Driver struct {
	seq       *Sequencer
	clock     domain.Clock
	newTicker TickerFactory
	interval  time.Duration
	hold      time.Duration
	onChange  func(State)
}

type DriverOption func(*Driver)

func WithTicker(f TickerFactory) DriverOption {
	return func(d *Driver) { d.newTicker = f }
}

// WithHold define quanto tempo cada ganhador fica em tela antes do próximo.
func WithHold(hold time.Duration) DriverOption {
	return func(d *Driver) { d.hold = hold }
}

func WithInterval(interval time.Duration) DriverOption {
	return func(d *Driver) { d.interval = interval }
}

func OnChange(fn func(State)) DriverOption {
	return func(d *Driver) { d.onChange = fn }
}

func NewDriver(seq *Sequencer, clock domain.Clock, opts ...DriverOption) *Driver {
	d := &Driver{
		seq:       seq,
		clock:     clock,
		newTicker: NewRealTicker,
		interval:  100 * time.Millisecond,
		hold:      2 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run conduz a revelação até complete ou até o contexto ser cancelado.
func (d *Driver) Run(ctx context.Context) error {
	st := d.seq.Start(d.clock.Agora())
	d.emit(st)

	ticker := d.newTicker(d.interval)
	defer ticker.Stop()

	for st.Phase != PhaseComplete {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C():
			next := d.seq.Tick(now)
			if next.Phase == PhaseRevealed && now.Sub(next.Since) >= d.hold {
				next = d.seq.Step(now)
			}
			if next != st {
				st = next
				d.emit(st)
			}
		}
	}
	return nil
}

func (d *Driver) emit(st State) {
	if d.onChange != nil {
		d.onChange(st)
	}
}
