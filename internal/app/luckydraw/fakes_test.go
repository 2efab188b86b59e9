package luckydraw

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/marcelojr/lucky-draw/internal/domain"
	"github.com/marcelojr/lucky-draw/internal/platform/ids"
	"github.com/marcelojr/lucky-draw/internal/platform/random"
)

var (
	organizer = domain.Actor{UserID: "org-1", Role: domain.RoleOrganizer, TenantID: "tenant-1"}
	guest     = domain.Actor{UserID: "guest-1", Role: domain.RoleGuest, TenantID: "tenant-1"}
)

type serviceDependencies struct {
	configs   *inMemoryConfigRepo
	entries   *inMemoryEntryRepo
	winners   *inMemoryWinnerRepo
	contador  *inMemoryContador
	publisher *recordingPublisher
	clock     *steppingClock
	idGen     *ids.Generator
	baseTime  time.Time
}

func newServiceDeps() serviceDependencies {
	base := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	configs := newInMemoryConfigRepo()
	return serviceDependencies{
		configs:   configs,
		entries:   newInMemoryEntryRepo(),
		winners:   newInMemoryWinnerRepo(configs),
		contador:  newInMemoryContador(),
		publisher: &recordingPublisher{},
		clock:     &steppingClock{now: base},
		idGen:     ids.NewGenerator(),
		baseTime:  base,
	}
}

func (d serviceDependencies) service() *Service {
	return d.serviceWith(func(*Dependencies) {})
}

func (d serviceDependencies) serviceWith(opt func(*Dependencies)) *Service {
	deps := Dependencies{
		Configs:          d.configs,
		Entries:          d.entries,
		Winners:          d.winners,
		Contador:         d.contador,
		Publisher:        d.publisher,
		Clock:            d.clock,
		IDs:              d.idGen,
		Seeds:            random.Fixed(7),
		PhotoURLTemplate: "https://cdn.test/fotos/%s.jpg",
	}
	opt(&deps)
	return NewService(deps)
}

type inMemoryConfigRepo struct {
	mu   sync.Mutex
	data map[domain.ConfigID]domain.DrawConfig
}

func newInMemoryConfigRepo() *inMemoryConfigRepo {
	return &inMemoryConfigRepo{data: make(map[domain.ConfigID]domain.DrawConfig)}
}

func (r *inMemoryConfigRepo) Create(_ context.Context, c domain.DrawConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.EventID == c.EventID && !existing.Status.Terminal() {
			return domain.ErrActiveConfigExists
		}
	}
	r.data[c.ID] = c
	return nil
}

func (r *inMemoryConfigRepo) UpdateScheduled(_ context.Context, c domain.DrawConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	atual, ok := r.data[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if atual.Status != domain.StatusScheduled {
		return domain.ErrConfigLocked
	}
	r.data[c.ID] = c
	return nil
}

func (r *inMemoryConfigRepo) FindByID(_ context.Context, id domain.ConfigID) (domain.DrawConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return domain.DrawConfig{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *inMemoryConfigRepo) FindActive(_ context.Context, eventID domain.EventID) (domain.DrawConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.data {
		if c.EventID == eventID && !c.Status.Terminal() {
			return c, nil
		}
	}
	return domain.DrawConfig{}, domain.ErrNotFound
}

func (r *inMemoryConfigRepo) ListByEvent(_ context.Context, eventID domain.EventID, statuses ...domain.ConfigStatus) ([]domain.DrawConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.DrawConfig
	for _, c := range r.data {
		if c.EventID != eventID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, c.Status) {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryConfigRepo) TransitionStatus(_ context.Context, id domain.ConfigID, from, to domain.ConfigStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = at
	switch {
	case to == domain.StatusDrawing:
		started := at
		c.DrawStartedAt = &started
	case from == domain.StatusDrawing && to == domain.StatusScheduled:
		c.DrawStartedAt = nil
	}
	r.data[id] = c
	return true, nil
}

func (r *inMemoryConfigRepo) status(id domain.ConfigID) domain.ConfigStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[id].Status
}

func containsStatus(statuses []domain.ConfigStatus, s domain.ConfigStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

type inMemoryEntryRepo struct {
	mu    sync.Mutex
	lista []domain.Entry
}

func newInMemoryEntryRepo() *inMemoryEntryRepo {
	return &inMemoryEntryRepo{}
}

func (r *inMemoryEntryRepo) Append(_ context.Context, e domain.Entry, maxPerUser int) (domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, existing := range r.lista {
		if existing.ConfigID != e.ConfigID {
			continue
		}
		if existing.UserFingerprint == e.UserFingerprint {
			count++
		}
		if e.PhotoID != nil && existing.PhotoID != nil && *existing.PhotoID == *e.PhotoID {
			return domain.Entry{}, domain.ErrPhotoAlreadyUsed
		}
	}
	if count >= maxPerUser {
		return domain.Entry{}, domain.ErrEntryCapReached
	}
	e.Slot = count + 1
	r.lista = append(r.lista, e)
	return e, nil
}

func (r *inMemoryEntryRepo) CountByConfig(_ context.Context, configID domain.ConfigID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, e := range r.lista {
		if e.ConfigID == configID {
			total++
		}
	}
	return total, nil
}

func (r *inMemoryEntryRepo) List(ctx context.Context, configID domain.ConfigID, offset, limit int) ([]domain.Entry, error) {
	all, _ := r.ListAll(ctx, configID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *inMemoryEntryRepo) ListAll(_ context.Context, configID domain.ConfigID) ([]domain.Entry, error) {
	return r.filter(configID, func(domain.Entry) bool { return true }), nil
}

func (r *inMemoryEntryRepo) Snapshot(_ context.Context, configID domain.ConfigID, until time.Time) ([]domain.Entry, error) {
	return r.filter(configID, func(e domain.Entry) bool { return !e.CreatedAt.After(until) }), nil
}

func (r *inMemoryEntryRepo) filter(configID domain.ConfigID, keep func(domain.Entry) bool) []domain.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Entry
	for _, e := range r.lista {
		if e.ConfigID == configID && keep(e) {
			result = append(result, e)
		}
	}
	return result
}

// inMemoryWinnerRepo reproduz a transação de conclusão guardada pelo status drawing.
type inMemoryWinnerRepo struct {
	mu       sync.Mutex
	configs  *inMemoryConfigRepo
	lista    []domain.Winner
	failNext error
	complete int
}

func newInMemoryWinnerRepo(configs *inMemoryConfigRepo) *inMemoryWinnerRepo {
	return &inMemoryWinnerRepo{configs: configs}
}

func (r *inMemoryWinnerRepo) Complete(_ context.Context, c domain.DrawCompletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}

	r.configs.mu.Lock()
	defer r.configs.mu.Unlock()
	cfg, ok := r.configs.data[c.ConfigID]
	if !ok || cfg.Status != domain.StatusDrawing {
		return domain.ErrInvalidTransition
	}
	completedAt := c.CompletedAt
	cfg.Status = domain.StatusCompleted
	cfg.CompletedAt = &completedAt
	cfg.TotalEntries = c.TotalEntries
	cfg.Seed = c.Seed
	r.configs.data[c.ConfigID] = cfg

	r.lista = append(r.lista, c.Winners...)
	r.complete++
	return nil
}

func (r *inMemoryWinnerRepo) ListByConfig(_ context.Context, configID domain.ConfigID) ([]domain.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Winner
	for _, w := range r.lista {
		if w.ConfigID == configID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SelectionOrder < result[j].SelectionOrder })
	return result, nil
}

func (r *inMemoryWinnerRepo) FindByID(_ context.Context, id domain.WinnerID) (domain.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.lista {
		if w.ID == id {
			return w, nil
		}
	}
	return domain.Winner{}, domain.ErrNotFound
}

func (r *inMemoryWinnerRepo) MarkClaimed(_ context.Context, id domain.WinnerID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lista {
		if r.lista[i].ID == id {
			if r.lista[i].IsClaimed {
				return false, nil
			}
			claimedAt := at
			r.lista[i].IsClaimed = true
			r.lista[i].ClaimedAt = &claimedAt
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryWinnerRepo) completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.complete
}

type inMemoryContador struct {
	mu      sync.Mutex
	valores map[string]int64
	err     error
}

func newInMemoryContador() *inMemoryContador {
	return &inMemoryContador{valores: make(map[string]int64)}
}

func (c *inMemoryContador) Incrementar(_ context.Context, chave string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.valores[chave] += delta
	return c.valores[chave], nil
}

func (c *inMemoryContador) Definir(_ context.Context, chave string, valor int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.valores[chave] = valor
	return nil
}

func (c *inMemoryContador) Obter(_ context.Context, chave string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.valores[chave], nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	eventos []domain.DrawEvent
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, evento domain.DrawEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.eventos = append(p.eventos, evento)
	return nil
}

func (p *recordingPublisher) tipos() []domain.DrawEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]domain.DrawEventType, len(p.eventos))
	for i, e := range p.eventos {
		result[i] = e.Type
	}
	return result
}

type blockingGuard struct {
	bloqueados map[string]bool
}

func (g blockingGuard) Allow(_ context.Context, _ domain.ConfigID, fingerprint string) error {
	if g.bloqueados[fingerprint] {
		return domain.ErrAdmissionThrottled
	}
	return nil
}

// steppingClock avança um segundo a cada leitura, mantendo a ordem temporal entre operações.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Agora() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

var errBancoIndisponivel = errors.New("banco indisponivel")
