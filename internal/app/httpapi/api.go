// Pacote httpapi expõe os handlers REST e traduz requisições HTTP para o serviço de sorteio.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/marcelojr/lucky-draw/internal/app/luckydraw"
	"github.com/marcelojr/lucky-draw/internal/app/reveal"
	"github.com/marcelojr/lucky-draw/internal/domain"
)

// DrawService é o recorte do luckydraw.Service usado pelos handlers.
type DrawService interface {
	CreateConfig(ctx context.Context, actor domain.Actor, eventID domain.EventID, patch domain.ConfigPatch) (domain.DrawConfig, error)
	UpdateConfig(ctx context.Context, actor domain.Actor, id domain.ConfigID, patch domain.ConfigPatch) (domain.DrawConfig, error)
	CancelConfig(ctx context.Context, actor domain.Actor, id domain.ConfigID) (domain.DrawConfig, error)
	GetConfig(ctx context.Context, id domain.ConfigID) (domain.DrawConfig, error)
	ActiveConfig(ctx context.Context, eventID domain.EventID) (domain.DrawConfig, error)
	Admit(ctx context.Context, req luckydraw.AdmitRequest) (domain.Entry, error)
	ManualAdmit(ctx context.Context, actor domain.Actor, req luckydraw.AdmitRequest) (domain.Entry, error)
	ListEntries(ctx context.Context, configID domain.ConfigID, page, pageSize int) (luckydraw.EntryPage, error)
	Participants(ctx context.Context, configID domain.ConfigID) ([]domain.Participant, error)
	Execute(ctx context.Context, actor domain.Actor, configID domain.ConfigID) (luckydraw.DrawResult, error)
	Winners(ctx context.Context, configID domain.ConfigID) ([]domain.Winner, error)
	ListHistory(ctx context.Context, eventID domain.EventID) ([]domain.DrawHistoryItem, error)
	Claim(ctx context.Context, actor domain.Actor, winnerID domain.WinnerID) (domain.Winner, error)
}

// API empacota handlers HTTP ligados ao serviço de sorteio e ao logger.
type API struct {
	service DrawService
	logger  *slog.Logger
}

func New(service DrawService, logger *slog.Logger) *API {
	return &API{service: service, logger: logger}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", a.handleHealthz)

	mux.HandleFunc("POST /events/{eventId}/lucky-draw/configs", a.criarConfig)
	mux.HandleFunc("GET /events/{eventId}/lucky-draw/config", a.obterConfigAtiva)
	mux.HandleFunc("GET /events/{eventId}/lucky-draw/history", a.listarHistorico)

	mux.HandleFunc("GET /lucky-draw/configs/{id}", a.obterConfig)
	mux.HandleFunc("PATCH /lucky-draw/configs/{id}", a.atualizarConfig)
	mux.HandleFunc("POST /lucky-draw/configs/{id}/cancel", a.cancelarConfig)
	mux.HandleFunc("POST /lucky-draw/configs/{id}/entries", a.registrarEntrada)
	mux.HandleFunc("POST /lucky-draw/configs/{id}/entries/manual", a.registrarEntradaManual)
	mux.HandleFunc("GET /lucky-draw/configs/{id}/entries", a.listarEntradas)
	mux.HandleFunc("GET /lucky-draw/configs/{id}/participants", a.listarParticipantes)
	mux.HandleFunc("POST /lucky-draw/configs/{id}/execute", a.executar)
	mux.HandleFunc("GET /lucky-draw/configs/{id}/winners", a.listarGanhadores)
	mux.HandleFunc("GET /lucky-draw/configs/{id}/reveal", a.obterApresentacao)

	mux.HandleFunc("POST /lucky-draw/winners/{id}/claim", a.resgatar)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// actorFrom lê a identidade repassada pelo gateway de autenticação.
func actorFrom(r *http.Request) domain.Actor {
	return domain.Actor{
		UserID:   strings.TrimSpace(r.Header.Get("X-User-ID")),
		Role:     domain.Role(strings.ToLower(strings.TrimSpace(r.Header.Get("X-User-Role")))),
		TenantID: strings.TrimSpace(r.Header.Get("X-Tenant-ID")),
	}
}

func (a *API) criarConfig(w http.ResponseWriter, r *http.Request) {
	var patch domain.ConfigPatch
	if !decodificar(w, r, &patch) {
		return
	}

	eventID := domain.EventID(r.PathValue("eventId"))
	cfg, err := a.service.CreateConfig(r.Context(), actorFrom(r), eventID, patch)
	if err != nil {
		a.logger.Warn("falha ao criar sorteio", "err", err, "event_id", eventID)
		responderErro(w, err)
		return
	}

	a.logger.Info("sorteio criado", "config_id", cfg.ID, "event_id", eventID)
	responderJSON(w, http.StatusCreated, cfg)
}

func (a *API) obterConfigAtiva(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.service.ActiveConfig(r.Context(), domain.EventID(r.PathValue("eventId")))
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, cfg)
}

func (a *API) obterConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.service.GetConfig(r.Context(), domain.ConfigID(r.PathValue("id")))
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, cfg)
}

func (a *API) atualizarConfig(w http.ResponseWriter, r *http.Request) {
	var patch domain.ConfigPatch
	if !decodificar(w, r, &patch) {
		return
	}

	id := domain.ConfigID(r.PathValue("id"))
	cfg, err := a.service.UpdateConfig(r.Context(), actorFrom(r), id, patch)
	if err != nil {
		a.logger.Warn("falha ao atualizar sorteio", "err", err, "config_id", id)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, cfg)
}

func (a *API) cancelarConfig(w http.ResponseWriter, r *http.Request) {
	id := domain.ConfigID(r.PathValue("id"))
	cfg, err := a.service.CancelConfig(r.Context(), actorFrom(r), id)
	if err != nil {
		a.logger.Warn("falha ao cancelar sorteio", "err", err, "config_id", id)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, cfg)
}

type entradaRequest struct {
	UserFingerprint string `json:"user_fingerprint"`
	ParticipantName string `json:"participant_name"`
	PhotoID         string `json:"photo_id"`
}

func (e entradaRequest) admitRequest(id domain.ConfigID) luckydraw.AdmitRequest {
	return luckydraw.AdmitRequest{
		ConfigID:        id,
		UserFingerprint: e.UserFingerprint,
		ParticipantName: e.ParticipantName,
		PhotoID:         e.PhotoID,
	}
}

// registrarEntrada exige convidado autenticado; o fingerprint é sempre o do ator, nunca o do corpo.
func (a *API) registrarEntrada(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if actor.UserID == "" {
		responderErro(w, domain.ErrUnauthorized)
		return
	}

	var req entradaRequest
	if !decodificar(w, r, &req) {
		return
	}

	id := domain.ConfigID(r.PathValue("id"))
	req.UserFingerprint = actor.UserID

	entry, err := a.service.Admit(r.Context(), req.admitRequest(id))
	if err != nil {
		a.logger.Warn("entrada recusada", "err", err, "config_id", id)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusCreated, entry)
}

func (a *API) registrarEntradaManual(w http.ResponseWriter, r *http.Request) {
	var req entradaRequest
	if !decodificar(w, r, &req) {
		return
	}

	id := domain.ConfigID(r.PathValue("id"))
	entry, err := a.service.ManualAdmit(r.Context(), actorFrom(r), req.admitRequest(id))
	if err != nil {
		a.logger.Warn("entrada manual recusada", "err", err, "config_id", id)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusCreated, entry)
}

func (a *API) listarEntradas(w http.ResponseWriter, r *http.Request) {
	page := inteiroQuery(r, "page", 1)
	pageSize := inteiroQuery(r, "page_size", luckydraw.DefaultPageSize)

	resultado, err := a.service.ListEntries(r.Context(), domain.ConfigID(r.PathValue("id")), page, pageSize)
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, resultado)
}

type participantesResponse struct {
	Participants       []domain.Participant `json:"participants"`
	UniqueParticipants int                  `json:"unique_participants"`
	TotalEntries       int                  `json:"total_entries"`
}

func (a *API) listarParticipantes(w http.ResponseWriter, r *http.Request) {
	participantes, err := a.service.Participants(r.Context(), domain.ConfigID(r.PathValue("id")))
	if err != nil {
		responderErro(w, err)
		return
	}

	resp := participantesResponse{Participants: participantes, UniqueParticipants: len(participantes)}
	for _, p := range participantes {
		resp.TotalEntries += p.EntryCount
	}
	responderJSON(w, http.StatusOK, resp)
}

func (a *API) executar(w http.ResponseWriter, r *http.Request) {
	id := domain.ConfigID(r.PathValue("id"))
	resultado, err := a.service.Execute(r.Context(), actorFrom(r), id)
	if err != nil {
		a.logger.Warn("falha ao executar sorteio", "err", err, "config_id", id)
		responderErro(w, err)
		return
	}

	a.logger.Info("sorteio executado", "config_id", id, "ganhadores", len(resultado.Winners))
	responderJSON(w, http.StatusOK, resultado)
}

func (a *API) listarGanhadores(w http.ResponseWriter, r *http.Request) {
	ganhadores, err := a.service.Winners(r.Context(), domain.ConfigID(r.PathValue("id")))
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, ganhadores)
}

func (a *API) obterApresentacao(w http.ResponseWriter, r *http.Request) {
	id := domain.ConfigID(r.PathValue("id"))
	cfg, err := a.service.GetConfig(r.Context(), id)
	if err != nil {
		responderErro(w, err)
		return
	}
	ganhadores, err := a.service.Winners(r.Context(), id)
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, reveal.BuildPresentation(cfg, ganhadores))
}

func (a *API) listarHistorico(w http.ResponseWriter, r *http.Request) {
	historico, err := a.service.ListHistory(r.Context(), domain.EventID(r.PathValue("eventId")))
	if err != nil {
		a.logger.Error("erro ao listar historico", "err", err)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, historico)
}

func (a *API) resgatar(w http.ResponseWriter, r *http.Request) {
	id := domain.WinnerID(r.PathValue("id"))
	ganhador, err := a.service.Claim(r.Context(), actorFrom(r), id)
	if err != nil {
		a.logger.Warn("falha ao resgatar premio", "err", err, "winner_id", id)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, ganhador)
}

func decodificar(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	// Corpo vazio equivale a patch vazio.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		responderJSON(w, http.StatusBadRequest, erroResponse{Codigo: "INVALID_PAYLOAD", Erro: "payload invalido"})
		return false
	}
	return true
}

func inteiroQuery(r *http.Request, nome string, padrao int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(nome))
	if err != nil {
		return padrao
	}
	return v
}

type erroResponse struct {
	Codigo string `json:"codigo"`
	Erro   string `json:"erro"`
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderErro(w http.ResponseWriter, err error) {
	status := statusHTTP(err)
	codigo := domain.CodeOf(err)

	mensagem := err.Error()
	var derr *domain.Error
	if errors.As(err, &derr) {
		mensagem = derr.Message
	}
	if status == http.StatusInternalServerError {
		mensagem = "erro interno"
	}

	responderJSON(w, status, erroResponse{Codigo: codigo, Erro: mensagem})
}

func statusHTTP(err error) int {
	switch {
	case errors.Is(err, domain.ErrAdmissionThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrDrawPersistence):
		return http.StatusInternalServerError
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict, domain.KindStateTransition:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
