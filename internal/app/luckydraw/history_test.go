package luckydraw

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

func TestListHistory_DeveTrazerEncerradasComGanhadores(t *testing.T) {
	deps := newServiceDeps()
	svc := deps.service()
	ctx := context.Background()

	cancelada, err := svc.CreateConfig(ctx, organizer, "evento-1", domain.ConfigPatch{})
	require.NoError(t, err)
	_, err = svc.CancelConfig(ctx, organizer, cancelada.ID)
	require.NoError(t, err)

	concluida := criarSorteio(t, svc, tiersPrimeiroESegundo, "ana", "bia", "caio")
	_, err = svc.Execute(ctx, organizer, concluida.ID)
	require.NoError(t, err)

	// Config aberta não entra no histórico.
	_, err = svc.CreateConfig(ctx, organizer, "evento-1", domain.ConfigPatch{})
	require.NoError(t, err)

	historico, err := svc.ListHistory(ctx, "evento-1")
	require.NoError(t, err)
	require.Len(t, historico, 2)

	assert.Equal(t, concluida.ID, historico[0].ConfigID)
	assert.Equal(t, domain.StatusCompleted, historico[0].Status)
	assert.Equal(t, 3, historico[0].WinnerCount)
	assert.Equal(t, int64(3), historico[0].TotalEntries)
	require.NotNil(t, historico[0].CompletedAt)

	assert.Equal(t, cancelada.ID, historico[1].ConfigID)
	assert.Equal(t, domain.StatusCancelled, historico[1].Status)
	assert.Empty(t, historico[1].Winners)
	assert.NotNil(t, historico[1].Winners)
}

func TestClaim_QuandoResgatadoDuasVezes_SegundaDeveFalhar(t *testing.T) {
	deps := newServiceDeps()
	svc := deps.service()
	ctx := context.Background()
	cfg := criarSorteio(t, svc, tiersPrimeiroESegundo, "ana")
	result, err := svc.Execute(ctx, organizer, cfg.ID)
	require.NoError(t, err)
	winnerID := result.Winners[0].ID

	resgatado, err := svc.Claim(ctx, organizer, winnerID)
	require.NoError(t, err)
	assert.True(t, resgatado.IsClaimed)
	require.NotNil(t, resgatado.ClaimedAt)

	_, err = svc.Claim(ctx, organizer, winnerID)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)

	winners, err := svc.Winners(ctx, cfg.ID)
	require.NoError(t, err)
	assert.True(t, winners[0].IsClaimed)
}

func TestClaim_QuandoGanhadorNaoExiste_DeveRetornarWinnerNotFound(t *testing.T) {
	svc := newServiceDeps().service()

	_, err := svc.Claim(context.Background(), organizer, "inexistente")

	assert.ErrorIs(t, err, domain.ErrWinnerNotFound)
}

func TestClaim_QuandoConvidado_DeveRetornarUnauthorized(t *testing.T) {
	deps := newServiceDeps()
	svc := deps.service()
	ctx := context.Background()
	cfg := criarSorteio(t, svc, tiersPrimeiroESegundo, "ana")
	result, err := svc.Execute(ctx, organizer, cfg.ID)
	require.NoError(t, err)

	_, err = svc.Claim(ctx, guest, result.Winners[0].ID)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestClaim_QuandoOrganizadorDeOutroTenant_DeveRetornarUnauthorized(t *testing.T) {
	deps := newServiceDeps()
	svc := deps.service()
	ctx := context.Background()
	cfg := criarSorteio(t, svc, tiersPrimeiroESegundo, "ana")
	result, err := svc.Execute(ctx, organizer, cfg.ID)
	require.NoError(t, err)
	winnerID := result.Winners[0].ID

	outro := domain.Actor{UserID: "org-2", Role: domain.RoleOrganizer, TenantID: "tenant-2"}
	_, err = svc.Claim(ctx, outro, winnerID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	winners, err := svc.Winners(ctx, cfg.ID)
	require.NoError(t, err)
	assert.False(t, winners[0].IsClaimed)

	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin, TenantID: "tenant-2"}
	resgatado, err := svc.Claim(ctx, admin, winnerID)
	require.NoError(t, err)
	assert.True(t, resgatado.IsClaimed)
}

func TestWinners_QuandoConfigNaoExiste_DeveRetornarConfigNotFound(t *testing.T) {
	svc := newServiceDeps().service()

	_, err := svc.Winners(context.Background(), "inexistente")

	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
}
