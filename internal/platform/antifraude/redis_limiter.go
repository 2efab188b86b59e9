// Pacote antifraude limita tentativas de entrada repetidas no sorteio (janela fixa no Redis e modo noop).
package antifraude

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// janelaFixa incrementa e agenda a expiração no mesmo round-trip; a janela começa na primeira tentativa.
var janelaFixa = redis.NewScript(`
local atual = redis.call("INCR", KEYS[1])
if atual == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return atual
`)

// RedisRateLimiter limita admissões de convidados por config e fingerprint.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int64
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit:entradas"
	}
	return &RedisRateLimiter{
		client:    client,
		limit:     int64(limit),
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, configID domain.ConfigID, fingerprint string) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		return nil
	}

	tentativas, err := janelaFixa.Run(ctx, r.client, []string{r.key(configID, fingerprint)}, r.window.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("antifraude: janela de %s: %w", configID, err)
	}
	if tentativas > r.limit {
		return domain.ErrAdmissionThrottled
	}
	return nil
}

func (r *RedisRateLimiter) key(configID domain.ConfigID, fingerprint string) string {
	// Fingerprint vai hasheado para não aparecer em claro nas chaves.
	hash := sha1.Sum([]byte(fingerprint))
	return fmt.Sprintf("%s:%s:%s", r.keyPrefix, configID, hex.EncodeToString(hash[:]))
}

var _ domain.AdmissionGuard = (*RedisRateLimiter)(nil)
