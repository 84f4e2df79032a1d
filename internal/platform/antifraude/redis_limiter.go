// Pacote antifraude limita rajadas de submissões, votos e denúncias por usuário (janela fixa no Redis, ou noop).
package antifraude

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

var ErrRateLimitExceeded = errors.New("Too many requests, try again later")

// janelaFixa incrementa o contador e arma a expiração no primeiro hit, numa única ida ao Redis.
var janelaFixa = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{client: client, limit: limit, window: window, keyPrefix: prefix}
}

// Validar conta a ação do usuário na janela corrente; limite ou janela não positivos desligam a checagem.
func (r *RedisRateLimiter) Validar(ctx context.Context, userID domain.UserID, acao string) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		return nil
	}

	count, err := janelaFixa.Run(ctx, r.client, []string{r.buildKey(userID, acao)}, r.window.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("antifraude: contar %s: %w", acao, err)
	}
	if count > int64(r.limit) {
		return ErrRateLimitExceeded
	}
	return nil
}

// buildKey não expõe o ID do provedor de identidade no Redis.
func (r *RedisRateLimiter) buildKey(userID domain.UserID, acao string) string {
	hash := sha1.Sum([]byte(acao + "|" + string(userID)))
	return r.keyPrefix + ":" + acao + ":" + hex.EncodeToString(hash[:])
}

var _ domain.Antifraude = (*RedisRateLimiter)(nil)
