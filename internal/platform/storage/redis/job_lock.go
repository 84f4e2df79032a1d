package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/ids"
)

// Só apaga a chave se o token ainda for o nosso; evita liberar o lock de outra execução após o TTL.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// JobLock é um lock best-effort (SET NX PX) por job e dia.
type JobLock struct {
	client *redis.Client
	prefix string
}

func NewJobLock(client *redis.Client, prefix string) *JobLock {
	return &JobLock{client: client, prefix: prefix}
}

func (l *JobLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := ids.NewULID()
	fullKey := l.key(key)

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lock: adquirir %s: %w", fullKey, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctxRelease, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctxRelease, l.client, []string{fullKey}, token).Err()
	}
	return release, true, nil
}

func (l *JobLock) key(key string) string {
	if l.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", l.prefix, key)
}

var _ domain.JobLock = (*JobLock)(nil)
