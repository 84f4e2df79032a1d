// Pacote redis implementa a fila de denúncias e o lock dos jobs diários sobre Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
)

// FlagQueue usa uma lista Redis para desacoplar a denúncia (API) da persistência (worker).
type FlagQueue struct {
	client *redis.Client
	key    string
	log    *slog.Logger
	// pollTimeout limita cada BRPOP para que o cancelamento do contexto seja percebido.
	pollTimeout time.Duration
	retryMin    time.Duration
	retryMax    time.Duration
}

func NewFlagQueue(client *redis.Client, key string) *FlagQueue {
	return &FlagQueue{
		client:      client,
		key:         key,
		log:         logger.L(),
		pollTimeout: 5 * time.Second,
		retryMin:    200 * time.Millisecond,
		retryMax:    10 * time.Second,
	}
}

func (f *FlagQueue) PublishFlag(ctx context.Context, flag domain.Flag) error {
	payload, err := json.Marshal(flag)
	if err != nil {
		return fmt.Errorf("redis flags: falha serializando denuncia: %w", err)
	}
	if err := f.client.LPush(ctx, f.key, payload).Err(); err != nil {
		return fmt.Errorf("redis flags: falha ao enfileirar denuncia: %w", err)
	}
	return nil
}

// ConsumeFlags entrega as denúncias ao handler até o contexto terminar ou o handler devolver erro.
// Payload ilegível é descartado com log; falha do Redis é repetida com backoff exponencial.
func (f *FlagQueue) ConsumeFlags(ctx context.Context, handler func(context.Context, domain.Flag) error) error {
	espera := f.retryMin
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := f.client.BRPop(ctx, f.pollTimeout, f.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn("redis flags: falha ao consumir, tentando de novo", "err", err, "espera", espera)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(espera):
			}
			espera = min(espera*2, f.retryMax)
			continue
		}
		espera = f.retryMin

		if len(res) != 2 {
			continue
		}

		var flag domain.Flag
		if err := json.Unmarshal([]byte(res[1]), &flag); err != nil {
			f.log.Error("redis flags: payload invalido descartado", "err", err, "payload", truncar(res[1], 200))
			continue
		}

		if err := handler(ctx, flag); err != nil {
			return err
		}
	}
}

func truncar(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ domain.FlagQueue = (*FlagQueue)(nil)
