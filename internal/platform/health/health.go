package health

import (
	context "context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

type Checker struct {
	db    *sql.DB
	redis *redis.Client
}

func NewChecker(db *sql.DB, redis *redis.Client) *Checker {
	return &Checker{db: db, redis: redis}
}

// Check devolve o estado de cada dependência; mapa vazio de falhas significa pronto.
func (c *Checker) Check(ctx context.Context) map[string]string {
	falhas := make(map[string]string)

	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			falhas["postgres"] = err.Error()
		}
	}

	if c.redis != nil {
		if err := c.redis.Ping(ctx).Err(); err != nil {
			falhas["redis"] = err.Error()
		}
	}

	return falhas
}

func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		falhas := c.Check(ctx)
		w.Header().Set("Content-Type", "application/json")
		if len(falhas) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "unavailable", "falhas": falhas})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
