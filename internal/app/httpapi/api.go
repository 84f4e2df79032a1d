// Pacote httpapi expõe os handlers REST e traduz requisições HTTP para o serviço do jogo.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marcelojr/daily-doodle/internal/app/doodle"
	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/antifraude"
	"github.com/marcelojr/daily-doodle/internal/platform/identity"
)

// Imagens chegam em base64 no corpo; acima disso a requisição é recusada.
const maxBodyBytes = 5 << 20

type TokenVerifier interface {
	Verify(token string) (identity.Identity, error)
}

// API empacota handlers HTTP ligados ao serviço do jogo e ao logger.
type API struct {
	service    domain.DoodleService
	verifier   TokenVerifier
	adminToken string
	logger     *slog.Logger
}

func New(service domain.DoodleService, verifier TokenVerifier, adminToken string, logger *slog.Logger) *API {
	return &API{service: service, verifier: verifier, adminToken: adminToken, logger: logger}
}

func (a *API) Register(mux *http.ServeMux) {
	// Mantemos as rotas centralizadas para facilitar testes e reuso em servidores diferentes.
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("POST /submissions", a.autenticado(a.enviarDesenho))
	mux.HandleFunc("GET /rooms/feed", a.autenticado(a.feedDaSala))
	mux.HandleFunc("POST /votes", a.autenticado(a.votar))
	mux.HandleFunc("POST /flags", a.autenticado(a.denunciar))
	mux.HandleFunc("GET /themes/today", a.temaDoDia)
	mux.HandleFunc("POST /users", a.autenticado(a.criarUsuario))
	mux.HandleFunc("POST /users/me/tutorial", a.autenticado(a.marcarTutorial))
	mux.HandleFunc("POST /users/me/verify", a.autenticado(a.marcarVerificado))
	mux.HandleFunc("DELETE /users/me", a.autenticado(a.apagarConta))
	mux.HandleFunc("POST /admin/themes", a.administrador(a.enfileirarTemas))
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type handlerAutenticado func(w http.ResponseWriter, r *http.Request, id identity.Identity)

// autenticado recusa com 401 qualquer chamada sem bearer token válido, antes de chegar ao serviço.
func (a *API) autenticado(next handlerAutenticado) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			responderErro(w, doodle.ErrUnauthenticated)
			return
		}
		id, err := a.verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			a.logger.Warn("token recusado", "err", err, "path", r.URL.Path)
			responderErro(w, doodle.ErrUnauthenticated)
			return
		}
		next(w, r, id)
	}
}

func (a *API) administrador(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Admin-Token")
		if a.adminToken == "" || subtle.ConstantTimeCompare([]byte(got), []byte(a.adminToken)) != 1 {
			responderJSON(w, http.StatusForbidden, map[string]string{"erro": "forbidden"})
			return
		}
		next(w, r)
	}
}

func decodificar(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderPayloadInvalido(w http.ResponseWriter) {
	responderJSON(w, http.StatusBadRequest, map[string]string{"erro": "invalid payload"})
}

// responderErro devolve a mensagem das regras do jogo como veio; falhas de infraestrutura viram 500 genérico.
func responderErro(w http.ResponseWriter, err error) {
	status := statusHTTP(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal error, try again"
	}
	responderJSON(w, status, map[string]string{"erro": msg})
}

func statusHTTP(err error) int {
	switch {
	case errors.Is(err, doodle.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, doodle.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, doodle.ErrAlreadySubmitted),
		errors.Is(err, doodle.ErrAlreadyVoted),
		errors.Is(err, doodle.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, doodle.ErrSubmissionWindowClosed),
		errors.Is(err, doodle.ErrVotingWindowClosed),
		errors.Is(err, doodle.ErrSelfVote),
		errors.Is(err, doodle.ErrTargetOutsideRoom),
		errors.Is(err, doodle.ErrEmailNotVerified):
		return http.StatusForbidden
	case errors.Is(err, doodle.ErrTargetNotFound),
		errors.Is(err, doodle.ErrThemeNotFound),
		errors.Is(err, doodle.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// statusFromError rotula as métricas de requisição.
func statusFromError(err error) string {
	switch {
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, doodle.ErrAlreadySubmitted), errors.Is(err, doodle.ErrAlreadyVoted):
		return "duplicate"
	case errors.Is(err, doodle.ErrSubmissionWindowClosed), errors.Is(err, doodle.ErrVotingWindowClosed):
		return "closed"
	case errors.Is(err, doodle.ErrTargetNotFound):
		return "not_found"
	case statusHTTP(err) < http.StatusInternalServerError:
		return "invalid"
	default:
		return "error"
	}
}
