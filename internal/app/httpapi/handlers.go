package httpapi

import (
	"net/http"
	"strings"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/identity"
	"github.com/marcelojr/daily-doodle/internal/platform/metrics"
)

type submissionRequest struct {
	Image string `json:"image" validate:"required"`
}

func (a *API) enviarDesenho(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	var req submissionRequest
	if err := decodificar(w, r, &req); err != nil {
		metrics.ObserveSubmissionRequest("invalid_payload")
		a.logger.Warn("payload invalido ao enviar desenho", "err", err)
		responderPayloadInvalido(w)
		return
	}
	if err := validarPayload(req); err != nil {
		metrics.ObserveSubmissionRequest("invalid")
		responderErro(w, err)
		return
	}

	sub, err := a.service.Submit(r.Context(), id.UserID, req.Image)
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveSubmissionRequest(status)
		a.logger.Warn("falha ao enviar desenho", "err", err, "user", id.UserID, "status", status)
		responderErro(w, err)
		return
	}

	metrics.ObserveSubmissionRequest("accepted")
	a.logger.Info("desenho recebido", "user", id.UserID, "submission", sub.ID, "day", sub.Day)
	responderJSON(w, http.StatusCreated, sub)
}

func (a *API) feedDaSala(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	var day domain.Day
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := domain.ParseDay(raw)
		if err != nil {
			responderJSON(w, http.StatusBadRequest, map[string]string{"erro": "invalid date"})
			return
		}
		day = parsed
	}

	feed, err := a.service.RoomFeed(r.Context(), id.UserID, day)
	if err != nil {
		a.logger.Error("erro ao montar feed", "err", err, "user", id.UserID)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, feed)
}

type voteRequest struct {
	SubmissionID string `json:"submission_id" validate:"required"`
}

func (a *API) votar(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	var req voteRequest
	if err := decodificar(w, r, &req); err != nil {
		metrics.ObserveVoteRequest("invalid_payload")
		a.logger.Warn("payload invalido ao votar", "err", err)
		responderPayloadInvalido(w)
		return
	}
	if err := validarPayload(req); err != nil {
		metrics.ObserveVoteRequest("invalid")
		responderErro(w, err)
		return
	}

	if err := a.service.CastVote(r.Context(), id.UserID, domain.SubmissionID(req.SubmissionID)); err != nil {
		status := statusFromError(err)
		metrics.ObserveVoteRequest(status)
		a.logger.Warn("falha ao registrar voto", "err", err, "user", id.UserID, "submission", req.SubmissionID, "status", status)
		responderErro(w, err)
		return
	}

	metrics.ObserveVoteRequest("accepted")
	a.logger.Info("voto registrado", "user", id.UserID, "submission", req.SubmissionID)
	responderJSON(w, http.StatusCreated, map[string]string{"status": "registrado"})
}

type flagRequest struct {
	DrawingID string `json:"drawing_id" validate:"required"`
	Image     string `json:"image" validate:"required"`
}

func (a *API) denunciar(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	var req flagRequest
	if err := decodificar(w, r, &req); err != nil {
		responderPayloadInvalido(w)
		return
	}
	if err := validarPayload(req); err != nil {
		responderErro(w, err)
		return
	}

	if err := a.service.FlagDrawing(r.Context(), id.UserID, domain.SubmissionID(req.DrawingID), req.Image); err != nil {
		a.logger.Warn("falha ao denunciar desenho", "err", err, "user", id.UserID, "drawing", req.DrawingID)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusAccepted, map[string]string{"status": "recebido"})
}

func (a *API) temaDoDia(w http.ResponseWriter, r *http.Request) {
	tod, err := a.service.ThemeOfDay(r.Context(), a.service.Today())
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, tod)
}

type userRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"`
}

func (a *API) criarUsuario(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	var req userRequest
	if err := decodificar(w, r, &req); err != nil {
		responderPayloadInvalido(w)
		return
	}
	if err := validarPayload(req); err != nil {
		responderErro(w, err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = id.Email
	}
	u, err := a.service.CreateUser(r.Context(), domain.User{
		ID:         id.UserID,
		Username:   req.Username,
		Email:      email,
		IsVerified: id.EmailVerified,
	})
	if err != nil {
		a.logger.Warn("falha ao criar usuario", "err", err, "user", id.UserID)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusCreated, u)
}

func (a *API) marcarTutorial(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if err := a.service.MarkTutorialSeen(r.Context(), id.UserID); err != nil {
		responderErro(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) marcarVerificado(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if err := a.service.MarkVerified(r.Context(), id.UserID, id.EmailVerified); err != nil {
		responderErro(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) apagarConta(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if err := a.service.DeleteAccount(r.Context(), id.UserID); err != nil {
		a.logger.Error("falha ao apagar conta", "err", err, "user", id.UserID)
		responderErro(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type themesRequest struct {
	Words []string `json:"words" validate:"required,min=1"`
}

func (a *API) enfileirarTemas(w http.ResponseWriter, r *http.Request) {
	var req themesRequest
	if err := decodificar(w, r, &req); err != nil {
		responderPayloadInvalido(w)
		return
	}
	if err := validarPayload(req); err != nil {
		responderErro(w, err)
		return
	}

	themes, err := a.service.EnqueueThemes(r.Context(), req.Words)
	if err != nil {
		responderErro(w, err)
		return
	}
	a.logger.Info("temas enfileirados", "total", len(themes))
	responderJSON(w, http.StatusCreated, themes)
}
