package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/daily-doodle/internal/app/doodle"
	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/antifraude"
	"github.com/marcelojr/daily-doodle/internal/platform/identity"
)

const (
	segredoTeste = "segredo-de-teste"
	adminTeste   = "admin-token"
)

// MockDoodleService implementa domain.DoodleService para testes
type MockDoodleService struct {
	mock.Mock
}

func (m *MockDoodleService) Submit(ctx context.Context, userID domain.UserID, image string) (domain.Submission, error) {
	args := m.Called(ctx, userID, image)
	return args.Get(0).(domain.Submission), args.Error(1)
}

func (m *MockDoodleService) RoomFeed(ctx context.Context, userID domain.UserID, day domain.Day) ([]domain.Submission, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *MockDoodleService) CastVote(ctx context.Context, voterID domain.UserID, target domain.SubmissionID) error {
	return m.Called(ctx, voterID, target).Error(0)
}

func (m *MockDoodleService) FlagDrawing(ctx context.Context, flaggedBy domain.UserID, drawingID domain.SubmissionID, image string) error {
	return m.Called(ctx, flaggedBy, drawingID, image).Error(0)
}

func (m *MockDoodleService) Today() domain.Day {
	return m.Called().Get(0).(domain.Day)
}

func (m *MockDoodleService) ThemeOfDay(ctx context.Context, day domain.Day) (domain.ThemeOfDay, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(domain.ThemeOfDay), args.Error(1)
}

func (m *MockDoodleService) EnqueueThemes(ctx context.Context, words []string) ([]domain.Theme, error) {
	args := m.Called(ctx, words)
	return args.Get(0).([]domain.Theme), args.Error(1)
}

func (m *MockDoodleService) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockDoodleService) MarkTutorialSeen(ctx context.Context, id domain.UserID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDoodleService) MarkVerified(ctx context.Context, id domain.UserID, emailVerified bool) error {
	return m.Called(ctx, id, emailVerified).Error(0)
}

func (m *MockDoodleService) DeleteAccount(ctx context.Context, id domain.UserID) error {
	return m.Called(ctx, id).Error(0)
}

// setupAPI monta o mux completo com serviço mockado e verificador JWT real.
func setupAPI(t *testing.T) (*http.ServeMux, *MockDoodleService) {
	mockService := new(MockDoodleService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{}))
	api := New(mockService, identity.NewVerifier(segredoTeste), adminTeste, logger)

	mux := http.NewServeMux()
	api.Register(mux)

	t.Cleanup(func() {
		mockService.AssertExpectations(t)
	})

	return mux, mockService
}

func tokenPara(t *testing.T, user string, verified bool) string {
	t.Helper()
	tok, err := identity.NewVerifier(segredoTeste).Issue(identity.Identity{
		UserID:        domain.UserID(user),
		Email:         user + "@example.com",
		EmailVerified: verified,
	}, time.Hour)
	require.NoError(t, err)
	return tok
}

func requisicao(t *testing.T, method, path, body, user string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+tokenPara(t, user, true))
	}
	return req
}

func executar(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func erroDoCorpo(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response["erro"]
}

// === TESTES GET /healthz ===

func TestHandleHealthz_QuandoSolicitado_DeveRetornar200OK(t *testing.T) {
	mux, _ := setupAPI(t)

	w := executar(mux, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

// === TESTES DE AUTENTICAÇÃO ===

func TestAutenticacao_QuandoSemToken_DeveRetornar401(t *testing.T) {
	mux, _ := setupAPI(t)

	w := executar(mux, requisicao(t, "POST", "/submissions", `{"image":"x"}`, ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User must be authenticated", erroDoCorpo(t, w))
}

func TestAutenticacao_QuandoTokenDeOutroSegredo_DeveRetornar401(t *testing.T) {
	mux, _ := setupAPI(t)

	tok, err := identity.NewVerifier("outro").Issue(identity.Identity{UserID: "u1"}, time.Hour)
	require.NoError(t, err)
	req := requisicao(t, "POST", "/votes", `{"submission_id":"s1"}`, "")
	req.Header.Set("Authorization", "Bearer "+tok)

	w := executar(mux, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAutenticacao_QuandoEsquemaNaoBearer_DeveRetornar401(t *testing.T) {
	mux, _ := setupAPI(t)

	req := requisicao(t, "GET", "/rooms/feed", "", "")
	req.Header.Set("Authorization", "Basic dTE6c2VuaGE=")

	w := executar(mux, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// === TESTES POST /submissions ===

func TestEnviarDesenho_QuandoValido_DeveRetornar201ComSubmissao(t *testing.T) {
	mux, mockService := setupAPI(t)

	sub := domain.Submission{ID: "sub-1", UserID: "u1", Day: "2025-06-01", Image: "img", CreatedAtMillis: 10}
	mockService.On("Submit", mock.Anything, domain.UserID("u1"), "img").Return(sub, nil)

	w := executar(mux, requisicao(t, "POST", "/submissions", `{"image":"img"}`, "u1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	var response domain.Submission
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, domain.SubmissionID("sub-1"), response.ID)
	assert.Equal(t, domain.Day("2025-06-01"), response.Day)
}

func TestEnviarDesenho_QuandoPayloadInvalido_DeveRetornar400(t *testing.T) {
	mux, _ := setupAPI(t)

	w := executar(mux, requisicao(t, "POST", "/submissions", `{"image":invalid}`, "u1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payload", erroDoCorpo(t, w))
}

func TestEnviarDesenho_QuandoSemImagem_DeveRetornar400SemChamarServico(t *testing.T) {
	mux, _ := setupAPI(t)

	w := executar(mux, requisicao(t, "POST", "/submissions", `{}`, "u1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required field: image", erroDoCorpo(t, w))
}

func TestEnviarDesenho_QuandoCorpoExcedeLimite_DeveRetornar400(t *testing.T) {
	mux, _ := setupAPI(t)

	grande := fmt.Sprintf(`{"image":"%s"}`, strings.Repeat("a", maxBodyBytes+1))
	w := executar(mux, requisicao(t, "POST", "/submissions", grande, "u1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnviarDesenho_QuandoErroDoServico_DeveMapearStatus(t *testing.T) {
	casos := []struct {
		nome   string
		err    error
		status int
	}{
		{"ja enviou", doodle.ErrAlreadySubmitted, http.StatusConflict},
		{"janela fechada", doodle.ErrSubmissionWindowClosed, http.StatusForbidden},
		{"campo faltando", fmt.Errorf("%w: image", doodle.ErrMissingField), http.StatusBadRequest},
		{"rate limit", antifraude.ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"infraestrutura", errors.New("conexao recusada"), http.StatusInternalServerError},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			mux, mockService := setupAPI(t)
			mockService.On("Submit", mock.Anything, domain.UserID("u1"), "img").Return(domain.Submission{}, tc.err)

			w := executar(mux, requisicao(t, "POST", "/submissions", `{"image":"img"}`, "u1"))

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestEnviarDesenho_QuandoErroInterno_NaoDeveVazarDetalhe(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(domain.Submission{}, errors.New("pq: senha incorreta"))

	w := executar(mux, requisicao(t, "POST", "/submissions", `{"image":"img"}`, "u1"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal error, try again", erroDoCorpo(t, w))
}

// === TESTES GET /rooms/feed ===

func TestFeedDaSala_QuandoSemData_DevePassarDiaVazio(t *testing.T) {
	mux, mockService := setupAPI(t)

	feed := []domain.Submission{
		{ID: "b", UserID: "u3", VoteCount: 2},
		{ID: "a", UserID: "u2", VoteCount: 1},
	}
	mockService.On("RoomFeed", mock.Anything, domain.UserID("u1"), domain.Day("")).Return(feed, nil)

	w := executar(mux, requisicao(t, "GET", "/rooms/feed", "", "u1"))

	assert.Equal(t, http.StatusOK, w.Code)
	var response []domain.Submission
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response, 2)
	assert.Equal(t, domain.SubmissionID("b"), response[0].ID)
}

func TestFeedDaSala_QuandoComData_DeveRepassarDia(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("RoomFeed", mock.Anything, domain.UserID("u1"), domain.Day("2025-06-01")).Return([]domain.Submission{}, nil)

	w := executar(mux, requisicao(t, "GET", "/rooms/feed?date=2025-06-01", "", "u1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestFeedDaSala_QuandoDataInvalida_DeveRetornar400(t *testing.T) {
	mux, _ := setupAPI(t)

	w := executar(mux, requisicao(t, "GET", "/rooms/feed?date=01/06/2025", "", "u1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid date", erroDoCorpo(t, w))
}

// === TESTES POST /votes ===

func TestVotar_QuandoValido_DeveRetornar201(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("CastVote", mock.Anything, domain.UserID("u1"), domain.SubmissionID("sub-9")).Return(nil)

	w := executar(mux, requisicao(t, "POST", "/votes", `{"submission_id":"sub-9"}`, "u1"))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestVotar_QuandoErroDoServico_DeveMapearStatusEMensagem(t *testing.T) {
	casos := []struct {
		nome   string
		err    error
		status int
	}{
		{"ja votou", doodle.ErrAlreadyVoted, http.StatusConflict},
		{"alvo inexistente", doodle.ErrTargetNotFound, http.StatusNotFound},
		{"votacao fechada", doodle.ErrVotingWindowClosed, http.StatusForbidden},
		{"voto proprio", doodle.ErrSelfVote, http.StatusForbidden},
		{"fora da sala", doodle.ErrTargetOutsideRoom, http.StatusForbidden},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			mux, mockService := setupAPI(t)
			mockService.On("CastVote", mock.Anything, domain.UserID("u1"), domain.SubmissionID("sub-9")).Return(tc.err)

			w := executar(mux, requisicao(t, "POST", "/votes", `{"submission_id":"sub-9"}`, "u1"))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.err.Error(), erroDoCorpo(t, w))
		})
	}
}

func TestVotar_QuandoMetodoNaoSuportado_DeveRetornar405(t *testing.T) {
	mux, _ := setupAPI(t)

	w := executar(mux, requisicao(t, "GET", "/votes", "", "u1"))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// === TESTES POST /flags ===

func TestDenunciar_QuandoValido_DeveRetornar202(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("FlagDrawing", mock.Anything, domain.UserID("u1"), domain.SubmissionID("sub-2"), "img").Return(nil)

	w := executar(mux, requisicao(t, "POST", "/flags", `{"drawing_id":"sub-2","image":"img"}`, "u1"))

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestDenunciar_QuandoSemImagem_DeveRetornar400SemChamarServico(t *testing.T) {
	mux, mockService := setupAPI(t)

	w := executar(mux, requisicao(t, "POST", "/flags", `{"drawing_id":"sub-2"}`, "u1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required field: image", erroDoCorpo(t, w))
	mockService.AssertNotCalled(t, "FlagDrawing", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// === TESTES GET /themes/today ===

func TestTemaDoDia_QuandoDisponivel_DeveRetornarTema(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("Today").Return(domain.Day("2025-06-01"))
	mockService.On("ThemeOfDay", mock.Anything, domain.Day("2025-06-01")).
		Return(domain.ThemeOfDay{Day: "2025-06-01", Word: "cat"}, nil)

	w := executar(mux, httptest.NewRequest("GET", "/themes/today", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var response domain.ThemeOfDay
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "cat", response.Word)
}

func TestTemaDoDia_QuandoAusente_DeveRetornar404(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("Today").Return(domain.Day("2025-06-01"))
	mockService.On("ThemeOfDay", mock.Anything, domain.Day("2025-06-01")).
		Return(domain.ThemeOfDay{}, doodle.ErrThemeNotFound)

	w := executar(mux, httptest.NewRequest("GET", "/themes/today", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// === TESTES /users ===

func TestCriarUsuario_QuandoValido_DeveUsarIdentidadeDoToken(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("CreateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.ID == "u1" && u.Username == "ana" && u.Email == "u1@example.com" && u.IsVerified
	})).Return(domain.User{ID: "u1", Username: "ana"}, nil)

	w := executar(mux, requisicao(t, "POST", "/users", `{"username":"ana"}`, "u1"))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCriarUsuario_QuandoJaExiste_DeveRetornar409(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("CreateUser", mock.Anything, mock.Anything).Return(domain.User{}, doodle.ErrUserExists)

	w := executar(mux, requisicao(t, "POST", "/users", `{"username":"ana"}`, "u1"))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMarcarTutorial_QuandoUsuarioInexistente_DeveRetornar404(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("MarkTutorialSeen", mock.Anything, domain.UserID("u1")).Return(doodle.ErrUserNotFound)

	w := executar(mux, requisicao(t, "POST", "/users/me/tutorial", "", "u1"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarcarVerificado_QuandoEmailNaoVerificado_DeveRetornar403(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("MarkVerified", mock.Anything, domain.UserID("u1"), false).Return(doodle.ErrEmailNotVerified)

	req := requisicao(t, "POST", "/users/me/verify", "", "")
	req.Header.Set("Authorization", "Bearer "+tokenPara(t, "u1", false))
	w := executar(mux, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApagarConta_QuandoValido_DeveRetornar204(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("DeleteAccount", mock.Anything, domain.UserID("u1")).Return(nil)

	w := executar(mux, requisicao(t, "DELETE", "/users/me", "", "u1"))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

// === TESTES POST /admin/themes ===

func TestEnfileirarTemas_QuandoTokenAdminValido_DeveRetornar201(t *testing.T) {
	mux, mockService := setupAPI(t)
	mockService.On("EnqueueThemes", mock.Anything, []string{"cat", "dog"}).
		Return([]domain.Theme{{ID: "t1", Word: "cat"}, {ID: "t2", Word: "dog"}}, nil)

	req := requisicao(t, "POST", "/admin/themes", `{"words":["cat","dog"]}`, "")
	req.Header.Set("X-Admin-Token", adminTeste)
	w := executar(mux, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEnfileirarTemas_QuandoListaVazia_DeveRetornar400(t *testing.T) {
	mux, _ := setupAPI(t)

	req := requisicao(t, "POST", "/admin/themes", `{"words":[]}`, "")
	req.Header.Set("X-Admin-Token", adminTeste)
	w := executar(mux, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required field: words", erroDoCorpo(t, w))
}

func TestEnfileirarTemas_QuandoTokenAdminErrado_DeveRetornar403(t *testing.T) {
	mux, _ := setupAPI(t)

	req := requisicao(t, "POST", "/admin/themes", `{"words":["cat"]}`, "")
	req.Header.Set("X-Admin-Token", "errado")
	w := executar(mux, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEnfileirarTemas_QuandoAdminNaoConfigurado_DeveRetornar403(t *testing.T) {
	mockService := new(MockDoodleService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{}))
	mux := http.NewServeMux()
	New(mockService, identity.NewVerifier(segredoTeste), "", logger).Register(mux)

	req := requisicao(t, "POST", "/admin/themes", `{"words":["cat"]}`, "")
	w := executar(mux, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertNotCalled(t, "EnqueueThemes", mock.Anything, mock.Anything)
}

// === TESTES statusFromError ===

func TestStatusFromError_QuandoErrosConhecidos_DeveRotularMetricas(t *testing.T) {
	assert.Equal(t, "rate_limited", statusFromError(antifraude.ErrRateLimitExceeded))
	assert.Equal(t, "duplicate", statusFromError(doodle.ErrAlreadyVoted))
	assert.Equal(t, "closed", statusFromError(doodle.ErrSubmissionWindowClosed))
	assert.Equal(t, "not_found", statusFromError(doodle.ErrTargetNotFound))
	assert.Equal(t, "invalid", statusFromError(doodle.ErrSelfVote))
	assert.Equal(t, "error", statusFromError(errors.New("boom")))
}
