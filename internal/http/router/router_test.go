package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/freelance-marketplace/internal/config"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/events"
	memstore "github.com/ignatzorin/freelance-marketplace/internal/infrastructure/memory"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/freelance-marketplace/internal/storage"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/bid"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/contract"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/message"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/project"
	"github.com/ignatzorin/freelance-marketplace/internal/ws"
)

type stubTokens map[string]entity.Actor

func (s stubTokens) ParseAccess(token string) (entity.Actor, error) {
	if actor, ok := s[token]; ok {
		return actor, nil
	}
	return entity.Actor{}, errors.New("invalid token")
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func (a testAPI) do(method, path, token string, body interface{}, headers ...string) (int, apiResponse) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func decodeData(t *testing.T, resp apiResponse, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, target))
}

func newTestAPI(t *testing.T, tokens stubTokens, store *memstore.Store) testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:             "test",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  1000,
		RateLimitPeriod: time.Minute,
		RequestTimeout:  5 * time.Second,
		AttachmentsPath: t.TempDir(),
		MaxUploadSizeMB: 1,
		MilestoneDue:    30 * 24 * time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub()
	go hub.Run(ctx)
	notifier := events.Fanout{hub}

	attachments, err := storage.NewAttachmentStorage(cfg.AttachmentsPath, cfg.MaxUploadSizeMB)
	require.NoError(t, err)

	handlers := Handlers{
		Project: handler.NewProjectHandler(
			project.NewCreateProjectUseCase(store.Projects()),
			project.NewUpdateProjectUseCase(store.Projects()),
			project.NewDeleteProjectUseCase(store.Projects()),
			project.NewGetProjectUseCase(store.Projects(), store.Bids(), store.Contracts(), store.Users()),
			project.NewListProjectsUseCase(store.Projects()),
		),
		Bid: handler.NewBidHandler(
			bid.NewPlaceBidUseCase(store.Bids(), store.Projects(), notifier),
			bid.NewAcceptBidUseCase(store.Bids(), store.Projects(), notifier, cfg.MilestoneDue),
			bid.NewRejectBidUseCase(store.Bids(), store.Projects(), notifier),
			bid.NewListProjectBidsUseCase(store.Bids(), store.Projects(), store.Users()),
			bid.NewListFreelancerBidsUseCase(store.Bids(), store.Projects()),
		),
		Contract: handler.NewContractHandler(
			contract.NewGetContractUseCase(store.Contracts()),
			contract.NewListMyContractsUseCase(store.Contracts()),
			contract.NewUpdateMilestoneUseCase(store.Contracts(), notifier),
			contract.NewCompleteContractUseCase(store.Contracts(), store.Projects(), notifier),
		),
		Payment: handler.NewPaymentHandler(
			contract.NewCreatePaymentIntentUseCase(store.Contracts(), store.Payments()),
			contract.NewConfirmPaymentUseCase(store.Contracts(), store.Payments(), notifier, false),
		),
		Message: handler.NewMessageHandler(
			message.NewSendMessageUseCase(store.Projects(), store.Messages(), notifier),
			message.NewListMessagesUseCase(store.Projects(), store.Messages()),
			message.NewMarkReadUseCase(store.Messages()),
		),
		Attachment: handler.NewAttachmentHandler(attachments, cfg.MaxUploadSizeMB),
		WS:         handler.NewWSHandler(hub, cfg.AllowedOrigins),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"storage": func(context.Context) error { return nil },
		}),
	}

	return testAPI{t: t, engine: SetupRouter(cfg, tokens, memory.NewStore(), handlers)}
}

func validProjectBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Интернет-магазин",
		"description": "Магазин на Go и React с оплатой картой",
		"category":    "web-development",
		"budget":      5000,
		"budget_type": "fixed",
		"duration":    "1-to-3-months",
		"skills":      []string{"Go", "React"},
	}
}

func TestRouter_FullProjectLifecycle(t *testing.T) {
	client := entity.Actor{ID: uuid.New(), Role: valueobject.RoleClient}
	freelancer := entity.Actor{ID: uuid.New(), Role: valueobject.RoleFreelancer}
	other := entity.Actor{ID: uuid.New(), Role: valueobject.RoleFreelancer}

	store := memstore.NewStore()
	store.Users().Add(entity.PublicUser{ID: client.ID, Username: "client", Role: client.Role})
	store.Users().Add(entity.PublicUser{ID: freelancer.ID, Username: "dev", Role: freelancer.Role})

	api := newTestAPI(t, stubTokens{"client": client, "freelancer": freelancer, "other": other}, store)

	// Проект.
	status, resp := api.do(http.MethodPost, "/api/projects", "client", validProjectBody())
	require.Equal(t, http.StatusCreated, status)
	var createdProject struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	decodeData(t, resp, &createdProject)
	assert.Equal(t, "open", createdProject.Status)

	// Заявки двух исполнителей.
	placeBid := func(token string, amount float64) uuid.UUID {
		status, resp := api.do(http.MethodPost, "/api/bids", token, map[string]interface{}{
			"project_id":    createdProject.ID,
			"amount":        amount,
			"proposal":      "Сделаю быстро и качественно, опыт пять лет",
			"delivery_time": "2-to-4-weeks",
		})
		require.Equal(t, http.StatusCreated, status)
		var created struct {
			ID uuid.UUID `json:"id"`
		}
		decodeData(t, resp, &created)
		return created.ID
	}
	acceptedBidID := placeBid("freelancer", 4500)
	siblingBidID := placeBid("other", 4000)

	status, _ = api.do(http.MethodPost, "/api/bids", "freelancer", map[string]interface{}{
		"project_id":    createdProject.ID,
		"amount":        100,
		"proposal":      "Повторная заявка на тот же проект",
		"delivery_time": "2-to-4-weeks",
	})
	assert.Equal(t, http.StatusConflict, status)

	// Принятие заявки создаёт контракт и отклоняет остальные.
	status, resp = api.do(http.MethodPut, "/api/bids/"+acceptedBidID.String()+"/accept", "client", nil)
	require.Equal(t, http.StatusOK, status)
	var accepted struct {
		Contract struct {
			ID         uuid.UUID `json:"id"`
			Amount     float64   `json:"amount"`
			Milestones []struct {
				ID uuid.UUID `json:"id"`
			} `json:"milestones"`
		} `json:"contract"`
	}
	decodeData(t, resp, &accepted)
	assert.Equal(t, 4500.0, accepted.Contract.Amount)
	require.Len(t, accepted.Contract.Milestones, 1)
	contractPath := "/api/contracts/" + accepted.Contract.ID.String()

	status, _ = api.do(http.MethodPut, "/api/bids/"+siblingBidID.String()+"/accept", "client", nil)
	assert.Equal(t, http.StatusConflict, status)

	// Публичная карточка проекта.
	status, resp = api.do(http.MethodGet, "/api/projects/"+createdProject.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	var details struct {
		Status     string `json:"status"`
		Freelancer *struct {
			Username string `json:"username"`
		} `json:"freelancer"`
		Bids []struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"bids"`
		Contract *struct {
			ID uuid.UUID `json:"id"`
		} `json:"contract"`
	}
	decodeData(t, resp, &details)
	assert.Equal(t, "in-progress", details.Status)
	require.NotNil(t, details.Freelancer)
	assert.Equal(t, "dev", details.Freelancer.Username)
	require.NotNil(t, details.Contract)
	for _, b := range details.Bids {
		if b.ID == siblingBidID {
			assert.Equal(t, "rejected", b.Status)
		}
	}

	// Доступ к контракту только у сторон.
	status, _ = api.do(http.MethodGet, contractPath, "freelancer", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodGet, contractPath, "other", nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Этап: pending -> paid запрещён, pending -> completed разрешён.
	milestonePath := contractPath + "/milestones/" + accepted.Contract.Milestones[0].ID.String()
	status, _ = api.do(http.MethodPut, milestonePath, "freelancer", map[string]string{"status": "paid"})
	assert.Equal(t, http.StatusConflict, status)
	status, _ = api.do(http.MethodPut, milestonePath, "freelancer", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusOK, status)

	// Оплата с ключом идемпотентности учитывается один раз.
	payment := map[string]interface{}{
		"contract_id":  accepted.Contract.ID,
		"milestone_id": accepted.Contract.Milestones[0].ID,
		"amount":       4500,
	}
	for i := 0; i < 2; i++ {
		status, resp = api.do(http.MethodPost, "/api/payments/confirm", "client", payment, "Idempotency-Key", "pay-1")
		require.Equal(t, http.StatusOK, status)
	}
	var paid struct {
		TotalPaid     float64 `json:"total_paid"`
		PaymentStatus string  `json:"payment_status"`
	}
	decodeData(t, resp, &paid)
	assert.Equal(t, 4500.0, paid.TotalPaid)
	assert.Equal(t, "completed", paid.PaymentStatus)

	status, _ = api.do(http.MethodPost, "/api/payments/confirm", "freelancer", payment, "Idempotency-Key", "pay-2")
	assert.Equal(t, http.StatusForbidden, status)

	// Переписка.
	status, resp = api.do(http.MethodPost, "/api/messages", "client", map[string]interface{}{
		"project_id": createdProject.ID,
		"content":    "Спасибо за работу!",
	})
	require.Equal(t, http.StatusCreated, status)
	var sent struct {
		ID         uuid.UUID `json:"id"`
		ReceiverID uuid.UUID `json:"receiver_id"`
	}
	decodeData(t, resp, &sent)
	assert.Equal(t, freelancer.ID, sent.ReceiverID)

	status, _ = api.do(http.MethodPut, "/api/messages/"+sent.ID.String()+"/read", "client", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.do(http.MethodPut, "/api/messages/"+sent.ID.String()+"/read", "freelancer", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodGet, "/api/projects/"+createdProject.ID.String()+"/messages", "other", nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Завершение контракта закрывает проект.
	status, _ = api.do(http.MethodPut, contractPath+"/complete", "freelancer", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, resp = api.do(http.MethodPut, contractPath+"/complete", "client", nil)
	require.Equal(t, http.StatusOK, status)
	var completed struct {
		Status string `json:"status"`
	}
	decodeData(t, resp, &completed)
	assert.Equal(t, "completed", completed.Status)

	status, _ = api.do(http.MethodPut, contractPath+"/complete", "client", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, resp = api.do(http.MethodGet, "/api/contracts", "freelancer", nil)
	require.Equal(t, http.StatusOK, status)
	var mine []struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, resp, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, accepted.Contract.ID, mine[0].ID)
}

func TestRouter_ErrorResponses(t *testing.T) {
	client := entity.Actor{ID: uuid.New(), Role: valueobject.RoleClient}
	freelancer := entity.Actor{ID: uuid.New(), Role: valueobject.RoleFreelancer}
	api := newTestAPI(t, stubTokens{"client": client, "freelancer": freelancer}, memstore.NewStore())

	t.Run("no token", func(t *testing.T) {
		status, resp := api.do(http.MethodPost, "/api/projects", "", validProjectBody())
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	})

	t.Run("validation fields", func(t *testing.T) {
		body := validProjectBody()
		body["title"] = ""
		body["category"] = "gardening"
		status, resp := api.do(http.MethodPost, "/api/projects", "client", body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Contains(t, resp.Error.Fields, "title")
		assert.Contains(t, resp.Error.Fields, "category")
	})

	t.Run("freelancer cannot create project", func(t *testing.T) {
		status, _ := api.do(http.MethodPost, "/api/projects", "freelancer", validProjectBody())
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("bad deadline", func(t *testing.T) {
		body := validProjectBody()
		body["deadline"] = "завтра"
		status, resp := api.do(http.MethodPost, "/api/projects", "client", body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, resp.Error.Fields, "deadline")
	})

	t.Run("invalid uuid", func(t *testing.T) {
		status, resp := api.do(http.MethodGet, "/api/projects/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
	})

	t.Run("unknown project", func(t *testing.T) {
		status, resp := api.do(http.MethodGet, "/api/projects/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("unknown bid", func(t *testing.T) {
		status, _ := api.do(http.MethodPut, "/api/bids/"+uuid.NewString()+"/accept", "client", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("invalid list filter", func(t *testing.T) {
		status, resp := api.do(http.MethodGet, "/api/projects?status=archived", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/bids", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer freelancer")
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRouter_ListProjectsPagination(t *testing.T) {
	client := entity.Actor{ID: uuid.New(), Role: valueobject.RoleClient}
	api := newTestAPI(t, stubTokens{"client": client}, memstore.NewStore())

	for i := 0; i < 3; i++ {
		status, _ := api.do(http.MethodPost, "/api/projects", "client", validProjectBody())
		require.Equal(t, http.StatusCreated, status)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+client.ID.String()+"/projects?limit=2", nil)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			Total   int  `json:"total"`
			Limit   int  `json:"limit"`
			HasMore bool `json:"has_more"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.True(t, page.Pagination.HasMore)
}

func TestRouter_UploadAttachment(t *testing.T) {
	freelancer := entity.Actor{ID: uuid.New(), Role: valueobject.RoleFreelancer}
	api := newTestAPI(t, stubTokens{"freelancer": freelancer}, memstore.NewStore())

	upload := func(content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", "portfolio.pdf")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/attachments", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer freelancer")
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)
		return w
	}

	w := upload([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"mime":"application/pdf"`)
	assert.Contains(t, w.Body.String(), freelancer.ID.String())

	w = upload([]byte("обычный текст без сигнатуры формата"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t, stubTokens{}, memstore.NewStore())

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}
