// internal/handlers/plan_handler_test.go
package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go_shadowing_keep/internal/clock"
	"go_shadowing_keep/internal/handlers"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/service/mocks"
)

func newPlanRouter(t *testing.T, userID uuid.UUID, mockService *mocks.MockPlanService) chi.Router {
	t.Helper()
	handler := handlers.NewPlanHandler(mockService, clock.Fixed{Day: clock.Date(2025, 3, 10)}, nil)
	router := chi.NewRouter()
	router.Use(withUser(userID))
	router.Post("/api/v1/plans/today", handler.GenerateTodayPlan)
	router.Post("/api/v1/plans/today/regenerate", handler.RegenerateTodayPlan)
	router.Get("/api/v1/plans/today", handler.GetTodayPlan)
	router.Post("/api/v1/plans/items/{item_id}/start", handler.StartPlanItem)
	return router
}

func TestPlanHandler_GenerateTodayPlan(t *testing.T) {
	userID := uuid.New()
	today := clock.Date(2025, 3, 10)

	t.Run("正常系: 新規生成は201", func(t *testing.T) {
		mockService := mocks.NewMockPlanService(t)
		planID := uuid.New()
		mockService.On("Generate", mock.Anything, userID, today).
			Return(&model.GeneratePlanResponse{PlanID: planID, PlanDate: today, TotalItems: 5, Created: true}, nil).Once()

		router := newPlanRouter(t, userID, mockService)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/today", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp model.GeneratePlanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, planID, resp.PlanID)
		assert.Equal(t, 5, resp.TotalItems)
	})

	t.Run("正常系: 既存プランあり/候補なしは204", func(t *testing.T) {
		mockService := mocks.NewMockPlanService(t)
		mockService.On("Generate", mock.Anything, userID, today).Return(nil, nil).Once()

		router := newPlanRouter(t, userID, mockService)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/today", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.Bytes())
	})
}

func TestPlanHandler_RegenerateTodayPlan(t *testing.T) {
	userID := uuid.New()
	today := clock.Date(2025, 3, 10)

	t.Run("異常系: 着手済みプランは409 PLAN_STARTED", func(t *testing.T) {
		mockService := mocks.NewMockPlanService(t)
		mockService.On("Regenerate", mock.Anything, userID, today).
			Return(nil, model.NewAppError("PLAN_STARTED", "着手済みのプランは再生成できません。", "", model.ErrPlanStarted)).Once()

		router := newPlanRouter(t, userID, mockService)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/today/regenerate", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var errResp model.APIErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		assert.Equal(t, "PLAN_STARTED", errResp.Error.Code)
	})
}

func TestPlanHandler_GetTodayPlan(t *testing.T) {
	userID := uuid.New()
	today := clock.Date(2025, 3, 10)

	t.Run("正常系: プランをアイテム込みで返す", func(t *testing.T) {
		mockService := mocks.NewMockPlanService(t)
		planID := uuid.New()
		mockService.On("GetPlan", mock.Anything, userID, today).
			Return(&model.PlanResponse{
				PlanID:     planID,
				PlanDate:   today,
				TotalItems: 1,
				Items: []model.PlanItemResponse{
					{PlanItemID: uuid.New(), ItemOrder: 1, ItemType: model.PlanItemTypeNew, Status: model.PlanItemStatusPending},
				},
			}, nil).Once()

		router := newPlanRouter(t, userID, mockService)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/today", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp model.PlanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, planID, resp.PlanID)
		require.Len(t, resp.Items, 1)
	})

	t.Run("異常系: プランなしは404", func(t *testing.T) {
		mockService := mocks.NewMockPlanService(t)
		mockService.On("GetPlan", mock.Anything, userID, today).Return(nil, model.ErrNotFound).Once()

		router := newPlanRouter(t, userID, mockService)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/today", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPlanHandler_StartPlanItem(t *testing.T) {
	userID := uuid.New()

	t.Run("正常系: 着手成功は204", func(t *testing.T) {
		mockService := mocks.NewMockPlanService(t)
		itemID := uuid.New()
		mockService.On("StartItem", mock.Anything, userID, itemID).Return(nil).Once()

		router := newPlanRouter(t, userID, mockService)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/items/"+itemID.String()+"/start", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("異常系: UUIDでないIDは400", func(t *testing.T) {
		mockService := mocks.NewMockPlanService(t)
		router := newPlanRouter(t, userID, mockService)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/items/not-a-uuid/start", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("異常系: 完了済みアイテムは409", func(t *testing.T) {
		mockService := mocks.NewMockPlanService(t)
		itemID := uuid.New()
		mockService.On("StartItem", mock.Anything, userID, itemID).
			Return(model.NewAppError("ALREADY_COMPLETED", "このアイテムは既に完了しています。", "", model.ErrAlreadyCompleted)).Once()

		router := newPlanRouter(t, userID, mockService)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/items/"+itemID.String()+"/start", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
