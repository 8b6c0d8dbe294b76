// internal/handlers/practice_handler_test.go
package handlers_test

import (
	"bytes"
	"context"
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

// withUser はテスト用にコンテキストへ認証済みユーザーIDを注入するミドルウェア
func withUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestPracticeHandler_CompletePractice(t *testing.T) {
	userID := uuid.New()
	materialID := uuid.New()
	today := clock.Date(2025, 3, 10)
	testClock := clock.Fixed{Day: today}

	validBody := model.CompletePracticeRequest{
		MaterialID:         materialID,
		DurationSeconds:    120,
		CompletedAllStages: true,
	}
	recordID := uuid.New()

	tests := []struct {
		name           string
		authenticated  bool
		body           interface{}
		setupMock      func(m *mocks.MockPracticeService)
		expectedStatus int
		expectedCode   string // エラー時のみ検証
	}{
		{
			name:          "正常系: 練習完了で201とrecord_id",
			authenticated: true,
			body:          validBody,
			setupMock: func(m *mocks.MockPracticeService) {
				m.On("Complete", mock.Anything, userID, mock.AnythingOfType("*model.CompletePracticeRequest"), today).
					Return(&model.CompletePracticeResponse{RecordID: recordID}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "異常系: 認証情報なしは403",
			authenticated:  false,
			body:           validBody,
			setupMock:      func(m *mocks.MockPracticeService) {},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "異常系: material_id 欠落はバリデーションエラー",
			authenticated:  true,
			body:           model.CompletePracticeRequest{DurationSeconds: 60},
			setupMock:      func(m *mocks.MockPracticeService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "異常系: 不正なJSONボディは400",
			authenticated:  true,
			body:           "{not-json",
			setupMock:      func(m *mocks.MockPracticeService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST_BODY",
		},
		{
			name:          "異常系: 二重送信は409 ALREADY_COMPLETED",
			authenticated: true,
			body:          validBody,
			setupMock: func(m *mocks.MockPracticeService) {
				m.On("Complete", mock.Anything, userID, mock.AnythingOfType("*model.CompletePracticeRequest"), today).
					Return(nil, model.NewAppError("ALREADY_COMPLETED", "このアイテムは既に完了しています。", "", model.ErrAlreadyCompleted)).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "ALREADY_COMPLETED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := mocks.NewMockPracticeService(t)
			tt.setupMock(mockService)
			handler := handlers.NewPracticeHandler(mockService, testClock, nil)

			router := chi.NewRouter()
			if tt.authenticated {
				router.Use(withUser(userID))
			}
			router.Post("/api/v1/practices", handler.CompletePractice)

			var bodyBytes []byte
			switch b := tt.body.(type) {
			case string:
				bodyBytes = []byte(b)
			default:
				var err error
				bodyBytes, err = json.Marshal(b)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/practices", bytes.NewReader(bodyBytes))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusCreated {
				var resp model.CompletePracticeResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, recordID, resp.RecordID)
			} else if tt.expectedCode != "" {
				var errResp model.APIErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
				assert.Equal(t, tt.expectedCode, errResp.Error.Code)
			}
		})
	}
}
