package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	diningapp "github.com/restaurant/backend/internal/application/dining"
	"github.com/restaurant/backend/internal/domain/dining"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockTableSessionService struct {
	TableSessionService
	mock.Mock
}

func (m *MockTableSessionService) StartSession(ctx context.Context, tenantID, tableID uuid.UUID, req diningapp.StartSessionRequest) (*diningapp.SessionResponse, error) {
	args := m.Called(ctx, tenantID, tableID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*diningapp.SessionResponse), args.Error(1)
}

func (m *MockTableSessionService) CreateBillSplit(ctx context.Context, tenantID, sessionID uuid.UUID, req diningapp.CreateSplitRequest) (*diningapp.SplitResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*diningapp.SplitResponse), args.Error(1)
}

func (m *MockTableSessionService) GuestQRCode(ctx context.Context, tenantID, sessionID, guestID uuid.UUID, size int) ([]byte, error) {
	args := m.Called(ctx, tenantID, sessionID, guestID, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func setupDiningHandler(s testScope) (*MockTableSessionService, http.Handler) {
	sessions := new(MockTableSessionService)
	h := NewDiningHandler(sessions, zap.NewNop())

	r := s.engine()
	r.POST("/dining/tables/:id/sessions", h.StartSession)
	r.POST("/dining/sessions/:id/splits", h.CreateSplit)
	r.GET("/dining/sessions/:id/guests/:guestId/qrcode", h.GuestQRCode)
	return sessions, r
}

func TestDiningHandler_StartSession(t *testing.T) {
	s := newTestScope()
	sessions, r := setupDiningHandler(s)
	tableID := uuid.New()

	t.Run("seats the party", func(t *testing.T) {
		sessions.On("StartSession", mock.Anything, s.tenantID, tableID, diningapp.StartSessionRequest{
			CustomerName: "Silva",
			GuestCount:   4,
			OpenedBy:     s.userID,
		}).Return(&diningapp.SessionResponse{ID: uuid.New(), TableID: tableID, Status: "active", GuestCount: 4}, nil).Once()

		w := doJSON(r, http.MethodPost, "/dining/tables/"+tableID.String()+"/sessions",
			map[string]any{"customer_name": "Silva", "guest_count": 4})

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp diningapp.SessionResponse
		decodeData(t, w, &resp)
		assert.Equal(t, 4, resp.GuestCount)
	})

	t.Run("occupied table conflicts", func(t *testing.T) {
		sessions.On("StartSession", mock.Anything, s.tenantID, tableID, mock.Anything).
			Return(nil, dining.ErrTableOccupied).Once()

		w := doJSON(r, http.MethodPost, "/dining/tables/"+tableID.String()+"/sessions", map[string]any{})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "TABLE_OCCUPIED", decodeError(t, w).Code)
	})

	t.Run("guest count is bounded", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/dining/tables/"+tableID.String()+"/sessions",
			map[string]any{"guest_count": 500})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDiningHandler_CreateSplit(t *testing.T) {
	s := newTestScope()
	sessions, r := setupDiningHandler(s)
	sessionID, guestA, guestB := uuid.New(), uuid.New(), uuid.New()

	sessions.On("CreateBillSplit", mock.Anything, s.tenantID, sessionID, mock.MatchedBy(func(req diningapp.CreateSplitRequest) bool {
		return req.Type == "custom" &&
			req.CreatedBy == s.userID &&
			req.CustomAmounts[guestA].Equal(decimal.RequireFromString("12.50")) &&
			req.CustomAmounts[guestB].Equal(decimal.RequireFromString("7.50"))
	})).Return(&diningapp.SplitResponse{ID: uuid.New(), SplitType: "custom"}, nil)

	w := doJSON(r, http.MethodPost, "/dining/sessions/"+sessionID.String()+"/splits", map[string]any{
		"type": "custom",
		"custom_amounts": map[string]string{
			guestA.String(): "12.50",
			guestB.String(): "7.50",
		},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	sessions.AssertExpectations(t)
}

func TestDiningHandler_GuestQRCode(t *testing.T) {
	s := newTestScope()
	sessions, r := setupDiningHandler(s)
	sessionID, guestID := uuid.New(), uuid.New()
	path := "/dining/sessions/" + sessionID.String() + "/guests/" + guestID.String() + "/qrcode"
	png := []byte{0x89, 'P', 'N', 'G'}

	t.Run("default size", func(t *testing.T) {
		sessions.On("GuestQRCode", mock.Anything, s.tenantID, sessionID, guestID, 256).Return(png, nil).Once()

		w := doJSON(r, http.MethodGet, path, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, png, w.Body.Bytes())
	})

	t.Run("explicit size", func(t *testing.T) {
		sessions.On("GuestQRCode", mock.Anything, s.tenantID, sessionID, guestID, 512).Return(png, nil).Once()

		w := doJSON(r, http.MethodGet, path+"?size=512", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("size out of range", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, path+"?size=4096", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "size", decodeError(t, w).Details[0].Field)
	})

	sessions.AssertExpectations(t)
}
