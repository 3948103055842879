package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nft-minting-service/internal/domain/asset"
	"github.com/nft-minting-service/internal/mint_service/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) GetAssetByTokenID(ctx context.Context, tokenID string) (*asset.Asset, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.Asset), args.Error(1)
}

func (m *MockAssetService) GetAssetImage(ctx context.Context, tokenID string) ([]byte, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestAssetHandler_GetImage(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("ServesRawPNGBytes", func(t *testing.T) {
		mockService := new(MockAssetService)
		handler := NewAssetHandler(logger, mockService)

		image := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 1, 2, 3}
		mockService.On("GetAssetImage", mock.Anything, "ethereum-1a2b3c").Return(image, nil)

		router := gin.Default()
		router.GET("/assets/:tokenId/image", handler.GetImage)

		req, _ := http.NewRequest(http.MethodGet, "/assets/ethereum-1a2b3c/image", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.Equal(t, image, rr.Body.Bytes())
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockAssetService)
		handler := NewAssetHandler(logger, mockService)

		mockService.On("GetAssetImage", mock.Anything, "missing-token").
			Return(nil, asset.ErrAssetNotFound{TokenID: "missing-token"})

		router := gin.Default()
		router.GET("/assets/:tokenId/image", handler.GetImage)

		req, _ := http.NewRequest(http.MethodGet, "/assets/missing-token/image", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestAssetHandler_GetByTokenID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockAssetService)
		handler := NewAssetHandler(logger, mockService)

		mockService.On("GetAssetByTokenID", mock.Anything, "missing-token").
			Return(nil, asset.ErrAssetNotFound{TokenID: "missing-token"})

		router := gin.Default()
		router.GET("/assets/:tokenId", handler.GetByTokenID)

		req, _ := http.NewRequest(http.MethodGet, "/assets/missing-token", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

var _ service.AssetService = (*MockAssetService)(nil)
