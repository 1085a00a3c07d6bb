package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kickzhub/storefront-backend/internal/address"
	cartsvc "github.com/kickzhub/storefront-backend/internal/cart"
	"github.com/kickzhub/storefront-backend/internal/promotions"
	"github.com/kickzhub/storefront-backend/internal/shopper"
	pkgauth "github.com/kickzhub/storefront-backend/pkg/auth"
	"github.com/kickzhub/storefront-backend/pkg/config"
	"github.com/kickzhub/storefront-backend/pkg/kv"
	"github.com/kickzhub/storefront-backend/pkg/logger"
	"github.com/kickzhub/storefront-backend/pkg/storeapi"
	"github.com/kickzhub/storefront-backend/pkg/types"
)

type stubStoreAPI struct{}

func (stubStoreAPI) ListPromotions(ctx context.Context) ([]storeapi.Promotion, error) {
	return nil, nil
}

func (stubStoreAPI) ListAddresses(ctx context.Context, userID string) ([]types.ShippingAddress, error) {
	return nil, nil
}

func testRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})

	carts, err := cartsvc.NewService(kv.NewMemoryStore(), logg, 0)
	if err != nil {
		t.Fatalf("new cart service: %v", err)
	}
	promos, err := promotions.NewService(stubStoreAPI{})
	if err != nil {
		t.Fatalf("new promotions service: %v", err)
	}
	addresses, err := address.NewService(stubStoreAPI{})
	if err != nil {
		t.Fatalf("new address service: %v", err)
	}
	watcher, err := shopper.NewWatcher(logg)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	return NewRouter(Deps{
		Config:     cfg,
		Logger:     logg,
		Watcher:    watcher,
		Carts:      carts,
		Promotions: promos,
		Addresses:  addresses,
	})
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "dev", Port: "8080"},
		JWT:  config.JWTConfig{Secret: "secret", Issuer: "storefront"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func mintToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, pkgauth.AccessTokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := testRouter(t, testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartRequiresBearerToken(t *testing.T) {
	router := testRouter(t, testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartFetchWithToken(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg.JWT, uuid.New()))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg.JWT, uuid.New()))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
