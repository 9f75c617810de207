package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/GophStore/internal/auth"
	"github.com/atinyakov/GophStore/internal/models"
	"github.com/atinyakov/GophStore/internal/repository"
	"github.com/atinyakov/GophStore/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenManager
	gw      *repository.MemoryGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	gw, err := repository.NewMemoryGateway(hasher)
	require.NoError(t, err)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	log := zap.NewNop()
	h := Handlers{
		Stores:    &StoreHandler{StoreService: service.NewStoreService(gw, hasher, tokens), Log: log},
		Products:  &ProductHandler{CatalogService: service.NewCatalogService(gw), Log: log},
		Inventory: &InventoryHandler{InventoryService: service.NewInventoryService(gw), Log: log},
		Health:    &HealthHandler{Database: gw.Name()},
	}
	return &testServer{handler: NewRouter(h, tokens, log), tokens: tokens, gw: gw}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(t *testing.T, storeID string) string {
	t.Helper()
	tok, err := s.tokens.Issue(storeID)
	require.NoError(t, err)
	return tok
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type formFile struct {
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
		hdr.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func productFields() map[string]string {
	return map[string]string{
		"name":          "Mouse Logitech",
		"defect":        "Scroll falhando",
		"rct":           "MS-010-2024",
		"originalPrice": "150",
		"finalPrice":    "90",
		"storeId":       "1",
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[HealthResponse](t, rec)
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "memory", body.Database)
	assert.True(t, body.Reachable)
	assert.False(t, body.Timestamp.IsZero())
}

func TestStores_ListHidesCredentials(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/stores", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
	stores := decode[[]models.Store](t, rec)
	require.Len(t, stores, 4)
	assert.Equal(t, "TechStore", stores[0].Name)
}

func TestStores_Auth(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"valid", `{"storeId":"1","password":"123456"}`, http.StatusOK},
		{"wrong password", `{"storeId":"1","password":"nope"}`, http.StatusUnauthorized},
		{"unknown store", `{"storeId":"42","password":"123456"}`, http.StatusUnauthorized},
		{"malformed body", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, jsonRequest(http.MethodPost, "/api/stores/auth", tc.body))
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantCode != http.StatusOK {
				return
			}
			body := decode[AuthResponse](t, rec)
			assert.True(t, body.Success)
			assert.Equal(t, "TechStore", body.Store.Name)
			storeID, err := s.tokens.Validate(body.Token)
			require.NoError(t, err)
			assert.Equal(t, "1", storeID)
		})
	}
}

func TestStores_AuthRejectsNonJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/stores/auth", strings.NewReader("storeId=1"))
	req.Header.Set("Content-Type", "text/plain")

	rec := s.do(t, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestProducts_CreateRequiresToken(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, multipartRequest(t, http.MethodPost, "/api/defective-products", productFields(), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProducts_CreateAndList(t *testing.T) {
	s := newTestServer(t)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	req := multipartRequest(t, http.MethodPost, "/api/defective-products", productFields(),
		&formFile{contentType: "image/png", data: png})
	req.Header.Set("Authorization", "Bearer "+s.token(t, "1"))

	rec := s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[ProductResponse](t, rec)
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.Product.ID)
	assert.Equal(t, "1", created.Product.StoreID)
	assert.Nil(t, created.Product.PromotionalPrice)
	assert.True(t, strings.HasPrefix(created.Product.Image, "data:image/png;base64,"))

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/defective-products/store/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	own := decode[[]models.Product](t, rec)
	assert.Len(t, own, 3)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/defective-products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Product](t, rec), 5)
}

func TestProducts_CreateUrlencodedWithoutImage(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{}
	for k, v := range productFields() {
		form.Set(k, v)
	}
	form.Set("promotionalPrice", "120")
	req := httptest.NewRequest(http.MethodPost, "/api/defective-products", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.token(t, "1"))

	rec := s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[ProductResponse](t, rec)
	require.NotNil(t, created.Product.PromotionalPrice)
	assert.Equal(t, 120.0, *created.Product.PromotionalPrice)
	assert.Empty(t, created.Product.Image)
}

func TestProducts_CreateRejections(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name      string
		token     string
		mutate    func(map[string]string)
		file      *formFile
		wantCode  int
		wantField string
	}{
		{"missing defect", "1", func(f map[string]string) { delete(f, "defect") }, nil, http.StatusBadRequest, "defect"},
		{"bad number", "1", func(f map[string]string) { f["finalPrice"] = "abc" }, nil, http.StatusBadRequest, "finalPrice"},
		{"final price zero", "1", func(f map[string]string) { f["finalPrice"] = "0" }, nil, http.StatusBadRequest, "finalPrice"},
		{"final price NaN", "1", func(f map[string]string) { f["finalPrice"] = "NaN" }, nil, http.StatusBadRequest, "finalPrice"},
		{"final price infinite", "1", func(f map[string]string) { f["finalPrice"] = "Inf" }, nil, http.StatusBadRequest, "finalPrice"},
		{"original price infinite", "1", func(f map[string]string) { f["originalPrice"] = "+Inf" }, nil, http.StatusBadRequest, "originalPrice"},
		{"promo NaN", "1", func(f map[string]string) { f["promotionalPrice"] = "nan" }, nil, http.StatusBadRequest, "promotionalPrice"},
		{"original price zero", "1", func(f map[string]string) { f["originalPrice"] = "0" }, nil, http.StatusBadRequest, "originalPrice"},
		{"promo too high", "1", func(f map[string]string) { f["promotionalPrice"] = "150" }, nil, http.StatusBadRequest, "promotionalPrice"},
		{"non image upload", "1", func(map[string]string) {}, &formFile{contentType: "application/pdf", data: []byte("%PDF-1.4")}, http.StatusBadRequest, "image"},
		{"image too large", "1", func(map[string]string) {}, &formFile{contentType: "image/jpeg", data: make([]byte, MaxImageSize+1)}, http.StatusBadRequest, "image"},
		{"other store", "2", func(map[string]string) {}, nil, http.StatusForbidden, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := productFields()
			tc.mutate(fields)
			req := multipartRequest(t, http.MethodPost, "/api/defective-products", fields, tc.file)
			req.Header.Set("Authorization", "Bearer "+s.token(t, tc.token))

			rec := s.do(t, req)
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantField != "" {
				assert.Equal(t, tc.wantField, decode[errorBody](t, rec).Field)
			}
		})
	}

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/defective-products", nil))
	assert.Len(t, decode[[]models.Product](t, rec), 4)
}

func TestProducts_UpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	own, err := s.gw.ListProductsByStore(ctx, "1")
	require.NoError(t, err)
	target := own[0]

	update := multipartRequest(t, http.MethodPut, "/api/defective-products/"+target.ID,
		map[string]string{"finalPrice": "700", "promotionalPrice": ""}, nil)
	update.Header.Set("Authorization", "Bearer "+s.token(t, "1"))
	rec := s.do(t, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[ProductResponse](t, rec).Product
	assert.Equal(t, 700.0, updated.FinalPrice)
	assert.Nil(t, updated.PromotionalPrice)
	assert.Equal(t, target.Name, updated.Name)
	assert.Equal(t, target.Image, updated.Image)

	foreign := httptest.NewRequest(http.MethodDelete, "/api/defective-products/"+target.ID, nil)
	foreign.Header.Set("Authorization", "Bearer "+s.token(t, "2"))
	assert.Equal(t, http.StatusForbidden, s.do(t, foreign).Code)

	del := httptest.NewRequest(http.MethodDelete, "/api/defective-products/"+target.ID, nil)
	del.Header.Set("Authorization", "Bearer "+s.token(t, "1"))
	rec = s.do(t, del)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[MessageResponse](t, rec).Success)

	again := httptest.NewRequest(http.MethodDelete, "/api/defective-products/"+target.ID, nil)
	again.Header.Set("Authorization", "Bearer "+s.token(t, "1"))
	assert.Equal(t, http.StatusNotFound, s.do(t, again).Code)
}

func TestInventory_Endpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/produto/4066756633288", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "002760MWTPPT44", decode[models.InventoryItem](t, rec).RCT)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/produto/rct/meu%20ovo", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0054871712234", decode[models.InventoryItem](t, rec).Barcode)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/produto/000", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, jsonRequest(http.MethodPost, "/api/adicionar-produto", `{"codigo":"4066756633288","localizacao":"A1"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stocked := decode[StockResponse](t, rec)
	assert.True(t, stocked.Success)
	assert.Equal(t, stocked.ID, stocked.Placement.ID)
	assert.Equal(t, "A1", stocked.Placement.Location)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/buscar/4066756633288", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	lookup := decode[models.StockLookup](t, rec)
	assert.Equal(t, 1, lookup.Quantity)
	require.NotNil(t, lookup.Master)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/buscar/123", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"produtoTotal":null`)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/buscar/rct/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, jsonRequest(http.MethodPut, "/api/produto/"+stocked.ID+"/localizacao", `{"localizacao":"B2"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/produtos/localizacao/B2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	moved := decode[[]models.Placement](t, rec)
	require.Len(t, moved, 1)
	assert.NotNil(t, moved[0].RelocatedAt)

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/produto/"+stocked.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/produtos", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/produtos-total", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.InventoryItem](t, rec), 8)
}

func TestInventory_ReplaceShelf(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodPost, "/api/adicionar-produto", `{"codigo":"0054871712197","localizacao":"A1"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, jsonRequest(http.MethodPost, "/api/substituir-produtos-prateleira",
		`{"produtos":["0054871712203","9999999999999"],"localizacao":"A1"}`))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "9999999999999")

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/produtos/localizacao/A1", nil))
	shelf := decode[[]models.Placement](t, rec)
	require.Len(t, shelf, 1)
	assert.Equal(t, "0054871712197", shelf[0].Barcode)

	rec = s.do(t, jsonRequest(http.MethodPost, "/api/substituir-produtos-prateleira",
		`{"produtos":["0054871712203","0054871712227"],"localizacao":"A1"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replaced := decode[ShelfResponse](t, rec)
	assert.Equal(t, 2, replaced.Added)
	require.Len(t, replaced.Placements, 2)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/produtos/localizacao/A1", nil))
	stored := decode[[]models.Placement](t, rec)
	require.Len(t, stored, 2)
	storedIDs := []string{stored[0].ID, stored[1].ID}
	for _, pl := range replaced.Placements {
		require.NotEmpty(t, pl.ID)
		assert.Contains(t, storedIDs, pl.ID)
	}

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/produto/"+replaced.Placements[0].ID, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/produtos/localizacao/A1", nil))
	assert.Len(t, decode[[]models.Placement](t, rec), 1)

	rec = s.do(t, jsonRequest(http.MethodPost, "/api/substituir-produtos-prateleira", `{"produtos":[],"localizacao":"A1"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "produtos", decode[errorBody](t, rec).Field)
}

type brokenCatalog struct{ CatalogService }

func (brokenCatalog) List(context.Context) ([]models.Product, error) {
	return nil, errors.New("connection reset")
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	h := &ProductHandler{CatalogService: brokenCatalog{}, Log: zap.NewNop()}
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/defective-products", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
