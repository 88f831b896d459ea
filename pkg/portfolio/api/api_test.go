package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/media"
	"github.com/tendant/simple-portfolio/pkg/portfolio/repo/memory"
	memorystorage "github.com/tendant/simple-portfolio/pkg/portfolio/storage/memory"
)

const (
	testPassword = "letmein"
	testPreset   = "portfolio-preset"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

type testServer struct {
	router  chi.Router
	service portfolio.Service
	store   *memorystorage.Backend
}

func setupAPITest(t *testing.T) *testServer {
	t.Helper()
	svc, err := portfolio.New(portfolio.WithRepository(memory.New()))
	require.NoError(t, err)

	auth, err := NewAuth(AuthConfig{PasswordSHA256: HashPassword(testPassword), Secret: "test-secret"})
	require.NoError(t, err)

	store := memorystorage.New("http://localhost/media")
	uploader := media.NewUploader(store, media.Config{Preset: testPreset, MaxBytes: 1024}, nil)

	r := chi.NewRouter()
	r.Mount("/api/v1", NewAPIRouter(RouterConfig{
		Service:        svc,
		Auth:           auth,
		Uploader:       uploader,
		MaxUploadBytes: 1024,
	}))
	r.Mount("/media", NewMediaHandler(store).Routes())
	return &testServer{router: r, service: svc, store: store}
}

func (s *testServer) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/admin/login", LoginRequest{Password: testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestLogin(t *testing.T) {
	s := setupAPITest(t)

	w := s.do(t, http.MethodPost, "/api/v1/admin/login", LoginRequest{Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, KindUnauthorized, decodeError(t, w).Kind)

	w = s.do(t, http.MethodPost, "/api/v1/admin/login", LoginRequest{Password: testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), SessionCookie+"=")
}

func TestSessionCookieAuthorizesWrites(t *testing.T) {
	s := setupAPITest(t)
	token := s.login(t)

	data, err := json.Marshal(portfolio.FAQItem{QuestionEN: "q", IsActive: true})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/collections/faq_items", bytes.NewReader(data))
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := setupAPITest(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/v1/admin/logout", nil, token)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestWritesRequireSession(t *testing.T) {
	s := setupAPITest(t)
	id := uuid.New().String()

	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/v1/collections/faq_items"},
		{http.MethodPut, "/api/v1/collections/faq_items/" + id},
		{http.MethodDelete, "/api/v1/collections/faq_items/" + id},
		{http.MethodPut, "/api/v1/settings"},
		{http.MethodPost, "/api/v1/uploads"},
		{http.MethodPost, "/api/v1/admin/logout"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := s.do(t, tt.method, tt.target, map[string]string{}, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	w := s.do(t, http.MethodPost, "/api/v1/collections/faq_items", map[string]string{}, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCollectionCRUD(t *testing.T) {
	s := setupAPITest(t)
	token := s.login(t)

	w := s.do(t, http.MethodGet, "/api/v1/collections/clients", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	client := portfolio.Client{ID: uuid.New(), Name: "Ana", Subscribers: "10K", IsActive: true}
	w = s.do(t, http.MethodPost, "/api/v1/collections/clients", client, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created portfolio.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.NotEqual(t, client.ID, created.ID, "client-supplied id is ignored")
	assert.Equal(t, "Ana", created.Name)

	created.Name = "Ana Clara"
	w = s.do(t, http.MethodPut, "/api/v1/collections/clients/"+created.ID.String(), created, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/collections/clients/"+created.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched portfolio.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "Ana Clara", fetched.Name)

	w = s.do(t, http.MethodDelete, "/api/v1/collections/clients/"+created.ID.String(), nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/collections/clients/"+created.ID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, portfolio.KindNotFound, decodeError(t, w).Kind)
}

func TestListQuery(t *testing.T) {
	s := setupAPITest(t)
	token := s.login(t)
	for i, active := range []bool{true, false, true} {
		w := s.do(t, http.MethodPost, "/api/v1/collections/faq_items",
			portfolio.FAQItem{QuestionEN: string(rune('a' + i)), OrderIndex: i, IsActive: active}, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var rows []portfolio.FAQItem
	w := s.do(t, http.MethodGet, "/api/v1/collections/faq_items?active=true&order=desc", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].QuestionEN)
	assert.Equal(t, "a", rows[1].QuestionEN)

	w = s.do(t, http.MethodGet, "/api/v1/collections/faq_items?limit=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)
}

func TestErrorStatuses(t *testing.T) {
	s := setupAPITest(t)
	token := s.login(t)

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
		wantKind   portfolio.Kind
	}{
		{"unknown collection", http.MethodGet, "/api/v1/collections/posts", nil, http.StatusUnprocessableEntity, portfolio.KindInvalid},
		{"bad id", http.MethodGet, "/api/v1/collections/clients/nope", nil, http.StatusBadRequest, KindBadRequest},
		{"missing row", http.MethodGet, "/api/v1/collections/clients/" + uuid.NewString(), nil, http.StatusNotFound, portfolio.KindNotFound},
		{"bad order", http.MethodGet, "/api/v1/collections/clients?order=sideways", nil, http.StatusBadRequest, KindBadRequest},
		{"bad limit", http.MethodGet, "/api/v1/collections/clients?limit=-1", nil, http.StatusBadRequest, KindBadRequest},
		{"unknown field", http.MethodPost, "/api/v1/collections/clients", map[string]any{"colour": "red"}, http.StatusBadRequest, KindBadRequest},
		{"invalid record", http.MethodPost, "/api/v1/collections/clients", map[string]any{"photo_url": "not a url"}, http.StatusUnprocessableEntity, portfolio.KindInvalid},
		{"update missing", http.MethodPut, "/api/v1/collections/clients/" + uuid.NewString(), map[string]any{"name": "x"}, http.StatusNotFound, portfolio.KindNotFound},
		{"no settings yet", http.MethodGet, "/api/v1/settings", nil, http.StatusNotFound, portfolio.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.target, tt.body, token)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantKind, decodeError(t, w).Kind)
		})
	}
}

func TestSecondSettingsRowConflicts(t *testing.T) {
	s := setupAPITest(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/v1/collections/portfolio_settings", portfolio.DefaultSettings(), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/collections/portfolio_settings", portfolio.DefaultSettings(), token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, portfolio.KindConflict, decodeError(t, w).Kind)
}

func TestSettingsUpsert(t *testing.T) {
	s := setupAPITest(t)
	token := s.login(t)

	settings := portfolio.DefaultSettings()
	settings.Email = "me@example.com"
	w := s.do(t, http.MethodPut, "/api/v1/settings", settings, token)
	require.Equal(t, http.StatusOK, w.Code)
	var first portfolio.Settings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	settings.Email = "other@example.com"
	w = s.do(t, http.MethodPut, "/api/v1/settings", settings, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/settings", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got portfolio.Settings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "other@example.com", got.Email)
}

func uploadRequest(t *testing.T, preset string, data []byte, token string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("upload_preset", preset))
	part, err := mw.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadAndServe(t *testing.T) {
	s := setupAPITest(t)
	token := s.login(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, uploadRequest(t, testPreset, pngBytes, token))
	require.Equal(t, http.StatusCreated, w.Code)

	var result media.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "image/png", result.MimeType)
	assert.True(t, strings.HasPrefix(result.SecureURL, "http://localhost/media/images/"))

	req := httptest.NewRequest(http.MethodGet, "/media/"+result.Key, nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, w.Body.Bytes())

	req = httptest.NewRequest(http.MethodGet, "/media/images/zz/missing.png", nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejections(t *testing.T) {
	s := setupAPITest(t)
	token := s.login(t)

	tests := []struct {
		name   string
		preset string
		data   []byte
	}{
		{"wrong preset", "guess", pngBytes},
		{"gif", testPreset, []byte("GIF89a" + strings.Repeat("\x00", 32))},
		{"too large", testPreset, append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 2048)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, uploadRequest(t, tt.preset, tt.data, token))
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, portfolio.KindInvalid, decodeError(t, w).Kind)
		})
	}
}

func TestPing(t *testing.T) {
	s := setupAPITest(t)
	w := s.do(t, http.MethodGet, "/api/v1/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewAuthValidation(t *testing.T) {
	_, err := NewAuth(AuthConfig{PasswordSHA256: HashPassword("x")})
	assert.Error(t, err)

	_, err = NewAuth(AuthConfig{PasswordSHA256: "abc", Secret: "s"})
	assert.Error(t, err)

	auth, err := NewAuth(AuthConfig{PasswordSHA256: strings.ToUpper(HashPassword("x")), Secret: "s"})
	require.NoError(t, err)
	assert.True(t, auth.checkPassword("x"))
	assert.False(t, auth.checkPassword("y"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(portfolio.KindNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(portfolio.KindConflict))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(portfolio.KindInvalid))
	assert.Equal(t, http.StatusBadGateway, StatusFor(portfolio.KindTransport))
	assert.Equal(t, http.StatusBadRequest, StatusFor(KindBadRequest))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(portfolio.KindUnknown))
}

func TestRouterWithoutAuth(t *testing.T) {
	svc, err := portfolio.New(portfolio.WithRepository(memory.New()))
	require.NoError(t, err)
	s := &testServer{router: NewAPIRouter(RouterConfig{Service: svc})}

	w := s.do(t, http.MethodPost, "/admin/login", LoginRequest{Password: testPassword}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/collections/faq_items", portfolio.FAQItem{}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/collections/faq_items", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
