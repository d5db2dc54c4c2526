package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/zerone-labs/storefront/internal/auth"
	"github.com/zerone-labs/storefront/internal/models"
	"github.com/zerone-labs/storefront/internal/session"
	"github.com/zerone-labs/storefront/internal/store"
)

type memPersister struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memPersister) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *memPersister) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

type fakeAssistant struct {
	description string
	insight     string
	review      *models.PitchReview
	err         error
}

func (f *fakeAssistant) DescribeProduct(context.Context, string, string) (string, error) {
	return f.description, f.err
}

func (f *fakeAssistant) SummarizeTrends(context.Context, []models.Order) (string, error) {
	return f.insight, f.err
}

func (f *fakeAssistant) ReviewPitch(context.Context, string, string) (*models.PitchReview, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.review, nil
}

type testEnv struct {
	e        *echo.Echo
	store    *store.Store
	sessions *session.Manager
	ai       *fakeAssistant
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.New(context.Background(), store.Deps{
		Persister: &memPersister{data: make(map[string][]byte)},
		Creds:     auth.Static{Passcode: "admin123"},
	})
	sessions := &session.Manager{Secret: []byte("test-secret"), TTL: time.Hour}
	ai := &fakeAssistant{}

	e := echo.New()
	Register(e, &Deps{
		Shop:      &ShopHTTP{Store: st},
		Admin:     &AdminHTTP{Store: st, Sessions: sessions},
		Assistant: &AssistantHTTP{Store: st, AI: ai},
		Sessions:  sessions,
	})

	return &testEnv{e: e, store: st, sessions: sessions, ai: ai}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T) string {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "admin123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}
