package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"medbuscador/internal"
	"medbuscador/internal/search"
	"medbuscador/internal/storage"
)

type memRepo struct {
	records []internal.Record
}

func (m *memRepo) LoadAll() []internal.Record {
	out := make([]internal.Record, len(m.records))
	copy(out, m.records)
	return out
}
func (m *memRepo) ReplaceAll(records []internal.Record) error {
	m.records = records
	return nil
}
func (m *memRepo) AppendWeb(records []internal.Record) error {
	m.records = append(m.records, records...)
	return nil
}
func (m *memRepo) Path() string { return "mem" }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	base := &memRepo{records: []internal.Record{
		{ProductName: "IBUPROFENO 400MG", ActiveIngredient: "IBUPROFENO", Price: "S/ 9.90", SourceName: "CATALOGO", Origin: internal.OriginBase},
		{ProductName: "PANADOL FORTE", ActiveIngredient: "PARACETAMOL", Price: "S/ 6.00", SourceName: "CATALOGO", Origin: internal.OriginBase},
	}}
	extra := &memRepo{}
	svc := search.NewService(zap.NewNop(), base, extra, nil, store)

	return New(zap.NewNop(), Options{
		Service:    svc,
		Store:      store,
		Base:       base,
		Extra:      extra,
		SessionTTL: time.Hour,
	})
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(blob)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server, username, password string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"username": username, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)
	if rec := doJSON(t, srv, http.MethodGet, "/api/catalog", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/api/catalog", "bogus-token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestConsultaCannotManageUsers(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "consulta", "consulta")
	rec := doJSON(t, srv, http.MethodGet, "/api/admin/users", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestSearchBaseMode(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "consulta", "consulta")

	rec := doJSON(t, srv, http.MethodPost, "/api/search", token, map[string]string{
		"query": "ibuprofeno", "mode": "base",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Records  []internal.Record `json:"records"`
		FromBase int               `json:"fromBase"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.FromBase != 1 || len(out.Records) != 1 {
		t.Fatalf("out=%+v", out)
	}
	if out.Records[0].ProductName != "IBUPROFENO 400MG" {
		t.Fatalf("record=%+v", out.Records[0])
	}
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "consulta", "consulta")
	rec := doJSON(t, srv, http.MethodPost, "/api/search", token, map[string]string{"query": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestCatalogPagination(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "consulta", "consulta")

	rec := doJSON(t, srv, http.MethodGet, "/api/catalog?page=1&per=5&sort=price", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Records    []internal.Record `json:"records"`
		TotalPages int               `json:"totalPages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.TotalPages != 1 || len(out.Records) != 2 {
		t.Fatalf("out=%+v", out)
	}
	if out.Records[0].Price != "S/ 6.00" {
		t.Fatalf("sort not applied: %+v", out.Records[0])
	}
}

func TestAdminRowLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "admin", "admin")

	rec := doJSON(t, srv, http.MethodPost, "/api/admin/rows", token, internal.Record{
		ProductName: "aspirina 100mg", Price: "S/ 2.50",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/admin/rows/2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/admin/rows/99", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range status=%d", rec.Code)
	}
}

func TestAdminUserLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "admin", "admin")

	rec := doJSON(t, srv, http.MethodPost, "/api/admin/users", token, map[string]string{
		"username": "quimico", "password": "secreto", "role": internal.RoleConsulta,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	// Duplicate username conflicts.
	rec = doJSON(t, srv, http.MethodPost, "/api/admin/users", token, map[string]string{
		"username": "quimico", "password": "otro", "role": internal.RoleConsulta,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d", rec.Code)
	}

	login(t, srv, "quimico", "secreto")

	rec = doJSON(t, srv, http.MethodDelete, "/api/admin/users/quimico", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rec.Code)
	}

	// Admins cannot remove themselves.
	rec = doJSON(t, srv, http.MethodDelete, "/api/admin/users/admin", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self-delete status=%d", rec.Code)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "consulta", "consulta")

	if rec := doJSON(t, srv, http.MethodPost, "/api/logout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout status=%d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/api/catalog", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}
