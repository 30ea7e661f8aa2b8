package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/kmv-events/gallery-backend/internal/domain"
	"github.com/kmv-events/gallery-backend/internal/models"
	"github.com/kmv-events/gallery-backend/internal/ports"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const testToken = "secret"

type memRepo struct {
	mu      sync.Mutex
	photos  []models.Photo
	pingErr error
}

func (m *memRepo) Insert(_ context.Context, p *models.Photo) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = bson.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.photos = append(m.photos, *p)
	return p, nil
}

func (m *memRepo) List(context.Context) ([]models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Photo, len(m.photos))
	copy(out, m.photos)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) GetByID(_ context.Context, id bson.ObjectID) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.photos {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) DeleteByID(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.photos {
		if p.ID == id {
			m.photos = append(m.photos[:i], m.photos[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memRepo) Ping(context.Context) error { return m.pingErr }

type memAssets struct {
	mu          sync.Mutex
	uploadCalls int
}

func (m *memAssets) Upload(_ context.Context, _, fileName, _ string) (*ports.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploadCalls++
	return &ports.UploadResult{
		URL:     "https://assets.test/kmv-gallery/kmv_gallery/" + fileName,
		AssetID: "kmv_gallery/" + fileName,
	}, nil
}

func (m *memAssets) Delete(context.Context, string) error { return nil }

func newTestRouter(t *testing.T) (chi.Router, *memRepo, *memAssets, *domain.GalleryService) {
	t.Helper()

	stage, err := domain.NewStageArea(t.TempDir())
	if err != nil {
		t.Fatalf("stage area: %v", err)
	}

	repo := &memRepo{}
	assets := &memAssets{}
	zl := logger.NewZapLogger(zap.NewNop().Sugar())
	svc := domain.NewGalleryService(repo, assets, stage, zl)

	r := chi.NewRouter()
	RegisterRoutes(r, NewGalleryHandler(svc, zl, true), testToken)
	return r, repo, assets, svc
}

func do(t *testing.T, r http.Handler, method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func imageForm(t *testing.T, filename, contentType string, payload []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}

	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	_ = w.Close()

	return &buf, w.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	r, repo, assets, _ := newTestRouter(t)

	body, ct := imageForm(t, "party.jpg", "image/jpeg", []byte("fake image bytes"), map[string]string{
		"caption":  "Opening night",
		"uploader": "Nima",
	})

	rec := do(t, r, http.MethodPost, "/api/gallery/upload", body, ct, "Bearer "+testToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool         `json:"success"`
		Photo   models.Photo `json:"photo"`
	}
	decode(t, rec, &resp)

	if !resp.Success || resp.Photo.AssetURL == "" || resp.Photo.AssetID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Photo.Caption != "Opening night" {
		t.Fatalf("caption = %q", resp.Photo.Caption)
	}
	if assets.uploadCalls != 1 {
		t.Fatalf("asset push calls = %d", assets.uploadCalls)
	}

	photos, _ := repo.List(context.Background())
	if len(photos) != 1 {
		t.Fatalf("records = %d, want 1", len(photos))
	}
}

func TestUploadEndpointRequiresAdmin(t *testing.T) {
	r, _, assets, _ := newTestRouter(t)

	body, ct := imageForm(t, "party.jpg", "image/jpeg", []byte("x"), nil)
	rec := do(t, r, http.MethodPost, "/api/gallery/upload", body, ct, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if assets.uploadCalls != 0 {
		t.Fatalf("pipeline ran without credentials")
	}
}

func TestUploadEndpointRejectsOversizeBeforePush(t *testing.T) {
	r, _, assets, _ := newTestRouter(t)

	body, ct := imageForm(t, "party.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 11<<20), nil)
	rec := do(t, r, http.MethodPost, "/api/gallery/upload", body, ct, testToken)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if assets.uploadCalls != 0 {
		t.Fatalf("asset store was called for an oversize upload")
	}
}

func TestUploadEndpointRejectsMissingFile(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("caption", "no file here")
	_ = w.Close()

	rec := do(t, r, http.MethodPost, "/api/gallery/upload", &buf, w.FormDataContentType(), testToken)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListNewestFirst(t *testing.T) {
	r, repo, _, _ := newTestRouter(t)

	base := time.Now().UTC()
	for i := 1; i <= 3; i++ {
		_, _ = repo.Insert(context.Background(), &models.Photo{
			AssetURL:  "https://assets.test/p.jpg",
			Caption:   fmt.Sprintf("t%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	rec := do(t, r, http.MethodGet, "/api/gallery", nil, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Photos []models.Photo `json:"photos"`
	}
	decode(t, rec, &resp)

	want := []string{"t3", "t2", "t1"}
	if len(resp.Photos) != len(want) {
		t.Fatalf("photos = %d, want %d", len(resp.Photos), len(want))
	}
	for i, w := range want {
		if resp.Photos[i].Caption != w {
			t.Fatalf("order[%d] = %q, want %q", i, resp.Photos[i].Caption, w)
		}
	}
}

func TestGetByID(t *testing.T) {
	r, repo, _, _ := newTestRouter(t)

	seeded, _ := repo.Insert(context.Background(), &models.Photo{
		AssetURL: "https://assets.test/p.jpg",
		Caption:  "seed",
	})

	rec := do(t, r, http.MethodGet, "/api/gallery/"+seeded.ID.Hex(), nil, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/api/gallery/"+bson.NewObjectID().Hex(), nil, "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status = %d, want 404", rec.Code)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	r, repo, _, _ := newTestRouter(t)

	seeded, _ := repo.Insert(context.Background(), &models.Photo{
		AssetURL: "https://assets.test/p.jpg",
		AssetID:  "kmv_gallery/p.jpg",
	})

	rec := do(t, r, http.MethodDelete, "/api/gallery/"+seeded.ID.Hex(), nil, "", testToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("first delete: status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID       string `json:"id"`
		PublicID string `json:"publicId"`
	}
	decode(t, rec, &resp)
	if resp.ID != seeded.ID.Hex() || resp.PublicID != seeded.AssetID {
		t.Fatalf("delete echo mismatch: %+v", resp)
	}

	rec = do(t, r, http.MethodDelete, "/api/gallery/"+seeded.ID.Hex(), nil, "", testToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestDeleteEndpointRejectsBadIDs(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	for _, id := range []string{"undefined", "null", "not-a-hex-id"} {
		rec := do(t, r, http.MethodDelete, "/api/gallery/"+id, nil, "", testToken)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("id %q: status = %d, want 400", id, rec.Code)
		}
	}
}

func TestCreateByURLEndpoint(t *testing.T) {
	r, repo, _, _ := newTestRouter(t)

	payload, _ := json.Marshal(map[string]string{
		"photoUrl": "https://elsewhere.example/pic.jpg",
		"caption":  "external",
	})
	rec := do(t, r, http.MethodPost, "/api/gallery", bytes.NewReader(payload), "application/json", testToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	photos, _ := repo.List(context.Background())
	if len(photos) != 1 || photos[0].Uploader != domain.DefaultUploader {
		t.Fatalf("unexpected records: %+v", photos)
	}

	rec = do(t, r, http.MethodPost, "/api/gallery", bytes.NewReader([]byte(`{"caption":"no url"}`)), "application/json", testToken)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing url: status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, repo, _, _ := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/health", nil, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	repo.pingErr = fmt.Errorf("store unreachable")
	rec = do(t, r, http.MethodGet, "/health", nil, "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("down store: status = %d, want 503", rec.Code)
	}
}
