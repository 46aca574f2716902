package routes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	"github.com/tradedeskhq/tradedesk-backend/internal/dashboard"
	"github.com/tradedeskhq/tradedesk-backend/internal/pdf"
	product "github.com/tradedeskhq/tradedesk-backend/internal/products"
	quotation "github.com/tradedeskhq/tradedesk-backend/internal/quotations"
	user "github.com/tradedeskhq/tradedesk-backend/internal/users"
	pkgauth "github.com/tradedeskhq/tradedesk-backend/pkg/auth"
	"github.com/tradedeskhq/tradedesk-backend/pkg/config"
	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "router-test-secret",
	Issuer:            "tradedesk",
	ExpirationMinutes: 30,
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubSessions struct{}

func (stubSessions) Generate(context.Context, string) (string, error) {
	return "refresh-token", nil
}

func (stubSessions) Rotate(context.Context, string, string) (string, string, error) {
	return "new-access-id", "new-refresh-token", nil
}

func (stubSessions) Revoke(context.Context, string) error {
	return nil
}

type plainTxRunner struct {
	db *gorm.DB
}

func (r plainTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(r.db)
}

type routerFixture struct {
	handler  http.Handler
	db       *gorm.DB
	recorder *activity.Recorder
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	productRepo := product.NewRepository(conn)
	quotationRepo := quotation.NewRepository(conn)
	userRepo := user.NewRepository(conn)
	activityRepo := activity.NewRepository(conn)

	productService, err := product.NewService(productRepo)
	if err != nil {
		t.Fatalf("product service: %v", err)
	}
	quotationService, err := quotation.NewService(quotationRepo, productRepo, plainTxRunner{db: conn}, nil)
	if err != nil {
		t.Fatalf("quotation service: %v", err)
	}
	assembler, err := quotation.NewAssembler(quotationRepo, productRepo)
	if err != nil {
		t.Fatalf("assembler: %v", err)
	}
	userService, err := user.NewService(userRepo, stubSessions{}, testJWTConfig, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("user service: %v", err)
	}
	recorder, err := activity.NewRecorder(activityRepo, nil)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	dashboardService, err := dashboard.NewService(productRepo, quotationRepo, productService, recorder)
	if err != nil {
		t.Fatalf("dashboard service: %v", err)
	}
	chain, err := pdf.NewChain([]pdf.Renderer{pdf.NewCanvasRenderer()}, time.Second*5, nil, nil)
	if err != nil {
		t.Fatalf("pdf chain: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = testJWTConfig

	handler := NewRouter(Deps{
		Config:    cfg,
		Logger:    nil,
		DB:        stubPinger{},
		Redis:     nil,
		Sessions:  stubSessionChecker{},
		Users:     userService,
		Products:  productService,
		Quotes:    quotationService,
		Assembler: assembler,
		PDFChain:  chain,
		Recorder:  recorder,
		Dashboard: dashboardService,
	})
	return &routerFixture{handler: handler, db: conn, recorder: recorder}
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testJWTConfig, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Name:   "Test User",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthLive(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(t, http.MethodGet, "/health/live", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-TradeDesk-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	f := newRouterFixture(t)
	for _, path := range []string{"/api/v1/products", "/api/v1/quotations", "/api/v1/dashboard"} {
		rec := f.do(t, http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestManagerRoutesRejectRider(t *testing.T) {
	f := newRouterFixture(t)
	rider := mintToken(t, enums.UserRoleRider)

	rec := f.do(t, http.MethodGet, "/api/v1/users", rider, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/api/v1/activity", rider, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodDelete, "/api/v1/quotations/"+uuid.NewString(), rider, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("quotation delete: expected 403, got %d", rec.Code)
	}
}

func TestProductAndQuotationFlow(t *testing.T) {
	f := newRouterFixture(t)
	manager := mintToken(t, enums.UserRoleManager)

	rec := f.do(t, http.MethodPost, "/api/v1/products", manager,
		`{"code":"CBL-001","name":"2.5mm Copper Cable","quantity":40,"price":"500"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var productID string
	{
		var p models.Product
		if err := f.db.First(&p, "code = ?", "CBL-001").Error; err != nil {
			t.Fatalf("load product: %v", err)
		}
		productID = p.ID.String()
	}

	rec = f.do(t, http.MethodPost, "/api/v1/quotations", manager,
		fmt.Sprintf(`{"customer_name":"Ali Khan","items":[{"product_id":"%s","quantity":2}]}`, productID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quotation: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "QT-0001") {
		t.Fatalf("expected quotation number in response: %s", rec.Body.String())
	}

	var quotationID string
	{
		var q models.Quotation
		if err := f.db.First(&q, "number = ?", "QT-0001").Error; err != nil {
			t.Fatalf("load quotation: %v", err)
		}
		quotationID = q.ID.String()
	}

	rec = f.do(t, http.MethodGet, "/api/v1/quotations/"+quotationID+"/pdf", manager, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf export: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "quotation-Ali-Khan-") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF payload")
	}
}

func TestPublicPDFValidatesIDBeforeLookup(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/public/quotations/not-a-uuid/pdf", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/public/quotations/"+uuid.NewString()+"/pdf", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown quotation, got %d", rec.Code)
	}
}

func TestPublicPDFExportIsAudited(t *testing.T) {
	f := newRouterFixture(t)
	manager := mintToken(t, enums.UserRoleManager)

	rec := f.do(t, http.MethodPost, "/api/v1/products", manager,
		`{"code":"CBL-001","name":"Cable","quantity":5,"price":"100"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: %d", rec.Code)
	}
	var p models.Product
	if err := f.db.First(&p, "code = ?", "CBL-001").Error; err != nil {
		t.Fatalf("load product: %v", err)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/quotations", manager,
		fmt.Sprintf(`{"customer_name":"Sana","items":[{"product_id":"%s","quantity":1}]}`, p.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quotation: %d", rec.Code)
	}
	var q models.Quotation
	if err := f.db.First(&q, "number = ?", "QT-0001").Error; err != nil {
		t.Fatalf("load quotation: %v", err)
	}

	rec = f.do(t, http.MethodGet, "/api/public/quotations/"+q.ID.String()+"/pdf", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("public pdf: expected 200, got %d", rec.Code)
	}
	f.recorder.Wait()

	var logs []models.ActivityLog
	if err := f.db.Find(&logs, "action = ?", enums.ActivityActionQuotationPDF).Error; err != nil {
		t.Fatalf("load activity: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one export audit entry, got %d", len(logs))
	}
	if logs[0].ActorID != nil {
		t.Fatalf("public export must not attribute an actor")
	}
	if logs[0].EntityID == nil || *logs[0].EntityID != q.ID {
		t.Fatalf("audit entry must reference the exported quotation")
	}
}

func TestPDFPreviewReturnsHTML(t *testing.T) {
	f := newRouterFixture(t)
	manager := mintToken(t, enums.UserRoleManager)

	rec := f.do(t, http.MethodPost, "/api/v1/products", manager,
		`{"code":"CBL-001","name":"Cable","quantity":5,"price":"100"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: %d", rec.Code)
	}
	var p models.Product
	if err := f.db.First(&p, "code = ?", "CBL-001").Error; err != nil {
		t.Fatalf("load product: %v", err)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/quotations", manager,
		fmt.Sprintf(`{"customer_name":"Sana","items":[{"product_id":"%s","quantity":1}]}`, p.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quotation: %d", rec.Code)
	}
	var q models.Quotation
	if err := f.db.First(&q, "number = ?", "QT-0001").Error; err != nil {
		t.Fatalf("load quotation: %v", err)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/quotations/"+q.ID.String()+"/preview", manager, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "QT-0001") {
		t.Fatalf("preview must include the quotation number")
	}
}
