package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/homeplate/homeplate-golang/internal/auth"
	"github.com/homeplate/homeplate-golang/internal/config"
	"github.com/homeplate/homeplate-golang/internal/errs"
	"github.com/homeplate/homeplate-golang/internal/models"
	"github.com/homeplate/homeplate-golang/internal/notify"
	"github.com/homeplate/homeplate-golang/internal/orders"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.Init("test-secret")
}

func newDBHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &Handlers{
		DB:  db,
		Cfg: &config.Config{DefaultCommissionRate: 0.10},
	}, mock
}

// testContext builds a gin context carrying an authenticated user, the way
// AuthMiddleware would have left it.
func testContext(t *testing.T, method, target, body string, userID int64, role string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	if userID != 0 {
		c.Set("userID", userID)
		c.Set("userRole", role)
	}
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", w.Body.String(), err)
	}
	return body
}

// --- Register ---

func TestRegister_AppliesDefaults(t *testing.T) {
	h, mock := newDBHandlers(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("amina@example.com", sqlmock.AnyArg(), "Amina Khan",
			models.RoleUser, false, 0.10, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, w := testContext(t, http.MethodPost, "/v1/register",
		`{"fullName":"Amina Khan","email":"Amina@Example.com","password":"supersecret"}`, 0, "")
	h.Register(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["token"] == nil || body["token"] == "" {
		t.Error("Response should include a token")
	}

	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("Response should include the user, got %v", body)
	}
	if user["role"] != models.RoleUser {
		t.Errorf("New accounts must default to role %q, got %v", models.RoleUser, user["role"])
	}
	if user["banned"] != false {
		t.Errorf("New accounts must not be banned, got %v", user["banned"])
	}
	if user["commissionRate"] != 0.10 {
		t.Errorf("New accounts must get the default rate 0.10, got %v", user["commissionRate"])
	}
	if user["email"] != "amina@example.com" {
		t.Errorf("Email should be normalized to lowercase, got %v", user["email"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet DB expectations: %v", err)
	}
}

func TestRegister_RejectsInvalidBody(t *testing.T) {
	h, _ := newDBHandlers(t)

	// Missing email.
	c, w := testContext(t, http.MethodPost, "/v1/register",
		`{"fullName":"Amina Khan","password":"supersecret"}`, 0, "")
	h.Register(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] == nil {
		t.Error("Error response should use the {error} envelope")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, mock := newDBHandlers(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062})

	c, w := testContext(t, http.MethodPost, "/v1/register",
		`{"fullName":"Amina Khan","email":"amina@example.com","password":"supersecret"}`, 0, "")
	h.Register(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for duplicate email, got %d", w.Code)
	}
}

// --- GetMe ---

func TestGetMe_DeletedAccountIs404(t *testing.T) {
	h, mock := newDBHandlers(t)

	mock.ExpectQuery("SELECT id, email, full_name").
		WillReturnError(sql.ErrNoRows)

	c, w := testContext(t, http.MethodGet, "/v1/profile/me", "", 42, models.RoleUser)
	h.GetMe(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for a deleted account, got %d", w.Code)
	}
}

// --- UpdateOrderStatus ---

// stubOrderStore serves one in-memory order with conditional-update
// semantics, enough to drive the handler through the service.
type stubOrderStore struct {
	order *models.Order
}

func (s *stubOrderStore) CreatePending(ctx context.Context, o *models.Order) error {
	return errs.NotFoundf("product %d not found", o.ProductID)
}

func (s *stubOrderStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, errs.NotFoundf("order %d not found", id)
	}
	clone := *s.order
	return &clone, nil
}

func (s *stubOrderStore) AdvanceStatus(ctx context.Context, id int64, from, to string, sellerLoc *models.GeoPoint) (bool, error) {
	if s.order == nil || s.order.ID != id || s.order.Status != from {
		return false, nil
	}
	s.order.Status = to
	if sellerLoc != nil {
		loc := *sellerLoc
		s.order.SellerLocation = &loc
	}
	return true, nil
}

type nopNotifier struct{}

func (nopNotifier) Enqueue(p notify.Payload) bool { return true }

func newOrderHandlers(order *models.Order) *Handlers {
	svc := orders.NewService(&stubOrderStore{order: order}, nopNotifier{}, zap.NewNop())
	return &Handlers{Orders: svc}
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:            1,
		BuyerID:       3,
		SellerID:      7,
		ProductID:     10,
		Status:        models.OrderPending,
		BuyerLocation: models.GeoPoint{Latitude: 24.86, Longitude: 67.01},
	}
}

func TestUpdateOrderStatus_MissingFields(t *testing.T) {
	h := newOrderHandlers(pendingOrder())

	c, w := testContext(t, http.MethodPost, "/v1/orders/update-status", `{}`, 7, models.RoleUser)
	h.UpdateOrderStatus(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] == nil {
		t.Error("Error response should use the {error} envelope")
	}
}

func TestUpdateOrderStatus_UnknownStatusIs400(t *testing.T) {
	h := newOrderHandlers(pendingOrder())

	c, w := testContext(t, http.MethodPost, "/v1/orders/update-status",
		`{"orderId":1,"status":"cancelled"}`, 7, models.RoleUser)
	h.UpdateOrderStatus(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown status, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateOrderStatus_DoubleConfirmIs409(t *testing.T) {
	order := pendingOrder()
	order.Status = models.OrderConfirmed
	h := newOrderHandlers(order)

	c, w := testContext(t, http.MethodPost, "/v1/orders/update-status",
		`{"orderId":1,"status":"confirmed","sellerLocation":{"latitude":24.9,"longitude":67.03}}`,
		7, models.RoleUser)
	h.UpdateOrderStatus(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for a repeated confirm, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateOrderStatus_SellerConfirms(t *testing.T) {
	h := newOrderHandlers(pendingOrder())

	c, w := testContext(t, http.MethodPost, "/v1/orders/update-status",
		`{"orderId":1,"status":"confirmed","sellerLocation":{"latitude":24.9,"longitude":67.03}}`,
		7, models.RoleUser)
	h.UpdateOrderStatus(c)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("Expected success envelope, got %v", body)
	}
	order, ok := body["order"].(map[string]any)
	if !ok {
		t.Fatalf("Response should include the order, got %v", body)
	}
	if order["status"] != models.OrderConfirmed {
		t.Errorf("Expected confirmed, got %v", order["status"])
	}
}
