package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"campus-popcorn-api/blob"
	"campus-popcorn-api/config"
	"campus-popcorn-api/handlers"
	"campus-popcorn-api/ingest"
	"campus-popcorn-api/models"
	"campus-popcorn-api/notify"
	"campus-popcorn-api/roles"
	"campus-popcorn-api/routes"
	"campus-popcorn-api/settlement"
	"campus-popcorn-api/store"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	router *gin.Engine
	store  *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Load()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.AdminUser{}, &models.Order{}, &models.Payment{},
		&models.PaymentMessage{}, &models.PaymentStatusHistory{}, &models.Setting{},
		&models.PushSubscription{},
	))

	st := store.New(db, zerolog.Nop())
	blobs := blob.NewLocal(t.TempDir(), "http://localhost:8080/files", []byte("test-secret"))
	svc := settlement.New(st, blobs, notify.Nop{}, zerolog.Nop(), 1500)
	ing := ingest.NewService(st.Messages, zerolog.Nop())
	resolver := roles.NewResolver(config.AdminEmails, st.Users)
	h := handlers.New(svc, ing, st, blobs, zerolog.Nop())

	r := gin.New()
	routes.SetupRoutes(r, h, resolver, st.Users)
	return &testEnv{router: r, store: st}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registerUser(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (e *testEnv) placeOrder(t *testing.T, token string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/orders", token, gin.H{
		"portions": 2,
		"location": "Block C, Room 12",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Order.ID
}

func TestRegisterLoginAndPlaceOrder(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "jane@campus.rw")
	orderID := env.placeOrder(t, token)

	w := env.do(t, http.MethodGet, "/api/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3000, resp.Order.TotalPrice)
	assert.Equal(t, models.OrderPending, resp.Order.Status)
}

func TestOrdersRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/orders", "", gin.H{"portions": 1, "location": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerUser(t, "owner@campus.rw")
	other := env.registerUser(t, "other@campus.rw")
	orderID := env.placeOrder(t, owner)

	w := env.do(t, http.MethodGet, "/api/orders/"+orderID, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSmsIngestAndVerifyFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "jane@campus.rw")
	orderID := env.placeOrder(t, token)

	// Ingest a matching MoMo SMS
	sms := "*161*TxId:73061228899*R*You have received 3,000 RWF from Jane K Doe (*********456) on your mobile money account at 2024-01-08 14:22:05."
	w := env.do(t, http.MethodPost, "/api/sms", "", gin.H{"message": sms})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"saved"`)

	// Junk messages are acknowledged and ignored
	w = env.do(t, http.MethodPost, "/api/sms", "", gin.H{"message": "is my order ready?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored"`)

	// Verify against the ingested record
	w = env.do(t, http.MethodPost, "/api/orders/"+orderID+"/verify", token, gin.H{
		"txid":         "73061228899",
		"account_name": "Jane Doe",
		"phone_number": "250788123456",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Matched bool         `json:"matched"`
		Order   models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Matched)
	assert.Equal(t, models.OrderConfirmed, resp.Order.Status)
	assert.Equal(t, models.PaymentConfirmed, resp.Order.PaymentStatus)
}

func TestVerifyNoMatchReturns422(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "jane@campus.rw")
	orderID := env.placeOrder(t, token)

	w := env.do(t, http.MethodPost, "/api/orders/"+orderID+"/verify", token, gin.H{
		"txid":         "000000",
		"account_name": "Jane Doe",
		"phone_number": "250788123456",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestProofUploadForcesPendingReview(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "jane@campus.rw")
	orderID := env.placeOrder(t, token)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="proof"; filename="receipt.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("customer_name", "Jane Doe"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID+"/proof", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.PaymentPending, resp.Order.PaymentStatus)
	require.NotNil(t, resp.Order.PaymentProofURL)
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "student@campus.rw")

	w := env.do(t, http.MethodGet, "/api/admin/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminPaymentStatusOverride(t *testing.T) {
	env := newTestEnv(t)
	client := env.registerUser(t, "jane@campus.rw")
	orderID := env.placeOrder(t, client)

	adminToken := env.registerUser(t, "boss@campus.rw")
	// Grant admin through the admins table — one of the role sources
	admin, err := env.store.Users.ByEmail(context.Background(), "boss@campus.rw")
	require.NoError(t, err)
	require.NoError(t, env.store.Users.SaveAdminRow(context.Background(), admin.ID))

	w := env.do(t, http.MethodPut, "/api/admin/orders/"+orderID+"/payment-status", adminToken, gin.H{
		"payment_status": "paid",
		"note":           "reviewed proof manually",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Unknown order id yields 404
	w = env.do(t, http.MethodPut, "/api/admin/orders/"+uuid.NewString()+"/payment-status", adminToken, gin.H{
		"payment_status": "paid",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// "confirmed" is not part of the override vocabulary
	w = env.do(t, http.MethodPut, "/api/admin/orders/"+orderID+"/payment-status", adminToken, gin.H{
		"payment_status": "confirmed",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
