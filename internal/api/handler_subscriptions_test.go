package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSubscriptionRouter() *gin.Engine {
	r := gin.Default()
	handler := NewHandler(nil, nil, nil)
	r.PUT("/api/subscriptions", handler.PutSubscription)
	return r
}

func TestPutSubscription(t *testing.T) {
	router := setupSubscriptionRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}

func TestSubscriptionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	v := env.createVehicle(t, "Van 1")
	a := env.createWorker(t, `{"name":"A","vehicleId":`+itoa(v)+`}`)
	b := env.createWorker(t, `{"name":"B","vehicleId":`+itoa(v)+`}`)

	endpoint := "https://push.example.com/send/abc?token=a%2Bb"
	body := `{"endpoint":"` + endpoint + `","p256dh":"key","auth":"secret","subscribed_workers":[` + itoa(b) + `,` + itoa(a) + `]}`
	w := env.do(t, http.MethodPut, "/api/subscriptions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	get := func() *httptest.ResponseRecorder {
		return env.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "")
	}
	w = get()
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribed_workers":[`+itoa(a)+`,`+itoa(b)+`]}`, w.Body.String())

	// Replacing narrows the mapping.
	body = `{"endpoint":"` + endpoint + `","p256dh":"key2","auth":"secret","subscribed_workers":[` + itoa(b) + `]}`
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPut, "/api/subscriptions", body).Code)
	assert.JSONEq(t, `{"subscribed_workers":[`+itoa(b)+`]}`, get().Body.String())

	w = env.do(t, http.MethodPut, "/api/subscriptions",
		`{"endpoint":"`+endpoint+`","p256dh":"key","auth":"secret","subscribed_workers":[999]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/subscriptions", `{"endpoint":"`+endpoint+`"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, get().Code)

	var mappings int64
	require.NoError(t, env.store.DB().Table("subscription_worker_mapping").Count(&mappings).Error)
	assert.Zero(t, mappings)
}

func TestGetSubscription_RequiresEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/subscriptions?other="+url.QueryEscape("x"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
