package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/assessment-relay/internal/assessment"
	"github.com/ashureev/assessment-relay/internal/delivery"
	"github.com/ashureev/assessment-relay/internal/domain"
	"github.com/ashureev/assessment-relay/internal/scoring"
	"github.com/ashureev/assessment-relay/internal/store"
	"github.com/go-chi/chi/v5"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Field: "email", Message: "is required"}, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

type resultsFixture struct {
	router  chi.Router
	results *store.MemoryStore
}

func newResultsFixture(t *testing.T) resultsFixture {
	t.Helper()
	classifier, err := scoring.NewClassifier(scoring.DefaultProfile())
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	results := store.NewMemory(store.DefaultTTL)
	t.Cleanup(func() { _ = results.Close() })

	r := chi.NewRouter()
	NewResultsHandler(assessment.NewService(classifier, results, nil), store.DefaultTTL).RegisterRoutes(r)
	return resultsFixture{router: r, results: results}
}

func (f resultsFixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode %q: %v", w.Body.String(), err)
	}
	return got
}

func TestSaveResultThenGetResult(t *testing.T) {
	f := newResultsFixture(t)

	answers := make([]string, 12)
	for i := range answers {
		answers[i] = `"sim"`
	}
	body := `{"email":"Ana@Example.com","guardian_name":"Ana","child_name":"Léo","child_age":5,"answers":[` +
		strings.Join(answers, ",") + `]}`

	w := f.do(http.MethodPost, "/api/save-result", body)
	if w.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	saved := decodeBody(t, w)
	if saved["success"] != true {
		t.Errorf("expected success=true, got %v", saved["success"])
	}
	result := saved["result"].(map[string]interface{})
	if result["tier"] != "moderate" || result["score"] != float64(12) {
		t.Errorf("unexpected classification %v", result)
	}
	if result["child_age"] != "5" {
		t.Errorf("numeric child_age should be kept as text, got %v", result["child_age"])
	}

	w = f.do(http.MethodGet, "/api/get-result?email=ana@example.com", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decodeBody(t, w)
	if got["email"] != "ana@example.com" || got["tier_label"] != "Moderado" {
		t.Errorf("unexpected result %v", got)
	}
	if _, ok := got["expires_at"]; !ok {
		t.Error("expected expires_at in response")
	}
}

func TestSaveResultBooleanAnswers(t *testing.T) {
	f := newResultsFixture(t)

	body := `{"email":"b@example.com","guardian_name":"B","child_age":"4","answers":[true,false,true]}`
	w := f.do(http.MethodPost, "/api/save-result", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	result := decodeBody(t, w)["result"].(map[string]interface{})
	if result["score"] != float64(2) {
		t.Errorf("expected score 2, got %v", result["score"])
	}
	if result["tier"] != "low" {
		t.Errorf("expected low tier, got %v", result["tier"])
	}
}

func TestSaveResultRejectsBadInput(t *testing.T) {
	f := newResultsFixture(t)

	cases := map[string]string{
		"malformed json":  `{"email":`,
		"missing email":   `{"guardian_name":"A","child_age":"5","score":3}`,
		"invalid email":   `{"email":"nope","guardian_name":"A","child_age":"5","score":3}`,
		"missing age":     `{"email":"a@example.com","guardian_name":"A","score":3}`,
		"nothing scored":  `{"email":"a@example.com","guardian_name":"A","child_age":"5"}`,
		"score too high":  `{"email":"a@example.com","guardian_name":"A","child_age":"5","score":999}`,
		"bad answer type": `{"email":"a@example.com","guardian_name":"A","child_age":"5","answers":[1]}`,
	}
	for name, body := range cases {
		w := f.do(http.MethodPost, "/api/save-result", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", name, w.Code, w.Body.String())
			continue
		}
		if decodeBody(t, w)["error"] == "" {
			t.Errorf("%s: expected error message", name)
		}
	}
	if f.results.Len() != 0 {
		t.Errorf("rejected submissions must not be stored, have %d", f.results.Len())
	}
}

func TestSaveResultBodyTooLarge(t *testing.T) {
	f := newResultsFixture(t)

	body := `{"email":"a@example.com","guardian_name":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	w := f.do(http.MethodPost, "/api/save-result", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestGetResultErrors(t *testing.T) {
	f := newResultsFixture(t)

	if w := f.do(http.MethodGet, "/api/get-result", ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing email: expected 400, got %d", w.Code)
	}
	if w := f.do(http.MethodGet, "/api/get-result?email=ghost@example.com", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown email: expected 404, got %d", w.Code)
	}
}

type fakeDeliverer struct {
	receipt *delivery.Receipt
	err     error
	emails  []string
}

func (f *fakeDeliverer) Deliver(_ context.Context, email string) (*delivery.Receipt, error) {
	f.emails = append(f.emails, email)
	return f.receipt, f.err
}

func postWebhook(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodPost, "/api/confirmado", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestConfirmadoDeliversOnPurchase(t *testing.T) {
	d := &fakeDeliverer{receipt: &delivery.Receipt{
		DeliveryID: "d-1",
		Email:      "buyer@example.com",
		Recipient:  "Ana",
	}}
	w := postWebhook(NewWebhookHandler(d, time.Second),
		`{"event":"PURCHASE_APPROVED","data":{"buyer":{"email":"buyer@example.com"}}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decodeBody(t, w)
	if got["delivery_id"] != "d-1" || got["recipient"] != "Ana" || got["email"] != "buyer@example.com" {
		t.Errorf("unexpected response %v", got)
	}
	if len(d.emails) != 1 || d.emails[0] != "buyer@example.com" {
		t.Errorf("unexpected deliveries %v", d.emails)
	}
}

func TestConfirmadoStatuses(t *testing.T) {
	purchase := `{"event":"PURCHASE_COMPLETE","data":{"email":"buyer@example.com"}}`

	cases := []struct {
		name      string
		body      string
		err       error
		want      int
		delivered bool
	}{
		{name: "ignored event", body: `{"event":"PURCHASE_REFUNDED","data":{"email":"x@example.com"}}`, want: http.StatusOK},
		{name: "bad json", body: `not json`, want: http.StatusBadRequest},
		{name: "no email", body: `{"event":"PURCHASE_APPROVED","data":{}}`, want: http.StatusBadRequest},
		{name: "no result", body: purchase, err: domain.ErrNotFound, want: http.StatusNotFound, delivered: true},
		{name: "send failure", body: purchase, err: errors.New("send report: boom"), want: http.StatusInternalServerError, delivered: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := &fakeDeliverer{err: tc.err}
			w := postWebhook(NewWebhookHandler(d, time.Second), tc.body)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
			if got := len(d.emails) == 1; got != tc.delivered {
				t.Errorf("delivered = %v, want %v", got, tc.delivered)
			}
			if tc.want == http.StatusInternalServerError {
				if details := decodeBody(t, w)["details"]; details != "send report: boom" {
					t.Errorf("expected details, got %v", details)
				}
			}
		})
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		want   int
		status string
	}{
		{"healthy", nil, http.StatusOK, "healthy"},
		{"degraded", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHealthHandler(fakePinger{err: tc.err}, time.Second).RegisterHealth(r)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
			if got := decodeBody(t, w)["status"]; got != tc.status {
				t.Errorf("expected status %q, got %v", tc.status, got)
			}
		})
	}
}
