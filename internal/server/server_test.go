package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"reviewdesk/internal/app"
	"reviewdesk/internal/ratelimit"
	"reviewdesk/pkg/domain"
	"reviewdesk/pkg/store"
)

type stubReviewer struct{}

func (stubReviewer) ResponseFor(_ context.Context, rating int, _ string) string {
	return fmt.Sprintf("Thanks for the %d-star review!", rating)
}
func (stubReviewer) SummaryFor(context.Context, string, int) string { return "A summary" }
func (stubReviewer) ActionFor(context.Context, string, int, string) string {
	return "No action needed"
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.App == nil {
		a, err := app.New(app.Config{Store: store.NewMemoryStore(), Reviewer: stubReviewer{}})
		if err != nil {
			t.Fatalf("new app: %v", err)
		}
		cfg.App = a
	}
	srv := httptest.NewServer(New(cfg).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRootLiveness(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get root: %v", err)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body["message"] == "" {
		t.Fatalf("expected liveness message, got %d %+v", resp.StatusCode, body)
	}
}

func TestSubmitReviewSuccess(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := postJSON(t, srv.URL+"/api/submit-review", map[string]any{
		"rating":      5,
		"review_text": "Fantastic",
	})
	var body struct {
		AIResponse string `json:"ai_response"`
		Success    bool   `json:"success"`
	}
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusOK || !body.Success {
		t.Fatalf("expected success, got %d %+v", resp.StatusCode, body)
	}
	if body.AIResponse != "Thanks for the 5-star review!" {
		t.Fatalf("unexpected ai_response: %q", body.AIResponse)
	}

	listResp, err := http.Get(srv.URL + "/api/reviews")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list struct {
		Reviews []domain.Review `json:"reviews"`
		Total   int             `json:"total"`
	}
	decodeBody(t, listResp, &list)
	if list.Total != 1 || len(list.Reviews) != 1 {
		t.Fatalf("expected one persisted review, got %+v", list)
	}
	if list.Reviews[0].Status != domain.StatusPending {
		t.Fatalf("expected pending status, got %q", list.Reviews[0].Status)
	}
}

func TestSubmitReviewValidationFailure(t *testing.T) {
	srv := newTestServer(t, Config{})
	for _, payload := range []map[string]any{
		{"rating": 0, "review_text": "text"},
		{"rating": 6, "review_text": "text"},
		{"rating": 3, "review_text": "   "},
	} {
		resp := postJSON(t, srv.URL+"/api/submit-review", payload)
		var body struct {
			AIResponse string `json:"ai_response"`
			Success    bool   `json:"success"`
		}
		decodeBody(t, resp, &body)
		if resp.StatusCode != http.StatusOK || body.Success {
			t.Fatalf("payload %v: expected success=false with 200, got %d %+v", payload, resp.StatusCode, body)
		}
		if body.AIResponse == "" {
			t.Fatalf("payload %v: expected a descriptive message", payload)
		}
	}

	listResp, err := http.Get(srv.URL + "/api/reviews")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list struct {
		Total int `json:"total"`
	}
	decodeBody(t, listResp, &list)
	if list.Total != 0 {
		t.Fatalf("rejected submissions must not persist, total=%d", list.Total)
	}
}

func TestSubmitReviewMalformedJSON(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Post(srv.URL+"/api/submit-review", "application/json", bytes.NewReader([]byte("{oops")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitReviewMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/api/submit-review")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestGetReviewByID(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := postJSON(t, srv.URL+"/api/submit-review", map[string]any{"rating": 4, "review_text": "Nice"})
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/reviews")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list struct {
		Reviews []domain.Review `json:"reviews"`
	}
	decodeBody(t, listResp, &list)
	id := list.Reviews[0].ID

	getResp, err := http.Get(srv.URL + "/api/reviews/" + id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	var review domain.Review
	decodeBody(t, getResp, &review)
	if review.ID != id || review.UserReview != "Nice" || review.UserRating != 4 {
		t.Fatalf("unexpected record: %+v", review)
	}
}

func TestGetReviewUnknownID(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/api/reviews/1111111111.000000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body["error"] != "Review not found" {
		t.Fatalf("expected structured not-found, got %d %+v", resp.StatusCode, body)
	}
}

func TestUpdateStatus(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := postJSON(t, srv.URL+"/api/submit-review", map[string]any{"rating": 1, "review_text": "Bad"})
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/reviews")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list struct {
		Reviews []domain.Review `json:"reviews"`
	}
	decodeBody(t, listResp, &list)
	id := list.Reviews[0].ID

	updateResp, err := http.Post(srv.URL+"/api/reviews/"+id+"/status?status=resolved", "application/json", nil)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	var updated struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeBody(t, updateResp, &updated)
	if !updated.Success || updated.Message != "Status updated" {
		t.Fatalf("unexpected update response: %+v", updated)
	}

	getResp, err := http.Get(srv.URL + "/api/reviews/" + id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var review domain.Review
	decodeBody(t, getResp, &review)
	if review.Status != "resolved" {
		t.Fatalf("status not persisted, got %q", review.Status)
	}
}

func TestUpdateStatusFromJSONBody(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := postJSON(t, srv.URL+"/api/submit-review", map[string]any{"rating": 3, "review_text": "OK"})
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/reviews")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list struct {
		Reviews []domain.Review `json:"reviews"`
	}
	decodeBody(t, listResp, &list)
	id := list.Reviews[0].ID

	updateResp := postJSON(t, srv.URL+"/api/reviews/"+id+"/status", map[string]string{"status": "reviewed"})
	var updated struct {
		Success bool `json:"success"`
	}
	decodeBody(t, updateResp, &updated)
	if !updated.Success {
		t.Fatalf("expected success from body-based update")
	}
}

func TestUpdateStatusUnknownID(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Post(srv.URL+"/api/reviews/unknown/status?status=resolved", "application/json", nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body.Success || body.Error != "Review not found" {
		t.Fatalf("expected structured failure, got %d %+v", resp.StatusCode, body)
	}
}

func TestUpdateStatusRequiresValue(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Post(srv.URL+"/api/reviews/some-id/status", "application/json", nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing status, got %d", resp.StatusCode)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{})
	for _, rating := range []int{5, 5, 1} {
		resp := postJSON(t, srv.URL+"/api/submit-review", map[string]any{"rating": rating, "review_text": "x"})
		resp.Body.Close()
	}
	resp, err := http.Get(srv.URL + "/api/analytics")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	var analytics domain.Analytics
	decodeBody(t, resp, &analytics)
	if analytics.TotalReviews != 3 {
		t.Fatalf("expected total 3, got %d", analytics.TotalReviews)
	}
	if analytics.RatingDistribution["5"] != 2 || analytics.RatingDistribution["1"] != 1 || analytics.RatingDistribution["3"] != 0 {
		t.Fatalf("unexpected distribution: %+v", analytics.RatingDistribution)
	}
}

func TestCORSPreflightAllowsAnyOrigin(t *testing.T) {
	srv := newTestServer(t, Config{})
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/submit-review", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected origin echo, got %q", got)
	}
	if resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials allowed")
	}
}

func TestSubmitReviewRateLimited(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(redis.Addr(), "", "test:submit", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	srv := newTestServer(t, Config{SubmitLimiter: limiter})

	first := postJSON(t, srv.URL+"/api/submit-review", map[string]any{"rating": 5, "review_text": "x"})
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", first.StatusCode)
	}
	second := postJSON(t, srv.URL+"/api/submit-review", map[string]any{"rating": 5, "review_text": "x"})
	second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", second.StatusCode)
	}
}
