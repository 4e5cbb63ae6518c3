//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("COMPASS_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

// Exercises the full assessment journey against a running server: onboard an
// organization, submit the baseline, and synthesize its report twice to
// confirm idempotency.
func TestAssessmentJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	email := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	password := "Secret123!"

	var registerResp struct {
		Token  string `json:"token"`
		OrgID  string `json:"org_id"`
		UserID string `json:"user_id"`
	}
	doPost(t, client, base+"/api/auth/register", "", map[string]any{
		"email":    email,
		"password": password,
		"org_name": fmt.Sprintf("Org %d", time.Now().UnixNano()),
	}, &registerResp)
	if registerResp.Token == "" || registerResp.OrgID == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &loginResp)
	token := loginResp.Token
	if token == "" {
		t.Fatalf("login did not return token")
	}

	var questionsResp struct {
		Questions []struct {
			ID       string `json:"id"`
			Category string `json:"category"`
		} `json:"questions"`
	}
	doGet(t, client, base+"/api/questions", token, &questionsResp)
	if len(questionsResp.Questions) == 0 {
		t.Fatalf("expected a seeded question catalog")
	}

	answers := map[string]any{}
	for i, q := range questionsResp.Questions {
		answers[q.ID] = i % 5
	}
	var baselineResp struct {
		SurveyID string             `json:"survey_id"`
		Scores   map[string]float64 `json:"scores"`
		Total    float64            `json:"total"`
	}
	doPost(t, client, base+"/api/surveys/baseline", token, map[string]any{
		"answers":         answers,
		"catalog_version": 1,
	}, &baselineResp)
	if baselineResp.SurveyID == "" || len(baselineResp.Scores) == 0 {
		t.Fatalf("unexpected baseline response: %+v", baselineResp)
	}

	var reportResp struct {
		ReportID string `json:"report_id"`
		PDFURL   string `json:"pdf_url"`
		Existed  bool   `json:"existed"`
	}
	reportURL := fmt.Sprintf("%s/api/surveys/%s/report", base, baselineResp.SurveyID)
	doPost(t, client, reportURL, token, nil, &reportResp)
	if reportResp.ReportID == "" || reportResp.Existed {
		t.Fatalf("unexpected first report response: %+v", reportResp)
	}
	firstID := reportResp.ReportID

	doPost(t, client, reportURL, token, nil, &reportResp)
	if !reportResp.Existed || reportResp.ReportID != firstID {
		t.Fatalf("report synthesis not idempotent: %+v", reportResp)
	}
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	do(t, client, req, url, out)
}

func doGet(t *testing.T, client *http.Client, url, token string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	do(t, client, req, url, out)
}

func do(t *testing.T, client *http.Client, req *http.Request, url string, out any) {
	t.Helper()
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", req.Method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
