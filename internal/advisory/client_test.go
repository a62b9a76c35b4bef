package advisory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func chatHandler(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(domain.AdvisoryConfig{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		Model:     "test-model",
		Timeout:   5 * time.Second,
		RateLimit: 100,
	}, nil, testLogger())
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(domain.AdvisoryConfig{}, nil, testLogger())
	assert.Error(t, err)
}

func TestClient_AssessRisk(t *testing.T) {
	content := `{
		"label": "toxic",
		"severity": "high",
		"phenotype": "Poor Metabolizer",
		"diplotype": "*4/*4",
		"gene": "CYP2D6",
		"recommendation": "Avoid codeine.",
		"cpic_level": "a",
		"llm_confidence_percent": 88
	}`
	server := httptest.NewServer(chatHandler(t, content))
	defer server.Close()

	client := newTestClient(t, server)
	risk, err := client.AssessRisk(context.Background(), "codeine", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelToxic, risk.Label)
	assert.Equal(t, domain.SeverityHigh, risk.Severity)
	assert.Equal(t, "Poor Metabolizer", risk.Phenotype)
	assert.Equal(t, "*4/*4", risk.Diplotype)
	assert.Equal(t, domain.CPICLevelA, risk.CPICLevel)
	assert.Equal(t, 88.0, risk.ConfidencePercent)
}

func TestClient_AssessRisk_Defaults(t *testing.T) {
	server := httptest.NewServer(chatHandler(t, `{"label":"made-up"}`))
	defer server.Close()

	client := newTestClient(t, server)
	risk, err := client.AssessRisk(context.Background(), "codeine", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelUnknown, risk.Label)
	assert.Equal(t, domain.SeverityUnknown, risk.Severity)
	assert.Equal(t, "*1/*1", risk.Diplotype)
	assert.Equal(t, "Insufficient data for recommendation.", risk.Recommendation)
	assert.Equal(t, domain.CPICLevelNA, risk.CPICLevel)
	assert.Equal(t, 70.0, risk.ConfidencePercent)
}

func TestClient_AssessRisk_StripsMarkdownFences(t *testing.T) {
	content := "```json\n{\"label\": \"Safe\", \"severity\": \"none\"}\n```"
	server := httptest.NewServer(chatHandler(t, content))
	defer server.Close()

	client := newTestClient(t, server)
	risk, err := client.AssessRisk(context.Background(), "ibuprofen", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelSafe, risk.Label)
	assert.Equal(t, domain.SeverityNone, risk.Severity)
}

func TestClient_AssessRisk_UpstreamError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(domain.AdvisoryConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		RateLimit:  100,
		RetryCount: 2,
	}, nil, testLogger())
	require.NoError(t, err)

	_, err = client.AssessRisk(context.Background(), "codeine", nil, nil)
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestClient_AssessRisk_MalformedJSONNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "this is not json"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient(domain.AdvisoryConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		RateLimit:  100,
		RetryCount: 3,
	}, nil, testLogger())
	require.NoError(t, err)

	_, err = client.AssessRisk(context.Background(), "codeine", nil, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_Explain_Grounded(t *testing.T) {
	content := `{"summary":"Poor metabolizers lack morphine conversion.","mechanism":"No CYP2D6 activity.","recommendation":""}`
	server := httptest.NewServer(chatHandler(t, content))
	defer server.Close()

	guideline := &domain.Guideline{
		DrugName: "CODEINE", Gene: "CYP2D6",
		PhenotypeCode: "PM", PhenotypeName: "Poor Metabolizer",
		Recommendation: "AVOID codeine.",
		Source:         "CPIC Guideline for Codeine and CYP2D6 (2023)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/codeine-and-cyp2d6/",
	}
	assessment := &domain.RiskAssessment{Phenotype: "Poor Metabolizer"}
	variants := []domain.Variant{{RSID: "rs3892097", Gene: "CYP2D6", Allele: "*4", Genotype: "1/1", Function: "Poor metabolizer"}}

	client := newTestClient(t, server)
	explanation, err := client.Explain(context.Background(), "codeine", variants, assessment, guideline)
	require.NoError(t, err)

	// Empty model recommendation falls back to the guideline text.
	assert.Equal(t, "AVOID codeine.", explanation.Recommendation)

	require.Len(t, explanation.VariantCitations, 1)
	assert.Equal(t, "rs3892097", explanation.VariantCitations[0].RSID)
	assert.Equal(t, "https://www.ncbi.nlm.nih.gov/snp/rs3892097", explanation.VariantCitations[0].DBSNPURL)

	require.Len(t, explanation.GuidelineCitations, 1)
	assert.Equal(t, "cpic_guideline", explanation.GuidelineCitations[0].Type)
	assert.Equal(t, "Poor Metabolizer", explanation.GuidelineCitations[0].Phenotype)
}

func TestClient_Explain_Ungrounded(t *testing.T) {
	content := `{"summary":"","mechanism":"Reduced enzyme activity.","recommendation":""}`
	server := httptest.NewServer(chatHandler(t, content))
	defer server.Close()

	assessment := &domain.RiskAssessment{Phenotype: "Poor Metabolizer"}

	client := newTestClient(t, server)
	explanation, err := client.Explain(context.Background(), "codeine", nil, assessment, nil)
	require.NoError(t, err)

	assert.Equal(t, "Patient exhibits Poor Metabolizer phenotype for CODEINE.", explanation.Summary)
	assert.Equal(t, "Use CPIC-aligned dosing for this phenotype with clinician oversight.", explanation.Recommendation)

	require.Len(t, explanation.GuidelineCitations, 1)
	assert.Equal(t, "cpic_reference", explanation.GuidelineCitations[0].Type)
	assert.Equal(t, "https://cpicpgx.org/guidelines/", explanation.GuidelineCitations[0].URL)
}

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripJSONFences(tt.in))
		})
	}
}
