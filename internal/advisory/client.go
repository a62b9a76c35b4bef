// Package advisory implements the optional advisory-model collaborator: an
// OpenAI-compatible chat client that proposes a clinical decision and a
// narrative explanation, wrapped with a circuit breaker and an optional
// redis narrative cache. Every caller carries a deterministic fallback;
// nothing in this package is on the critical path.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pharmaguard-server/internal/domain"
)

const (
	defaultModel          = "gpt-4.1-mini"
	defaultBaseURL        = "https://api.openai.com"
	systemPrompt          = "Return only valid JSON with no markdown."
	maxVariantContext     = 25
	defaultConfidencePct  = 70.0
	defaultRecommendation = "Insufficient data for recommendation."
)

// Client calls an OpenAI-compatible chat completions endpoint. It implements
// domain.Advisor.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	retryCount int
	store      domain.GuidelineStore
	log        *logrus.Logger
}

// NewClient creates an advisory client. store may be nil; it is only used to
// ground prompts in the guideline corpus.
func NewClient(config domain.AdvisoryConfig, store domain.GuidelineStore, logger *logrus.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("advisory API key is required")
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	limit := config.RateLimit
	if limit <= 0 {
		limit = 1
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: config.Timeout},
		rateLimit:  rate.NewLimiter(rate.Limit(limit), 1),
		retryCount: config.RetryCount,
		store:      store,
		log:        logger,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// variantContext is the trimmed variant view sent to the model.
type variantContext struct {
	RSID      string   `json:"rsid"`
	Gene      string   `json:"gene"`
	Allele    string   `json:"allele"`
	Genotype  string   `json:"genotype"`
	Function  string   `json:"function"`
	Quality   *float64 `json:"quality_score"`
	ReadDepth *int     `json:"read_depth"`
}

// guidelineOption is one corpus entry offered to the model as grounding.
type guidelineOption struct {
	PhenotypeCode  string `json:"phenotype_code"`
	PhenotypeName  string `json:"phenotype_name"`
	Summary        string `json:"summary"`
	Mechanism      string `json:"mechanism"`
	Recommendation string `json:"recommendation"`
	Source         string `json:"source"`
	GuidelineURL   string `json:"guideline_url"`
	Gene           string `json:"gene"`
}

// AssessRisk asks the model for a structured clinical decision for one drug.
func (c *Client) AssessRisk(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment) (*domain.AdvisoryRisk, error) {
	variantJSON, err := json.Marshal(buildVariantContext(variants))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variant context: %w", err)
	}
	optionJSON, err := json.Marshal(c.guidelineOptions(ctx, drug))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal guideline options: %w", err)
	}

	prompt := fmt.Sprintf(`You are a pharmacogenomics clinical decision model.
Task: infer risk for DRUG=%s from the provided VCF variants and CPIC options.

Allowed risk labels: Safe, Adjust Dosage, Toxic, Ineffective, Unknown.
Allowed cpic_level: A, B, C, D, N/A.

Variants (JSON):
%s

CPIC options for this drug (JSON):
%s

Return ONLY valid JSON with exactly these keys:
{
  "label": "...",
  "severity": "none|low|moderate|high|critical|unknown",
  "phenotype": "...",
  "diplotype": "...",
  "gene": "...",
  "recommendation": "...",
  "cpic_level": "...",
  "llm_confidence_percent": 0-100
}

Constraints:
- Prefer CPIC-grounded reasoning.
- If evidence is insufficient, use label="Unknown" and conservative recommendation.`,
		domain.NormalizeDrug(drug), variantJSON, optionJSON)

	var raw struct {
		Label             string      `json:"label"`
		Severity          string      `json:"severity"`
		Phenotype         string      `json:"phenotype"`
		Diplotype         string      `json:"diplotype"`
		Gene              string      `json:"gene"`
		Recommendation    string      `json:"recommendation"`
		CPICLevel         string      `json:"cpic_level"`
		ConfidencePercent json.Number `json:"llm_confidence_percent"`
	}
	if err := c.completeJSON(ctx, prompt, &raw); err != nil {
		return nil, err
	}

	risk := &domain.AdvisoryRisk{
		Label:             domain.NormalizeRiskLabel(raw.Label),
		Severity:          domain.NormalizeSeverity(raw.Severity),
		Phenotype:         valueOr(raw.Phenotype, "Unknown"),
		Diplotype:         valueOr(raw.Diplotype, "*1/*1"),
		Gene:              valueOr(raw.Gene, "Unknown"),
		Recommendation:    valueOr(raw.Recommendation, defaultRecommendation),
		CPICLevel:         domain.NormalizeCPICLevel(raw.CPICLevel),
		ConfidencePercent: defaultConfidencePct,
	}
	if pct, perr := raw.ConfidencePercent.Float64(); perr == nil {
		risk.ConfidencePercent = pct
	}
	return risk, nil
}

// Explain asks the model for a narrative explanation, grounded in the
// guideline entry when one was found.
func (c *Client) Explain(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment, guideline *domain.Guideline) (*domain.Explanation, error) {
	var prompt string
	if guideline != nil {
		prompt = fmt.Sprintf(`Based STRICTLY on this CPIC guideline:
DRUG=%s
GENE=%s
PHENOTYPE=%s (%s)
SUMMARY=%s
MECHANISM=%s
RECOMMENDATION=%s
SOURCE=%s

Return ONLY valid JSON with keys:
{
  "summary": "one sentence",
  "mechanism": "brief biological explanation",
  "recommendation": "brief clinical recommendation aligned with the guideline"
}`,
			guideline.DrugName, guideline.Gene, guideline.PhenotypeName, guideline.PhenotypeCode,
			guideline.Summary, guideline.Mechanism, guideline.Recommendation, guideline.Source)
	} else {
		prompt = fmt.Sprintf(`Act as a clinical pharmacologist.
Explain why a patient with phenotype=%s has altered risk for drug=%s.
Return ONLY valid JSON:
{"summary":"one sentence","mechanism":"brief biological explanation","recommendation":"brief clinical recommendation"}`,
			assessment.Phenotype, domain.NormalizeDrug(drug))
	}

	var raw struct {
		Summary        string `json:"summary"`
		Mechanism      string `json:"mechanism"`
		Recommendation string `json:"recommendation"`
	}
	if err := c.completeJSON(ctx, prompt, &raw); err != nil {
		return nil, err
	}

	explanation := &domain.Explanation{
		Summary:        raw.Summary,
		Mechanism:      raw.Mechanism,
		Recommendation: raw.Recommendation,
	}
	if explanation.Summary == "" {
		explanation.Summary = fmt.Sprintf("Patient exhibits %s phenotype for %s.", assessment.Phenotype, domain.NormalizeDrug(drug))
	}
	if explanation.Recommendation == "" {
		if guideline != nil && guideline.Recommendation != "" {
			explanation.Recommendation = guideline.Recommendation
		} else {
			explanation.Recommendation = "Use CPIC-aligned dosing for this phenotype with clinician oversight."
		}
	}
	explanation.AttachCitations(guideline, variants)
	return explanation, nil
}

// completeJSON sends a prompt and decodes the model's JSON reply into out.
// Transient HTTP failures are retried up to the configured count.
func (c *Client) completeJSON(ctx context.Context, prompt string, out interface{}) error {
	var lastErr error
	attempts := c.retryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.rateLimit.Wait(ctx); err != nil {
			return err
		}

		content, err := c.complete(ctx, prompt)
		if err != nil {
			lastErr = err
			c.log.WithError(err).WithField("attempt", attempt+1).Debug("advisory completion failed")
			continue
		}
		if err := json.Unmarshal([]byte(stripJSONFences(content)), out); err != nil {
			// Malformed model output is not transient, do not retry.
			return fmt.Errorf("failed to parse advisory response: %w", err)
		}
		return nil
	}
	return lastErr
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 240))
		return "", fmt.Errorf("advisory API error %d: %s", resp.StatusCode, string(snippet))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("advisory API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// guidelineOptions lists the corpus entries for a drug. Store failures
// produce an empty option list, never an error.
func (c *Client) guidelineOptions(ctx context.Context, drug string) []guidelineOption {
	if c.store == nil {
		return nil
	}
	phenotypes, err := c.store.ListPhenotypes(ctx, drug)
	if err != nil {
		return nil
	}

	var options []guidelineOption
	for _, p := range phenotypes {
		if p.PhenotypeCode == "" {
			continue
		}
		g, err := c.store.GetGuideline(ctx, drug, p.PhenotypeCode)
		if err != nil {
			continue
		}
		options = append(options, guidelineOption{
			PhenotypeCode:  g.PhenotypeCode,
			PhenotypeName:  g.PhenotypeName,
			Summary:        g.Summary,
			Mechanism:      g.Mechanism,
			Recommendation: g.Recommendation,
			Source:         g.Source,
			GuidelineURL:   g.GuidelineURL,
			Gene:           g.Gene,
		})
	}
	return options
}

func buildVariantContext(variants []domain.Variant) []variantContext {
	ctx := make([]variantContext, 0, len(variants))
	for i, v := range variants {
		if i >= maxVariantContext {
			break
		}
		ctx = append(ctx, variantContext{
			RSID:      v.RSID,
			Gene:      v.Gene,
			Allele:    v.Allele,
			Genotype:  v.Genotype,
			Function:  v.Function,
			Quality:   v.QualityScore,
			ReadDepth: v.ReadDepth,
		})
	}
	return ctx
}

// stripJSONFences removes a markdown code fence around a JSON payload.
func stripJSONFences(text string) string {
	payload := strings.TrimSpace(text)
	if strings.HasPrefix(payload, "```json") {
		payload = payload[7:]
	}
	if strings.HasPrefix(payload, "```") {
		payload = payload[3:]
	}
	if strings.HasSuffix(payload, "```") {
		payload = payload[:len(payload)-3]
	}
	return strings.TrimSpace(payload)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
