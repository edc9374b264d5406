package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/leadscore/internal/config"
	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/resilience"
	"github.com/sells-group/leadscore/pkg/anthropic"
)

const intentSystemPrompt = "You are an AI trained to analyze B2B lead buying intent by matching prospect profiles against product offerings."

const intentUserPrompt = `Analyze this lead's buying intent for our product:

LEAD PROFILE:
- Name: %s
- Role: %s
- Company: %s
- Industry: %s
- Location: %s
- LinkedIn Bio: %s

OUR PRODUCT/OFFER:
- Product: %s
- Value Propositions: %s
- Ideal Customer Profile: %s

Evaluate:
1. Does their role indicate decision-making authority?
2. Does their industry/company match our ICP?
3. Does their bio show relevant experience or pain points our product solves?
4. Overall likelihood they would be interested in our offer

Classify their buying intent as High, Medium, or Low.
Provide 1-2 sentences explaining your classification.

Format: Intent|Reasoning
Example: High|VP of Sales in B2B SaaS matches ICP perfectly. Bio mentions scaling outreach challenges.`

// intentPoints maps a classifier label to its 0-50 score contribution.
var intentPoints = map[string]int{
	"High":   50,
	"Medium": 30,
	"Low":    10,
}

// OutcomeKind tags a classification outcome so the orchestrator branches on
// data instead of error types.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeQuotaExceeded
	OutcomeFormatError
	OutcomeFailed
)

// Classification is the outcome of classifying one lead.
type Classification struct {
	Kind        OutcomeKind
	Points      int
	Label       string
	Explanation string
	Err         error
}

// Classifier turns a lead profile and the active offer into an intent
// classification. Implementations never abort a scoring run: failures are
// reported through the Classification's Kind.
type Classifier interface {
	Classify(ctx context.Context, lead *model.Lead, offer *model.Offer) Classification
}

type anthropicClassifier struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
	limiter     *rate.Limiter
	retry       resilience.RetryConfig
}

// NewIntentClassifier builds the production classifier on top of the
// Anthropic client. The limiter spreads calls out so concurrent scoring
// cannot burst past the API's rate ceiling; rate-limit rejections are never
// retried, they surface as OutcomeQuotaExceeded for the fallback path.
func NewIntentClassifier(client anthropic.Client, cfg config.AnthropicConfig) Classifier {
	c := &anthropicClassifier{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.CallTimeout,
	}
	if c.model == "" {
		c.model = "claude-haiku-4-5-20251001"
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 150
	}
	if c.temperature <= 0 {
		c.temperature = 0.3
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)

	c.retry = resilience.DefaultRetryConfig()
	c.retry.ShouldRetry = func(err error) bool {
		if anthropic.IsRateLimited(err) {
			return false
		}
		if status := anthropic.StatusCode(err); status != 0 {
			return resilience.IsTransientHTTPStatus(status)
		}
		return resilience.IsTransient(err)
	}
	c.retry.OnRetry = resilience.RetryLogger("anthropic", "classify_intent")

	return c
}

func (c *anthropicClassifier) Classify(ctx context.Context, lead *model.Lead, offer *model.Offer) Classification {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(callCtx); err != nil {
		return failedClassification(err)
	}

	temperature := c.temperature
	req := anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      anthropic.BuildCachedSystemBlocks(intentSystemPrompt),
		Messages:    []anthropic.Message{{Role: "user", Content: intentPrompt(lead, offer)}},
		Temperature: &temperature,
	}

	resp, err := resilience.DoVal(callCtx, c.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return c.client.CreateMessage(ctx, req)
	})
	if err != nil {
		if anthropic.IsRateLimited(err) {
			return Classification{Kind: OutcomeQuotaExceeded, Err: err}
		}
		return failedClassification(err)
	}

	resp.Usage.LogCost(c.model, "classify_intent")

	return parseIntentResponse(resp.Text())
}

func intentPrompt(lead *model.Lead, offer *model.Offer) string {
	return fmt.Sprintf(intentUserPrompt,
		lead.Name,
		lead.Role,
		lead.Company,
		lead.Industry,
		lead.Location,
		lead.LinkedInBio,
		offer.Name,
		strings.Join(offer.ValueProps, ", "),
		strings.Join(offer.IdealUseCases, ", "),
	)
}

// parseIntentResponse parses the constrained "Label|Explanation" wire format,
// splitting on the first separator. An unrecognized label degrades to 10
// points but keeps the label as returned; a missing separator yields the
// fixed format-error result.
func parseIntentResponse(text string) Classification {
	label, explanation, found := strings.Cut(strings.TrimSpace(text), "|")
	if !found {
		return Classification{
			Kind:        OutcomeFormatError,
			Points:      10,
			Label:       "Low",
			Explanation: "response format error",
		}
	}

	label = strings.TrimSpace(label)
	points, ok := intentPoints[label]
	if !ok {
		points = 10
	}

	return Classification{
		Kind:        OutcomeSuccess,
		Points:      points,
		Label:       label,
		Explanation: strings.TrimSpace(explanation),
	}
}

func failedClassification(err error) Classification {
	return Classification{
		Kind:        OutcomeFailed,
		Points:      10,
		Label:       "Low",
		Explanation: shortDiagnostic(err),
		Err:         err,
	}
}

// shortDiagnostic trims an error to one short line suitable for reasoning
// text.
func shortDiagnostic(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if len(msg) > 80 {
		msg = msg[:80]
	}
	return "AI scoring error: " + msg
}
