// Package pipeline implements hybrid lead scoring: a deterministic rule
// layer (0-50 points) combined with AI intent classification (0-50 points),
// clamped to a 0-100 final score. When the classifier is rate limited the
// affected leads fall back to a doubled rule-only score.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/scorer"
	"github.com/sells-group/leadscore/internal/store"
)

// ErrNoOffer is returned when a scoring run starts with no offer configured.
// Nothing is scored; the caller must create an offer first.
var ErrNoOffer = eris.New("no offer configured")

const defaultConcurrency = 4

// Pipeline orchestrates one scoring run over the unscored canonical leads.
type Pipeline struct {
	store       store.Store
	classifier  Classifier
	concurrency int
}

// New creates a Pipeline. A nil classifier is the unconfigured operating
// mode, not an error: every lead scores with the fixed low AI contribution
// and the run reports itself as rule-based only.
func New(st store.Store, classifier Classifier, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Pipeline{
		store:       st,
		classifier:  classifier,
		concurrency: concurrency,
	}
}

// leadOutcome is one candidate's terminal state. A nil result means the lead
// was skipped and stays unscored for the next run.
type leadOutcome struct {
	result *model.ScoreResult
	err    error
}

// Run scores every unscored canonical lead against the active offer,
// persisting each result as it completes. Scored leads are never re-scored,
// and one lead's failure never aborts the batch. An empty candidate set is a
// zero-work success.
func (p *Pipeline) Run(ctx context.Context) (*model.RunReport, error) {
	offer, err := p.store.ActiveOffer(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoOffer
		}
		return nil, eris.Wrap(err, "pipeline: load offer")
	}

	leads, err := p.store.ListLeads(ctx, store.LeadFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list leads")
	}

	method := model.ScoringMethodHybrid
	if p.classifier == nil {
		method = model.ScoringMethodRuleOnly
	}

	var candidates []model.Lead
	for _, lead := range SelectCanonical(leads, false) {
		if !lead.Scored() {
			candidates = append(candidates, lead)
		}
	}

	report := &model.RunReport{
		Results:       []model.ScoreResult{},
		ScoringMethod: method,
	}

	if len(candidates) == 0 {
		zap.L().Info("pipeline: no unscored leads, nothing to do")
		return report, nil
	}

	log := zap.L().With(zap.String("offer", offer.Name))
	log.Info("pipeline: scoring run starting",
		zap.Int("candidates", len(candidates)),
		zap.String("scoring_method", string(method)),
		zap.Int("concurrency", p.concurrency),
	)

	// Each task writes only its own slot, so no mutex on the results path.
	outcomes := make([]leadOutcome, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range candidates {
		g.Go(func() error {
			outcomes[i] = p.scoreLead(gctx, &candidates[i], offer)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.result == nil {
			report.Skipped++
			continue
		}
		report.Results = append(report.Results, *o.result)
		report.TotalScored++
	}

	log.Info("pipeline: scoring run complete",
		zap.Int("total_scored", report.TotalScored),
		zap.Int("skipped", report.Skipped),
		zap.String("scoring_method", string(method)),
	)

	return report, nil
}

// scoreLead takes one candidate through rule scoring, classification,
// combination, and persistence.
func (p *Pipeline) scoreLead(ctx context.Context, lead *model.Lead, offer *model.Offer) leadOutcome {
	ruleScore, ruleReasons := scorer.Score(lead, offer)

	cls := Classification{
		Kind:        OutcomeSuccess,
		Points:      10,
		Label:       "Low",
		Explanation: "no classifier configured",
	}
	if p.classifier != nil {
		cls = p.classifier.Classify(ctx, lead, offer)
	}

	var (
		finalScore int
		reasoning  string
		breakdown  *model.ScoreBreakdown
	)

	switch cls.Kind {
	case OutcomeQuotaExceeded:
		// Rule-only fallback: doubling lets the 0-50 rule score occupy the
		// full 0-100 range while the AI layer is unavailable.
		finalScore = min(ruleScore*2, 100)
		reasoning = "[Rule-based only - AI rate limited] " + strings.Join(ruleReasons, ", ")
		zap.L().Warn("pipeline: classifier rate limited, falling back to rule-only score",
			zap.String("lead", lead.Name),
			zap.String("company", lead.Company),
			zap.Error(cls.Err),
		)
	case OutcomeFailed:
		zap.L().Warn("pipeline: skipping lead after classifier failure",
			zap.String("lead", lead.Name),
			zap.String("company", lead.Company),
			zap.Error(cls.Err),
		)
		return leadOutcome{err: cls.Err}
	default:
		finalScore = min(ruleScore+cls.Points, 100)
		reasoning = fmt.Sprintf("[Rule: %s] [AI: %s]", strings.Join(ruleReasons, ", "), cls.Explanation)
		breakdown = &model.ScoreBreakdown{RuleScore: ruleScore, AIScore: cls.Points}
	}

	intent := model.IntentForScore(finalScore)

	if err := p.store.UpdateLeadScore(ctx, lead.ID, finalScore, intent, reasoning); err != nil {
		zap.L().Warn("pipeline: failed to persist score",
			zap.String("lead", lead.Name),
			zap.String("company", lead.Company),
			zap.Error(err),
		)
		return leadOutcome{err: err}
	}

	return leadOutcome{result: &model.ScoreResult{
		Name:      lead.Name,
		Role:      lead.Role,
		Company:   lead.Company,
		Intent:    intent,
		Score:     finalScore,
		Reasoning: reasoning,
		Breakdown: breakdown,
	}}
}
