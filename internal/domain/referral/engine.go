package referral

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Decision thresholds on the weighted overall score. Overridable through
// EngineOptions so policy changes don't require a rebuild; tests assert the
// boundary behavior at exactly these values.
const (
	AcceptThreshold = 0.8
	ReviewThreshold = 0.5
)

// OverrideConfidence is the confidence reported for hard accept/reject
// overrides, which bypass the weighted aggregate.
const OverrideConfidence = 0.95

// Engine scores referrals into an admission decision. Decide is pure: the
// same referral and weights always produce the same decision.
type Engine struct {
	accept  float64
	review  float64
	weights FactorWeights
	logger  zerolog.Logger
}

// EngineOptions overrides the default decision policy.
type EngineOptions struct {
	AcceptThreshold float64
	ReviewThreshold float64
	Weights         *FactorWeights
}

func NewEngine(logger zerolog.Logger) *Engine {
	return NewEngineWithOptions(logger, EngineOptions{})
}

func NewEngineWithOptions(logger zerolog.Logger, opts EngineOptions) *Engine {
	e := &Engine{
		accept:  AcceptThreshold,
		review:  ReviewThreshold,
		weights: DefaultWeights(),
		logger:  logger,
	}
	if opts.AcceptThreshold > 0 {
		e.accept = opts.AcceptThreshold
	}
	if opts.ReviewThreshold > 0 {
		e.review = opts.ReviewThreshold
	}
	if opts.Weights != nil {
		e.weights = *opts.Weights
	}
	return e
}

// evaluators in a fixed order so factor iteration, reasons, and next steps
// are deterministic.
var evaluators = []struct {
	name string
	fn   func(ReferralData) DecisionFactor
}{
	{FactorInsurance, evaluateInsurance},
	{FactorGeography, evaluateGeography},
	{FactorDiagnosis, evaluateDiagnosis},
	{FactorUrgency, evaluateUrgency},
	{FactorCapacity, evaluateCapacity},
}

// Decide scores the referral and returns the admission decision. A nil
// weights argument uses the engine's configured weights. Decide never
// returns an error: malformed input is degraded by the evaluators and
// surfaced in the factor details.
func (e *Engine) Decide(r ReferralData, weights *FactorWeights) AutomationDecision {
	w := e.weights
	if weights != nil {
		w = *weights
	}
	if !w.valid() {
		e.logger.Warn().Msg("invalid factor weights (negative component or non-positive total), falling back to defaults")
		w = DefaultWeights()
	}

	factors := make(map[string]DecisionFactor, len(evaluators)+1)
	for _, ev := range evaluators {
		factors[ev.name] = ev.fn(r)
	}

	// Hard overrides come before weighting.
	if reason, ok := e.hardReject(r); ok {
		factors[FactorOverall] = DecisionFactor{Score: OverrideConfidence, Detail: "hard exclusion: " + reason}
		return AutomationDecision{
			Action:               ActionReject,
			Confidence:           OverrideConfidence,
			Reason:               reason,
			DecisionFactors:      factors,
			RecommendedNextSteps: rejectNextSteps(r),
		}
	}
	if reason, ok := e.hardAccept(r); ok {
		factors[FactorOverall] = DecisionFactor{Score: OverrideConfidence, Detail: "hard accept: " + reason}
		return AutomationDecision{
			Action:               ActionAccept,
			Confidence:           OverrideConfidence,
			Reason:               reason,
			DecisionFactors:      factors,
			RecommendedNextSteps: acceptNextSteps(r),
		}
	}

	overall := weightedOverall(factors, w)
	factors[FactorOverall] = DecisionFactor{
		Score:  overall,
		Detail: fmt.Sprintf("weighted aggregate of %d factors", len(evaluators)),
	}

	action := e.actionFor(overall)
	decision := AutomationDecision{
		Action:          action,
		Confidence:      overall,
		Reason:          reasonFor(action, factors),
		DecisionFactors: factors,
	}
	switch action {
	case ActionAccept:
		decision.RecommendedNextSteps = acceptNextSteps(r)
	case ActionReview:
		decision.RecommendedNextSteps = reviewNextSteps(r, factors)
	default:
		decision.RecommendedNextSteps = rejectNextSteps(r)
	}
	return decision
}

func (e *Engine) actionFor(overall float64) Action {
	switch {
	case overall >= e.accept:
		return ActionAccept
	case overall >= e.review:
		return ActionReview
	default:
		return ActionReject
	}
}

func (e *Engine) hardReject(r ReferralData) (string, bool) {
	if matchesExcludedDiagnosis(r.Diagnosis) {
		return fmt.Sprintf("diagnosis %q is on the excluded list", r.Diagnosis), true
	}
	if classifyPayer(r.InsuranceProvider) == payerSelfPay && r.GeographicLocation.Distance > farDistance {
		return fmt.Sprintf("self-pay referral %.1f mi outside the %.0f mi coverage radius",
			r.GeographicLocation.Distance, farDistance), true
	}
	return "", false
}

func (e *Engine) hardAccept(r ReferralData) (string, bool) {
	payer := classifyPayer(r.InsuranceProvider)
	if (payer == payerMedicare || payer == payerMedicareAdvantage) &&
		r.GeographicLocation.Distance >= 0 &&
		r.GeographicLocation.Distance <= nearDistance &&
		r.HasPhysicianOrders() &&
		r.Diagnosis != "" && !matchesExcludedDiagnosis(r.Diagnosis) {
		return "Medicare referral inside the primary service area with physician orders on file", true
	}
	return "", false
}

func weightedOverall(factors map[string]DecisionFactor, w FactorWeights) float64 {
	sum := w.Insurance*factors[FactorInsurance].Score +
		w.Geography*factors[FactorGeography].Score +
		w.Diagnosis*factors[FactorDiagnosis].Score +
		w.Urgency*factors[FactorUrgency].Score +
		w.Capacity*factors[FactorCapacity].Score
	return sum / w.total()
}

// reasonFor names the dominant factors: for an accept, the strongest; for a
// review or reject, the weakest.
func reasonFor(action Action, factors map[string]DecisionFactor) string {
	ranked := rankFactors(factors)
	if action == ActionAccept {
		top := ranked[len(ranked)-1]
		return fmt.Sprintf("strong overall profile led by %s (%s)", top.name, factors[top.name].Detail)
	}
	low := ranked[0]
	verb := "requires manual review"
	if action == ActionReject {
		verb = "does not meet admission criteria"
	}
	return fmt.Sprintf("referral %s; weakest factor is %s (%s)", verb, low.name, factors[low.name].Detail)
}

type rankedFactor struct {
	name  string
	score float64
}

// rankFactors orders the scored dimensions ascending, breaking score ties by
// name so the output is stable.
func rankFactors(factors map[string]DecisionFactor) []rankedFactor {
	ranked := make([]rankedFactor, 0, len(evaluators))
	for _, ev := range evaluators {
		ranked = append(ranked, rankedFactor{ev.name, factors[ev.name].Score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})
	return ranked
}

const weakFactorCutoff = 0.6

func acceptNextSteps(r ReferralData) []string {
	steps := []string{
		"Confirm insurance eligibility and obtain authorization number",
		"Schedule start-of-care evaluation visit",
		"Notify referral source of acceptance",
	}
	return append(urgencySteps(r), steps...)
}

func reviewNextSteps(r ReferralData, factors map[string]DecisionFactor) []string {
	var steps []string
	for _, rf := range rankFactors(factors) {
		if rf.score >= weakFactorCutoff {
			break
		}
		switch rf.name {
		case FactorInsurance:
			steps = append(steps, "Verify insurance eligibility before scheduling")
		case FactorGeography:
			steps = append(steps, "Confirm service-area coverage and clinician availability for the address")
		case FactorDiagnosis:
			steps = append(steps, "Obtain clinical records to confirm diagnosis appropriateness")
		case FactorUrgency:
			steps = append(steps, "Clarify requested urgency with the referral source")
		case FactorCapacity:
			steps = append(steps, "Request signed physician orders before admission")
		}
	}
	steps = append(steps, "Route to intake coordinator for manual review")
	return append(urgencySteps(r), steps...)
}

func rejectNextSteps(r ReferralData) []string {
	return []string{
		"Notify referral source of non-admission with reason",
		"Provide alternative provider suggestions where available",
		"Log referral outcome for intake reporting",
	}
}

func urgencySteps(r ReferralData) []string {
	switch r.Urgency {
	case UrgencyStat:
		return []string{"Process within 4 hours (stat referral)"}
	case UrgencyUrgent:
		return []string{"Process within 24 hours (urgent referral)"}
	default:
		return nil
	}
}

// Describe returns a one-line summary used by the CLI output.
func Describe(d AutomationDecision) string {
	return fmt.Sprintf("%s (confidence %.2f): %s", strings.ToUpper(string(d.Action)), d.Confidence, d.Reason)
}
