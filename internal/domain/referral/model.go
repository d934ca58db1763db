package referral

// Urgency is how quickly a referral must be processed. It affects the
// recommended turnaround, not the admission score.
type Urgency string

const (
	UrgencyRoutine Urgency = "routine"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyStat    Urgency = "stat"
)

// GeographicLocation describes where the patient would receive care,
// relative to the agency's service area.
type GeographicLocation struct {
	Address  string  `json:"address"`
	ZipCode  string  `json:"zip_code"`
	Distance float64 `json:"distance"` // miles from the nearest branch
}

// ReferralData is one inbound admission request as captured by intake
// (fax triage, referral portal, or manual entry). It is read-only input
// to the decision engine.
type ReferralData struct {
	PatientName            string             `json:"patient_name"`
	Diagnosis              string             `json:"diagnosis"`
	InsuranceProvider      string             `json:"insurance_provider"`
	InsuranceID            string             `json:"insurance_id"`
	ReferralSource         string             `json:"referral_source"`
	ServiceRequested       []string           `json:"service_requested"`
	Urgency                Urgency            `json:"urgency"`
	EstimatedEpisodeLength int                `json:"estimated_episode_length"` // days
	GeographicLocation     GeographicLocation `json:"geographic_location"`
	HospitalRating         int                `json:"hospital_rating"` // 1-5
	PhysicianOrders        *bool              `json:"physician_orders,omitempty"`
}

// HasPhysicianOrders reports whether signed physician orders accompany the
// referral. An unset field counts as no orders.
func (r ReferralData) HasPhysicianOrders() bool {
	return r.PhysicianOrders != nil && *r.PhysicianOrders
}

// Action is the ternary outcome of a referral decision.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReview Action = "review"
	ActionReject Action = "reject"
)

// DecisionFactor is one scored dimension of a referral.
type DecisionFactor struct {
	Score  float64 `json:"score"` // normalized to [0,1]
	Detail string  `json:"detail"`
}

// Factor names used as keys in AutomationDecision.DecisionFactors.
const (
	FactorInsurance = "insurance"
	FactorGeography = "geography"
	FactorDiagnosis = "diagnosis"
	FactorUrgency   = "urgency"
	FactorCapacity  = "capacity"
	FactorOverall   = "overall"
)

// FactorWeights configures the relative contribution of each factor to the
// overall score. Zero-value weights fall back to DefaultWeights.
type FactorWeights struct {
	Insurance float64 `json:"insurance"`
	Geography float64 `json:"geography"`
	Diagnosis float64 `json:"diagnosis"`
	Urgency   float64 `json:"urgency"`
	Capacity  float64 `json:"capacity"`
}

// DefaultWeights returns the standard weighting. Urgency is down-weighted
// because it signals processing priority rather than admissibility.
func DefaultWeights() FactorWeights {
	return FactorWeights{
		Insurance: 1.0,
		Geography: 1.0,
		Diagnosis: 1.0,
		Urgency:   0.5,
		Capacity:  1.0,
	}
}

func (w FactorWeights) total() float64 {
	return w.Insurance + w.Geography + w.Diagnosis + w.Urgency + w.Capacity
}

// valid reports whether the weights can produce an overall score in [0,1]:
// no negative components and a positive total. A negative component with a
// positive sum would push the weighted average outside the unit interval.
func (w FactorWeights) valid() bool {
	if w.Insurance < 0 || w.Geography < 0 || w.Diagnosis < 0 || w.Urgency < 0 || w.Capacity < 0 {
		return false
	}
	return w.total() > 0
}

// AutomationDecision is the decision engine's output for one referral.
type AutomationDecision struct {
	Action               Action                    `json:"action"`
	Confidence           float64                   `json:"confidence"`
	Reason               string                    `json:"reason"`
	DecisionFactors      map[string]DecisionFactor `json:"decision_factors"`
	RecommendedNextSteps []string                  `json:"recommended_next_steps"`
}
