package referral

import (
	"fmt"
	"strings"
)

// Factor scores assigned by the evaluators. Every evaluator is total: missing
// or malformed fields degrade to a low score with an explanatory detail, they
// never error.
const (
	scoreMedicare          = 1.0
	scoreMedicareAdvantage = 0.95
	scoreCommercial        = 0.8
	scoreMedicaid          = 0.6
	scoreUnknownPayer      = 0.5
	scoreSelfPay           = 0.15
	scoreMissingField      = 0.1
	scoreExcludedDiagnosis = 0.05
	scoreCleanDiagnosis    = 0.8
	scoreUrgencyKnown      = 0.7
	scoreUrgencyUnknown    = 0.5
)

// Geography decay breakpoints, in miles. The curve is 1.0 inside
// nearDistance, decays linearly to 0.6 at midDistance and to 0.2 at
// farDistance, and is floored at 0.05 beyond that.
const (
	nearDistance = 10.0
	midDistance  = 25.0
	farDistance  = 40.0

	scoreNear        = 1.0
	scoreMid         = 0.6
	scoreFar         = 0.2
	scoreOutOfRange  = 0.05
	ordersAbsentCost = 0.3
)

// excludedDiagnoses are presentations the agency cannot admit for skilled
// home-health episodes. Matched as lowercase substrings of the diagnosis.
var excludedDiagnoses = []string{
	"hospice",
	"palliative",
	"terminal",
	"comfort care",
}

func evaluateInsurance(r ReferralData) DecisionFactor {
	provider := strings.TrimSpace(r.InsuranceProvider)
	if provider == "" {
		return DecisionFactor{Score: scoreMissingField, Detail: "insurance provider missing; eligibility cannot be assessed"}
	}

	switch classifyPayer(provider) {
	case payerMedicare:
		return DecisionFactor{Score: scoreMedicare, Detail: fmt.Sprintf("%s: traditional Medicare, preferred payer", provider)}
	case payerMedicareAdvantage:
		return DecisionFactor{Score: scoreMedicareAdvantage, Detail: fmt.Sprintf("%s: Medicare Advantage, strong payer", provider)}
	case payerCommercial:
		return DecisionFactor{Score: scoreCommercial, Detail: fmt.Sprintf("%s: commercial payer, authorization usually required", provider)}
	case payerMedicaid:
		return DecisionFactor{Score: scoreMedicaid, Detail: fmt.Sprintf("%s: Medicaid, reduced reimbursement", provider)}
	case payerSelfPay:
		return DecisionFactor{Score: scoreSelfPay, Detail: "self-pay: collection risk, deposit required before admission"}
	default:
		return DecisionFactor{Score: scoreUnknownPayer, Detail: fmt.Sprintf("%s: unrecognized payer, manual eligibility check needed", provider)}
	}
}

type payerClass int

const (
	payerUnknown payerClass = iota
	payerMedicare
	payerMedicareAdvantage
	payerCommercial
	payerMedicaid
	payerSelfPay
)

var commercialPayers = []string{"aetna", "blue cross", "bcbs", "united", "cigna", "humana", "anthem"}

func classifyPayer(provider string) payerClass {
	p := strings.ToLower(provider)
	switch {
	case strings.Contains(p, "medicare advantage"):
		return payerMedicareAdvantage
	case strings.Contains(p, "medicare"):
		return payerMedicare
	case strings.Contains(p, "medicaid"):
		return payerMedicaid
	case strings.Contains(p, "self pay"), strings.Contains(p, "self-pay"), strings.Contains(p, "selfpay"):
		return payerSelfPay
	}
	for _, c := range commercialPayers {
		if strings.Contains(p, c) {
			return payerCommercial
		}
	}
	return payerUnknown
}

func evaluateGeography(r ReferralData) DecisionFactor {
	d := r.GeographicLocation.Distance
	if d < 0 {
		// Clamp rather than fail; the decision must always come back.
		return DecisionFactor{
			Score:  scoreNear,
			Detail: fmt.Sprintf("invalid negative distance %.1f corrected to 0 mi; verify address", d),
		}
	}

	switch {
	case d <= nearDistance:
		return DecisionFactor{Score: scoreNear, Detail: fmt.Sprintf("%.1f mi: inside primary service area", d)}
	case d <= midDistance:
		score := scoreNear - (d-nearDistance)/(midDistance-nearDistance)*(scoreNear-scoreMid)
		return DecisionFactor{Score: score, Detail: fmt.Sprintf("%.1f mi: extended service area, added travel cost", d)}
	case d <= farDistance:
		score := scoreMid - (d-midDistance)/(farDistance-midDistance)*(scoreMid-scoreFar)
		return DecisionFactor{Score: score, Detail: fmt.Sprintf("%.1f mi: edge of coverage, scheduling difficult", d)}
	default:
		return DecisionFactor{Score: scoreOutOfRange, Detail: fmt.Sprintf("%.1f mi: outside the %.0f mi coverage radius", d, farDistance)}
	}
}

func evaluateDiagnosis(r ReferralData) DecisionFactor {
	dx := strings.TrimSpace(r.Diagnosis)
	if dx == "" {
		return DecisionFactor{Score: scoreMissingField, Detail: "diagnosis missing; clinical appropriateness cannot be assessed"}
	}
	if matchesExcludedDiagnosis(dx) {
		return DecisionFactor{Score: scoreExcludedDiagnosis, Detail: fmt.Sprintf("%s: excluded presentation, not appropriate for skilled home health", dx)}
	}
	return DecisionFactor{Score: scoreCleanDiagnosis, Detail: fmt.Sprintf("%s: appropriate for skilled home-health services", dx)}
}

func matchesExcludedDiagnosis(diagnosis string) bool {
	dx := strings.ToLower(diagnosis)
	for _, ex := range excludedDiagnoses {
		if strings.Contains(dx, ex) {
			return true
		}
	}
	return false
}

// evaluateUrgency scores identically for every recognized urgency: how fast a
// referral must move changes the intake SLA, not whether to admit. The detail
// and next steps carry the SLA.
func evaluateUrgency(r ReferralData) DecisionFactor {
	switch r.Urgency {
	case UrgencyStat:
		return DecisionFactor{Score: scoreUrgencyKnown, Detail: "stat referral: process within 4 hours"}
	case UrgencyUrgent:
		return DecisionFactor{Score: scoreUrgencyKnown, Detail: "urgent referral: process within 24 hours"}
	case UrgencyRoutine:
		return DecisionFactor{Score: scoreUrgencyKnown, Detail: "routine referral: standard 48-hour processing"}
	default:
		return DecisionFactor{Score: scoreUrgencyUnknown, Detail: fmt.Sprintf("urgency %q not recognized; treated as routine", string(r.Urgency))}
	}
}

func evaluateCapacity(r ReferralData) DecisionFactor {
	rating := r.HospitalRating
	note := ""
	if rating < 1 {
		rating = 1
		note = " (rating missing or below range, floored at 1)"
	} else if rating > 5 {
		rating = 5
		note = " (rating above range, capped at 5)"
	}

	score := float64(rating) / 5.0
	detail := fmt.Sprintf("referring hospital rated %d/5%s", rating, note)
	if !r.HasPhysicianOrders() {
		score -= ordersAbsentCost
		detail += "; physician orders not on file"
	} else {
		detail += "; physician orders on file"
	}
	if score < scoreExcludedDiagnosis {
		score = scoreExcludedDiagnosis
	}
	return DecisionFactor{Score: score, Detail: detail}
}
