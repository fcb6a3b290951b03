package models

// Confidence is the coarse confidence class of an analyzed selection
type Confidence string

const (
	ConfidenceNone   Confidence = "NONE"
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// AnalyzedSelection is a quote with its probability and value assessment.
// Probabilities, EV and edge are fractions, not percentages.
type AnalyzedSelection struct {
	MarketQuote
	ImpliedProbability     float64    `json:"implied_probability" validate:"gte=0,lte=1"`
	ModelProbability       float64    `json:"model_probability" validate:"gte=0,lte=1"`
	ExpectedValue          float64    `json:"expected_value"`
	Edge                   float64    `json:"edge"`
	Confidence             Confidence `json:"confidence"`
	ValueRating            int        `json:"value_rating" validate:"gte=1,lte=5"`
	IsValueBet             bool       `json:"is_value_bet"`
	IsHighConfidence       bool       `json:"is_high_confidence"`
	QualifiesAsRecommended bool       `json:"qualifies_as_recommended"`
	ProbabilitySource      string     `json:"probability_source"`
}
