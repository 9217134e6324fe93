package upstream

// Wire shapes for the remote verification service. Field names follow the
// upstream JSON contract, not local conventions.

// ParsedFields is the OCR extraction block of a verification response. All
// fields are optional on the wire.
type ParsedFields struct {
	Name          string `json:"name,omitempty"`
	AadhaarNumber string `json:"aadhaarNumber,omitempty"`
	PanNumber     string `json:"panNumber,omitempty"`
	DOB           string `json:"dob,omitempty"`
}

// Verification carries extraction output for one document.
type Verification struct {
	Parsed  ParsedFields `json:"parsed"`
	RawText string       `json:"rawText,omitempty"`
}

// FraudDetails carries optional per-signal flags from the fraud engine.
type FraudDetails struct {
	ManipulationSuspected bool `json:"manipulation_suspected,omitempty"`
}

// FraudReport is the upstream fraud engine output. Band is advisory only; the
// canonical band is always re-derived locally from the score.
type FraudReport struct {
	Score   float64      `json:"score"`
	Band    string       `json:"band,omitempty"`
	Details FraudDetails `json:"details,omitempty"`
}

// VerifyResult is the structured response of POST /verify.
type VerifyResult struct {
	Verification Verification `json:"verification"`
	Fraud        FraudReport  `json:"fraud"`
	Decision     string       `json:"decision"`
	DocID        string       `json:"docId"`
}

// alertWire is the loose alert shape served by GET /alerts.
type alertWire struct {
	ID        string `json:"_id"`
	AltID     string `json:"id,omitempty"`
	Message   string `json:"alert"`
	User      string `json:"user"`
	Risk      string `json:"risk"`
	Timestamp string `json:"timestamp"`
}

// auditWire is the loose audit entry shape served by GET /logs.
type auditWire struct {
	ID         string  `json:"_id"`
	AltID      string  `json:"id,omitempty"`
	UserID     string  `json:"userId"`
	UserEmail  string  `json:"userEmail"`
	DocID      string  `json:"docId"`
	Decision   string  `json:"decision"`
	FraudScore float64 `json:"fraud_score"`
	Details    string  `json:"details"`
	CreatedAt  string  `json:"createdAt"`
	Timestamp  string  `json:"timestamp"`
}

// documentList tolerates both listing envelopes: a bare array or
// {"documents": [...]}.
type documentList struct {
	Documents []map[string]any `json:"documents"`
}
