package domain

import "time"

// Alert is a live fraud alert created by the remote fraud engine. Its
// lifecycle ends at acknowledgement: removed from the live set, recorded into
// the audit trail.
type Alert struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	User      string    `json:"user"`
	RiskLabel string    `json:"riskLabel"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// AuditEntry is append-only: created by the reconciler on acknowledgement or
// by the remote service on verification, never mutated or deleted here.
type AuditEntry struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"userId"`
	UserEmail  string    `json:"userEmail,omitempty"`
	DocID      string    `json:"docId"`
	Decision   string    `json:"decision"`
	FraudScore int       `json:"fraud_score"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}
