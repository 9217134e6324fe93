package domain

import "time"

// DocumentType enumerates the identity document kinds the pipeline recognizes.
// Derived from detected identifier fields, never trusted from a caller hint alone.
type DocumentType string

const (
	DocTypeAadhaar DocumentType = "Aadhaar"
	DocTypePAN     DocumentType = "PAN"
	DocTypeUnknown DocumentType = "Unknown"
)

// Band is the coarse fraud risk category derived deterministically from a
// numeric fraud score. Never set independently of the score.
type Band string

const (
	BandLow    Band = "Low"
	BandMedium Band = "Medium"
	BandHigh   Band = "High"
)

// FraudAssessment pairs the clamped integer score with its derived band.
type FraudAssessment struct {
	Score int  `json:"score"`
	Band  Band `json:"band"`
}

// Submission is one canonical, fully-derived verification outcome for a single
// uploaded document. MaskedIdentifier is display-only; the raw identifier never
// leaves the derivation path.
type Submission struct {
	SubmissionID     string          `json:"submissionId"`
	DocumentType     DocumentType    `json:"documentType"`
	Verified         bool            `json:"verified"`
	Tampered         bool            `json:"tampered"`
	MaskedIdentifier string          `json:"maskedIdentifier"`
	Fraud            FraudAssessment `json:"fraud"`
	Timestamp        time.Time       `json:"timestamp"`
}

// DocumentRecord is a server-listed historical document after normalization.
// Server records carry their own timestamps; fresh Submissions are stamped at
// receipt.
type DocumentRecord struct {
	ID           string          `json:"submissionId"`
	DocumentType DocumentType    `json:"documentType"`
	Verified     bool            `json:"verified"`
	Fraud        FraudAssessment `json:"fraud"`
	Timestamp    time.Time       `json:"timestamp,omitzero"`
}

// Record projects a fresh Submission into the display-list shape so the
// merged list (fresh entries first, then server records) is homogeneous.
func (s Submission) Record() DocumentRecord {
	return DocumentRecord{
		ID:           s.SubmissionID,
		DocumentType: s.DocumentType,
		Verified:     s.Verified,
		Fraud:        s.Fraud,
		Timestamp:    s.Timestamp,
	}
}
