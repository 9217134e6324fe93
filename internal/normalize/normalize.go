// Package normalize reconciles heterogeneous document records into the
// canonical DocumentRecord shape. Server-listed records arrive loosely shaped:
// `_id` vs `id`, missing `docType`, absent `fraud`, nested parsed fields. All
// defensive field-presence checks live here so consumers never branch on raw
// shapes.
package normalize

import (
	"fmt"
	"time"

	"veridoc/internal/domain"
	"veridoc/internal/risk"
)

// Record normalizes one raw server-listed record. position tags the
// synthesized placeholder id when no id field resolves, so UI actions
// referencing an unresolvable id are safely ignored rather than crashed.
// Never panics on missing nested fields; every derived field has a fallback.
// Idempotent over records already in canonical shape.
func Record(raw map[string]any, position int) domain.DocumentRecord {
	rec := domain.DocumentRecord{
		ID:           resolveID(raw, position),
		DocumentType: resolveDocumentType(raw),
		Fraud:        resolveFraud(raw),
		Timestamp:    resolveTimestamp(raw),
	}
	rec.Verified = resolveVerified(raw, rec.Fraud)
	return rec
}

// Records normalizes a whole listing, preserving order.
func Records(raws []map[string]any) []domain.DocumentRecord {
	records := make([]domain.DocumentRecord, 0, len(raws))
	for i, raw := range raws {
		records = append(records, Record(raw, i))
	}
	return records
}

func resolveID(raw map[string]any, position int) string {
	if id, ok := stringField(raw, "_id", "id", "submissionId", "docId"); ok {
		return id
	}
	return fmt.Sprintf("unresolved-%d", position)
}

func resolveDocumentType(raw map[string]any) domain.DocumentType {
	if t, ok := stringField(raw, "docType", "documentType"); ok {
		switch t {
		case string(domain.DocTypeAadhaar), string(domain.DocTypePAN):
			return domain.DocumentType(t)
		}
		// Unknown explicit types fall through to inference.
	}
	return InferDocumentType(parsedFields(raw))
}

// InferDocumentType derives the document kind from detected identifier
// fields: a present Aadhaar number wins over a present PAN number.
func InferDocumentType(parsed map[string]any) domain.DocumentType {
	if _, ok := stringField(parsed, "aadhaarNumber"); ok {
		return domain.DocTypeAadhaar
	}
	if _, ok := stringField(parsed, "panNumber"); ok {
		return domain.DocTypePAN
	}
	return domain.DocTypeUnknown
}

func resolveFraud(raw map[string]any) domain.FraudAssessment {
	fraud, ok := raw["fraud"].(map[string]any)
	if !ok {
		return domain.FraudAssessment{Score: 0, Band: risk.Classify(0)}
	}
	score, _ := numberField(fraud, "score")
	return risk.Assess(score)
}

// resolveVerified applies the dual truth rule. An explicit verified flag from
// an already-canonical record is kept as-is; otherwise the decision token is
// authoritative, and only records with no decision at all fall back to the
// legacy score threshold.
func resolveVerified(raw map[string]any, fraud domain.FraudAssessment) bool {
	if v, ok := raw["verified"].(bool); ok {
		return v
	}
	if decision, ok := stringField(raw, "decision"); ok {
		return domain.FreshTruth(decision).Verified()
	}
	if _, ok := raw["fraud"].(map[string]any); ok {
		return domain.LegacyTruth(fraud.Score).Verified()
	}
	return false
}

func resolveTimestamp(raw map[string]any) time.Time {
	for _, key := range []string{"timestamp", "createdAt"} {
		s, ok := stringField(raw, key)
		if !ok {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// parsedFields digs out the OCR parsed block, which historical records carry
// at the top level and fresh verification payloads nest under "verification".
func parsedFields(raw map[string]any) map[string]any {
	if parsed, ok := raw["parsed"].(map[string]any); ok {
		return parsed
	}
	if verification, ok := raw["verification"].(map[string]any); ok {
		if parsed, ok := verification["parsed"].(map[string]any); ok {
			return parsed
		}
	}
	return nil
}

func stringField(m map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func numberField(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch n := m[key].(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		}
	}
	return 0, false
}
