// internal/model/audit.go
package model

import "time"

// AuditSeverity は監査検出結果の重大度
type AuditSeverity string

const (
	AuditSeverityError AuditSeverity = "error"
	AuditSeverityWarn  AuditSeverity = "warn"
)

// AuditFinding は1つの整合性チェックの結果。
// SampleIDs には違反行の識別子を上限件数まで入れる。
type AuditFinding struct {
	Check     string        `json:"check"`
	Severity  AuditSeverity `json:"severity"`
	Count     int64         `json:"count"`
	SampleIDs []string      `json:"sample_ids"`
}

// AuditReport は監査バッチ1回分のレポート (診断用・読み取り専用)
type AuditReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Findings    []AuditFinding `json:"findings"`
}
