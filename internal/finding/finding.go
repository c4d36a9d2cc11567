package finding

// Category groups detectors by the concern they cover.
type Category string

const (
	CategoryQuality       Category = "quality"
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
	CategoryAccessibility Category = "accessibility"
)

// Severity is declared per rule at registration time and never rewritten by
// the aggregator.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank returns a numeric rank for a severity (higher = more severe).
func (s Severity) Rank() int {
	switch s {
	case SeverityBlocking:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Finding is a single detected issue. Findings are value types and are never
// mutated after creation; fixes produce new findings on re-scan.
type Finding struct {
	Category Category `json:"category"`
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column,omitempty"`
	Message  string   `json:"message"`
	Fixable  bool     `json:"fixable"`
}

// SameLocation reports whether two findings hit the dedupe key
// (file, line, rule id).
func (f Finding) SameLocation(other Finding) bool {
	return f.File == other.File && f.Line == other.Line && f.RuleID == other.RuleID
}

// Less orders findings lexicographically by (file, line, rule id) so reports
// are reproducible across runs regardless of worker completion order.
func (f Finding) Less(other Finding) bool {
	if f.File != other.File {
		return f.File < other.File
	}
	if f.Line != other.Line {
		return f.Line < other.Line
	}
	return f.RuleID < other.RuleID
}
