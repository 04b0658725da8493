package feedback

import "strings"

const (
	MsgNoRisk        = "No significant risks detected. Keep up the good form!"
	riskReportHeader = "Risk Analysis:"
)

// Aggregate folds findings into one display block, in the order given.
func Aggregate(findings []RiskFinding) string {
	if len(findings) == 0 {
		return MsgNoRisk
	}
	msgs := make([]string, len(findings))
	for i, f := range findings {
		msgs[i] = f.Message
	}
	return riskReportHeader + "\n" + strings.Join(msgs, "\n")
}
