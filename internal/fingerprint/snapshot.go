// Package fingerprint computes deterministic content identifiers for run
// inputs, so two runs over byte-identical data are provably comparable.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"fund-quality-engine/internal/domain"
)

// Snapshot computes a short hex fingerprint over the full record snapshot.
// Records are serialized to canonical lines and sorted, so collection order
// does not affect the result.
func Snapshot(snap *domain.Snapshot) string {
	h := sha256.New()

	var fundLines []string
	for i := range snap.Funds {
		f := &snap.Funds[i]
		fundLines = append(fundLines, fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
			f.FundID, f.FundName, f.ManagerName, f.FundType,
			floatKey(f.FundSizeUSDMillions), floatKey(f.TargetSizeUSDMillions),
			intKey(f.VintageYear), timeKey(f.LastUpdated)))
	}
	sort.Strings(fundLines)
	h.Write([]byte("FUNDS\n"))
	h.Write([]byte(strings.Join(fundLines, "\n")))

	var perfLines []string
	for i := range snap.Performance {
		o := &snap.Performance[i]
		perfLines = append(perfLines, fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
			o.FundID, o.ReportDate.Format("2006-01-02"), o.ReportQuarter,
			floatKey(o.IRRNetPct), floatKey(o.DPI), floatKey(o.RVPI), floatKey(o.TVPI)))
	}
	sort.Strings(perfLines)
	h.Write([]byte("\nPERFORMANCE\n"))
	h.Write([]byte(strings.Join(perfLines, "\n")))

	var filingLines []string
	for i := range snap.Filings {
		f := &snap.Filings[i]
		filingLines = append(filingLines, fmt.Sprintf("%s|%s|%s|%s",
			f.FundID, f.FilingType, f.FilingDate.Format("2006-01-02"),
			floatKey(f.ReportedAUMMillions)))
	}
	sort.Strings(filingLines)
	h.Write([]byte("\nFILINGS\n"))
	h.Write([]byte(strings.Join(filingLines, "\n")))

	return hex.EncodeToString(h.Sum(nil))[:12]
}

func floatKey(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}

func intKey(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func timeKey(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
