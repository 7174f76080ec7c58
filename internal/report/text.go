package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/ppiankov/maciespectre/internal/criteria"
	"github.com/ppiankov/maciespectre/internal/estimate"
	"github.com/ppiankov/maciespectre/internal/jobs"
)

// TextReporter generates human-readable text reports
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{writer: w}
}

// dollars renders whole US dollars with thousands separators.
func dollars(v float64) string {
	return "US$" + humanize.Comma(int64(v))
}

// wholeGB renders a rollup's size as whole gibibytes with thousands separators.
func wholeGB(t estimate.Totals) string {
	return humanize.Comma(int64(t.SizeGB()))
}

// formatBytes renders a byte count in binary units.
func formatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

func (r *TextReporter) header(title string, meta Meta) {
	fmt.Fprintf(r.writer, "%s\n", title)
	fmt.Fprintf(r.writer, "%s\n\n", strings.Repeat("=", len(title)))
	fmt.Fprintf(r.writer, "Run Time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	if meta.Profile != "" {
		fmt.Fprintf(r.writer, "AWS Profile: %s\n", meta.Profile)
	}
	if len(meta.Regions) > 0 {
		fmt.Fprintf(r.writer, "Regions: %s\n", strings.Join(meta.Regions, ", "))
	}
	fmt.Fprintf(r.writer, "\n")
}

func (r *TextReporter) section(title string, c func(format string, a ...interface{}) string) {
	fmt.Fprintf(r.writer, "%s\n", c(title))
	fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 50))
}

func (r *TextReporter) printErrors(meta Meta) {
	if len(meta.Errors) == 0 {
		return
	}
	r.section("Failed Regions", color.RedString)
	for _, e := range meta.Errors {
		fmt.Fprintf(r.writer, "  %s: %s\n", color.RedString("[%s]", e.Region), e.Error)
	}
	fmt.Fprintf(r.writer, "\n")
}

// Estimate prints the projected cost of classifying public buckets per
// region, or of one bucket.
func (r *TextReporter) Estimate(data EstimateData) error {
	r.header("MacieSpectre Cost Estimate", data.Meta)

	if data.Bucket != nil {
		b := data.Bucket
		t := estimate.Totals{}
		if data.BucketTotal != nil {
			t = *data.BucketTotal
		}
		fmt.Fprintf(r.writer, "Macie Scan cost of %s is %s (size %s GB - %s objects)\n",
			b.BucketName, color.YellowString(dollars(t.Cost)), wholeGB(t), humanize.Comma(t.Objects))
		fmt.Fprintf(r.writer, "  Account: %s  Region: %s  Classifiable: %s\n\n",
			b.AccountID, b.Region, formatBytes(b.ClassifiableSizeInBytes))
		r.printErrors(data.Meta)
		return nil
	}

	if len(data.Regions) > 0 {
		r.section("Public Buckets", color.CyanString)
		for _, rt := range data.Regions {
			fmt.Fprintf(r.writer, "  Public Scan in %s will cost %s size: %s GB for %d buckets\n",
				rt.Region, dollars(rt.Cost), wholeGB(rt.Totals), rt.Count)
			if rt.Count > 0 {
				fmt.Fprintf(r.writer, "    %s classifiable in %s objects\n",
					formatBytes(rt.SizeBytes), humanize.Comma(rt.Objects))
			}
		}
		fmt.Fprintf(r.writer, "\n")
	}

	r.printErrors(data.Meta)
	fmt.Fprintf(r.writer, "%s US$%s Total Size: %sGB\n",
		color.GreenString("Total Cost:"), humanize.Comma(int64(data.Total.Cost)), wholeGB(data.Total))
	return nil
}

// Usage prints Macie's own cost estimate. Only billable classification
// lines are listed; the total covers every usage line.
func (r *TextReporter) Usage(data UsageData) error {
	r.header("MacieSpectre Usage", data.Meta)
	phrase := data.TimeRange.Phrase()

	r.section("Estimated Usage", color.CyanString)
	for _, ru := range data.Usage {
		for _, t := range ru.Totals {
			if !t.Billable() {
				continue
			}
			fmt.Fprintf(r.writer, "  Cost of Macie in %s is estimated to be $%s %s\n",
				ru.Region, humanize.CommafWithDigits(t.Cost(), 2), phrase)
		}
	}
	fmt.Fprintf(r.writer, "\n")

	if data.Billing != nil {
		r.section("Billed Spend", color.MagentaString)
		for _, p := range data.Billing.Periods {
			fmt.Fprintf(r.writer, "  %s to %s: $%s\n", p.Start, p.End, humanize.CommafWithDigits(p.CostUSD, 2))
		}
		fmt.Fprintf(r.writer, "  Billed total: $%s\n\n", humanize.CommafWithDigits(data.Billing.Total, 2))
	}

	r.printErrors(data.Meta)
	fmt.Fprintf(r.writer, "%s %s %s\n", color.GreenString("Total Cost:"), dollars(data.Total), phrase)
	return nil
}

// Findings prints the export summary.
func (r *TextReporter) Findings(data FindingsData) error {
	r.header("MacieSpectre Findings Export", data.Meta)
	fmt.Fprintf(r.writer, "Output: %s (%s)\n", data.Output, data.Format)
	fmt.Fprintf(r.writer, "Minimum Severity: %s\n", data.Severity)
	if data.Bucket != "" {
		fmt.Fprintf(r.writer, "Bucket: %s\n", data.Bucket)
	}
	fmt.Fprintf(r.writer, "\n")

	if d := data.Baseline; d != nil {
		r.section("Baseline Comparison", color.CyanString)
		fmt.Fprintf(r.writer, "  %s: %d\n", color.RedString("New"), len(d.New))
		fmt.Fprintf(r.writer, "  %s: %d\n", color.GreenString("Resolved"), len(d.Resolved))
		fmt.Fprintf(r.writer, "  Unchanged: %d\n", d.Unchanged)
		for _, rec := range d.New {
			fmt.Fprintf(r.writer, "  %s %s %s\n", color.RedString("[NEW]"), rec.Severity, rec.S3Path)
		}
		for _, rec := range d.Resolved {
			fmt.Fprintf(r.writer, "  %s %s %s\n", color.GreenString("[RESOLVED]"), rec.Severity, rec.S3Path)
		}
		fmt.Fprintf(r.writer, "\n")
	}

	r.printErrors(data.Meta)
	fmt.Fprintf(r.writer, "Exported %s: %d %s: %d %s: %d\n",
		color.RedString("High"), data.Tally[criteria.SeverityHigh],
		color.YellowString("Medium"), data.Tally[criteria.SeverityMedium],
		color.CyanString("Low"), data.Tally[criteria.SeverityLow])
	return nil
}

// Stats prints the finding count of every bucket with findings.
func (r *TextReporter) Stats(data StatsData) error {
	r.header("MacieSpectre Findings by Bucket", data.Meta)
	if len(data.Counts) > 0 {
		r.section("Buckets", color.YellowString)
		for _, c := range data.Counts {
			fmt.Fprintf(r.writer, "  %s (%s) has %d %s classification findings\n",
				c.BucketName, c.Region, c.Count, data.Severity)
		}
		fmt.Fprintf(r.writer, "\n")
	} else {
		fmt.Fprintf(r.writer, "%s\n\n", color.GreenString("No %s classification findings", data.Severity))
	}
	r.printErrors(data.Meta)
	return nil
}

// Jobs prints one line per job and bucket definition.
func (r *TextReporter) Jobs(data JobsData) error {
	r.header("MacieSpectre Classification Jobs", data.Meta)
	if len(data.Jobs) > 0 {
		r.section(fmt.Sprintf("Jobs: %d", len(data.Jobs)), color.CyanString)
		for _, j := range data.Jobs {
			for _, line := range jobs.Lines(j) {
				fmt.Fprintf(r.writer, "  %s\n", line)
			}
		}
		fmt.Fprintf(r.writer, "\n")
	} else {
		fmt.Fprintf(r.writer, "No classification jobs found\n\n")
	}
	r.printErrors(data.Meta)
	return nil
}

// Enroll prints the reconciliation plan or result of every region.
func (r *TextReporter) Enroll(data EnrollData) error {
	r.header("MacieSpectre Enrollment", data.Meta)
	mode := color.YellowString("dry run")
	if data.Commit {
		mode = color.GreenString("commit")
	}
	fmt.Fprintf(r.writer, "Mode: %s\n", mode)
	fmt.Fprintf(r.writer, "Organization Accounts: %d\n\n", data.Roster)

	if c := data.Export; c != nil {
		r.section("Export Destination", color.CyanString)
		fmt.Fprintf(r.writer, "  Bucket: %s (%s)\n", c.Bucket, c.BucketRegion)
		if c.Key != nil {
			fmt.Fprintf(r.writer, "  Key: %s (%s, %s)\n", c.Key.ARN, c.Key.Region, c.Key.State)
		}
		for _, p := range c.Problems {
			fmt.Fprintf(r.writer, "  %s %s\n", color.RedString("[PROBLEM]"), p)
		}
		fmt.Fprintf(r.writer, "\n")
	}

	for _, res := range data.Results {
		r.section(res.Region, color.CyanString)
		fmt.Fprintf(r.writer, "  Auto-enable: %t\n", res.AutoEnabled)
		fmt.Fprintf(r.writer, "  Enabled members: %d\n", res.Members)
		fmt.Fprintf(r.writer, "  Accounts to enroll: %d\n", len(res.ToEnroll))
		for _, o := range res.Outcomes {
			switch {
			case o.Error != "":
				fmt.Fprintf(r.writer, "  %s %s: %s\n", color.RedString("[FAILED]"), o.Description, o.Error)
			case o.Executed:
				fmt.Fprintf(r.writer, "  %s %s\n", color.GreenString("[DONE]"), o.Description)
			default:
				fmt.Fprintf(r.writer, "  %s %s\n", color.YellowString("[PLANNED]"), o.Description)
			}
		}
		fmt.Fprintf(r.writer, "\n")
	}
	r.printErrors(data.Meta)
	return nil
}
