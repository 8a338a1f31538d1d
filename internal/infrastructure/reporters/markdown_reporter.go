package reporters

import (
	"fmt"
	"io"
	"strings"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// MarkdownReporter renders a run as a Markdown document, suitable for an
// issue comment or a CI job summary.
type MarkdownReporter struct{}

// NewMarkdownReporter creates a new MarkdownReporter.
func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

// Write renders the report to out.
func (it *MarkdownReporter) Write(out io.Writer, result *entities.RunResult) error {
	_, err := io.WriteString(out, it.Render(result))
	return err
}

// Render returns the report as a string.
func (it *MarkdownReporter) Render(result *entities.RunResult) string {
	var sb strings.Builder

	sb.WriteString("# Security feature enablement report\n\n")
	if result == nil {
		sb.WriteString("No run was performed.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "- **Run:** `%s`\n", result.RunID)
	fmt.Fprintf(&sb, "- **Mode:** %s\n", modeLabel(result.DryRun))
	fmt.Fprintf(&sb, "- **Groups:** %d\n", len(result.Groups))
	fmt.Fprintf(&sb, "- **Invalid references:** %d\n", len(result.InvalidReferences))

	for _, group := range result.Groups {
		writeGroup(&sb, group)
	}

	writeInvalidReferences(&sb, result.InvalidReferences)
	writeCredentials(&sb, result.Diagnostics)
	return sb.String()
}

func writeGroup(sb *strings.Builder, group entities.GroupResult) {
	plan := group.Plan
	instance := plan.Group.Instance

	fmt.Fprintf(sb, "\n## %s (`%s`)\n\n", instance.Name, instance.Hostname)
	fmt.Fprintf(sb, "**Status:** %s. %s\n\n", group.Status, group.Message)
	fmt.Fprintf(sb, "- **Decision:** %s\n", decisionLabel(plan))
	fmt.Fprintf(sb, "- **Features:** %s\n", featureList(plan.Group.Features))
	if plan.Basis == entities.BasisMissingCredential {
		sb.WriteString("- **Repositories:** see Invalid references\n")
		return
	}
	fmt.Fprintf(sb, "- **Repositories:** %d\n", len(plan.Group.Repositories))
	if !plan.LicenseCheckSkipped() {
		fmt.Fprintf(sb, "- **Available seats:** %s\n", plan.BaseAvailableSeats)
		fmt.Fprintf(sb, "- **New committers:** %d\n", plan.EstimatedSeatsNeeded)
		fmt.Fprintf(sb, "- **Seats after enablement:** %s (minimum headroom %d)\n",
			plan.ProjectedAvailableSeats, plan.Group.MinHeadroom)
	}

	if len(group.Outcomes) == 0 {
		return
	}

	sb.WriteString("\n| Repository | Action | Status | Detail |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, outcome := range group.Outcomes {
		for _, action := range outcome.Actions {
			fmt.Fprintf(sb, "| %s | %s | %s | %s |\n",
				outcome.Repository.FullName(), action.Action.Kind, action.Status, cell(actionDetail(action)))
		}
	}
}

func writeInvalidReferences(sb *strings.Builder, invalid []entities.InvalidReference) {
	sb.WriteString("\n## Invalid references\n\n")
	if len(invalid) == 0 {
		sb.WriteString("None.\n")
		return
	}

	sb.WriteString("| Reference | Stage | Reason | Detail |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, record := range invalid {
		fmt.Fprintf(sb, "| %s | %s | %s | %s |\n",
			cell(record.Input), record.Stage, record.Reason, cell(record.Detail))
	}
}

// writeCredentials lists which credential keys resolved. Secret values are
// never part of Diagnostics.
func writeCredentials(sb *strings.Builder, diagnostics *entities.Diagnostics) {
	keys := diagnostics.CredentialKeys()
	if len(keys) == 0 {
		return
	}

	presence := diagnostics.CredentialPresence()
	sb.WriteString("\n## Credentials\n\n")
	for _, key := range keys {
		state := "missing"
		if presence[key] {
			state = "present"
		}
		fmt.Fprintf(sb, "- `%s`: %s\n", key, state)
	}
}

func modeLabel(dryRun bool) string {
	if dryRun {
		return "dry run (no changes applied)"
	}
	return "live"
}

func decisionLabel(plan entities.EnablementPlan) string {
	switch plan.Basis {
	case entities.BasisSkippedLicenseCheck:
		return "license check skipped"
	case entities.BasisMissingCredential:
		return "not attempted, credential missing"
	case entities.BasisUnlimited:
		return "approved, unlimited license pool"
	}
	if plan.Approved {
		return "approved within license headroom"
	}
	return "rejected, insufficient license headroom"
}

func featureList(features entities.FeatureSelection) string {
	if len(features) == 0 {
		return "none"
	}
	return strings.ReplaceAll(features.String(), ",", ", ")
}

func actionDetail(action entities.ActionOutcome) string {
	if action.Reason == "" {
		return action.Detail
	}
	if action.Detail == "" {
		return string(action.Reason)
	}
	return string(action.Reason) + ": " + action.Detail
}

// cell escapes characters that would break a table row.
func cell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(value, "\n", " ")
}
