package reporters

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// ConsoleReporter prints a short colored summary of a run.
type ConsoleReporter struct{}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// Write prints one line per group and per invalid reference.
func (it *ConsoleReporter) Write(out io.Writer, result *entities.RunResult) error {
	if result == nil {
		return nil
	}

	header := fmt.Sprintf("Run %s (%s)", result.RunID, modeLabel(result.DryRun))
	if _, err := fmt.Fprintln(out, color.New(color.Bold).Sprint(header)); err != nil {
		return err
	}

	for _, group := range result.Groups {
		instance := group.Plan.Group.Instance
		if _, err := fmt.Fprintf(out, "  %s %s: %s\n",
			groupStatus(group.Status), instance.Name, group.Message); err != nil {
			return err
		}
	}

	for _, record := range result.InvalidReferences {
		if _, err := fmt.Fprintf(out, "  %s %s [%s/%s]\n",
			color.YellowString("invalid"), record.Input, record.Stage, record.Reason); err != nil {
			return err
		}
	}
	return nil
}

func groupStatus(status entities.GroupStatus) string {
	attribute := color.FgYellow
	switch status {
	case entities.GroupExecuted:
		attribute = color.FgGreen
	case entities.GroupDryRun:
		attribute = color.FgCyan
	case entities.GroupRejected:
		attribute = color.FgRed
	case entities.GroupSkipped:
	}
	return color.New(attribute).Sprint(string(status))
}
