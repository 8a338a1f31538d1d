package intake

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

const noResponse = "_no response_"

var (
	headingPattern  = regexp.MustCompile(`(?m)^###\s+(.+?)\s*$`)
	checkboxPattern = regexp.MustCompile(`(?m)^\s*[-*]\s+\[([ xX])\]\s+(.+?)\s*$`)
	listItemPattern = regexp.MustCompile(`^\s*(?:[-*]\s+|\d+\.\s+)`)
	separators      = regexp.MustCompile(`[\s,]+`)
)

// ErrNoReferences is returned when the form names no repository or organization.
var ErrNoReferences = errors.New("issue form lists no repositories or organizations")

// IssueFormParser turns the body of a GitHub issue form into a Submission
// carrying an EnablementRequest. The raw body stops here.
type IssueFormParser struct{}

// NewIssueFormParser creates a new IssueFormParser.
func NewIssueFormParser() *IssueFormParser {
	return &IssueFormParser{}
}

// Submission is a parsed issue form. HeadroomSet is true when the form
// answered the headroom question, so an explicit 0 is kept.
type Submission struct {
	Request     entities.EnablementRequest
	HeadroomSet bool
}

// Parse reads the recognized sections; unknown headings are ignored.
func (it *IssueFormParser) Parse(body string) (Submission, error) {
	var submission Submission
	request := &submission.Request

	for _, part := range sections(body) {
		content := part.content
		switch classifyHeading(part.heading) {
		case sectionReferences:
			request.References = append(request.References, parseReferences(content)...)
		case sectionFeatures:
			features, err := parseFeatures(content)
			if err != nil {
				return Submission{}, err
			}
			request.Features = features
		case sectionHeadroom:
			headroom, answered, err := parseHeadroom(content)
			if err != nil {
				return Submission{}, err
			}
			request.MinHeadroom = headroom
			submission.HeadroomSet = answered
		case sectionSkipLicense:
			request.SkipLicenseCheck = parseFlag(content)
		case sectionDryRun:
			request.DryRun = parseFlag(content)
		default:
			logger.Debugf("Ignoring issue form section %q", part.heading)
		}
	}

	if len(request.References) == 0 {
		return Submission{}, ErrNoReferences
	}
	return submission, nil
}

type section int

const (
	sectionUnknown section = iota
	sectionReferences
	sectionFeatures
	sectionHeadroom
	sectionSkipLicense
	sectionDryRun
)

func classifyHeading(heading string) section {
	normalized := strings.ToLower(heading)
	switch {
	case strings.Contains(normalized, "repositor"), strings.Contains(normalized, "organization"):
		return sectionReferences
	case strings.Contains(normalized, "feature"):
		return sectionFeatures
	case strings.Contains(normalized, "headroom"):
		return sectionHeadroom
	case strings.Contains(normalized, "license check"):
		return sectionSkipLicense
	case strings.Contains(normalized, "dry run"), strings.Contains(normalized, "dry-run"):
		return sectionDryRun
	default:
		return sectionUnknown
	}
}

type formSection struct {
	heading string
	content string
}

// sections splits the body on "### " headings, in document order.
func sections(body string) []formSection {
	body = strings.ReplaceAll(body, "\r\n", "\n")

	matches := headingPattern.FindAllStringSubmatchIndex(body, -1)
	result := make([]formSection, 0, len(matches))
	for i, match := range matches {
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		content := strings.TrimSpace(body[match[1]:end])
		if strings.EqualFold(content, noResponse) {
			content = ""
		}
		result = append(result, formSection{heading: body[match[2]:match[3]], content: content})
	}
	return result
}

func parseReferences(content string) []string {
	var references []string
	for _, line := range strings.Split(content, "\n") {
		line = listItemPattern.ReplaceAllString(line, "")
		for _, field := range separators.Split(strings.TrimSpace(line), -1) {
			if field != "" {
				references = append(references, field)
			}
		}
	}
	return references
}

func parseFeatures(content string) (entities.FeatureSelection, error) {
	var kinds []entities.FeatureKind
	for _, match := range checkboxPattern.FindAllStringSubmatch(content, -1) {
		if strings.TrimSpace(match[1]) == "" {
			continue
		}
		kind, err := entities.ParseFeatureKind(match[2])
		if err != nil {
			return nil, fmt.Errorf("features section: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return entities.NewFeatureSelection(kinds...), nil
}

func parseHeadroom(content string) (int, bool, error) {
	value := strings.TrimSpace(content)
	if value == "" {
		return 0, false, nil
	}
	headroom, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("minimum headroom %q is not a number: %w", content, err)
	}
	if headroom < 0 {
		return 0, false, fmt.Errorf("minimum headroom must not be negative, got %d", headroom)
	}
	return headroom, true, nil
}

// parseFlag accepts a checked checkbox or a yes/true answer.
func parseFlag(content string) bool {
	for _, match := range checkboxPattern.FindAllStringSubmatch(content, -1) {
		if strings.TrimSpace(match[1]) != "" {
			return true
		}
	}
	switch strings.ToLower(strings.TrimSpace(content)) {
	case "yes", "true", "y":
		return true
	default:
		return false
	}
}
