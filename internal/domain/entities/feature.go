package entities

import (
	"fmt"
	"strings"
)

// FeatureKind is a security feature that can be enabled on a repository.
type FeatureKind string

const (
	FeatureSecretScanning   FeatureKind = "secret_scanning"
	FeaturePushProtection   FeatureKind = "push_protection"
	FeatureCodeScanning     FeatureKind = "code_scanning"
	FeatureDependabotAlerts FeatureKind = "dependabot_alerts"
)

// AllFeatures lists every supported feature in enablement order.
func AllFeatures() []FeatureKind {
	return []FeatureKind{
		FeatureSecretScanning,
		FeaturePushProtection,
		FeatureCodeScanning,
		FeatureDependabotAlerts,
	}
}

// ParseFeatureKind accepts the canonical names plus a few common spellings
// ("secret-scanning", "Secret scanning", "dependency alerts").
func ParseFeatureKind(raw string) (FeatureKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	switch normalized {
	case "secret_scanning", "secrets":
		return FeatureSecretScanning, nil
	case "push_protection", "secret_scanning_push_protection":
		return FeaturePushProtection, nil
	case "code_scanning", "codeql":
		return FeatureCodeScanning, nil
	case "dependabot_alerts", "dependency_alerts", "dependabot", "vulnerability_alerts":
		return FeatureDependabotAlerts, nil
	default:
		return "", fmt.Errorf("unknown feature %q", raw)
	}
}

// FeatureSelection is an ordered, duplicate-free list of features.
type FeatureSelection []FeatureKind

// NewFeatureSelection deduplicates kinds and orders them as AllFeatures does.
func NewFeatureSelection(kinds ...FeatureKind) FeatureSelection {
	wanted := make(map[FeatureKind]bool, len(kinds))
	for _, kind := range kinds {
		wanted[kind] = true
	}

	selection := make(FeatureSelection, 0, len(wanted))
	for _, kind := range AllFeatures() {
		if wanted[kind] {
			selection = append(selection, kind)
		}
	}
	return selection
}

// Has reports whether kind is selected.
func (s FeatureSelection) Has(kind FeatureKind) bool {
	for _, selected := range s {
		if selected == kind {
			return true
		}
	}
	return false
}

// BillingProduct picks the product key used when the billing endpoint
// demands one. Secret scanning alone maps to secret protection; every other
// combination, including an empty selection, maps to code security.
func (s FeatureSelection) BillingProduct() BillingProduct {
	if s.Has(FeatureSecretScanning) && !s.Has(FeatureCodeScanning) {
		return BillingProductSecretProtection
	}
	return BillingProductCodeSecurity
}

func (s FeatureSelection) String() string {
	names := make([]string, 0, len(s))
	for _, kind := range s {
		names = append(names, string(kind))
	}
	return strings.Join(names, ",")
}

// BillingProduct selects which security product's billing data is requested.
// The empty value means the request is not parameterized.
type BillingProduct string

const (
	BillingProductNone             BillingProduct = ""
	BillingProductCodeSecurity     BillingProduct = "code_security"
	BillingProductSecretProtection BillingProduct = "secret_protection"
)
