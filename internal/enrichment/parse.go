package enrichment

import (
	"regexp"
	"strings"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

// The upstream record views carry free-text property narratives with no
// guaranteed schema. Parsing is a fixed table of pattern rules over the
// strings collected under each heading; everything here is pure so the rules
// can be tested against literal upstream samples.

var (
	unNumberPattern = regexp.MustCompile(`\bUN\s?(\d{4})\b`)
	celsiusPattern  = regexp.MustCompile(`-?\d+(?:\.\d+)?\s*°\s*C`)
)

type propertyRule struct {
	heading     string
	temperature bool
	assign      func(p *domain.AdditionalProperties, value string)
}

var propertyRules = []propertyRule{
	{"Boiling Point", true, func(p *domain.AdditionalProperties, v string) { p.BoilingPoint = v }},
	{"Melting Point", true, func(p *domain.AdditionalProperties, v string) { p.MeltingPoint = v }},
	{"Flash Point", true, func(p *domain.AdditionalProperties, v string) { p.FlashPoint = v }},
	{"Density", false, func(p *domain.AdditionalProperties, v string) { p.Density = v }},
	{"Vapor Pressure", false, func(p *domain.AdditionalProperties, v string) { p.VaporPressure = v }},
	{"Vapor Density", false, func(p *domain.AdditionalProperties, v string) { p.VaporDensity = v }},
	{"Refractive Index", false, func(p *domain.AdditionalProperties, v string) { p.RefractiveIndex = v }},
}

// ExtractProperties applies the pattern rules to the strings collected per
// upstream heading.
func ExtractProperties(sections map[string][]string) domain.AdditionalProperties {
	var props domain.AdditionalProperties
	for _, rule := range propertyRules {
		candidates := sections[rule.heading]
		if len(candidates) == 0 {
			continue
		}
		value := candidates[0]
		if rule.temperature {
			value = PreferCelsius(candidates)
		}
		rule.assign(&props, strings.TrimSpace(value))
	}

	all := make([]string, 0)
	for _, values := range sections {
		all = append(all, values...)
	}
	props.UNNumber = ExtractUNNumber(all)
	props.PhysicalState = ClassifyPhysicalState(sections["Physical Description"])
	return props
}

// PreferCelsius picks among duplicate temperature readings: when exactly one
// candidate is Celsius-denominated it wins; several Celsius readings are
// concatenated so the ambiguity stays visible; with none the first candidate
// is kept.
func PreferCelsius(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	celsius := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if celsiusPattern.MatchString(candidate) {
			celsius = append(celsius, strings.TrimSpace(candidate))
		}
	}
	switch len(celsius) {
	case 0:
		return strings.TrimSpace(candidates[0])
	case 1:
		return celsius[0]
	default:
		return strings.Join(celsius, "; ")
	}
}

// ExtractUNNumber scans the texts for a UN transport number.
func ExtractUNNumber(texts []string) string {
	for _, text := range texts {
		if match := unNumberPattern.FindStringSubmatch(text); match != nil {
			return "UN" + match[1]
		}
	}
	return ""
}

// ClassifyPhysicalState derives a coarse state from descriptive text.
func ClassifyPhysicalState(texts []string) string {
	joined := strings.ToLower(strings.Join(texts, " "))
	switch {
	case joined == "":
		return ""
	case strings.Contains(joined, "gas") || strings.Contains(joined, "vapor"):
		return "GAS"
	case strings.Contains(joined, "liquid") || strings.Contains(joined, "oil"):
		return "LIQUID"
	case strings.Contains(joined, "solid") || strings.Contains(joined, "powder") ||
		strings.Contains(joined, "crystal") || strings.Contains(joined, "pellets"):
		return "SOLID"
	default:
		return ""
	}
}
