package parser

import (
	"regexp"
	"strings"
)

// FieldRule extracts one named field. The value is the first capture group
// of Primary; Fallback is tried only when Primary does not match.
type FieldRule struct {
	Name     string
	Primary  *regexp.Regexp
	Fallback *regexp.Regexp
}

// Match applies the rule to text
func (r FieldRule) Match(text string) (string, bool) {
	if v, ok := firstGroup(r.Primary, text); ok {
		return v, true
	}
	return firstGroup(r.Fallback, text)
}

func firstGroup(re *regexp.Regexp, text string) (string, bool) {
	if re == nil {
		return "", false
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Fields holds the values captured by a RuleSet. Unmatched fields are absent.
type Fields map[string]string

// Get returns a field value and whether it was captured
func (f Fields) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// GetOr returns the field value or def when it was not captured
func (f Fields) GetOr(name, def string) string {
	if v, ok := f[name]; ok && v != "" {
		return v
	}
	return def
}

// RuleSet is an ordered list of field rules evaluated independently
type RuleSet []FieldRule

// Apply evaluates every rule against text
func (rs RuleSet) Apply(text string) Fields {
	fields := make(Fields, len(rs))
	for _, rule := range rs {
		if v, ok := rule.Match(text); ok {
			fields[rule.Name] = v
		}
	}
	return fields
}

// Rule returns the rule with the given name
func (rs RuleSet) Rule(name string) (FieldRule, bool) {
	for _, rule := range rs {
		if rule.Name == name {
			return rule, true
		}
	}
	return FieldRule{}, false
}
