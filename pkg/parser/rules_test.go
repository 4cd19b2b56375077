package parser

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleSet_PrimaryThenFallback(t *testing.T) {
	rules := RuleSet{
		{
			Name:     "id",
			Primary:  regexp.MustCompile(`ID:\s*(\w+)`),
			Fallback: regexp.MustCompile(`\b(X\d+)`),
		},
		{
			Name:    "name",
			Primary: regexp.MustCompile(`Name:\s*(\w+)`),
		},
	}

	fields := rules.Apply("ID: abc and X42")
	id, ok := fields.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	fields = rules.Apply("only X42 here")
	id, ok = fields.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "X42", id)

	_, ok = fields.Get("name")
	assert.False(t, ok)
	assert.Equal(t, "nobody", fields.GetOr("name", "nobody"))
}

func TestRuleSet_Rule(t *testing.T) {
	rule, ok := VoucherRules.Rule(FieldBookingID)
	assert.True(t, ok)
	assert.NotNil(t, rule.Fallback)

	_, ok = VoucherRules.Rule("missing")
	assert.False(t, ok)
}

func TestFieldRule_NilMatchers(t *testing.T) {
	_, ok := FieldRule{Name: "empty"}.Match("anything")
	assert.False(t, ok)
}
