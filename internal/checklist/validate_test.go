package checklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(value interface{}) Response {
	return Response{Value: value, Timestamp: time.Now(), Inspector: "tester"}
}

// buildTemplate returns a section -> group -> items tree covering the
// required and critical rules.
func buildTemplate() []*Section {
	return []*Section{
		{
			ID:    "sec-mech",
			Title: "Mechanical",
			Order: 0,
			Elements: []Element{
				&Group{
					ID:    "grp-frame",
					Title: "Frame",
					Order: 0,
					Elements: []Element{
						&Item{
							ID:        "item-bumpers",
							Title:     "Bumpers secure",
							Order:     0,
							InputType: InputBoolean,
							Critical:  true,
							Validation: []Rule{
								{Type: RuleRequired, Message: "check bumpers"},
							},
						},
						&Item{
							ID:        "item-weight",
							Title:     "Robot weight (lbs)",
							Order:     1,
							InputType: InputNumber,
							Validation: []Rule{
								{Type: RuleRequired},
								{Type: RuleMax, Value: 125},
							},
						},
					},
				},
				&Item{
					ID:        "item-notes",
					Title:     "Notes",
					Order:     1,
					InputType: InputText,
				},
			},
		},
	}
}

func TestValidateEmptyResponsesIncomplete(t *testing.T) {
	result := Validate(buildTemplate(), Responses{})

	assert.False(t, result.IsComplete)
	assert.Empty(t, result.CriticalFailures)
}

func TestValidateAllRequiredAnsweredComplete(t *testing.T) {
	responses := Responses{
		"item-bumpers": respond(true),
		"item-weight":  respond(112.4),
	}

	result := Validate(buildTemplate(), responses)

	assert.True(t, result.IsComplete)
	assert.Empty(t, result.CriticalFailures)
}

func TestValidateCriticalFalseFlagged(t *testing.T) {
	responses := Responses{
		"item-bumpers": respond(false),
		"item-weight":  respond(112.4),
	}

	result := Validate(buildTemplate(), responses)

	assert.True(t, result.IsComplete, "explicit false still counts as answered")
	assert.Equal(t, []string{"item-bumpers"}, result.CriticalFailures)
}

func TestValidateCriticalOnlyLiteralFalse(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"zero", 0},
		{"float zero", 0.0},
		{"empty string", ""},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := Responses{"item-bumpers": respond(tt.value)}
			result := Validate(buildTemplate(), responses)
			assert.Empty(t, result.CriticalFailures,
				"value %#v must not trigger the critical rule", tt.value)
		})
	}
}

func TestValidateCriticalMissingResponseNotFlagged(t *testing.T) {
	result := Validate(buildTemplate(), Responses{})
	assert.Empty(t, result.CriticalFailures)
}

func TestValidateOptionalItemIgnored(t *testing.T) {
	// item-notes carries no required rule, leaving it unanswered is fine
	responses := Responses{
		"item-bumpers": respond(true),
		"item-weight":  respond(100),
	}

	result := Validate(buildTemplate(), responses)
	assert.True(t, result.IsComplete)
}

func TestValidateDeterministic(t *testing.T) {
	responses := Responses{
		"item-bumpers": respond(false),
	}

	first := Validate(buildTemplate(), responses)
	second := Validate(buildTemplate(), responses)

	assert.Equal(t, first, second)
}

func TestValidateEmptyContainerContributesNothing(t *testing.T) {
	sections := []*Section{
		{ID: "sec-empty", Title: "Empty", Elements: []Element{
			&Group{ID: "grp-empty", Title: "Nothing here"},
		}},
	}

	result := Validate(sections, Responses{})
	assert.True(t, result.IsComplete)
	assert.Empty(t, result.CriticalFailures)
}

func TestNextIncomplete(t *testing.T) {
	template := buildTemplate()

	item := NextIncomplete(template, Responses{})
	require.NotNil(t, item)
	assert.Equal(t, "item-bumpers", item.ID)

	item = NextIncomplete(template, Responses{"item-bumpers": respond(true)})
	require.NotNil(t, item)
	assert.Equal(t, "item-weight", item.ID)

	item = NextIncomplete(template, Responses{
		"item-bumpers": respond(true),
		"item-weight":  respond(120),
	})
	assert.Nil(t, item)
}

func TestCountItems(t *testing.T) {
	assert.Equal(t, 3, CountItems(buildTemplate()))
}

func TestSummarize(t *testing.T) {
	responses := Responses{"item-weight": respond(99)}

	summaries := Summarize(buildTemplate(), responses)

	require.Len(t, summaries, 1)
	assert.Equal(t, "sec-mech", summaries[0].SectionID)
	assert.Equal(t, 3, summaries[0].Total)
	assert.Equal(t, 1, summaries[0].Answered)
}
