package response

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlan(t *testing.T) {
	raw := "##### PLAN\n\n```json\n{\n" +
		"  \"apis\": [{ \"name\": \"todos\", \"description\": \"CRUD for todos\" }],\n" +
		"  \"components\": [{ \"name\": \"TodoList\", \"description\": \"lists todos\" }],\n" +
		"  \"pages\": [{ \"name\": \"Home\", \"description\": \"renders TodoList\" }],\n" +
		"}\n```"

	plan, err := ExtractPlan(raw)
	require.NoError(t, err)

	steps := plan.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, StepAPI, steps[0].Kind)
	assert.Equal(t, "todos", steps[0].Item.Name)
	assert.Equal(t, StepComponent, steps[1].Kind)
	assert.Equal(t, StepPage, steps[2].Kind)
	assert.Equal(t, "page Home", steps[2].Title())
}

func TestExtractPlan_Missing(t *testing.T) {
	plan, err := ExtractPlan("Sure! Here's what I'd do.")

	assert.Nil(t, plan)
	assert.True(t, errors.Is(err, ErrNoJSONBlock))
	assert.Nil(t, plan.Steps())
}

func TestExtractPlan_IgnoresModulesBlock(t *testing.T) {
	_, err := ExtractPlan("```json\n{\"modules\":[]}\n```")

	var blockErr *BlockError
	assert.True(t, errors.As(err, &blockErr))
	assert.True(t, errors.Is(err, ErrNoMatchingBlock))
}

func TestPlanSteps_SkipsUnnamed(t *testing.T) {
	plan := &Plan{Components: []PlanItem{{Name: ""}, {Name: "Card"}}}

	steps := plan.Steps()

	require.Len(t, steps, 1)
	assert.Equal(t, "Card", steps[0].Item.Name)
}
