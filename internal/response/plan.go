package response

import (
	"encoding/json"
	"fmt"
)

// StepKind names the sort of artifact a plan step produces.
type StepKind string

const (
	StepAPI       StepKind = "api"
	StepComponent StepKind = "component"
	StepPage      StepKind = "page"
)

// PlanItem is one artifact in a development plan
type PlanItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Plan is the outline a model returns before writing any code
type Plan struct {
	APIs       []PlanItem `json:"apis"`
	Components []PlanItem `json:"components"`
	Pages      []PlanItem `json:"pages"`
}

// PlanStep is a plan item tagged with its kind
type PlanStep struct {
	Kind StepKind
	Item PlanItem
}

// Title renders the step for progress output.
func (s PlanStep) Title() string {
	return fmt.Sprintf("%s %s", s.Kind, s.Item.Name)
}

// Steps returns the plan in build order: APIs first, then the components
// that consume them, then the pages that compose the components.
func (p *Plan) Steps() []PlanStep {
	if p == nil {
		return nil
	}

	var steps []PlanStep
	add := func(kind StepKind, items []PlanItem) {
		for _, item := range items {
			if item.Name == "" {
				continue
			}
			steps = append(steps, PlanStep{Kind: kind, Item: item})
		}
	}
	add(StepAPI, p.APIs)
	add(StepComponent, p.Components)
	add(StepPage, p.Pages)
	return steps
}

// ExtractPlan finds the first json block describing apis, components or pages.
// Like ExtractDependencies, failure is a warning: the plan is nil.
func ExtractPlan(raw string) (*Plan, error) {
	obj, err := findObject(raw, "apis", "components", "pages")
	if err != nil {
		return nil, err
	}

	var plan Plan
	decode := func(key string, dst *[]PlanItem) error {
		data, ok := obj[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(data, dst); err != nil {
			return &BlockError{Block: string(data), Err: fmt.Errorf("%s: %w", key, err)}
		}
		return nil
	}

	if err := decode("apis", &plan.APIs); err != nil {
		return nil, err
	}
	if err := decode("components", &plan.Components); err != nil {
		return nil, err
	}
	if err := decode("pages", &plan.Pages); err != nil {
		return nil, err
	}
	return &plan, nil
}
