package bootstrap

import (
	"context"
	"testing"
)

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{
		"config:load",
		"logging:init-provider",
		"storage:init-database",
		"knowledge:load",
		"cache:init-store",
		"analysis:init-orchestrator",
		"history:subscribe-events",
		"auth:init-token",
	}
	if len(steps) != len(want) {
		t.Fatalf("unexpected step count: got %d want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.ID != want[i] {
			t.Fatalf("step %d mismatch: got %s want %s", i, step.ID, want[i])
		}
	}
}

func TestInitGraphDependenciesSatisfied(t *testing.T) {
	steps := InitGraph()
	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := seen[dep]; !ok {
				t.Errorf("step %s depends on %s which does not precede it", step.ID, dep)
			}
		}
		seen[step.ID] = struct{}{}
	}
}

func TestExecuteInitStepsRejectsMissingDependency(t *testing.T) {
	steps := []initStep{
		{
			ID:        "b",
			DependsOn: []string{"a"},
			Execute:   func(context.Context, *appState) error { return nil },
		},
	}
	if err := executeInitSteps(context.Background(), steps, &appState{}); err == nil {
		t.Fatal("expected error for unsatisfied dependency")
	}
}

func TestExecuteInitStepsRejectsNilState(t *testing.T) {
	if err := executeInitSteps(context.Background(), InitGraph(), nil); err == nil {
		t.Fatal("expected error for nil state")
	}
}
