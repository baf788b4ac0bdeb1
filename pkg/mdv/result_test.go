package mdv

import (
	"strings"
	"testing"
	"time"
)

func TestDeploymentResult_Summary(t *testing.T) {
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	result := &DeploymentResult{
		Success: true,
		Counts: ResultCounts{
			EntitiesCreated:      3,
			EntitiesExisting:     1,
			AttributesCreated:    7,
			RelationshipsCreated: 2,
			ChoiceSetsCreated:    1,
		},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}

	summary := result.Summary()
	for _, want := range []string{
		"Deployment succeeded",
		"3 entities created",
		"1 already existed",
		"7 attributes created",
		"2 relationships created",
		"1 choice sets created",
		"in 1.5s",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, missing %q", summary, want)
		}
	}
}

func TestDeploymentResult_SummaryFailuresAndSkips(t *testing.T) {
	result := &DeploymentResult{
		Success: false,
		Counts:  ResultCounts{Failed: 2, Skipped: 3},
	}

	summary := result.Summary()
	if !strings.Contains(summary, "Deployment failed") {
		t.Errorf("Summary() = %q", summary)
	}
	if !strings.Contains(summary, "(2 failed, 3 skipped)") {
		t.Errorf("Summary() = %q", summary)
	}
}

func TestDeploymentResult_SummaryCleanup(t *testing.T) {
	result := &DeploymentResult{
		Success: true,
		Counts:  ResultCounts{Deleted: 5, CanonicalIntegrated: 1},
	}

	summary := result.Summary()
	if !strings.Contains(summary, "5 objects deleted") {
		t.Errorf("Summary() = %q", summary)
	}
	if !strings.Contains(summary, "1 canonical entities integrated") {
		t.Errorf("Summary() = %q", summary)
	}
}

func TestDeploymentPlan_OperationsOfKind(t *testing.T) {
	plan := &DeploymentPlan{Operations: []Operation{
		{Kind: OpEnsurePublisher, Name: "pub"},
		{Kind: OpCreateEntity, Name: "a"},
		{Kind: OpCreateEntity, Name: "b"},
		{Kind: OpCreateRelationship, Name: "rel"},
	}}

	entities := plan.OperationsOfKind(OpCreateEntity)
	if len(entities) != 2 || entities[0].Name != "a" || entities[1].Name != "b" {
		t.Errorf("OperationsOfKind(OpCreateEntity) = %v", entities)
	}
	if got := plan.OperationsOfKind(OpCreateChoiceSet); got != nil {
		t.Errorf("expected nil for absent kind, got %v", got)
	}
}
