package mdv

import (
	"errors"
	"strings"
	"testing"
)

func validRequest() DeploymentRequest {
	return DeploymentRequest{
		EnvironmentURL:      "https://contoso.crm.dynamics.com",
		SolutionUniqueName:  "CustomerSolution",
		PublisherUniqueName: "Contoso",
		PublisherPrefix:     "ctso",
	}
}

func TestDeploymentRequest_Validate(t *testing.T) {
	valid := validRequest()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*DeploymentRequest)
	}{
		{"missing environment URL", func(r *DeploymentRequest) { r.EnvironmentURL = "" }},
		{"http URL", func(r *DeploymentRequest) { r.EnvironmentURL = "http://contoso.crm.dynamics.com" }},
		{"missing solution", func(r *DeploymentRequest) { r.SolutionUniqueName = "" }},
		{"missing publisher", func(r *DeploymentRequest) { r.PublisherUniqueName = "" }},
		{"missing prefix", func(r *DeploymentRequest) { r.PublisherPrefix = "" }},
		{"uppercase prefix", func(r *DeploymentRequest) { r.PublisherPrefix = "Ctso" }},
		{"one-char prefix", func(r *DeploymentRequest) { r.PublisherPrefix = "c" }},
		{"nine-char prefix", func(r *DeploymentRequest) { r.PublisherPrefix = "abcdefghi" }},
		{"digit-leading prefix", func(r *DeploymentRequest) { r.PublisherPrefix = "1abc" }},
		{"unnamed choice set", func(r *DeploymentRequest) {
			r.ChoiceSets = []ChoiceSet{{Options: []ChoiceOption{{Label: "A", Value: 1}}}}
		}},
		{"optionless choice set", func(r *DeploymentRequest) {
			r.ChoiceSets = []ChoiceSet{{Name: "tier"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validRequest()
			tt.mutate(&request)
			err := request.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestDeploymentRequest_ValidateCollectsAllErrors(t *testing.T) {
	err := (&DeploymentRequest{}).Validate()
	if err == nil {
		t.Fatal("expected error for empty request")
	}
	// All four required fields should be reported at once.
	for _, want := range []string{"EnvironmentURL", "SolutionUniqueName", "PublisherUniqueName", "PublisherPrefix"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in %q", want, err.Error())
		}
	}
}

func TestParseResult_Entity(t *testing.T) {
	result := &ParseResult{Entities: []Entity{{Name: "Customer"}, {Name: "Order"}}}

	if entity, ok := result.Entity("Order"); !ok || entity.Name != "Order" {
		t.Errorf("Entity(Order) = %v, %v", entity, ok)
	}
	if _, ok := result.Entity("Missing"); ok {
		t.Error("expected lookup miss for unknown entity")
	}
}
