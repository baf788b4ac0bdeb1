package mdv

import "context"

// Approver handles user interaction for approval workflows, particularly
// for the destructive cleanup command that deletes deployed schema objects.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the solution name to confirm
type Approver interface {
	// RequestApproval prompts for confirmation before deleting the schema
	// objects belonging to the named solution.
	//
	// Returns true if approved, false if denied.
	RequestApproval(ctx context.Context, solutionName string) (bool, error)
}
