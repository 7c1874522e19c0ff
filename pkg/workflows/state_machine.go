package workflows

// StateMachine enforces status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a state machine from an explicit transition table
func NewStateMachine(transitions map[string][]string) *StateMachine {
	return &StateMachine{allowedTransitions: transitions}
}

// NewProjectStateMachine returns the research project lifecycle.
// Draft projects become Active once outputs are recorded and Funded once the
// pool reaches the goal. Archived is terminal.
func NewProjectStateMachine() *StateMachine {
	return NewStateMachine(map[string][]string{
		"Draft":    {"Active", "Archived"},
		"Active":   {"Funded", "Archived"},
		"Funded":   {"Archived"},
		"Archived": {},
	})
}

// NewReproducibilityStateMachine returns the PoR lifecycle. A submission
// starts Waiting and never reverts once resolved.
func NewReproducibilityStateMachine() *StateMachine {
	return NewStateMachine(map[string][]string{
		"Waiting":  {"Success", "Disputed"},
		"Success":  {},
		"Disputed": {},
	})
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// IsTerminal reports whether no transition leaves the given status
func (sm *StateMachine) IsTerminal(status string) bool {
	return len(sm.GetAllowedTransitions(status)) == 0
}
