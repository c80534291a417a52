package models

import "fmt"

// CheckWorkflowState is the explicit state of a single check's compliance
// workflow. The source of truth for each transition is the entity writes the
// services perform; the state type exists so illegal transitions (e.g.
// recording a corrective action with no open incident) are rejected up front
// instead of silently tolerated.
type CheckWorkflowState string

const (
	// StatePending: check submitted, not yet evaluated.
	StatePending CheckWorkflowState = "pending"
	// StatePassed: check evaluated as passing; terminal unless it resolves
	// an open incident for the same CCP.
	StatePassed CheckWorkflowState = "passed"
	// StateIncidentOpen: check failed and its incident record exists.
	StateIncidentOpen CheckWorkflowState = "incident_open"
	// StateActionRecorded: remediation chosen; incident still open.
	StateActionRecorded CheckWorkflowState = "action_recorded"
	// StateResolved: a subsequent passing check closed the incident.
	StateResolved CheckWorkflowState = "resolved"
)

// WorkflowEvent drives transitions between workflow states.
type WorkflowEvent string

const (
	EventEvaluatedPass  WorkflowEvent = "evaluated_pass"
	EventEvaluatedFail  WorkflowEvent = "evaluated_fail"
	EventActionRecorded WorkflowEvent = "action_recorded"
	EventRecheckPassed  WorkflowEvent = "recheck_passed"
)

// transitions is the full set of legal state changes.
var transitions = map[CheckWorkflowState]map[WorkflowEvent]CheckWorkflowState{
	StatePending: {
		EventEvaluatedPass: StatePassed,
		EventEvaluatedFail: StateIncidentOpen,
	},
	StateIncidentOpen: {
		EventActionRecorded: StateActionRecorded,
		EventRecheckPassed:  StateResolved,
	},
	StateActionRecorded: {
		EventRecheckPassed: StateResolved,
	},
}

// Transition applies an event to a state, returning the next state or an
// error if the transition is not legal.
func Transition(from CheckWorkflowState, event WorkflowEvent) (CheckWorkflowState, error) {
	next, ok := transitions[from][event]
	if !ok {
		return from, fmt.Errorf("illegal workflow transition: %s on %s", event, from)
	}
	return next, nil
}
