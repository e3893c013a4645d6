package domain

import "fmt"

// Command names a requested state transition on a stateful entity.
type Command string

// Alarm commands.
const (
	CmdAcknowledge Command = "acknowledge"
	CmdShelve      Command = "shelve"
	CmdClear       Command = "clear"
	CmdReactivate  Command = "reactivate"
)

// Batch commands.
const (
	CmdStart    Command = "start"
	CmdHold     Command = "hold"
	CmdResume   Command = "resume"
	CmdAdvance  Command = "advance"
	CmdComplete Command = "complete"
	CmdAbort    Command = "abort"
)

// Change commands.
const (
	CmdSubmit    Command = "submit"
	CmdApprove   Command = "approve"
	CmdReject    Command = "reject"
	CmdImplement Command = "implement"
	CmdClose     Command = "close"
)

// Maintenance commands.
const (
	CmdStartWork    Command = "start_work"
	CmdCompleteWork Command = "complete_work"
)

// Machine is a finite-state machine expressed as an explicit transition
// table: state x command -> next state. Commands missing from the table are
// rejected, which replaces the ad hoc guard conditionals of the source
// system with a single dispatcher.
type Machine[S ~string] struct {
	entity EntityType
	table  map[S]map[Command]S
}

// NewMachine builds a machine for the given entity from a transition table.
func NewMachine[S ~string](entity EntityType, table map[S]map[Command]S) Machine[S] {
	return Machine[S]{entity: entity, table: table}
}

// Entity returns the entity type the machine governs.
func (m Machine[S]) Entity() EntityType { return m.entity }

// Next returns the state reached by applying command in state from. It
// returns a TransitionError when the table defines no such edge.
func (m Machine[S]) Next(id string, from S, cmd Command) (S, error) {
	if next, ok := m.table[from][cmd]; ok {
		return next, nil
	}
	var zero S
	return zero, TransitionError{Entity: m.entity, ID: id, From: string(from), Command: cmd}
}

// Allows reports whether command is valid in state from.
func (m Machine[S]) Allows(from S, cmd Command) bool {
	_, ok := m.table[from][cmd]
	return ok
}

// Reachable reports whether some command leads from state from to state to.
// Self edges count only when the table defines one.
func (m Machine[S]) Reachable(from, to S) bool {
	for _, next := range m.table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no command leads out of the given state.
func (m Machine[S]) Terminal(s S) bool {
	return len(m.table[s]) == 0
}

// Known reports whether the state appears anywhere in the table.
func (m Machine[S]) Known(s S) bool {
	if _, ok := m.table[s]; ok {
		return true
	}
	for _, edges := range m.table {
		for _, next := range edges {
			if next == s {
				return true
			}
		}
	}
	return false
}

// TransitionError reports a command issued against an entity whose current
// state defines no edge for it.
type TransitionError struct {
	Entity  EntityType
	ID      string
	From    string
	Command Command
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s from state %s", e.Entity, e.ID, e.Command, e.From)
}

// AlarmMachine returns the alarm lifecycle machine. Cleared is terminal;
// shelved alarms reactivate when their shelve window lapses, and shelving
// again while shelved extends the window.
func AlarmMachine() Machine[AlarmState] {
	return NewMachine(EntityAlarm, map[AlarmState]map[Command]AlarmState{
		AlarmActive: {
			CmdAcknowledge: AlarmAcknowledged,
			CmdShelve:      AlarmShelved,
			CmdClear:       AlarmCleared,
		},
		AlarmAcknowledged: {
			CmdShelve: AlarmShelved,
			CmdClear:  AlarmCleared,
		},
		AlarmShelved: {
			CmdShelve:     AlarmShelved,
			CmdReactivate: AlarmActive,
			CmdClear:      AlarmCleared,
		},
		AlarmCleared: {},
	})
}

// BatchMachine returns the ISA-88 style batch execution machine. Complete
// and aborted are terminal; advance is a self-edge on running.
func BatchMachine() Machine[BatchState] {
	return NewMachine(EntityBatch, map[BatchState]map[Command]BatchState{
		BatchIdle: {
			CmdStart: BatchRunning,
		},
		BatchRunning: {
			CmdHold:     BatchHolding,
			CmdAdvance:  BatchRunning,
			CmdComplete: BatchComplete,
			CmdAbort:    BatchAborted,
		},
		BatchHolding: {
			CmdResume:   BatchRunning,
			CmdComplete: BatchComplete,
			CmdAbort:    BatchAborted,
		},
		BatchComplete: {},
		BatchAborted:  {},
	})
}

// ChangeMachine returns the change-control workflow machine. Rejected and
// closed are terminal.
func ChangeMachine() Machine[ChangeStatus] {
	return NewMachine(EntityChange, map[ChangeStatus]map[Command]ChangeStatus{
		ChangeDraft: {
			CmdSubmit: ChangePendingReview,
		},
		ChangePendingReview: {
			CmdApprove: ChangeApproved,
			CmdReject:  ChangeRejected,
		},
		ChangeApproved: {
			CmdImplement: ChangeImplemented,
		},
		ChangeImplemented: {
			CmdClose: ChangeClosed,
		},
		ChangeRejected: {},
		ChangeClosed:   {},
	})
}

// MaintenanceMachine returns the linear maintenance workflow machine.
func MaintenanceMachine() Machine[MaintenanceStatus] {
	return NewMachine(EntityMaintenance, map[MaintenanceStatus]map[Command]MaintenanceStatus{
		MaintenanceScheduled: {
			CmdStartWork: MaintenanceInProgress,
		},
		MaintenanceInProgress: {
			CmdCompleteWork: MaintenanceComplete,
		},
		MaintenanceComplete: {},
	})
}

// NormalizeBatchState maps the legacy "held" spelling onto the canonical
// holding state. Snapshot import applies it to data written by older builds.
func NormalizeBatchState(s BatchState) BatchState {
	if s == "held" {
		return BatchHolding
	}
	return s
}
