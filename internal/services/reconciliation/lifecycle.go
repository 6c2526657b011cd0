package reconciliation

// State is the lifecycle position of a (seller, date) arqueo.
type State string

const (
	StateEditableToday    State = "editable_today"
	StateEditableAsUpdate State = "editable_update"
	StateLockedPast       State = "locked_past"
	StateEmptyPast        State = "empty_past"
)

// DeriveState computes the state from scratch. Dates are YYYY-MM-DD keys;
// any date other than today, future ones included, is read-only.
func DeriveState(date, today string, exists bool) State {
	if date == today {
		if exists {
			return StateEditableAsUpdate
		}
		return StateEditableToday
	}
	if exists {
		return StateLockedPast
	}
	return StateEmptyPast
}

func (s State) Mutable() bool {
	return s == StateEditableToday || s == StateEditableAsUpdate
}

// SubmitLabel is the primary button caption, empty when submit is disabled.
func (s State) SubmitLabel() string {
	switch s {
	case StateEditableToday:
		return "Enviar Arqueo"
	case StateEditableAsUpdate:
		return "Actualizar Arqueo"
	default:
		return ""
	}
}
