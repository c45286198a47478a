package category

// Label identifies the attacker intent behind a captured command.
type Label string

const (
	Reconnaissance      Label = "reconnaissance"
	Persistence         Label = "persistence"
	PrivilegeEscalation Label = "privilege_escalation"
	LateralMovement     Label = "lateral_movement"
	DataExfiltration    Label = "data_exfiltration"
	Miscellaneous       Label = "miscellaneous"
)

// All returns the closed category set in sorted order. Categories are fixed;
// nothing in the system creates new ones at runtime.
func All() []Label {
	return []Label{
		DataExfiltration,
		LateralMovement,
		Miscellaneous,
		Persistence,
		PrivilegeEscalation,
		Reconnaissance,
	}
}

func Valid(l Label) bool {
	switch l {
	case Reconnaissance, Persistence, PrivilegeEscalation, LateralMovement, DataExfiltration, Miscellaneous:
		return true
	}
	return false
}
