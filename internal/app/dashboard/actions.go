package dashboard

// ActionName identifies an operator action offered by a dashboard.
type ActionName string

const (
	ActionCreateDepartment ActionName = "create_department"
	ActionDeleteDepartment ActionName = "delete_department"
	ActionCreateAdmin      ActionName = "create_admin"
	ActionAddStudent       ActionName = "add_student"
	ActionAddInstructor    ActionName = "add_instructor"
)

// Action describes one entry in a dashboard's action set. Disabled actions
// are listed so clients can show them, but invoking one returns
// ErrNotImplemented.
type Action struct {
	Name    ActionName `json:"name"`
	Label   string     `json:"label"`
	Enabled bool       `json:"enabled"`
}

func superAdminActions() []Action {
	return []Action{
		{Name: ActionCreateDepartment, Label: "Create Department", Enabled: true},
		{Name: ActionDeleteDepartment, Label: "Delete Department", Enabled: true},
		{Name: ActionCreateAdmin, Label: "Create Admin"},
	}
}

func departmentAdminActions() []Action {
	return []Action{
		{Name: ActionAddStudent, Label: "Add Student"},
		{Name: ActionAddInstructor, Label: "Add Instructor"},
	}
}

// lookupAction finds name in set.
func lookupAction(set []Action, name ActionName) (Action, bool) {
	for _, a := range set {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}
