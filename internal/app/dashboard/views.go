package dashboard

import (
	"github.com/dalemusser/collegehub/internal/domain/models"
)

// DepartmentAdminView is the assembled department-admin dashboard. It is
// never mutated after being returned.
type DepartmentAdminView struct {
	Department  models.Department `json:"department"`
	Students    []models.User     `json:"students"`
	Instructors []models.User     `json:"instructors"`
	Courses     []models.Course   `json:"courses"`
	Totals      DepartmentTotals  `json:"totals"`
	Actions     []Action          `json:"actions"`
}

type DepartmentTotals struct {
	Students    int `json:"students"`
	Instructors int `json:"instructors"`
	Courses     int `json:"courses"`
}

// SuperAdminView is the assembled super-admin dashboard. It is never
// mutated after being returned.
type SuperAdminView struct {
	Departments []models.Department `json:"departments"`
	Users       []models.User       `json:"users"`
	Courses     []models.Course     `json:"courses"`
	// StatsByDepartment is keyed by department id hex.
	StatsByDepartment map[string]models.DepartmentStats `json:"stats_by_department"`
	Totals            SystemTotals                      `json:"totals"`
	Admins            []AdminRow                        `json:"admins"`
	CourseRows        []CourseRow                       `json:"course_rows"`
	Actions           []Action                          `json:"actions"`
}

// SystemTotals are counted from the fetched lists only.
type SystemTotals struct {
	Departments int `json:"departments"`
	Students    int `json:"students"`
	Instructors int `json:"instructors"`
	Courses     int `json:"courses"`
}

// AdminRow is one department admin as listed on the admins tab.
type AdminRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Status     string `json:"status"`
}

// CourseRow is one course as listed on the all-courses tab.
type CourseRow struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	InstructorName string       `json:"instructor_name"`
	Level          models.Level `json:"level"`
	Category       string       `json:"category"`
	Department     string       `json:"department"`
}

const (
	notAvailable   = "N/A"
	statusActive   = "Active"
	statusInactive = "Inactive"
)

// partition splits users into students and instructors keeping their
// order. Users with any other role land in neither.
func partition(users []models.User) (students, instructors []models.User) {
	students = []models.User{}
	instructors = []models.User{}
	for _, u := range users {
		switch u.Role {
		case models.RoleStudent:
			students = append(students, u)
		case models.RoleInstructor:
			instructors = append(instructors, u)
		}
	}
	return students, instructors
}

func systemTotals(depts []models.Department, users []models.User, courses []models.Course) SystemTotals {
	t := SystemTotals{Departments: len(depts), Courses: len(courses)}
	for _, u := range users {
		switch u.Role {
		case models.RoleStudent:
			t.Students++
		case models.RoleInstructor:
			t.Instructors++
		}
	}
	return t
}

func departmentNames(depts []models.Department) map[string]string {
	names := make(map[string]string, len(depts))
	for _, d := range depts {
		names[d.ID.Hex()] = d.Name
	}
	return names
}

func adminRows(users []models.User, names map[string]string) []AdminRow {
	rows := []AdminRow{}
	for _, u := range users {
		if u.Role != models.RoleDepartmentAdmin {
			continue
		}
		dept := notAvailable
		if u.DepartmentID != nil {
			if n, ok := names[u.DepartmentID.Hex()]; ok {
				dept = n
			}
		}
		status := statusInactive
		if u.IsActive {
			status = statusActive
		}
		rows = append(rows, AdminRow{
			ID:         u.ID.Hex(),
			Name:       u.FullName,
			Email:      u.Email,
			Department: dept,
			Status:     status,
		})
	}
	return rows
}

func courseRows(courses []models.Course, names map[string]string) []CourseRow {
	rows := make([]CourseRow, 0, len(courses))
	for _, c := range courses {
		dept, ok := names[c.DepartmentID.Hex()]
		if !ok {
			dept = notAvailable
		}
		rows = append(rows, CourseRow{
			ID:             c.ID.Hex(),
			Title:          c.Title,
			InstructorName: c.InstructorName,
			Level:          c.Level,
			Category:       c.Category,
			Department:     dept,
		})
	}
	return rows
}
