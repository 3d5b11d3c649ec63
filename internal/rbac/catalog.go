package rbac

type Permission struct {
	Key         string `json:"key"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

const (
	CategoryHR             = "hr"
	CategoryFinance        = "finance"
	CategoryAdministration = "administration"
)

// SuperAdmin は行の有無に関わらず全権限を持つ
const SuperAdmin = "super_admin"

var Roles = []string{SuperAdmin, "admin", "hr_manager", "hr_staff", "recruiter", "employee"}

var Catalog = buildCatalog()

func buildCatalog() []Permission {
	areas := []struct {
		area, category, label string
	}{
		{"employees", CategoryHR, "employee records"},
		{"attendance", CategoryHR, "attendance records"},
		{"recruitment", CategoryHR, "recruitment pipeline"},
		{"masterdata", CategoryHR, "reference data"},
		{"cost_centers", CategoryFinance, "cost centers"},
		{"budget", CategoryFinance, "budget"},
		{"users", CategoryAdministration, "user accounts"},
		{"roles", CategoryAdministration, "roles and permissions"},
	}
	verbs := []string{"read", "create", "update", "delete"}

	out := make([]Permission, 0, len(areas)*len(verbs)+len(extra))
	for _, a := range areas {
		for _, v := range verbs {
			out = append(out, Permission{
				Key:         a.area + "." + v,
				Category:    a.category,
				Description: v + " " + a.label,
			})
		}
	}
	return append(out, extra...)
}

// 動詞 4 種に収まらない操作
var extra = []Permission{
	{Key: "attendance.process", Category: CategoryHR, Description: "process raw attendance"},
	{Key: "attendance.approve", Category: CategoryHR, Description: "confirm and approve attendance"},
	{Key: "recruitment.approve", Category: CategoryHR, Description: "approve recruitment requests"},
	{Key: "sequences.manage", Category: CategoryAdministration, Description: "issue and validate employee ID sequences"},
	{Key: "settings.read", Category: CategoryAdministration, Description: "read settings"},
	{Key: "settings.update", Category: CategoryAdministration, Description: "update settings"},
}

func IsKnownPermission(key string) bool {
	for _, p := range Catalog {
		if p.Key == key {
			return true
		}
	}
	return false
}

func IsKnownRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
