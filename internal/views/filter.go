package views

// All is the sentinel for "no filter" on project, namespace and status.
const All = "ALL"

const PageSize = 10

// Filter is the user-controlled part of a dashboard. Changing anything but
// the page sends the user back to page 1.
type Filter struct {
	Project   string
	Namespace string
	Status    string
	Search    string
	Page      int
}

func NewFilter() Filter {
	return Filter{
		Project:   All,
		Namespace: All,
		Status:    All,
		Page:      1,
	}
}

// WithProject also resets the namespace, since the namespaces on offer
// depend on the project.
func (f Filter) WithProject(project string) Filter {
	if project == f.Project {
		return f
	}
	f.Project = orAll(project)
	f.Namespace = All
	f.Page = 1
	return f
}

func (f Filter) WithNamespace(namespace string) Filter {
	if namespace == f.Namespace {
		return f
	}
	f.Namespace = orAll(namespace)
	f.Page = 1
	return f
}

func (f Filter) WithStatus(status string) Filter {
	if status == f.Status {
		return f
	}
	f.Status = orAll(status)
	f.Page = 1
	return f
}

func (f Filter) WithSearch(search string) Filter {
	if search == f.Search {
		return f
	}
	f.Search = search
	f.Page = 1
	return f
}

func (f Filter) WithPage(page int) Filter {
	f.Page = page
	return f
}

func orAll(v string) string {
	if v == "" {
		return All
	}
	return v
}

func matches(selected, value string) bool {
	return selected == All || selected == "" || selected == value
}

// TotalPages is ceil(count / PageSize).
func TotalPages(count int) int {
	return (count + PageSize - 1) / PageSize
}

// ClampPage keeps page within [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

func pageBounds(page, count int) (int, int) {
	start := (page - 1) * PageSize
	if start > count {
		start = count
	}
	end := page * PageSize
	if end > count {
		end = count
	}
	return start, end
}
