package repository

type ReportFilter struct {
	Q        string
	Status   string
	Category string
	Urgency  string
	Limit    int
	Offset   int
	Sort     string // created_at, last_updated, urgency
	Order    string // asc|desc
}
