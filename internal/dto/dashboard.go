package dto

// CourseBreakdown aggregates inquiry volume per course.
type CourseBreakdown struct {
	CourseName string `db:"course_name" json:"course_name"`
	Count      int    `db:"count" json:"count"`
	Enrolled   int    `db:"enrolled" json:"enrolled"`
}

// GroupCount is a generic grouped counter row (organization, department).
type GroupCount struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// DailyCount is one day of the inquiry trend.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardStats is the aggregate reporting payload for administrators.
type DashboardStats struct {
	TotalInquiries        int               `json:"total_inquiries"`
	TodayInquiries        int               `json:"today_inquiries"`
	WeekInquiries         int               `json:"week_inquiries"`
	MonthInquiries        int               `json:"month_inquiries"`
	ConversionRate        float64           `json:"conversion_rate"`
	PaymentCompletionRate float64           `json:"payment_completion_rate"`
	TotalRevenue          int64             `json:"total_revenue"`
	StatusBreakdown       map[string]int    `json:"status_breakdown"`
	PaymentBreakdown      map[string]int    `json:"payment_breakdown"`
	TopCourses            []CourseBreakdown `json:"top_courses"`
	TopOrganizations      []GroupCount      `json:"top_organizations"`
	TopDepartments        []GroupCount      `json:"top_departments"`
	Last7DaysTrend        []DailyCount      `json:"last_7_days_trend"`
}
