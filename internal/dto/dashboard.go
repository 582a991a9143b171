package dto

import "time"

// ActivityItemResponse is one entry of the recent activity feed.
type ActivityItemResponse struct {
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	UserDepartment string    `json:"user_department,omitempty"`
	CourseID       string    `json:"course_id"`
	CourseTitle    string    `json:"course_title"`
	Type           string    `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
}

// DashboardSummaryResponse bundles every L&D dashboard panel.
// @Description Organization-wide persona analytics
type DashboardSummaryResponse struct {
	PersonaDistribution map[string]map[string]int `json:"persona_distribution"`
	ActivityTrends      map[string][]int          `json:"activity_trends"`
	RecentActivity      []ActivityItemResponse    `json:"recent_activity"`
	GeneratedAt         time.Time                 `json:"generated_at"`
}
