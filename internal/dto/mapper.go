package dto

import "learn-persona/internal/domain"

func personaKeys(personas []domain.Persona) []string {
	keys := make([]string, 0, len(personas))
	for _, p := range personas {
		if p.IsValid() {
			keys = append(keys, p.Key())
		}
	}
	return keys
}

func NewPersonaResponse(p domain.Persona) PersonaResponse {
	return PersonaResponse{
		Key:         p.Key(),
		Label:       p.Label(),
		Description: p.Description(),
		Strategies:  p.Strategies(),
	}
}

func NewQuestionResponse(q domain.Question) QuestionResponse {
	options := make([]AnswerOptionResponse, len(q.Options))
	for i, o := range q.Options {
		options[i] = AnswerOptionResponse{Label: o.Label, Persona: o.Persona.Key()}
	}
	return QuestionResponse{ID: q.ID, Prompt: q.Prompt, Options: options}
}

// NewQuizResultResponse expands a stored response with the persona's description and tips.
func NewQuizResultResponse(r *domain.QuizResponse) QuizResultResponse {
	scores := make(map[string]int, len(r.Scores))
	for p, n := range r.Scores {
		if p.IsValid() {
			scores[p.Key()] = n
		}
	}
	return QuizResultResponse{
		ID:          r.ID,
		Persona:     r.Result.Key(),
		Label:       r.Result.Label(),
		Description: r.Result.Description(),
		Strategies:  r.Result.Strategies(),
		Scores:      scores,
		CompletedAt: r.CompletedAt,
	}
}

func NewCourseResponse(c *domain.Course) CourseResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return CourseResponse{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		URL:              c.URL,
		ImageURL:         c.ImageURL,
		Provider:         c.Provider,
		Tags:             tags,
		SuitablePersonas: personaKeys(c.SuitablePersonas),
		Difficulty:       c.Difficulty,
		Duration:         c.Duration,
		CreatedAt:        c.CreatedAt,
	}
}

func NewCourseResponses(courses []*domain.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseResponse(c))
	}
	return out
}

func NewStrategyResponse(s *domain.LearningStrategy) StrategyResponse {
	return StrategyResponse{
		ID:               s.ID,
		Title:            s.Title,
		Description:      s.Description,
		Content:          s.Content,
		SuitablePersonas: personaKeys(s.SuitablePersonas),
		Type:             s.Type,
		CreatedAt:        s.CreatedAt,
	}
}

func NewStrategyResponses(strategies []*domain.LearningStrategy) []StrategyResponse {
	out := make([]StrategyResponse, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, NewStrategyResponse(s))
	}
	return out
}

func NewProgressResponse(p *domain.UserProgress) ProgressResponse {
	return ProgressResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		CourseID:    p.CourseID,
		Progress:    p.Progress,
		Completed:   p.Completed,
		StartedAt:   p.StartedAt,
		CompletedAt: p.CompletedAt,
	}
}

func NewUserProfileResponse(u *domain.User) UserProfileResponse {
	return UserProfileResponse{
		ID:               u.ID,
		Username:         u.Username,
		Name:             u.Name,
		Email:            u.Email,
		Department:       u.Department,
		Role:             string(u.Role),
		Persona:          u.Persona.Key(),
		PersonaLabel:     u.Persona.Label(),
		StreakCount:      u.StreakCount,
		LastActive:       u.LastActive,
		CompletedCourses: u.CompletedCourses,
		Progress:         u.Progress,
		CreatedAt:        u.CreatedAt,
	}
}

func NewActivityItemResponses(items []domain.ActivityItem) []ActivityItemResponse {
	out := make([]ActivityItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ActivityItemResponse{
			UserID:         it.UserID,
			UserName:       it.UserName,
			UserDepartment: it.UserDepartment,
			CourseID:       it.CourseID,
			CourseTitle:    it.CourseTitle,
			Type:           string(it.Type),
			Timestamp:      it.Timestamp,
		})
	}
	return out
}

func NewDashboardSummaryResponse(s *domain.DashboardSummary) DashboardSummaryResponse {
	return DashboardSummaryResponse{
		PersonaDistribution: s.Distribution,
		ActivityTrends:      s.Trends,
		RecentActivity:      NewActivityItemResponses(s.Activity),
		GeneratedAt:         s.GeneratedAt,
	}
}
