package domain

// GoalCompletion is a tool caller's claim that an existing goal has been
// satisfied, with the evidence captured and the tool's confidence.
type GoalCompletion struct {
	GoalID         string         `json:"goal_id" validate:"required,max=128"`
	CompletionData map[string]any `json:"completion_data,omitempty"`
	Confidence     float64        `json:"confidence" validate:"gte=0,lte=1"`
}

// GoalBlock marks an existing goal as currently uncollectable
type GoalBlock struct {
	GoalID string `json:"goal_id" validate:"required,max=128"`
	Reason string `json:"reason" validate:"max=2000"`
}

// GoalAssessmentResult is the goal-tracker tool's verdict for one
// conversation turn.
type GoalAssessmentResult struct {
	CompletedGoals  []GoalCompletion `json:"completed_goals"`
	IncompleteGoals []Goal           `json:"incomplete_goals"`
	Blockers        []GoalBlock      `json:"blockers,omitempty"`
	Confidence      float64          `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning       string           `json:"reasoning,omitempty"`
}
