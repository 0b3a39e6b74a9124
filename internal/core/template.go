package core

import "venturecore/pkg/domain"

// taskTemplateEntry describes one level of the fixed accelerator curriculum.
type taskTemplateEntry struct {
	LevelID     int
	Title       string
	Description string
}

// defaultTaskTemplate is cloned per newly registered startup account. Levels
// are ordered and strictly gated: the lowest level starts ASSIGNED, the rest
// stay LOCKED until the previous level's submission is approved.
var defaultTaskTemplate = []taskTemplateEntry{
	{LevelID: 1, Title: "Problem validation", Description: "Describe the problem, who has it, and the evidence it is worth solving."},
	{LevelID: 2, Title: "Customer discovery", Description: "Summarize findings from at least ten interviews with potential customers."},
	{LevelID: 3, Title: "MVP definition", Description: "Specify the smallest product slice that tests the core value hypothesis."},
	{LevelID: 4, Title: "Traction evidence", Description: "Report early usage or revenue signals and what they changed in the plan."},
	{LevelID: 5, Title: "Pitch readiness", Description: "Prepare the investor narrative: market, model, team, and the ask."},
}

// cloneTaskTemplate materializes the curriculum for one user. Only the
// lowest level starts in ASSIGNED state.
func cloneTaskTemplate(userID string) []domain.TaskRecord {
	tasks := make([]domain.TaskRecord, 0, len(defaultTaskTemplate))
	for i, entry := range defaultTaskTemplate {
		status := domain.TaskLocked
		if i == 0 {
			status = domain.TaskAssigned
		}
		tasks = append(tasks, domain.TaskRecord{
			LevelID:     entry.LevelID,
			UserID:      userID,
			Title:       entry.Title,
			Description: entry.Description,
			Status:      status,
		})
	}
	return tasks
}
