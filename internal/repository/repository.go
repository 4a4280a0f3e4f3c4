package repository

import "database/sql"

// Repository содержит все репозитории
type Repository struct {
	Exercise *ExerciseRepository
	History  *HistoryRepository
	Plan     *PlanRepository
	Audit    *AuditRepository
}

// New создаёт новый экземпляр Repository
func New(db *sql.DB) *Repository {
	return &Repository{
		Exercise: NewExerciseRepository(db),
		History:  NewHistoryRepository(db),
		Plan:     NewPlanRepository(db),
		Audit:    NewAuditRepository(db),
	}
}
