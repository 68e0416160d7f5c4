package activity

import "api/internal/models"

// IActivityLogger records the auth audit trail: signups, logins, MFA
// lifecycle changes and failed challenges.
type IActivityLogger interface {
	Send(entry models.Activity) error
	Search(searchCriteria map[string][]string) ([]map[string]any, error)
	CountByDay(searchCriteria map[string][]string, days int) ([]models.TimeSeriesPoint, error)
	Close() error
}
