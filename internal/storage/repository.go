// ABOUTME: Repository interface for the calorie ledger storage.
// ABOUTME: Defines the narrow seam the computation layer reads through.
package storage

import (
	"time"

	"github.com/harperreed/calbal/internal/models"
)

// Repository defines the storage interface for the calorie ledger.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Event operations (append-only; events are immutable)
	AppendEvent(e *models.CalorieEvent) error
	ListEvents(userID string, start, end time.Time, types ...models.EventType) ([]*models.CalorieEvent, error)
	ListAllEvents(userID string) ([]*models.CalorieEvent, error)
	LatestWeight(userID string) (*models.CalorieEvent, error)
	HasEventOn(userID string, eventType models.EventType, date time.Time) (bool, error)
	ListUsers() ([]string, error)

	// Goal operations
	ActivateGoal(g *models.CalorieGoal, expectedActiveID string) error
	GetActiveGoal(userID string) (*models.CalorieGoal, error)
	ListGoals(userID string) ([]*models.CalorieGoal, error)

	// Metabolic profile operations
	SaveProfile(p *models.MetabolicProfile) error
	GetMetabolicProfile(userID string) (*models.MetabolicProfile, error)
	ListProfiles(userID string) ([]*models.MetabolicProfile, error)

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error
	ExportJSON() ([]byte, error)
	ExportYAML() ([]byte, error)
	ImportJSON(data []byte) error

	// Lifecycle
	Close() error
}
