// ABOUTME: Event ledger mirror operations for Charm KV storage.
// ABOUTME: Pushes local ledger records and merges remote events by ID.
package charm

import (
	"fmt"
	"sort"

	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/storage"
)

// PushEvent mirrors a calorie event to the KV store.
// Events are append-only, so an existing key is simply overwritten
// with identical content.
func (c *Client) PushEvent(e *models.CalorieEvent) error {
	key := EventPrefix + e.ID.String()
	data, err := marshalJSON(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return c.set(key, data)
}

// PushGoal mirrors a goal record to the KV store.
func (c *Client) PushGoal(g *models.CalorieGoal) error {
	key := GoalPrefix + g.ID.String()
	data, err := marshalJSON(g)
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}
	return c.set(key, data)
}

// PushProfile mirrors a metabolic profile to the KV store.
func (c *Client) PushProfile(p *models.MetabolicProfile) error {
	key := ProfilePrefix + p.ID.String()
	data, err := marshalJSON(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return c.set(key, data)
}

// ListEvents retrieves all mirrored events, oldest first.
func (c *Client) ListEvents() ([]*models.CalorieEvent, error) {
	allData, err := c.listByPrefix(EventPrefix)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var events []*models.CalorieEvent
	for _, data := range allData {
		e, err := unmarshalJSON[models.CalorieEvent](data)
		if err != nil {
			continue // Skip invalid entries
		}
		events = append(events, e)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	return events, nil
}

// MirrorResult summarizes what a Mirror pass moved in each direction.
type MirrorResult struct {
	EventsPushed   int
	GoalsPushed    int
	ProfilesPushed int
	EventsPulled   int
}

// Mirror synchronizes the local ledger with Charm Cloud. Local records
// missing from the KV store are pushed; remote events missing locally
// are appended to the ledger. Goals and profiles only travel outward,
// because their local invariants (single active goal, supersession
// chain) are maintained by the SQLite layer.
func (c *Client) Mirror(repo storage.Repository) (*MirrorResult, error) {
	if err := c.Sync(); err != nil {
		return nil, fmt.Errorf("pull remote state: %w", err)
	}

	// Batch the outbound writes into one sync at the end instead of
	// one per key.
	c.SetAutoSync(false)
	defer func() {
		c.SetAutoSync(true)
		_ = c.Sync()
	}()

	local, err := repo.GetAllData()
	if err != nil {
		return nil, fmt.Errorf("read local ledger: %w", err)
	}

	result := &MirrorResult{}

	localIDs := make(map[string]bool, len(local.Events))
	for _, e := range local.Events {
		localIDs[e.ID.String()] = true
	}

	for _, e := range local.Events {
		exists, err := c.has(EventPrefix + e.ID.String())
		if err != nil {
			return nil, fmt.Errorf("check event: %w", err)
		}
		if exists {
			continue
		}
		if err := c.PushEvent(e); err != nil {
			return nil, err
		}
		result.EventsPushed++
	}

	for _, g := range local.Goals {
		if err := c.PushGoal(g); err != nil {
			return nil, err
		}
		result.GoalsPushed++
	}

	for _, p := range local.Profiles {
		if err := c.PushProfile(p); err != nil {
			return nil, err
		}
		result.ProfilesPushed++
	}

	remote, err := c.ListEvents()
	if err != nil {
		return nil, err
	}
	for _, e := range remote {
		if localIDs[e.ID.String()] {
			continue
		}
		if err := repo.AppendEvent(e); err != nil {
			return nil, fmt.Errorf("merge remote event: %w", err)
		}
		result.EventsPulled++
	}

	return result, nil
}
