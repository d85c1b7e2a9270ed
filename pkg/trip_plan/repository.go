package trip_plan

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roamly/roamly/internal/kvstore"
	log "github.com/sirupsen/logrus"
)

const KeyPrefix = "tripPlan_"

func StorageKey(id int64) string {
	return KeyPrefix + strconv.FormatInt(id, 10)
}

// PlanIdFromKey extracts the id from a trip plan key.
func PlanIdFromKey(key string) (int64, bool) {
	raw, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type Repository interface {
	List(ctx context.Context) ([]SavedTripPlan, error)
	Get(ctx context.Context, id int64) (SavedTripPlan, error)
	// Store persists a new plan. The id is moved forward when it is already taken.
	Store(ctx context.Context, plan SavedTripPlan) (SavedTripPlan, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type RepositoryImpl struct {
	storage kvstore.Storage
}

func NewRepository(storage kvstore.Storage) *RepositoryImpl {
	return &RepositoryImpl{storage: storage}
}

func (r *RepositoryImpl) List(ctx context.Context) ([]SavedTripPlan, error) {
	keys, err := r.storage.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list trip plans: %w", err)
	}

	plans := make([]SavedTripPlan, 0)
	for _, key := range keys {
		id, ok := PlanIdFromKey(key)
		if !ok {
			continue
		}
		result, err := kvstore.GetJSON(ctx, r.storage, key, validate)
		if err != nil {
			return nil, fmt.Errorf("could not read trip plan %s: %w", key, err)
		}
		plan, ok := result.Get()
		if !ok {
			if result.Status() == kvstore.Invalid {
				log.Warnf("skipping trip plan %s: %v", key, result.Err())
			}
			continue
		}
		if plan.Id != id {
			log.Warnf("skipping trip plan %s: stored id %d does not match its key", key, plan.Id)
			continue
		}
		plans = append(plans, plan)
	}
	sortPlans(plans)
	return plans, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int64) (SavedTripPlan, error) {
	result, err := kvstore.GetJSON(ctx, r.storage, StorageKey(id), validate)
	if err != nil {
		return SavedTripPlan{}, fmt.Errorf("could not read trip plan %d: %w", id, err)
	}
	plan, ok := result.Get()
	if !ok || plan.Id != id {
		return SavedTripPlan{}, ErrPlanNotFound
	}
	return plan, nil
}

func (r *RepositoryImpl) Store(ctx context.Context, plan SavedTripPlan) (SavedTripPlan, error) {
	for {
		_, taken, err := r.storage.GetItem(ctx, StorageKey(plan.Id))
		if err != nil {
			return SavedTripPlan{}, fmt.Errorf("could not store trip plan: %w", err)
		}
		if !taken {
			break
		}
		plan.Id++
	}
	if err := kvstore.SetJSON(ctx, r.storage, StorageKey(plan.Id), plan); err != nil {
		return SavedTripPlan{}, fmt.Errorf("could not store trip plan %d: %w", plan.Id, err)
	}
	return plan, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int64) (bool, error) {
	key := StorageKey(id)
	_, found, err := r.storage.GetItem(ctx, key)
	if err != nil {
		return false, fmt.Errorf("could not delete trip plan %d: %w", id, err)
	}
	if !found {
		return false, nil
	}
	if err := r.storage.RemoveItem(ctx, key); err != nil {
		return false, fmt.Errorf("could not delete trip plan %d: %w", id, err)
	}
	return true, nil
}

// sortPlans orders plans newest first, breaking ties by the higher id.
func sortPlans(plans []SavedTripPlan) {
	slices.SortFunc(plans, func(a, b SavedTripPlan) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Id, a.Id)
	})
}
