package trip_plan

import "context"

type RepositoryStub struct {
	plans map[int64]SavedTripPlan
	err   error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{plans: map[int64]SavedTripPlan{}}
}

// FailWith makes every subsequent call return err.
func (s *RepositoryStub) FailWith(err error) {
	s.err = err
}

func (s *RepositoryStub) List(ctx context.Context) ([]SavedTripPlan, error) {
	if s.err != nil {
		return nil, s.err
	}
	plans := make([]SavedTripPlan, 0, len(s.plans))
	for _, plan := range s.plans {
		plans = append(plans, plan)
	}
	sortPlans(plans)
	return plans, nil
}

func (s *RepositoryStub) Get(ctx context.Context, id int64) (SavedTripPlan, error) {
	if s.err != nil {
		return SavedTripPlan{}, s.err
	}
	plan, ok := s.plans[id]
	if !ok {
		return SavedTripPlan{}, ErrPlanNotFound
	}
	return plan, nil
}

func (s *RepositoryStub) Store(ctx context.Context, plan SavedTripPlan) (SavedTripPlan, error) {
	if s.err != nil {
		return SavedTripPlan{}, s.err
	}
	for {
		if _, taken := s.plans[plan.Id]; !taken {
			break
		}
		plan.Id++
	}
	s.plans[plan.Id] = plan
	return plan, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, id int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.plans[id]; !ok {
		return false, nil
	}
	delete(s.plans, id)
	return true, nil
}

func (s *RepositoryStub) Cleanup() {
	s.plans = map[int64]SavedTripPlan{}
	s.err = nil
}
