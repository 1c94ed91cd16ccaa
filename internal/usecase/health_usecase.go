package usecase

import "context"

// HealthCheck probes one backing service
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks map[string]HealthCheck
}

func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	result := map[string]string{
		"status": "ok",
	}
	healthy := true
	for name, check := range u.checks {
		if err := check(ctx); err != nil {
			result[name] = "down"
			healthy = false
			continue
		}
		result[name] = "ok"
	}
	if !healthy {
		result["status"] = "degraded"
	}
	return result, healthy
}
