package systemmetrics

import (
	"context"

	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/redis"
)

const agentCountCounter = "agent_count"

type AgentCount struct {
	AgentCount int64 `json:"agent_count"`
}

// Service owns the system-wide counters kept in redis.
type Service interface {
	IncrementAgentCount(ctx context.Context) (*AgentCount, error)
}

type service struct {
	store redis.CounterStore
	logg  *logger.Logger
}

func NewService(store redis.CounterStore, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "counter store required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{store: store, logg: logg}, nil
}

// IncrementAgentCount creates the counter on first use.
func (s *service) IncrementAgentCount(ctx context.Context) (*AgentCount, error) {
	value, err := s.store.Incr(ctx, s.store.CounterKey(agentCountCounter))
	if err != nil {
		s.logg.Error(ctx, "failed to increment agent count", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment agent count")
	}
	return &AgentCount{AgentCount: value}, nil
}
