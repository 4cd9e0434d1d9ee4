// Package service implements the muednote commands on top of the store, the
// intake processor, the host windows and the signal emitter.
package service

import (
	"github.com/xiaot623/gogo/muednote/internal/config"
	"github.com/xiaot623/gogo/muednote/internal/domain"
	"github.com/xiaot623/gogo/muednote/internal/repository"
	"github.com/xiaot623/gogo/muednote/internal/window"
	"github.com/xiaot623/gogo/muednote/policy"
)

// Emitter pushes payload-less signals to frontends.
type Emitter interface {
	EmitSignal(signal string) (int, error)
}

type Service struct {
	store        repository.Store
	processor    Processor
	policyEngine *policy.Engine
	budget       *Budget
	windows      window.Host
	emitter      Emitter
}

func New(store repository.Store, processor Processor, policyEngine *policy.Engine, windows window.Host, emitter Emitter, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		processor:    processor,
		policyEngine: policyEngine,
		budget:       NewBudget(cfg.ProcessBudget),
		windows:      windows,
		emitter:      emitter,
	}
}

// NewProcessor returns the fragment processor selected by cfg.IntakeMode.
func NewProcessor(store repository.Store, cfg *config.Config) Processor {
	if cfg.IntakeMode == domain.IntakeModeSimulate {
		return NewSimulatedProcessor(cfg.SimulatedLatency)
	}
	return NewPersistingProcessor(store)
}
