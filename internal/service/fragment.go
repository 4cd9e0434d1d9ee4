package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xiaot623/gogo/muednote/internal/domain"
	"github.com/xiaot623/gogo/muednote/internal/repository"
	"github.com/xiaot623/gogo/muednote/policy"
)

// Processor turns an incoming fragment into a processed one.
type Processor interface {
	Process(ctx context.Context, fragment domain.Fragment) (domain.Fragment, error)
}

// ProcessFragment runs intake for one fragment. The call is detached from the
// caller's cancellation: once started it runs to completion or failure.
func (s *Service) ProcessFragment(ctx context.Context, fragment domain.Fragment) (domain.Fragment, error) {
	start := time.Now()
	defer s.budget.Observe(start)

	ctx = context.WithoutCancel(ctx)

	if err := s.checkPolicy(ctx, fragment); err != nil {
		return domain.Fragment{}, err
	}
	return s.processor.Process(ctx, fragment)
}

func (s *Service) checkPolicy(ctx context.Context, fragment domain.Fragment) error {
	if s.policyEngine == nil {
		return nil
	}
	decision, reason, err := s.policyEngine.Evaluate(ctx, policy.NewInput(domain.DefaultDeviceID, fragment))
	if err != nil {
		return &IntakeError{Stage: StagePolicy, Err: err}
	}
	if decision == domain.PolicyBlock {
		log.Printf("Fragment %s rejected: %s", fragment.ID, reason)
		if reason == "" {
			reason = "blocked by intake policy"
		}
		return &IntakeError{Stage: StagePolicy, Err: domain.ErrFragmentRejected, Reason: reason}
	}
	return nil
}

// PersistingProcessor stores each fragment as a user message in the active
// session of its device.
type PersistingProcessor struct {
	store    repository.Store
	deviceID string
}

// NewPersistingProcessor creates a processor writing to store under the
// default device.
func NewPersistingProcessor(store repository.Store) *PersistingProcessor {
	return &PersistingProcessor{store: store, deviceID: domain.DefaultDeviceID}
}

// Process implements Processor.
func (p *PersistingProcessor) Process(ctx context.Context, fragment domain.Fragment) (domain.Fragment, error) {
	if p.store == nil {
		return domain.Fragment{}, &IntakeError{Stage: StageSession, Err: domain.ErrStoreUnavailable}
	}

	title := DeriveTitle(fragment.Content)

	sessionID, err := p.store.GetOrCreateActiveSession(ctx, p.deviceID, title)
	if err != nil {
		return domain.Fragment{}, &IntakeError{Stage: StageSession, Err: err}
	}

	if _, err := p.store.InsertMessage(ctx, sessionID, domain.RoleUser, fragment.Content); err != nil {
		log.Printf("Failed to save message: %v", err)
		return domain.Fragment{}, &IntakeError{Stage: StageInsert, Err: err}
	}

	// Best effort: the message is already saved, a metadata failure must not
	// turn this into an error.
	if err := p.store.TouchSession(ctx, sessionID, title); err != nil {
		log.Printf("WARN: failed to touch session %s: %v", sessionID, err)
	}

	log.Printf("Message saved to session %s: %s", sessionID, title)

	fragment.MarkProcessed()
	return fragment, nil
}

// SimulatedProcessor persists nothing; it waits for a fixed latency and marks
// the fragment processed.
type SimulatedProcessor struct {
	latency time.Duration
	sleep   func(time.Duration)
}

// NewSimulatedProcessor creates a processor that simulates latency.
func NewSimulatedProcessor(latency time.Duration) *SimulatedProcessor {
	return &SimulatedProcessor{latency: latency, sleep: time.Sleep}
}

// Process implements Processor.
func (p *SimulatedProcessor) Process(_ context.Context, fragment domain.Fragment) (domain.Fragment, error) {
	if p.latency > 0 {
		p.sleep(p.latency)
	}
	fragment.MarkProcessed()
	return fragment, nil
}

// IsRejected reports whether err is a policy rejection.
func IsRejected(err error) bool {
	return errors.Is(err, domain.ErrFragmentRejected)
}
