package service

import (
	"fmt"
	"log"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// EmitSignal pushes a known signal to every connected frontend.
func (s *Service) EmitSignal(signal domain.Signal) (*domain.SignalResponse, error) {
	if !signal.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSignal, signal)
	}
	if s.emitter == nil {
		return &domain.SignalResponse{Signal: signal}, nil
	}

	delivered, err := s.emitter.EmitSignal(string(signal))
	if err != nil {
		log.Printf("Failed to emit %s event: %v", signal, err)
		return nil, fmt.Errorf("emit %s: %w", signal, err)
	}
	return &domain.SignalResponse{Signal: signal, Delivered: delivered}, nil
}

// Shortcuts returns the global hotkey bindings the host should register.
func (s *Service) Shortcuts() []domain.Shortcut {
	out := make([]domain.Shortcut, len(domain.DefaultShortcuts))
	copy(out, domain.DefaultShortcuts)
	return out
}
