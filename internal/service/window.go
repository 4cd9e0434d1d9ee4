package service

import (
	"errors"
	"fmt"

	"github.com/xiaot623/gogo/muednote/internal/domain"
	"github.com/xiaot623/gogo/muednote/internal/window"
)

// ToggleVisibility hides the main window when it is visible, otherwise shows
// and focuses it.
func (s *Service) ToggleVisibility() (*domain.WindowStateResponse, error) {
	w, ok, err := s.lookupWindow(domain.WindowMain)
	if err != nil || !ok {
		return &domain.WindowStateResponse{Window: domain.WindowMain}, err
	}

	visible, err := w.IsVisible()
	if err != nil {
		return nil, fmt.Errorf("main window state: %w", err)
	}
	if visible {
		if err := w.Hide(); err != nil {
			return nil, fmt.Errorf("hide main window: %w", err)
		}
		return &domain.WindowStateResponse{Window: domain.WindowMain, Visible: false}, nil
	}

	if err := w.Show(); err != nil {
		return nil, fmt.Errorf("show main window: %w", err)
	}
	if err := w.SetFocus(); err != nil {
		return nil, fmt.Errorf("focus main window: %w", err)
	}
	return &domain.WindowStateResponse{Window: domain.WindowMain, Visible: true}, nil
}

// ShowOverlay shows, focuses and centers the overlay window.
func (s *Service) ShowOverlay() (*domain.WindowStateResponse, error) {
	w, ok, err := s.lookupWindow(domain.WindowOverlay)
	if err != nil || !ok {
		return &domain.WindowStateResponse{Window: domain.WindowOverlay}, err
	}
	if err := w.Show(); err != nil {
		return nil, fmt.Errorf("show overlay: %w", err)
	}
	if err := w.SetFocus(); err != nil {
		return nil, fmt.Errorf("focus overlay: %w", err)
	}
	if err := w.Center(); err != nil {
		return nil, fmt.Errorf("center overlay: %w", err)
	}
	return &domain.WindowStateResponse{Window: domain.WindowOverlay, Visible: true}, nil
}

// HideOverlay hides the overlay window.
func (s *Service) HideOverlay() (*domain.WindowStateResponse, error) {
	w, ok, err := s.lookupWindow(domain.WindowOverlay)
	if err != nil || !ok {
		return &domain.WindowStateResponse{Window: domain.WindowOverlay}, err
	}
	if err := w.Hide(); err != nil {
		return nil, fmt.Errorf("hide overlay: %w", err)
	}
	return &domain.WindowStateResponse{Window: domain.WindowOverlay, Visible: false}, nil
}

// lookupWindow reports ok=false without error when the host has no such
// window; commands on a missing window are no-ops.
func (s *Service) lookupWindow(name domain.WindowName) (window.Window, bool, error) {
	if s.windows == nil {
		return nil, false, nil
	}
	w, err := s.windows.Lookup(name)
	if errors.Is(err, window.ErrNoWindow) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup window %s: %w", name, err)
	}
	return w, true, nil
}
