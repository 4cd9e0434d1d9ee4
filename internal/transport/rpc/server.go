package rpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	"github.com/xiaot623/gogo/muednote/internal/domain"
	"github.com/xiaot623/gogo/muednote/internal/service"
)

// ServiceName is the name the command handler is registered under.
const ServiceName = "MUEDnote"

// Server exposes the muednote commands over JSON-RPC for local clients.
type Server struct {
	listener  net.Listener
	rpcServer *rpc.Server
	done      chan struct{}
}

// NewServer creates a new RPC server bound to the muednote service.
func NewServer(svc *service.Service) (*Server, error) {
	rpcServer := rpc.NewServer()
	handler := &Handler{service: svc}
	if err := rpcServer.RegisterName(ServiceName, handler); err != nil {
		return nil, fmt.Errorf("register rpc handler: %w", err)
	}

	return &Server{
		rpcServer: rpcServer,
		done:      make(chan struct{}),
	}, nil
}

// Listen binds the server to addr without accepting connections yet.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				close(s.done)
				return nil
			}
			log.Printf("RPC accept error: %v", err)
			continue
		}

		go s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

// Shutdown stops accepting new RPC connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}

	if err := s.listener.Close(); err != nil {
		return err
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler implements the muednote RPC methods.
type Handler struct {
	service *service.Service
}

// Empty is the argument of methods that take none.
type Empty struct{}

// FetchMessages returns the most recent messages, newest first.
func (h *Handler) FetchMessages(_ *Empty, resp *domain.MessagesResponse) error {
	messages, err := h.service.FetchMessages(context.Background())
	if err != nil {
		return err
	}
	if resp != nil {
		resp.Messages = messages
	}
	return nil
}

// ProcessFragment runs intake for one fragment.
func (h *Handler) ProcessFragment(req *domain.Fragment, resp *domain.Fragment) error {
	if req == nil {
		return errors.New("fragment is required")
	}

	processed, err := h.service.ProcessFragment(context.Background(), *req)
	if err != nil {
		return err
	}
	if resp != nil {
		*resp = processed
	}
	return nil
}

// DeleteMessage removes a message.
func (h *Handler) DeleteMessage(req *domain.DeleteMessageRequest, resp *domain.AckResponse) error {
	if req == nil {
		return errors.New("delete request is required")
	}

	if err := h.service.DeleteMessage(context.Background(), req.MessageID); err != nil {
		return err
	}
	if resp != nil {
		resp.OK = true
	}
	return nil
}

// ToggleVisibility flips the main window.
func (h *Handler) ToggleVisibility(_ *Empty, resp *domain.WindowStateResponse) error {
	state, err := h.service.ToggleVisibility()
	return writeState(resp, state, err)
}

// ShowOverlay shows the overlay window.
func (h *Handler) ShowOverlay(_ *Empty, resp *domain.WindowStateResponse) error {
	state, err := h.service.ShowOverlay()
	return writeState(resp, state, err)
}

// HideOverlay hides the overlay window.
func (h *Handler) HideOverlay(_ *Empty, resp *domain.WindowStateResponse) error {
	state, err := h.service.HideOverlay()
	return writeState(resp, state, err)
}

func writeState(resp, state *domain.WindowStateResponse, err error) error {
	if err != nil {
		return err
	}
	if resp != nil && state != nil {
		*resp = *state
	}
	return nil
}
