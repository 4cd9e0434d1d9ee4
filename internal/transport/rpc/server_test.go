package rpc

import (
	"context"
	"net/rpc/jsonrpc"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/muednote/internal/config"
	"github.com/xiaot623/gogo/muednote/internal/domain"
	"github.com/xiaot623/gogo/muednote/internal/service"
	"github.com/xiaot623/gogo/muednote/internal/window"
	"github.com/xiaot623/gogo/muednote/policy"
	"github.com/xiaot623/gogo/muednote/tests/helpers"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	return startTestServerWithPolicy(t, policy.DefaultPolicy)
}

func startTestServerWithPolicy(t *testing.T, policyContent string) string {
	t.Helper()
	ctx := context.Background()

	db := helpers.NewTestStore(t)
	cfg := &config.Config{IntakeMode: domain.IntakeModePersist, ProcessBudget: time.Second}
	engine, err := policy.NewEngine(ctx, policyContent)
	require.NoError(t, err)
	host := window.NewMemoryHost(domain.WindowMain, domain.WindowOverlay)
	svc := service.New(db, service.NewProcessor(db, cfg), engine, host, nil, cfg)

	srv, err := NewServer(svc)
	require.NoError(t, err)

	require.NoError(t, srv.Listen("127.0.0.1:0"))
	go srv.Serve()

	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	return srv.Addr().String()
}

func TestRPCRoundTrip(t *testing.T) {
	addr := startTestServer(t)

	client, err := jsonrpc.Dial("tcp", addr)
	require.NoError(t, err)
	defer client.Close()

	var processed domain.Fragment
	err = client.Call(ServiceName+".ProcessFragment", &domain.Fragment{ID: "f1", Content: "hello world", Timestamp: 1}, &processed)
	require.NoError(t, err)
	assert.True(t, processed.IsProcessed())

	var messages domain.MessagesResponse
	require.NoError(t, client.Call(ServiceName+".FetchMessages", &Empty{}, &messages))
	require.Len(t, messages.Messages, 1)
	assert.Equal(t, "hello world", messages.Messages[0].Content)

	var ack domain.AckResponse
	require.NoError(t, client.Call(ServiceName+".DeleteMessage", &domain.DeleteMessageRequest{MessageID: messages.Messages[0].ID}, &ack))
	assert.True(t, ack.OK)

	messages = domain.MessagesResponse{}
	require.NoError(t, client.Call(ServiceName+".FetchMessages", &Empty{}, &messages))
	assert.Empty(t, messages.Messages)
}

func TestRPCProcessFragmentRejected(t *testing.T) {
	addr := startTestServerWithPolicy(t, policy.StrictPolicy)

	client, err := jsonrpc.Dial("tcp", addr)
	require.NoError(t, err)
	defer client.Close()

	var processed domain.Fragment
	err = client.Call(ServiceName+".ProcessFragment", &domain.Fragment{ID: "f1", Content: ""}, &processed)
	require.Error(t, err)
	assert.Equal(t, "Fragment rejected: empty fragment", err.Error())
}

func TestRPCWindowCommands(t *testing.T) {
	addr := startTestServer(t)

	client, err := jsonrpc.Dial("tcp", addr)
	require.NoError(t, err)
	defer client.Close()

	var state domain.WindowStateResponse
	require.NoError(t, client.Call(ServiceName+".ToggleVisibility", &Empty{}, &state))
	assert.Equal(t, domain.WindowMain, state.Window)
	assert.True(t, state.Visible)

	require.NoError(t, client.Call(ServiceName+".ShowOverlay", &Empty{}, &state))
	assert.Equal(t, domain.WindowOverlay, state.Window)
	assert.True(t, state.Visible)

	require.NoError(t, client.Call(ServiceName+".HideOverlay", &Empty{}, &state))
	assert.False(t, state.Visible)
}
