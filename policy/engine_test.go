package policy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

func TestDefaultPolicyAllowsEverything(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	require.NoError(t, err)

	for _, content := range []string{"hello world", "", " \n\t ", strings.Repeat("a", MaxContentLength+1)} {
		decision, reason, err := engine.Evaluate(ctx, NewInput(domain.DefaultDeviceID, domain.Fragment{ID: "f1", Content: content}))
		require.NoError(t, err)
		assert.Equal(t, domain.PolicyAllow, decision)
		assert.Empty(t, reason)
	}
}

func TestStrictPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, StrictPolicy)
	require.NoError(t, err)

	tests := []struct {
		name     string
		content  string
		decision domain.PolicyDecision
		reason   string
	}{
		{name: "plain text", content: "hello world", decision: domain.PolicyAllow},
		{name: "multi-byte", content: strings.Repeat("音", 60), decision: domain.PolicyAllow},
		{name: "empty", content: "", decision: domain.PolicyBlock, reason: "empty fragment"},
		{name: "whitespace", content: " \n\t ", decision: domain.PolicyBlock, reason: "empty fragment"},
		{name: "too long", content: strings.Repeat("a", MaxContentLength+1), decision: domain.PolicyBlock, reason: "fragment too long"},
		{name: "at limit", content: strings.Repeat("a", MaxContentLength), decision: domain.PolicyAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NewInput(domain.DefaultDeviceID, domain.Fragment{ID: "f1", Content: tt.content})
			decision, reason, err := engine.Evaluate(ctx, input)
			require.NoError(t, err)
			assert.Equal(t, tt.decision, decision)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestCustomPolicyBlocksDevice(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, `
package intake_policy

default decision = "allow"

decision = "block" {
	input.device_id == "blocked"
}

result = {"decision": decision, "reason": "device blocked"}
`)
	require.NoError(t, err)

	decision, reason, err := engine.Evaluate(ctx, NewInput("blocked", domain.Fragment{Content: "x"}))
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyBlock, decision)
	assert.Equal(t, "device blocked", reason)

	decision, _, err = engine.Evaluate(ctx, NewInput("default", domain.Fragment{Content: "x"}))
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyAllow, decision)
}

func TestLoad(t *testing.T) {
	content, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy, content)

	content, err = Load("strict")
	require.NoError(t, err)
	assert.Equal(t, StrictPolicy, content)

	path := filepath.Join(t.TempDir(), "intake.rego")
	require.NoError(t, os.WriteFile(path, []byte(StrictPolicy), 0o600))
	content, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, StrictPolicy, content)

	_, err = Load(filepath.Join(t.TempDir(), "missing.rego"))
	assert.Error(t, err)
}

func TestNewEngineInvalidPolicy(t *testing.T) {
	_, err := NewEngine(context.Background(), "package intake_policy\n\nresult = {")
	assert.Error(t, err)
}
