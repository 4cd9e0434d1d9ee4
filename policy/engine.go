// Package policy evaluates the fragment intake policy with OPA.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// MaxContentLength is the largest fragment, in bytes, the default policy accepts.
const MaxContentLength = 64 * 1024

// Input is the document the intake policy is evaluated against.
type Input struct {
	DeviceID         string `json:"device_id"`
	Content          string `json:"content"`
	ContentLength    int    `json:"content_length"`
	MaxContentLength int    `json:"max_content_length"`
}

// NewInput builds the policy input for a fragment.
func NewInput(deviceID string, fragment domain.Fragment) Input {
	return Input{
		DeviceID:         deviceID,
		Content:          fragment.Content,
		ContentLength:    len(fragment.Content),
		MaxContentLength: MaxContentLength,
	}
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.intake_policy.result"),
		rego.Module("intake_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks a fragment against the intake policy.
// Returns: decision (allow, block), reason (optional), error
func (e *Engine) Evaluate(ctx context.Context, input Input) (domain.PolicyDecision, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.PolicyAllow, "default", nil
	}

	result, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return domain.PolicyAllow, "unexpected return type", nil
	}
	decision, _ := result["decision"].(string)
	reason, _ := result["reason"].(string)
	switch domain.PolicyDecision(decision) {
	case domain.PolicyBlock:
		return domain.PolicyBlock, reason, nil
	default:
		return domain.PolicyAllow, reason, nil
	}
}

// DefaultPolicy accepts every fragment; intake persists any content.
const DefaultPolicy = `
package intake_policy

default decision = "allow"

default reason = ""

result = {"decision": decision, "reason": reason}
`

// StrictPolicy blocks blank fragments and fragments longer than
// max_content_length. Selected with MUEDNOTE_INTAKE_POLICY=strict.
const StrictPolicy = `
package intake_policy

default decision = "allow"

default reason = ""

blank {
	trim_space(input.content) == ""
}

too_long {
	not blank
	input.content_length > input.max_content_length
}

decision = "block" {
	blank
}

decision = "block" {
	too_long
}

reason = "empty fragment" {
	blank
}

reason = "fragment too long" {
	too_long
}

result = {"decision": decision, "reason": reason}
`

// Load resolves a policy setting to rego source: "" selects DefaultPolicy,
// "strict" selects StrictPolicy, anything else is read as a file path.
func Load(setting string) (string, error) {
	switch setting {
	case "":
		return DefaultPolicy, nil
	case "strict":
		return StrictPolicy, nil
	}
	content, err := os.ReadFile(setting)
	if err != nil {
		return "", fmt.Errorf("failed to read policy %s: %w", setting, err)
	}
	return string(content), nil
}
