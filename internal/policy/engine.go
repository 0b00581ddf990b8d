// Package policy decides which operator commands a user may run.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/xiaot623/anketa/internal/domain"
)

// Decision is the policy outcome for one command.
type Decision string

const (
	DecisionAllow     Decision = "allow"
	DecisionDeny      Decision = "deny"
	DecisionProtected Decision = "protected"
)

// Request describes a command invocation.
type Request struct {
	Command   string
	UserID    domain.UserID
	Reviewers []domain.UserID
	TargetID  domain.UserID
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.anketa.authz.decision"),
		rego.Module("authz.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks req against the policy. Ids are passed as strings so
// large ids compare exactly.
func (e *Engine) Evaluate(ctx context.Context, req Request) (Decision, error) {
	reviewers := make([]string, 0, len(req.Reviewers))
	for _, id := range req.Reviewers {
		reviewers = append(reviewers, id.String())
	}
	input := map[string]interface{}{
		"command":    req.Command,
		"user_id":    req.UserID.String(),
		"reviewers":  reviewers,
		"primary_id": "",
		"target_id":  "",
	}
	if len(reviewers) > 0 {
		input["primary_id"] = reviewers[0]
	}
	if req.TargetID != 0 {
		input["target_id"] = req.TargetID.String()
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return DecisionDeny, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionDeny, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return Decision(s), nil
	}
	return DecisionDeny, fmt.Errorf("unexpected policy result %T", results[0].Expressions[0].Value)
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package anketa.authz

default decision = "deny"

open_commands = {"id"}

decision = "allow" {
	open_commands[input.command]
}

decision = "allow" {
	not open_commands[input.command]
	is_reviewer
	not removes_primary
}

# The first registered reviewer cannot be removed.
decision = "protected" {
	not open_commands[input.command]
	is_reviewer
	removes_primary
}

is_reviewer {
	input.reviewers[_] == input.user_id
}

removes_primary {
	input.command == "remove_admin"
	input.primary_id != ""
	input.target_id == input.primary_id
}
`
