package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/llm"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
)

// State is the orchestrator's position in one turn.
type State int

const (
	StateDeciding State = iota
	StateDispatching
	StateSynthesizing
	StateResponding
	StateRateLimited
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDeciding:
		return "deciding"
	case StateDispatching:
		return "dispatching"
	case StateSynthesizing:
		return "synthesizing"
	case StateResponding:
		return "responding"
	case StateRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Reply is one finished turn.
type Reply struct {
	// Content is the assistant message returned to the caller.
	Content string

	// ToolUsed names the last tool invoked, empty when none was.
	ToolUsed string

	// RateLimited marks a turn terminated by provider quota exhaustion.
	RateLimited bool
}

// Orchestrator drives one conversational turn: a decision call to the
// model, sequential tool dispatch, and an optional synthesis call.
type Orchestrator struct {
	model      llm.ChatModel
	dispatcher *Dispatcher
	classifier *ReformatClassifier
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(model llm.ChatModel, dispatcher *Dispatcher, classifier *ReformatClassifier, log *logger.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		model:      model,
		dispatcher: dispatcher,
		classifier: classifier,
		logger:     log.WithModule("orchestrator"),
		metrics:    m,
	}
}

// Respond runs the state machine over the supplied history and returns
// one assistant reply. History is never reordered or trimmed: every
// tool result and grounding message is appended in dispatch order.
func (o *Orchestrator) Respond(ctx context.Context, history []llm.Message) (*Reply, error) {
	start := time.Now()
	reply, err := o.respond(ctx, history)
	o.metrics.RecordChat(replyStatus(reply, err), time.Since(start))
	return reply, err
}

func (o *Orchestrator) respond(ctx context.Context, history []llm.Message) (*Reply, error) {
	conv := NewConversation(history)
	if !hasSystemMessage(history) {
		conv = NewConversation(append([]llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}, history...))
	}

	state := StateDeciding

	// Deciding: first model call with the tool catalog.
	decision, err := o.model.Chat(ctx, &llm.ChatRequest{
		Messages:    conv.Messages(),
		Tools:       Catalog(),
		Temperature: 0.2,
	})
	if err != nil {
		return o.failTurn(state, err)
	}

	if len(decision.ToolCalls) == 0 {
		// Deciding → Responding: plain content, no tools.
		return &Reply{Content: decision.Content}, nil
	}

	// Deciding → Dispatching: execute invocations strictly in the order
	// received. Each result is appended to history before the next
	// dispatch, so later invocations observe earlier side effects.
	state = StateDispatching
	o.logger.WithFields(map[string]any{
		"state":      state.String(),
		"tool_calls": len(decision.ToolCalls),
	}).Debug("dispatching tool invocations")
	conv.Append(llm.Message{
		Role:      llm.RoleAssistant,
		Content:   decision.Content,
		ToolCalls: decision.ToolCalls,
	})

	reformat := o.classifier.IsReformatRequest(conv.LatestUserText())

	var (
		lastTool     string
		lastOutcome  *dispatchOutcome
		needSynth    bool
		directOnly   = true
		directPieces []string
	)

	for _, tc := range decision.ToolCalls {
		inv, err := ParseInvocation(tc)
		if err != nil {
			content := invalidInvocationText(tc.Name, err)
			conv.Append(llm.Message{Role: llm.RoleTool, Content: content, ToolCallID: tc.ID, ToolName: tc.Name})
			directPieces = append(directPieces, content)
			lastTool = tc.Name
			continue
		}

		outcome, err := o.dispatcher.Dispatch(ctx, inv)
		if err != nil {
			return nil, fmt.Errorf("tool %s failed: %w", inv.Tool(), err)
		}

		conv.Append(llm.Message{Role: llm.RoleTool, Content: outcome.content, ToolCallID: tc.ID, ToolName: tc.Name})
		if outcome.grounding != "" {
			conv.Append(llm.Message{Role: llm.RoleSystem, Content: outcome.grounding})
		}

		lastTool = inv.Tool()
		lastOutcome = outcome

		if outcome.direct {
			directPieces = append(directPieces, outcome.content)
		} else {
			directOnly = false
			needSynth = true
		}
	}

	// Direct results short-circuit to Responding unless the user asked
	// for a reformat of attendance or timetable data, in which case the
	// model restyles them.
	if directOnly && !needSynth {
		if reformat && lastOutcome != nil && lastOutcome.reformattable {
			needSynth = true
		} else {
			return &Reply{Content: strings.Join(directPieces, "\n\n"), ToolUsed: lastTool}, nil
		}
	}

	// Dispatching → Synthesizing: second model call over the augmented
	// history, without tools, to produce the final answer.
	state = StateSynthesizing
	synthesis, err := o.model.Chat(ctx, &llm.ChatRequest{
		Messages:    conv.Messages(),
		Temperature: 0.4,
	})
	if err != nil {
		return o.failTurn(state, err)
	}

	content := synthesis.Content
	if content == "" {
		// A silent model still must not produce a silent turn.
		content = strings.Join(directPieces, "\n\n")
		if content == "" {
			content = "Sorry, I could not put together an answer this time. Please try again."
		}
	}

	return &Reply{Content: content, ToolUsed: lastTool}, nil
}

// failTurn converts a model-call failure into the turn's terminal
// outcome. Quota exhaustion transitions to RateLimited with a
// structured explanation; anything else propagates as UpstreamError.
func (o *Orchestrator) failTurn(state State, err error) (*Reply, error) {
	var qerr *domerrors.QuotaExceededError
	if errors.As(err, &qerr) {
		o.logger.WithError(err).WithField("state", state.String()).Warn("model quota exhausted")
		return &Reply{
			Content:     quotaMessage(qerr),
			RateLimited: true,
		}, nil
	}

	o.logger.WithError(err).WithField("state", state.String()).Error("model call failed")
	return nil, &domerrors.UpstreamError{Err: err}
}

func quotaMessage(qerr *domerrors.QuotaExceededError) string {
	if qerr.RetryAfter > 0 {
		return fmt.Sprintf(
			"I have hit my usage limit with the language model provider. Please try again in about %s.",
			qerr.RetryAfter.Round(time.Second),
		)
	}
	return "I have hit my usage limit with the language model provider. Please try again in a little while."
}

func invalidInvocationText(name string, err error) string {
	var unknown *domerrors.UnknownToolError
	if errors.As(err, &unknown) {
		return fmt.Sprintf("I tried to use an unknown capability (%s). Please rephrase your request.", name)
	}
	return fmt.Sprintf("I could not run the %s lookup: %v. Please rephrase and try again.", name, err)
}

func hasSystemMessage(msgs []llm.Message) bool {
	for _, m := range msgs {
		if m.Role == llm.RoleSystem {
			return true
		}
	}
	return false
}

func replyStatus(reply *Reply, err error) string {
	switch {
	case err != nil:
		return "error"
	case reply != nil && reply.RateLimited:
		return "rate_limited"
	default:
		return "success"
	}
}
