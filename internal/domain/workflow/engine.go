package workflow

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/homehealth/intake/internal/platform/integration"
	"github.com/homehealth/intake/internal/platform/metrics"
)

// Engine drives workflow executions. Each execution advances strictly
// sequentially on the goroutine that started or resumed it; a per-execution
// mutex serializes resumption against approval submission.
type Engine struct {
	registry   *Registry
	dispatcher integration.Dispatcher
	signingKey []byte
	clock      func() time.Time
	logger     zerolog.Logger

	mu         sync.RWMutex
	executions map[string]*execState
}

type execState struct {
	mu  sync.Mutex
	def *Definition
	ex  *Execution
}

// EngineOptions carries optional engine collaborators.
type EngineOptions struct {
	// Clock overrides the timestamp source. Defaults to time.Now.
	Clock func() time.Time
}

// NewEngine constructs an engine over the given registry and dispatcher.
// signingKey is the HMAC key for approval signatures.
func NewEngine(registry *Registry, dispatcher integration.Dispatcher, signingKey string, logger zerolog.Logger) *Engine {
	return NewEngineWithOptions(registry, dispatcher, signingKey, logger, EngineOptions{})
}

func NewEngineWithOptions(registry *Registry, dispatcher integration.Dispatcher, signingKey string, logger zerolog.Logger, opts EngineOptions) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		registry:   registry,
		dispatcher: dispatcher,
		signingKey: []byte(signingKey),
		clock:      clock,
		logger:     logger.With().Str("component", "workflow_engine").Logger(),
		executions: make(map[string]*execState),
	}
}

// ListWorkflows returns the catalog ordered by id.
func (e *Engine) ListWorkflows() []Definition {
	return e.registry.List()
}

// GetWorkflow returns an isolated copy of one definition by id.
func (e *Engine) GetWorkflow(id string) (*Definition, error) {
	def, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	cp := def.clone()
	return &cp, nil
}

// StartWorkflow creates an execution for the named workflow and drives its
// steps until it completes, fails, or parks on an approval gate. Unknown or
// disabled workflows fail synchronously; once started, failures surface via
// the execution's status and error fields.
func (e *Engine) StartWorkflow(ctx context.Context, workflowID string, wfContext map[string]interface{}) (*Execution, error) {
	def, err := e.registry.Get(workflowID)
	if err != nil {
		return nil, err
	}
	if !def.Enabled {
		return nil, fmt.Errorf("workflow %q: %w", workflowID, ErrDisabled)
	}

	execCtx := make(map[string]interface{}, len(wfContext))
	for k, v := range wfContext {
		execCtx[k] = v
	}
	ex := &Execution{
		ID:         uuid.NewString(),
		WorkflowID: def.ID,
		Status:     StatusRunning,
		StartTime:  e.clock(),
		Context:    execCtx,
	}
	st := &execState{def: def, ex: ex}

	e.mu.Lock()
	e.executions[ex.ID] = st
	e.mu.Unlock()

	st.mu.Lock()
	defer st.mu.Unlock()
	e.logf(ex, "workflow %s started", def.Name)
	metrics.IncExecutionStatus(string(StatusRunning))
	e.advance(ctx, st)
	return ex.snapshot(), nil
}

// GetExecution returns an isolated snapshot of the execution.
func (e *Engine) GetExecution(id string) (*Execution, error) {
	st, err := e.state(id)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ex.snapshot(), nil
}

// GetPendingApprovals returns snapshots of executions parked on an approval
// gate. A non-empty approverType narrows the result to gates that role can
// satisfy; a level of both matches either role.
func (e *Engine) GetPendingApprovals(approverType ApproverType) []*Execution {
	e.mu.RLock()
	states := make([]*execState, 0, len(e.executions))
	for _, st := range e.executions {
		states = append(states, st)
	}
	e.mu.RUnlock()

	var out []*Execution
	for _, st := range states {
		st.mu.Lock()
		if st.ex.Status == StatusPendingApproval && levelMatches(st.ex.PendingApprovalLevel, approverType) {
			out = append(out, st.ex.snapshot())
		}
		st.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SubmitApproval appends an approval record to the execution's ledger and,
// if the record satisfies the pending gate, resumes the execution. Every
// submission is recorded, including role mismatches and duplicates; the
// returned bool reports whether the execution advanced.
func (e *Engine) SubmitApproval(ctx context.Context, executionID string, approverType ApproverType, approver Approver, comments string) (bool, error) {
	if !validApproverTypes[approverType] {
		return false, fmt.Errorf("invalid approver type %q", approverType)
	}
	st, err := e.state(executionID)
	if err != nil {
		return false, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	ex := st.ex

	stepID, level, pending := ex.pendingGate(st.def)
	ts := e.clock()
	rec := ApprovalRecord{
		ID:                  uuid.NewString(),
		WorkflowID:          ex.WorkflowID,
		ExecutionID:         ex.ID,
		StepID:              stepID,
		ApproverType:        approverType,
		ApproverID:          approver.ID,
		ApproverName:        approver.Name,
		ApproverCredentials: approver.Credentials,
		ApprovalTimestamp:   ts,
		ApprovalComments:    comments,
		DigitalSignature:    e.sign(approver.ID, ex.ID, ts),
		IPAddress:           approver.IPAddress,
		DeviceInfo:          approver.DeviceInfo,
	}
	ex.Approvals = append(ex.Approvals, rec)
	e.logf(ex, "approval recorded: %s by %s (%s)", approverType, approver.Name, stepID)
	metrics.IncApproval(string(approverType))

	if !pending || !ex.gateSatisfied(stepID, level) {
		return false, nil
	}
	e.advance(ctx, st)
	return true, nil
}

// state looks up the live execution record.
func (e *Engine) state(id string) (*execState, error) {
	e.mu.RLock()
	st, ok := e.executions[id]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("execution %q: %w", id, ErrNotFound)
	}
	return st, nil
}

// advance drives the execution forward from wherever it stands: fresh steps
// are attempted in definition order, a cleared approval gate re-runs its
// step, and any block (gate, failure) stops the loop. Callers hold st.mu.
func (e *Engine) advance(ctx context.Context, st *execState) {
	def, ex := st.def, st.ex

	for i := range def.Steps {
		step := &def.Steps[i]

		if i < len(ex.Steps) {
			se := &ex.Steps[i]
			switch se.Status {
			case StatusCompleted:
				continue
			case StatusFailed:
				return
			case StatusPendingApproval:
				if !ex.gateSatisfied(gateScope(step), gateLevel(def, step)) {
					return
				}
				se.Status = StatusRunning
				se.PendingApprovalLevel = ""
				ex.Status = StatusRunning
				ex.PendingApprovalLevel = ""
				e.logf(ex, "step %s approval granted, resuming", step.Name)
				if !e.runStep(ctx, st, step, se) {
					return
				}
				continue
			default:
				return
			}
		}

		if step.Condition != "" && !evalCondition(step.Condition, ex.Context) {
			now := e.clock()
			end := now
			ex.Steps = append(ex.Steps, StepExecution{
				StepID:    step.ID,
				Name:      step.Name,
				Status:    StatusCompleted,
				StartTime: now,
				EndTime:   &end,
			})
			e.logf(ex, "step %s skipped: condition %s not met", step.Name, step.Condition)
			metrics.IncStepStatus("skipped")
			continue
		}

		level := gateLevel(def, step)
		ex.Steps = append(ex.Steps, StepExecution{
			StepID:           step.ID,
			Name:             step.Name,
			Status:           StatusRunning,
			StartTime:        e.clock(),
			RequiresApproval: level != "",
			ApprovalLevel:    level,
		})
		se := &ex.Steps[len(ex.Steps)-1]
		e.logf(ex, "step %s started", step.Name)

		if level != "" && !ex.gateSatisfied(gateScope(step), level) {
			se.Status = StatusPendingApproval
			se.PendingApprovalLevel = level
			ex.Status = StatusPendingApproval
			ex.PendingApprovalLevel = level
			e.logf(ex, "step %s awaiting %s approval", step.Name, level)
			metrics.IncExecutionStatus(string(StatusPendingApproval))
			return
		}

		if !e.runStep(ctx, st, step, se) {
			return
		}
	}

	if def.RequiresFinalApproval && !ex.gateSatisfied(FinalApprovalStepID, def.FinalApprovalLevel) {
		ex.Status = StatusPendingApproval
		ex.PendingApprovalLevel = def.FinalApprovalLevel
		e.logf(ex, "awaiting final %s approval", def.FinalApprovalLevel)
		metrics.IncExecutionStatus(string(StatusPendingApproval))
		return
	}

	now := e.clock()
	ex.Status = StatusCompleted
	ex.EndTime = &now
	ex.PendingApprovalLevel = ""
	e.logf(ex, "workflow completed")
	metrics.IncExecutionStatus(string(StatusCompleted))
}

// runStep dispatches the step's integration call and records the outcome.
// Returns false when the step failed and the execution must halt. Successful
// results merge into the execution context so later conditions can read them.
func (e *Engine) runStep(ctx context.Context, st *execState, step *Step, se *StepExecution) bool {
	ex := st.ex
	result, err := e.dispatcher.Call(ctx, step.Integration, step.Action, step.Parameters, ex.Context)
	now := e.clock()
	se.EndTime = &now
	if err != nil {
		se.Status = StatusFailed
		se.Error = err.Error()
		ex.Status = StatusFailed
		ex.Error = fmt.Sprintf("step %s: %v", step.ID, err)
		ex.EndTime = &now
		e.logf(ex, "step %s failed: %v", step.Name, err)
		if step.OnError != "" {
			e.logf(ex, "error handler %s invoked", step.OnError)
		}
		metrics.IncStepStatus(string(StatusFailed))
		metrics.IncExecutionStatus(string(StatusFailed))
		return false
	}
	for k, v := range result {
		ex.Context[k] = v
	}
	se.Status = StatusCompleted
	e.logf(ex, "step %s completed", step.Name)
	if step.OnSuccess != "" {
		e.logf(ex, "success handler %s invoked", step.OnSuccess)
	}
	metrics.IncStepStatus(string(StatusCompleted))
	return true
}

// sign derives the approval signature from the approver, execution and
// timestamp. Same inputs at different times never collide.
func (e *Engine) sign(approverID, executionID string, ts time.Time) string {
	mac := hmac.New(sha256.New, e.signingKey)
	fmt.Fprintf(mac, "%s|%s|%d", approverID, executionID, ts.UnixNano())
	return hex.EncodeToString(mac.Sum(nil))
}

func (e *Engine) logf(ex *Execution, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	ex.Logs = append(ex.Logs, LogEntry{Timestamp: e.clock(), Message: msg})
	e.logger.Info().
		Str("execution_id", ex.ID).
		Str("workflow_id", ex.WorkflowID).
		Msg(msg)
}

// gateLevel returns the approval level guarding a step, or "" for ungated
// steps. A terminal-gate marker step uses the workflow's final level.
func gateLevel(def *Definition, step *Step) ApprovalLevel {
	if step.RequiresApproval {
		return step.ApprovalLevel
	}
	if step.ApprovalRequired {
		return def.FinalApprovalLevel
	}
	return ""
}

// gateScope returns the ledger scope for a step's gate. Terminal-gate marker
// steps share the final-approval scope.
func gateScope(step *Step) string {
	if step.ApprovalRequired {
		return FinalApprovalStepID
	}
	return step.ID
}

func levelMatches(level ApprovalLevel, approverType ApproverType) bool {
	if approverType == "" {
		return true
	}
	switch level {
	case ApprovalBoth:
		return true
	case ApprovalQARN:
		return approverType == ApproverQARN
	case ApprovalClinicalDirector:
		return approverType == ApproverClinicalDirector
	default:
		return false
	}
}
