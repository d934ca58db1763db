package workflow

import "time"

// Status is the lifecycle state of an execution or of a single step.
type Status string

const (
	StatusRunning         Status = "running"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
	StatusPendingApproval Status = "pending_approval"
)

// ApprovalLevel names the clinical role(s) required to satisfy a gate.
type ApprovalLevel string

const (
	ApprovalQARN             ApprovalLevel = "qa_rn"
	ApprovalClinicalDirector ApprovalLevel = "clinical_director"
	ApprovalBoth             ApprovalLevel = "both"
)

// ApproverType is the asserted role of the person submitting an approval.
type ApproverType string

const (
	ApproverQARN             ApproverType = "qa_rn"
	ApproverClinicalDirector ApproverType = "clinical_director"
)

var validApproverTypes = map[ApproverType]bool{
	ApproverQARN:             true,
	ApproverClinicalDirector: true,
}

// ComplianceLevel classifies how strictly a workflow is audited.
type ComplianceLevel string

const (
	ComplianceStandard ComplianceLevel = "standard"
	ComplianceHigh     ComplianceLevel = "high"
	ComplianceCritical ComplianceLevel = "critical"
)

// TriggerType describes how a workflow run is initiated.
type TriggerType string

const (
	TriggerManual   TriggerType = "manual"
	TriggerEvent    TriggerType = "event"
	TriggerSchedule TriggerType = "schedule"
)

// Trigger describes what starts a workflow.
type Trigger struct {
	Type     TriggerType `json:"type"`
	Event    string      `json:"event,omitempty"`
	Schedule string      `json:"schedule,omitempty"`
}

// FinalApprovalStepID is the ledger scope used for a workflow's terminal
// approval gate, as opposed to a gate attached to a specific step.
const FinalApprovalStepID = "final_approval"

// Step is one unit of work within a workflow definition.
type Step struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Integration string                 `json:"integration"`
	Action      string                 `json:"action"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Condition   string                 `json:"condition,omitempty"`
	OnSuccess   string                 `json:"onSuccess,omitempty"`
	OnError     string                 `json:"onError,omitempty"`

	RequiresApproval bool          `json:"requiresApproval,omitempty"`
	ApprovalLevel    ApprovalLevel `json:"approvalLevel,omitempty"`
	// ApprovalRequired marks the workflow's terminal approval gate step.
	ApprovalRequired bool `json:"approvalRequired,omitempty"`
}

// Definition is a static workflow configuration. Definitions are built once
// at process start and never mutated afterward.
type Definition struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Trigger     Trigger `json:"trigger"`
	Steps       []Step  `json:"steps"`
	Enabled     bool    `json:"enabled"`

	RequiresFinalApproval bool            `json:"requiresFinalApproval"`
	FinalApprovalLevel    ApprovalLevel   `json:"finalApprovalLevel,omitempty"`
	ComplianceLevel       ComplianceLevel `json:"complianceLevel"`
}

// clone returns a copy that shares nothing mutable with the original, so
// callers cannot reach back into the registry's definitions.
func (d *Definition) clone() Definition {
	cp := *d
	cp.Steps = make([]Step, len(d.Steps))
	for i, step := range d.Steps {
		if step.Parameters != nil {
			params := make(map[string]interface{}, len(step.Parameters))
			for k, v := range step.Parameters {
				params[k] = v
			}
			step.Parameters = params
		}
		cp.Steps[i] = step
	}
	return cp
}

// StepExecution is one row per attempted step within an execution.
type StepExecution struct {
	StepID    string     `json:"stepId"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Error     string     `json:"error,omitempty"`

	RequiresApproval     bool          `json:"requiresApproval,omitempty"`
	ApprovalLevel        ApprovalLevel `json:"approvalLevel,omitempty"`
	PendingApprovalLevel ApprovalLevel `json:"pendingApprovalLevel,omitempty"`
}

// LogEntry is one append-only execution log line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Approver carries the asserted identity of the person submitting an
// approval. The engine records these values as given; binding them to a real
// identity system is the caller's responsibility.
type Approver struct {
	ID          string `json:"approverId"`
	Name        string `json:"approverName"`
	Credentials string `json:"approverCredentials"`
	IPAddress   string `json:"ipAddress,omitempty"`
	DeviceInfo  string `json:"deviceInfo,omitempty"`
}

// ApprovalRecord is an immutable audit entry. Records are only ever appended
// to an execution's ledger, never modified or removed.
type ApprovalRecord struct {
	ID           string       `json:"id"`
	WorkflowID   string       `json:"workflowId"`
	ExecutionID  string       `json:"executionId"`
	StepID       string       `json:"stepId"`
	ApproverType ApproverType `json:"approverType"`

	ApproverID          string `json:"approverId"`
	ApproverName        string `json:"approverName"`
	ApproverCredentials string `json:"approverCredentials"`

	ApprovalTimestamp time.Time `json:"approvalTimestamp"`
	ApprovalComments  string    `json:"approvalComments,omitempty"`

	DigitalSignature string `json:"digitalSignature"`
	IPAddress        string `json:"ipAddress,omitempty"`
	DeviceInfo       string `json:"deviceInfo,omitempty"`
}

// Execution is the mutable runtime record of one workflow run. It is owned
// by the engine; callers receive isolated snapshots.
type Execution struct {
	ID         string     `json:"id"`
	WorkflowID string     `json:"workflowId"`
	Status     Status     `json:"status"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`

	Context   map[string]interface{} `json:"context"`
	Steps     []StepExecution        `json:"steps"`
	Logs      []LogEntry             `json:"logs"`
	Approvals []ApprovalRecord       `json:"approvals"`

	Error                string        `json:"error,omitempty"`
	PendingApprovalLevel ApprovalLevel `json:"pendingApprovalLevel,omitempty"`
}

// pendingGate returns the ledger scope and level the execution is currently
// blocked on. A pending step gate is scoped by that step's id; with no
// pending step the execution is blocked on the terminal gate.
func (ex *Execution) pendingGate(def *Definition) (stepID string, level ApprovalLevel, ok bool) {
	if ex.Status != StatusPendingApproval {
		return "", "", false
	}
	for i := len(ex.Steps) - 1; i >= 0; i-- {
		if ex.Steps[i].Status == StatusPendingApproval {
			return ex.Steps[i].StepID, ex.Steps[i].ApprovalLevel, true
		}
	}
	return FinalApprovalStepID, def.FinalApprovalLevel, true
}

// gateSatisfied reports whether the ledger holds qualifying approvals for
// the given gate scope.
func (ex *Execution) gateSatisfied(stepID string, level ApprovalLevel) bool {
	var qaRN, director bool
	for _, rec := range ex.Approvals {
		if rec.StepID != stepID {
			continue
		}
		switch rec.ApproverType {
		case ApproverQARN:
			qaRN = true
		case ApproverClinicalDirector:
			director = true
		}
	}
	switch level {
	case ApprovalQARN:
		return qaRN
	case ApprovalClinicalDirector:
		return director
	case ApprovalBoth:
		return qaRN && director
	default:
		return false
	}
}

// snapshot returns a deep copy safe to hand to callers.
func (ex *Execution) snapshot() *Execution {
	cp := *ex
	cp.Context = make(map[string]interface{}, len(ex.Context))
	for k, v := range ex.Context {
		cp.Context[k] = v
	}
	cp.Steps = append([]StepExecution(nil), ex.Steps...)
	cp.Logs = append([]LogEntry(nil), ex.Logs...)
	cp.Approvals = append([]ApprovalRecord(nil), ex.Approvals...)
	return &cp
}
