package eventstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event type names.
const (
	TypeModuleStarted  = "ModuleStarted"
	TypeModuleFinished = "ModuleFinished"
	TypeModuleFailed   = "ModuleFailed"
	TypeBuildCompleted = "BuildCompleted"
)

// ModulePayload is the payload of module events.
type ModulePayload struct {
	Module     string `json:"module"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BuildPayload is the payload of BuildCompleted.
type BuildPayload struct {
	Modules    []string `json:"modules"`
	DurationMS int64    `json:"duration_ms"`
	Outcome    string   `json:"outcome"`
}

func newEvent(buildID, eventType string, at time.Time, payload any) (*BaseEvent, error) {
	var module string
	if p, ok := payload.(ModulePayload); ok {
		module = p.Module
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventModule:    module,
		EventTimestamp: at,
		EventPayload:   data,
	}, nil
}

// NewModuleStarted creates a ModuleStarted event.
func NewModuleStarted(buildID, module string, at time.Time) (*BaseEvent, error) {
	return newEvent(buildID, TypeModuleStarted, at, ModulePayload{Module: module})
}

// NewModuleFinished creates a ModuleFinished event.
func NewModuleFinished(buildID, module string, at time.Time, d time.Duration) (*BaseEvent, error) {
	return newEvent(buildID, TypeModuleFinished, at, ModulePayload{Module: module, DurationMS: d.Milliseconds()})
}

// NewModuleFailed creates a ModuleFailed event.
func NewModuleFailed(buildID, module string, at time.Time, d time.Duration, cause error) (*BaseEvent, error) {
	p := ModulePayload{Module: module, DurationMS: d.Milliseconds()}
	if cause != nil {
		p.Error = cause.Error()
	}
	return newEvent(buildID, TypeModuleFailed, at, p)
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, at time.Time, modules []string, d time.Duration, outcome string) (*BaseEvent, error) {
	if modules == nil {
		modules = []string{}
	}
	return newEvent(buildID, TypeBuildCompleted, at, BuildPayload{Modules: modules, DurationMS: d.Milliseconds(), Outcome: outcome})
}

// DecodeModule decodes the payload of a module event.
func DecodeModule(e Event) (ModulePayload, error) {
	var p ModulePayload
	if err := json.Unmarshal(e.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", e.Type(), err)
	}
	return p, nil
}
