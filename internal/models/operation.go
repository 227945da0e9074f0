package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// OperationType identifies the kind of work an operation tracks.
type OperationType string

const (
	OperationUnknown             OperationType = "Unknown"
	OperationLoadVideoToSubFile  OperationType = "LoadVideoToSubFile"
	OperationLoadVideoToDatabase OperationType = "LoadVideoToDatabase"
	OperationGetSubFile          OperationType = "GetSubFile"
	OperationGetDataTable        OperationType = "GetDataTable"
)

// OperationStatus is the lifecycle state of an operation.
type OperationStatus string

const (
	StatusUnknown   OperationStatus = "Unknown"
	StatusInProcess OperationStatus = "InProcess"
	StatusDone      OperationStatus = "Done"
	StatusDie       OperationStatus = "Die"
)

// Fault describes why an operation failed. Detail optionally chains an underlying fault.
type Fault struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  *Fault `json:"detail,omitempty"`
}

// NewFault builds a [Fault]; an empty message defaults to "Fault <code> has occurred".
func NewFault(code, message string, detail *Fault) Fault {
	if message == "" {
		message = fmt.Sprintf("Fault %s has occurred", code)
	}
	return Fault{Code: code, Message: message, Detail: detail}
}

// FaultUnknown is reported when no better description is available.
var FaultUnknown = NewFault("Unknown", "", nil)

// Error implements error.
func (f Fault) Error() string {
	if f.Detail != nil {
		return fmt.Sprintf("%s: %s", f.Message, f.Detail.Error())
	}
	return f.Message
}

// OperationInfo tracks a long-running server-side operation.
//
// Faults is null until the first fault is recorded.
type OperationInfo struct {
	ID           string          `json:"id"`
	VideoID      string          `json:"videoId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	Type         OperationType   `json:"type"`
	Status       OperationStatus `json:"status"`
	LastUpdateAt time.Time       `json:"lastUpdateAt"`
	Faults       []Fault         `json:"faults"`
}

// NewOperationInfo creates an operation of the given type in the InProcess state.
func NewOperationInfo(id string, kind OperationType, now time.Time) *OperationInfo {
	return &OperationInfo{
		ID:           id,
		CreatedAt:    now,
		Type:         kind,
		Status:       StatusInProcess,
		LastUpdateAt: now,
	}
}

// AddFault records a fault without changing the status.
func (o *OperationInfo) AddFault(f Fault, now time.Time) {
	o.Faults = append(o.Faults, f)
	o.LastUpdateAt = now
}

// Fail records a fault and moves the operation to [StatusDie].
func (o *OperationInfo) Fail(f Fault, now time.Time) {
	o.AddFault(f, now)
	o.Status = StatusDie
}

// Complete moves the operation to [StatusDone].
func (o *OperationInfo) Complete(now time.Time) {
	o.Status = StatusDone
	o.LastUpdateAt = now
}

// Success reports whether the operation has not died.
func (o *OperationInfo) Success() bool {
	return o.Status != StatusDie
}

// MarshalFaults encodes the fault list for storage; nil is kept as SQL NULL by the caller.
func (o *OperationInfo) MarshalFaults() ([]byte, error) {
	if o.Faults == nil {
		return nil, nil
	}
	return json.Marshal(o.Faults)
}
