package models

import "time"

type MissionState string

const (
	MissionInactive MissionState = "INACTIVE"
	MissionActive   MissionState = "ACTIVE"
	MissionPaused   MissionState = "PAUSED"
	MissionAborted  MissionState = "ABORTED"
	MissionComplete MissionState = "COMPLETE"
)

type MissionEventKind string

const (
	EventStateChange MissionEventKind = "STATE_CHANGE"
	EventCheckpoint  MissionEventKind = "CHECKPOINT"
	EventRiskWarning MissionEventKind = "RISK_WARNING"
	EventLowBattery  MissionEventKind = "LOW_BATTERY"
	EventReplanned   MissionEventKind = "REPLANNED"
)

// MissionEvent is published to observers on every state transition,
// checkpoint, and warning condition. Hosts render these as UI, logs or
// alerts; the engine attaches no behavior to them.
type MissionEvent struct {
	Kind      MissionEventKind `json:"kind"`
	State     MissionState     `json:"state"`
	Position  Coordinates      `json:"position"`
	Segment   int              `json:"segment"`
	Risk      float64          `json:"risk"`
	Battery   float64          `json:"battery"`
	Message   string           `json:"message,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// MissionStatus is a point-in-time snapshot of a mission for hosts.
type MissionStatus struct {
	State    MissionState `json:"state"`
	Position Coordinates  `json:"position"`
	Segment  int          `json:"segment"`
	Progress float64      `json:"progress"`
	Battery  float64      `json:"battery"`
	Route    Route        `json:"route"`
}
