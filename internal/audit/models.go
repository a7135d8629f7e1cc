package audit

import "time"

// Actions recorded by the registration flows.
const (
	ActionParticipantRegistered = "participant.registered"
	ActionParticipantUpdated    = "participant.updated"
	ActionParticipantDeleted    = "participant.deleted"
	ActionPaymentRecorded       = "payment.recorded"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time
	Actor         string
	ParticipantID string
	Cedula        string
	Action        string
	Detail        string
}
