package events

// Event names emitted by the core at documented lifecycle points.
const (
	ProductAdded          = "product-added"
	ProductUpdated        = "product-updated"
	ProductDeleted        = "product-deleted"
	CheckingStatusUpdated = "product-checking-status-updated"
	TimerUpdated          = "timer-updated"
)

// Emitter is the event-emission collaborator toward the UI/shell. The core
// names events and payloads; transport is the implementation's concern.
type Emitter interface {
	Emit(event string, payload any)
}

// Nop drops all events.
type Nop struct{}

// Emit implements Emitter.
func (Nop) Emit(string, any) {}
