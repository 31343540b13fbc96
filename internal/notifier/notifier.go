package notifier

// Notifier delivers user-facing price alerts. Delivery is fire-and-forget:
// the core never learns about failures.
type Notifier interface {
	Notify(title, message string)
}

// Nop discards notifications. Used when no Telegram token is configured.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(string, string) {}
