package replicate

// Replicator is the named-topic text streaming primitive the session
// transport provides: one receiver per topic, whole messages only (the
// transport owns framing), best-effort delivery.
type Replicator interface {
	Sender

	// RegisterReceiver installs the handler invoked once per complete
	// inbound message on the topic. Exactly one receiver per topic.
	RegisterReceiver(topic string, onMessage func(text string))
}
