package core

// Frame is an encoded outbound event, ready for the transport.
type Frame []byte

// SessionID identifies one client connection for its whole lifetime.
// The core only compares it and hands it to the hub for delivery.
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
