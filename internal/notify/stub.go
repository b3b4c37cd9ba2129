//go:build !linux

package notify

// New returns Nop; desktop notifications need a freedesktop session bus.
func New(_ string) (Notifier, error) {
	return Nop(), nil
}
