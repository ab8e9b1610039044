package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Ship/module layer.
	ErrEmptySlot             = "E_EMPTY_SLOT"
	ErrOnCooldown            = "E_ON_COOLDOWN"
	ErrInsufficientCapacitor = "E_INSUFFICIENT_CAPACITOR"
	ErrNoTarget              = "E_NO_TARGET"
	ErrOutOfRange            = "E_OUT_OF_RANGE"

	// Controller/ledger layer.
	ErrInvalidTransition = "E_INVALID_TRANSITION"
	ErrCapacityExceeded  = "E_CAPACITY_EXCEEDED"

	// Generic request layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrNoResource    = "E_NO_RESOURCE"
	ErrConflict      = "E_CONFLICT"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:       {},
	ErrEmptySlot:             {},
	ErrOnCooldown:            {},
	ErrInsufficientCapacitor: {},
	ErrNoTarget:              {},
	ErrOutOfRange:            {},
	ErrInvalidTransition:     {},
	ErrCapacityExceeded:      {},
	ErrBadRequest:            {},
	ErrInvalidTarget:         {},
	ErrNoResource:            {},
	ErrConflict:              {},
	ErrInternal:              {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
