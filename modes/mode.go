package modes

type Mode uint8

const (
	ModeProduction Mode = iota + 1
	// ModeDevelopment is used by tests: no proxy, short transport backoff.
	ModeDevelopment
)

func (m Mode) String() string {
	switch m {
	case ModeProduction:
		return "production"
	case ModeDevelopment:
		return "development"
	}
	return "unknown"
}
