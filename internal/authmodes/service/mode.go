package service

import "github.com/aussiebroadwan/authmodes/pkg/authsdk"

// Mode selects one of the three authentication strategies.
type Mode int

const (
	ModeStateless Mode = iota + 1
	ModeHybrid
	ModeSession
)

// Modes lists every supported mode.
var Modes = []Mode{ModeStateless, ModeHybrid, ModeSession}

func (m Mode) String() string {
	switch m {
	case ModeStateless:
		return authsdk.ModeStateless
	case ModeHybrid:
		return authsdk.ModeHybrid
	case ModeSession:
		return authsdk.ModeSession
	default:
		return "unknown"
	}
}

// ParseMode accepts exactly the lower-case mode names.
func ParseMode(raw string) (Mode, error) {
	for _, m := range Modes {
		if raw == m.String() {
			return m, nil
		}
	}
	return 0, invalidField(FieldMode, authsdk.ReasonInvalidMode)
}
