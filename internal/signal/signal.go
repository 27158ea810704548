// Package signal models the crypto screen's action signal.
package signal

import (
	"fmt"
	"strings"
)

// Icon is the closed set of glyphs an action signal can carry.
type Icon int

const (
	IconSkull Icon = iota + 1
	IconRocket
	IconShield
	IconEye
	IconCloudOff
)

// ParseIcon maps the backend's icon name. ok is false for names outside the set.
func ParseIcon(name string) (Icon, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "skull":
		return IconSkull, true
	case "rocket":
		return IconRocket, true
	case "shield":
		return IconShield, true
	case "eye":
		return IconEye, true
	case "cloud-off", "cloud_off", "cloudoff":
		return IconCloudOff, true
	}
	return 0, false
}

func (i Icon) String() string {
	switch i {
	case IconSkull:
		return "skull"
	case IconRocket:
		return "rocket"
	case IconShield:
		return "shield"
	case IconEye:
		return "eye"
	case IconCloudOff:
		return "cloud-off"
	}
	return fmt.Sprintf("icon(%d)", int(i))
}

// FallbackGlyph stands in for icons the renderer does not know.
const FallbackGlyph = "〰"

// Glyph is the terminal rendering of the icon.
func (i Icon) Glyph() string {
	switch i {
	case IconSkull:
		return "☠"
	case IconRocket:
		return "🚀"
	case IconShield:
		return "🛡"
	case IconEye:
		return "👁"
	case IconCloudOff:
		return "☁"
	}
	return FallbackGlyph
}

// Signal is the headline recommendation on the crypto screen.
type Signal struct {
	Code  string
	Color string // hex, e.g. "#FACC15"
	Icon  Icon
}

// Thresholds used by Classify.
const (
	TrapConflict      = 0.70
	TrapSentiment     = 0.4
	BullishConflict   = 0.4
	BullishSentiment  = 0.3
	PanicSentiment    = -0.35
	PanicConflictOver = 0.65
)

var (
	Crash    = Signal{Code: "ABORT / CRASH", Color: "#FF0000", Icon: IconSkull}
	Trap     = Signal{Code: "TRAP / FAKE PUMP", Color: "#FACC15", Icon: IconEye}
	Bullish  = Signal{Code: "STRONG BUY", Color: "#22C55E", Icon: IconRocket}
	Wait     = Signal{Code: "HODL / WAIT", Color: "#A855F7", Icon: IconShield}
	NoSignal = Signal{Code: "NO SIGNAL", Color: "#64748B", Icon: IconCloudOff}
)

// IsPanic reports the crash condition: strongly negative mood under heavy conflict.
func IsPanic(conflict, sentiment float64) bool {
	return sentiment < PanicSentiment && conflict > PanicConflictOver
}

// Classify turns narrative conflict and average sentiment into a signal.
func Classify(conflict, sentiment float64, panicking bool) Signal {
	switch {
	case panicking:
		return Crash
	case conflict > TrapConflict && sentiment > TrapSentiment:
		return Trap
	case conflict < BullishConflict && sentiment > BullishSentiment:
		return Bullish
	default:
		return Wait
	}
}
