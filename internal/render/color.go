package render

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrConflictingColorModes = errors.New("ansi and tmux color modes are mutually exclusive")
	ErrInvalidThresholds     = errors.New("invalid color thresholds")
	ErrUnknownColorMode      = errors.New("unknown color mode")
)

type ColorMode string

const (
	ColorNone ColorMode = "none"
	ColorANSI ColorMode = "ansi"
	ColorTmux ColorMode = "tmux"
)

// ResolveColorMode turns the two user toggles into a single mode.
func ResolveColorMode(ansi, tmux bool) (ColorMode, error) {
	switch {
	case ansi && tmux:
		return ColorNone, ErrConflictingColorModes
	case ansi:
		return ColorANSI, nil
	case tmux:
		return ColorTmux, nil
	default:
		return ColorNone, nil
	}
}

// ParseColorMode accepts a mode by name; empty means ColorNone.
func ParseColorMode(raw string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ColorNone:
		return ColorNone, nil
	case ColorANSI:
		return ColorANSI, nil
	case ColorTmux:
		return ColorTmux, nil
	default:
		return ColorNone, fmt.Errorf("%w %q", ErrUnknownColorMode, raw)
	}
}

type Band uint8

const (
	BandGreen Band = iota
	BandYellow
	BandRed
)

func (b Band) String() string {
	switch b {
	case BandYellow:
		return "yellow"
	case BandRed:
		return "red"
	default:
		return "green"
	}
}

// Thresholds split the summed load into bands. Load below GreenUntil is
// green, below YellowUntil yellow, anything else red.
type Thresholds struct {
	GreenUntil  float64
	YellowUntil float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{GreenUntil: 2, YellowUntil: 4}
}

func (t Thresholds) Validate() error {
	if math.IsNaN(t.GreenUntil) || math.IsNaN(t.YellowUntil) {
		return fmt.Errorf("%w: NaN", ErrInvalidThresholds)
	}
	if t.GreenUntil < 0 || t.YellowUntil < 0 {
		return fmt.Errorf("%w: must be >= 0", ErrInvalidThresholds)
	}
	if t.GreenUntil > t.YellowUntil {
		return fmt.Errorf("%w: green %.2f above yellow %.2f", ErrInvalidThresholds, t.GreenUntil, t.YellowUntil)
	}
	return nil
}

func Classify(load float64, t Thresholds) Band {
	switch {
	case load < t.GreenUntil:
		return BandGreen
	case load < t.YellowUntil:
		return BandYellow
	default:
		return BandRed
	}
}

var ansiCodes = map[Band]string{
	BandGreen:  "\x1b[32m",
	BandYellow: "\x1b[33m",
	BandRed:    "\x1b[31m",
}

const ansiReset = "\x1b[0m"

const tmuxReset = "#[fg=default]"

// Directives returns the start and reset sequences that wrap a line in the
// given mode. ColorNone yields two empty strings.
func Directives(mode ColorMode, band Band) (start, reset string) {
	switch mode {
	case ColorANSI:
		return ansiCodes[band], ansiReset
	case ColorTmux:
		return "#[fg=" + band.String() + "]", tmuxReset
	default:
		return "", ""
	}
}
