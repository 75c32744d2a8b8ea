package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

type flagError struct {
	flag  string
	value string
	want  string
}

func (e *flagError) Error() string {
	return fmt.Sprintf("invalid %s value %q (expected %s)", e.flag, e.value, e.want)
}

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", &flagError{flag: "--ui", value: value, want: "auto|on|off"}
	}
}

// shouldUseTUI enables the progress view in auto mode only for interactive
// output with more than one unit.
func shouldUseTUI(mode uiMode, units int) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return units > 1 && isTerminal(os.Stdout)
	}
}
