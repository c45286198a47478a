package cliui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type Colorizer struct {
	Enabled bool
}

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func ParseColorMode(v string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return "", fmt.Errorf("invalid --color %q (expected auto|always|never)", v)
	}
}

func NewColorizer(mode ColorMode, out io.Writer) Colorizer {
	switch mode {
	case ColorNever:
		return Colorizer{}
	case ColorAlways:
		return Colorizer{Enabled: true}
	}
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return Colorizer{}
	}
	f, ok := out.(*os.File)
	if !ok {
		return Colorizer{}
	}
	fi, err := f.Stat()
	if err != nil {
		return Colorizer{}
	}
	if fi.Mode()&os.ModeCharDevice == 0 {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

// Category colors an intent category for terminal output. Offensive intents
// run warm, housekeeping stays plain.
func (c Colorizer) Category(v string) string {
	if !c.Enabled {
		return v
	}
	switch v {
	case "privilege_escalation":
		return wrap(v, "31")
	case "persistence", "data_exfiltration":
		return wrap(v, "33")
	case "lateral_movement":
		return wrap(v, "35")
	case "reconnaissance":
		return wrap(v, "36")
	default:
		return v
	}
}

func wrap(s, code string) string {
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
