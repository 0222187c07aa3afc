package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

type statusStyle struct {
	label  string
	colors text.Colors
}

var statusStyles = [...]statusStyle{
	statusInfo:  {"INFO", text.Colors{text.FgBlue}},
	statusOK:    {"OK", text.Colors{text.FgGreen}},
	statusWarn:  {"WARN", text.Colors{text.FgYellow}},
	statusError: {"ERROR", text.Colors{text.FgRed}},
}

func (k statusKind) style() statusStyle {
	if k < 0 || int(k) >= len(statusStyles) {
		return statusStyles[statusInfo]
	}
	return statusStyles[k]
}

// renderCheckLine formats one check result as "  Name:   [OK] detail".
func renderCheckLine(name string, kind statusKind, detail string, colorize bool) string {
	tag := "[" + kind.style().label + "]"
	if detail != "" {
		tag += " " + detail
	}
	return paint(fmt.Sprintf("  %-20s %s", name+":", tag), kind, colorize)
}

func paint(s string, kind statusKind, colorize bool) string {
	if !colorize {
		return s
	}
	return kind.style().colors.Sprint(s)
}

// shouldColorize is true only for terminals, and never when NO_COLOR is set.
func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
