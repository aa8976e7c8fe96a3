package lsoda

import "fmt"

// diag.go adapts the teacher's simulation_internal.go scolorf/warnf pair:
// a terminal color escape wrapper used to make warnings stand out when the
// Logger's output is a terminal. Unlike the teacher, which writes straight
// to stdout, warnf here still goes through Logger so the host controls
// where diagnostics land (spec.md section 7).

const (
	escape = "\x1b"
	yellow = 33
)

func scolorf(color int, str string) string {
	return fmt.Sprintf("%s[%dm%s%s[0m", escape, color, str, escape)
}

// Colorize controls whether Logger.Warnf wraps its output in a yellow
// terminal escape, the way the teacher's warnf always did unconditionally.
// Default false: most Logger outputs are files or test buffers, not ttys.
func (log *Logger) Colorize(on bool) {
	if log == nil {
		return
	}
	log.colorize = on
}

// Warnf is Logf for messages the driver considers warnings: T+H=T
// notices, method-switch announcements, and similar non-fatal diagnostics.
func (log *Logger) Warnf(format string, a ...interface{}) {
	if log == nil {
		return
	}
	if log.colorize {
		format = scolorf(yellow, format)
	}
	log.Logf(format, a...)
}
