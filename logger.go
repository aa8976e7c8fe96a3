package lsoda

import (
	"fmt"
	"io"
	"strings"
)

// Logger is the host-provided diagnostic channel spec.md section 7
// requires: the core never aborts the process or writes straight to
// stderr, it accumulates diagnostic text and hands it to the caller's
// io.Writer. Mirrors the teacher's accumulate-then-flush Logger.
type Logger struct {
	Output   io.Writer
	buff     strings.Builder
	colorize bool

	results      ResultsConfig
	wroteResults bool
}

// NewLogger wraps w as a diagnostic channel. A nil w discards everything.
func NewLogger(w io.Writer) *Logger {
	return &Logger{Output: w}
}

// Logf formats a diagnostic message. Messages are buffered until flush.
func (log *Logger) Logf(format string, a ...interface{}) {
	if log == nil {
		return
	}
	fmt.Fprintf(&log.buff, format, a...)
}

func (log *Logger) flush() {
	if log == nil || log.Output == nil {
		return
	}
	io.WriteString(log.Output, log.buff.String())
	log.buff.Reset()
}

// ResultsConfig controls the CSV-style accepted-step log LogResults
// writes, mirroring the teacher's Config.Log.Results block
// (simulation.go) and its logStates/fixLength formatting
// (simulation_internal.go).
type ResultsConfig struct {
	Separator string
	FormatLen int
	Precision int
}

func defaultResultsConfig() ResultsConfig {
	return ResultsConfig{Separator: ",", FormatLen: 14, Precision: 6}
}

// LogResults appends one row of a CSV-style accepted-step table: a
// header naming domain and the y labels on the first call, then one
// "t, y0, y1, ..." row per call after. Used by driver.go when
// Options.LogResults is set.
func (log *Logger) LogResults(domain string, labels []string, t float64, y []float64) {
	if log == nil {
		return
	}
	if log.results == (ResultsConfig{}) {
		log.results = defaultResultsConfig()
	}
	if !log.wroteResults {
		log.Logf("%s%s", fixLength(domain, log.results.FormatLen), log.results.Separator)
		for i, name := range labels {
			sep := log.results.Separator
			if i == len(labels)-1 {
				sep = "\n"
			}
			log.Logf("%s%s", fixLength(name, log.results.FormatLen), sep)
		}
		log.wroteResults = true
	}
	formatter := fmt.Sprintf("%%%d.%dg%s", log.results.FormatLen, log.results.Precision, log.results.Separator)
	log.Logf(formatter, t)
	for i, v := range y {
		if i == len(y)-1 {
			log.Logf(formatter[:len(formatter)-len(log.results.Separator)]+"\n", v)
		} else {
			log.Logf(formatter, v)
		}
	}
}

func fixLength(s string, l int) string {
	const spaces64 = "                                                                "
	if len(s) < l {
		return s + spaces64[:l-len(s)]
	}
	return s[:l]
}
