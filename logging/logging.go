package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "ADSPY_LOG"

// Init installs a Handler on stderr with the level taken from ADSPY_LOG.
func Init() {
	Setup(os.Stderr, os.Getenv(EnvLevel))
}

// Setup installs a Handler writing to w. Unknown or empty levels fall back to warn.
func Setup(w io.Writer, level string) {
	log.SetHandler(NewHandler(w))
	log.SetLevel(ParseLevel(level))
}

func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	}
	return log.WarnLevel
}

// Handler writes one line per entry: timestamp, level letter, message and
// the entry fields as key=value pairs in name order.
type Handler struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

func NewHandler(w io.Writer) *Handler {
	return &Handler{w: w, now: time.Now}
}

// HandleLog implements the log.Handler interface
func (h *Handler) HandleLog(e *log.Entry) error {
	var b strings.Builder
	b.WriteString(h.now().Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelLetter(e.Level))
	b.WriteByte(' ')
	b.WriteString(e.Message)
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func levelLetter(l log.Level) string {
	switch l {
	case log.DebugLevel:
		return "D"
	case log.InfoLevel:
		return "I"
	case log.WarnLevel:
		return "W"
	case log.ErrorLevel:
		return "E"
	case log.FatalLevel:
		return "F"
	}
	return "?"
}
