package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Severity classifies a user-facing notice.
type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Notifier shows a message to the user.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) bool
}

// Notice is a recorded notification.
type Notice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Message: message, Severity: severity})
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice{}, r.notices...)
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Contains reports whether a notice of severity contains substr.
func (r *Recorder) Contains(severity Severity, substr string) bool {
	for _, n := range r.Notices() {
		if n.Severity == severity && strings.Contains(n.Message, substr) {
			return true
		}
	}
	return false
}

// Reset drops recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

// LogNotifier writes notices to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(message string, severity Severity) {
	switch severity {
	case Error:
		n.logger.Error(message)
	case Warning:
		n.logger.Warn(message)
	default:
		n.logger.Info(message, zap.Stringer("severity", severity))
	}
}

// WriterNotifier prints notices for a terminal.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(message string, severity Severity) {
	icon := map[Severity]string{Info: "ℹ️", Success: "✅", Warning: "⚠️", Error: "❌"}[severity]
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", icon, message)
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(message string, severity Severity) {
	for _, n := range m {
		n.Notify(message, severity)
	}
}

// AutoConfirm answers every question with the same value.
type AutoConfirm bool

func (a AutoConfirm) Confirm(string) bool { return bool(a) }

// PromptConfirmer asks on out and reads a y/yes answer from in.
type PromptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: in, out: out}
}

func (p *PromptConfirmer) Confirm(message string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", message)
	var answer string
	if _, err := fmt.Fscanln(p.in, &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
