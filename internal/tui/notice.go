package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/eduoj/ojcli/pkg/client"
)

// Printer writes each notice as a styled line, typically to stderr.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

var _ client.Notifier = (*Printer)(nil)

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Notify prints message. Write errors are ignored.
func (p *Printer) Notify(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", noticeBadgeStyle.Render("error"), noticeTextStyle.Render(message)) //nolint:errcheck
}

// Notice is one notice shown by the dashboard.
type Notice struct {
	Message string
	At      time.Time
}

// ChannelNotifier hands notices to the dashboard. When the buffer is full
// the notice is dropped rather than blocking the request path.
type ChannelNotifier struct {
	ch      chan Notice
	mu      sync.Mutex
	dropped int
}

var _ client.Notifier = (*ChannelNotifier)(nil)

// NewChannelNotifier returns a notifier with room for size pending notices.
func NewChannelNotifier(size int) *ChannelNotifier {
	if size <= 0 {
		size = 16
	}
	return &ChannelNotifier{ch: make(chan Notice, size)}
}

func (n *ChannelNotifier) Notify(message string) {
	select {
	case n.ch <- Notice{Message: message, At: time.Now()}:
	default:
		n.mu.Lock()
		n.dropped++
		n.mu.Unlock()
	}
}

// C returns the receive side.
func (n *ChannelNotifier) C() <-chan Notice {
	return n.ch
}

// Dropped returns how many notices did not fit the buffer.
func (n *ChannelNotifier) Dropped() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}

// renderNotices renders the most recent notices, newest first.
func renderNotices(notices []Notice, width, limit int) string {
	if len(notices) == 0 {
		return "  " + dimStyle.Render("no notices") + "\n"
	}
	var b strings.Builder
	shown := 0
	for i := len(notices) - 1; i >= 0 && shown < limit; i-- {
		nt := notices[i]
		ts := fmt.Sprintf("%-9s", formatTime(nt.At))
		msg := truncStr(nt.Message, max(width-16, 10))
		fmt.Fprintf(&b, "  %s %s\n", noticeTimeStyle.Render(ts), noticeTextStyle.Render(msg))
		shown++
	}
	return b.String()
}
