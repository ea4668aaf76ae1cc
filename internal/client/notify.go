package client

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultDismissAfter は通知が自動的に消えるまでの時間。
const DefaultDismissAfter = 3 * time.Second

// NotificationLevel は通知の種類。
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
)

// Notification はユーザーに表示する一時的な通知。
type Notification struct {
	Level   NotificationLevel
	Message string
}

// Notifier は最新の通知を1件だけ保持し、一定時間後に消去する。
// outが指定されている場合は通知ごとに1行書き出す。
type Notifier struct {
	mu           sync.Mutex
	current      *Notification
	timer        *time.Timer
	seq          uint64
	dismissAfter time.Duration
	out          io.Writer
	afterFunc    func(d time.Duration, f func()) *time.Timer
}

// NewNotifier はNotifierを生成する。outはnilでもよい。
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{
		dismissAfter: DefaultDismissAfter,
		out:          out,
		afterFunc:    time.AfterFunc,
	}
}

// Notify は通知を表示する。前の通知は置き換えられ、そのタイマーは停止する。
func (n *Notifier) Notify(level NotificationLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = &Notification{Level: level, Message: message}
	n.timer = n.afterFunc(n.dismissAfter, func() { n.dismiss(seq) })

	if n.out != nil {
		fmt.Fprintf(n.out, "[%s] %s\n", level, message)
	}
}

// Current は表示中の通知を返す。
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Dismiss は表示中の通知を消去する。
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}

// dismiss はタイマーから呼ばれる。後から出された通知は消さない。
func (n *Notifier) dismiss(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seq == seq {
		n.current = nil
		n.timer = nil
	}
}
