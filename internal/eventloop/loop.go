// Package eventloop is §4.1: the single-threaded cooperative event
// dispatcher. jezek/xgb has no exposed raw connection fd — it owns an
// internal read goroutine and only ever hands events out through
// WaitForEvent/PollForEvent — so this loop multiplexes X events and
// control-plane commands over channels instead of poll(2), the same way
// the teacher's texel/desktop.go Run() feeds a channel from
// tcellScreen.PollEvent() in a goroutine and selects over it alongside
// refresh/draw/quit channels. Ordering is preserved: each X event is
// still handled strictly in the order xgb delivered it, and a control
// command is handled to completion before the next select iteration, so
// nothing reorders relative to the single-threaded original.
package eventloop

import (
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/polarcat-fwm/fwm/internal/control"
	"github.com/polarcat-fwm/fwm/internal/wmlog"
	"github.com/polarcat-fwm/fwm/internal/x11"
)

var log = wmlog.For("eventloop")

// Handlers is every per-event-kind callback the loop dispatches to,
// populated by cmd/fwm once the model, layout and focus subsystems
// exist. Keeping this as a struct of funcs (rather than an interface
// implemented by some God object) mirrors how the teacher's Desktop.Run
// calls out to small dedicated methods per event rather than a single
// giant switch body.
type Handlers struct {
	VisibilityOrExpose func(win xproto.Window)
	ButtonPress        func(ev xproto.ButtonPressEvent)
	ButtonRelease      func(ev xproto.ButtonReleaseEvent)
	Motion             func(ev xproto.MotionNotifyEvent)
	ConfigureRequest   func(ev xproto.ConfigureRequestEvent)
	DestroyNotify      func(win xproto.Window)
	UnmapNotify        func(ev xproto.UnmapNotifyEvent)
	MapRequest         func(win xproto.Window)
	EnterNotify        func(ev xproto.EnterNotifyEvent)
	LeaveNotify        func(ev xproto.LeaveNotifyEvent)
	PropertyNotify     func(ev xproto.PropertyNotifyEvent)
	ClientMessage      func(ev xproto.ClientMessageEvent)
	KeyPress           func(ev xproto.KeyPressEvent)
	KeyRelease         func(ev xproto.KeyReleaseEvent)
	ScreenChange       func()

	// AfterBatch runs once all events currently queued have been
	// dispatched; it checks the rescan flag (§4.1 "after every event
	// batch...").
	AfterBatch func()

	Control control.Handlers
}

// Loop owns the channels and goroutines that feed select (§4.1, §5).
type Loop struct {
	conn    *x11.Conn
	fifo    *control.FIFO
	h       Handlers
	quit    chan struct{}
	events  chan xgbEvent
}

type xgbEvent struct {
	ev  xgb.Event
	err xgb.Error
}

func New(conn *x11.Conn, fifo *control.FIFO, h Handlers) *Loop {
	return &Loop{conn: conn, fifo: fifo, h: h, quit: make(chan struct{}), events: make(chan xgbEvent, 64)}
}

// Stop requests the loop to exit after its current iteration.
func (l *Loop) Stop() { close(l.quit) }

// Run is the cooperative loop described in §4.1/§5: it never spawns
// per-event goroutines, only the two producers below, so all handler
// calls still happen on a single goroutine in delivery order.
func (l *Loop) Run() {
	go l.pumpXEvents()

	var controlReady chan control.Command
	controlReady = make(chan control.Command, 1)
	go l.pumpControl(controlReady)

	const backoff = time.Second

	for {
		select {
		case <-l.quit:
			return
		case xe := <-l.events:
			if xe.err != nil {
				log.Printf("x11 protocol error: %v", xe.err)
				time.Sleep(backoff)
				continue
			}
			l.dispatch(xe.ev)
			l.drainPending()
			if l.h.AfterBatch != nil {
				l.h.AfterBatch()
			}
		case cmd := <-controlReady:
			control.Dispatch(l.h.Control, cmd)
		}
	}
}

// pumpXEvents is the goroutine named in conn.Conn.WaitForEvent's doc
// comment: it blocks on the connection and forwards everything onto a
// channel for the select loop to drain in order.
func (l *Loop) pumpXEvents() {
	for {
		ev, err := l.conn.WaitForEvent()
		if ev == nil && err == nil {
			return // connection closed
		}
		select {
		case l.events <- xgbEvent{ev: ev, err: err}:
		case <-l.quit:
			return
		}
	}
}

// drainPending implements "events are drained in a tight inner loop
// until poll_for_event returns nothing" (§4.1) with a non-blocking read
// of the channel pumpXEvents feeds, so every event still arrives through
// that one goroutine and in delivery order.
func (l *Loop) drainPending() {
	for {
		select {
		case xe := <-l.events:
			if xe.err != nil {
				log.Printf("x11 protocol error: %v", xe.err)
				continue
			}
			l.dispatch(xe.ev)
		default:
			return
		}
	}
}

// pumpControl reads one command at a time from the FIFO, single-shot per
// §4.13: open, read, recreate, repeat.
func (l *Loop) pumpControl(out chan<- control.Command) {
	for {
		select {
		case <-l.quit:
			return
		default:
		}
		file, err := l.fifo.OpenReader()
		if err != nil {
			log.Printf("control fifo open: %v", err)
			time.Sleep(time.Second)
			continue
		}
		cmd, ok := l.fifo.ReadCommand(file)
		if !ok {
			continue
		}
		select {
		case out <- cmd:
		case <-l.quit:
			return
		}
	}
}

func (l *Loop) dispatch(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.VisibilityNotifyEvent:
		call1(l.h.VisibilityOrExpose, e.Window)
	case xproto.ExposeEvent:
		call1(l.h.VisibilityOrExpose, e.Window)
	case xproto.ButtonPressEvent:
		if l.h.ButtonPress != nil {
			l.h.ButtonPress(e)
		}
	case xproto.ButtonReleaseEvent:
		if l.h.ButtonRelease != nil {
			l.h.ButtonRelease(e)
		}
	case xproto.MotionNotifyEvent:
		if l.h.Motion != nil {
			l.h.Motion(e)
		}
	case xproto.ConfigureRequestEvent:
		if l.h.ConfigureRequest != nil {
			l.h.ConfigureRequest(e)
		}
	case xproto.DestroyNotifyEvent:
		call1(l.h.DestroyNotify, e.Window)
	case xproto.UnmapNotifyEvent:
		if l.h.UnmapNotify != nil {
			l.h.UnmapNotify(e)
		}
	case xproto.MapRequestEvent:
		// "small debounce delay" before admitting (§4.1 MAP_REQUEST,
		// §5 "usleep(10ms) before handling MAP_REQUEST/STACK_MODE").
		time.Sleep(10 * time.Millisecond)
		call1(l.h.MapRequest, e.Window)
	case xproto.EnterNotifyEvent:
		if l.h.EnterNotify != nil {
			l.h.EnterNotify(e)
		}
	case xproto.LeaveNotifyEvent:
		if l.h.LeaveNotify != nil {
			l.h.LeaveNotify(e)
		}
	case xproto.PropertyNotifyEvent:
		if l.h.PropertyNotify != nil {
			l.h.PropertyNotify(e)
		}
	case xproto.ClientMessageEvent:
		if l.h.ClientMessage != nil {
			l.h.ClientMessage(e)
		}
	case xproto.KeyPressEvent:
		if l.h.KeyPress != nil {
			l.h.KeyPress(e)
		}
	case xproto.KeyReleaseEvent:
		if l.h.KeyRelease != nil {
			l.h.KeyRelease(e)
		}
	default:
		if l.h.ScreenChange != nil {
			// Randr's ScreenChangeNotifyEvent type isn't registered with
			// xgb's event dispatch table unless randr.Init ran, so it
			// arrives through this default arm; §4.1 only logs it.
			if _, ok := ev.(interface{ Bytes() []byte }); ok {
				l.h.ScreenChange()
			}
		}
	}
}

func call1(fn func(xproto.Window), win xproto.Window) {
	if fn != nil {
		fn(win)
	}
}
