// Package zoneview renders a fullscreen terminal view of a zone read in
// progress: a sector map of the zone, transfer status lines, and a stop
// key. It knows nothing about devices; callers feed it a Tracker and
// status text.
package zoneview

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// UI owns the tcell screen. All Set* methods only stage state; nothing
// is drawn until LayoutAndDraw.
type UI struct {
	s        tcell.Screen
	stopChan chan struct{}
	once     sync.Once

	title        string
	summaryLines []string
	legendLines  []string
	statusLines  []string
	mapLines     []string
}

// NewUI initializes the terminal screen and starts the key event loop.
func NewUI() (*UI, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.DisableMouse()
	u := &UI{
		s:        s,
		stopChan: make(chan struct{}),
	}
	go u.eventLoop()
	return u, nil
}

// Close restores the terminal. Safe to call after RequestStop.
func (u *UI) Close() {
	if u.s == nil {
		return
	}
	u.RequestStop()
	u.s.Fini()
	u.s = nil
	fmt.Print("\033[?1049l\033[?25h")
}

// RequestStop signals that the user asked to stop. Idempotent.
func (u *UI) RequestStop() {
	u.once.Do(func() {
		close(u.stopChan)
		u.s.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

// IsStopped reports whether a stop was requested.
func (u *UI) IsStopped() bool {
	select {
	case <-u.stopChan:
		return true
	default:
		return false
	}
}

// Stopped is closed when a stop is requested.
func (u *UI) Stopped() <-chan struct{} { return u.stopChan }

// Size returns the current screen dimensions.
func (u *UI) Size() (width, height int) {
	if u.s == nil {
		return 0, 0
	}
	return u.s.Size()
}

// MapRows is the number of rows available for the zone map at the
// current screen size.
func (u *UI) MapRows() int {
	_, h := u.Size()
	rows := h - len(u.summaryLines) - len(u.legendLines) - len(u.statusLines) - 4
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (u *UI) SetTitle(t string) { u.title = t }

func (u *UI) SetSummaryLines(lines []string) {
	u.summaryLines = append([]string(nil), lines...)
}

func (u *UI) SetLegend(lines []string) {
	u.legendLines = append([]string(nil), lines...)
}

func (u *UI) SetStatusLines(lines []string) {
	u.statusLines = append([]string(nil), lines...)
}

// SetZoneMap stages the rendered zone map rows.
func (u *UI) SetZoneMap(lines []string) {
	u.mapLines = append([]string(nil), lines...)
}

func putStr(s tcell.Screen, x, y int, str string) {
	w, _ := s.Size()
	for i, r := range []rune(str) {
		pos := x + i
		if pos >= w {
			break
		}
		s.SetContent(pos, y, r, nil, tcell.StyleDefault)
	}
}

// LayoutAndDraw redraws the whole screen from the staged state.
func (u *UI) LayoutAndDraw() {
	if u.s == nil {
		return
	}
	u.s.Clear()
	w, h := u.s.Size()

	y := 0
	if u.title != "" {
		putStr(u.s, 0, y, strings.Repeat("═", w))
		putStr(u.s, (w-len(u.title))/2, y, u.title)
		y++
	}
	for _, line := range u.summaryLines {
		if y >= h {
			break
		}
		putStr(u.s, 0, y, line)
		y++
	}
	for _, line := range u.legendLines {
		if y >= h {
			break
		}
		putStr(u.s, 0, y, line)
		y++
	}

	if len(u.mapLines) > 0 && y < h {
		avail := h - y - len(u.statusLines) - 2
		if avail < 1 {
			avail = 1
		}
		rows := len(u.mapLines)
		if rows > avail {
			rows = avail
		}
		for i := 0; i < rows && y < h; i++ {
			runes := []rune(u.mapLines[i])
			if len(runes) > w {
				runes = runes[:w]
			}
			putStr(u.s, 0, y, string(runes))
			y++
		}
	}

	if len(u.statusLines) > 0 && y < h {
		putStr(u.s, 0, y, strings.Repeat("─", w))
		putStr(u.s, 2, y, " Status ")
		y++
		for _, line := range u.statusLines {
			if y >= h {
				break
			}
			putStr(u.s, 0, y, line)
			y++
		}
	}

	u.s.Show()
}

func (u *UI) eventLoop() {
	for {
		select {
		case <-u.stopChan:
			return
		default:
		}
		ev := u.s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyCtrlC:
				u.RequestStop()
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
				u.RequestStop()
			case ev.Key() == tcell.KeyEscape:
				u.RequestStop()
			}
		case *tcell.EventResize:
			u.s.Sync()
		case *tcell.EventInterrupt:
			return
		case nil:
			return
		}
	}
}
