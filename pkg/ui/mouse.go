package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/casefile/pkg/geometry"
	"github.com/vanderheijden86/casefile/pkg/interact"
)

// Two presses on the same cell within this window form a double click.
const doubleClickWindow = 400 * time.Millisecond

// wheelNotch is the DeltaY of one wheel step. With the default sensitivity
// one notch changes the scale by 0.1.
const wheelNotch = 100.0

// pointerState tracks the mouse between events.
type pointerState struct {
	last    geometry.Vec // screen point of the previous event
	down    bool
	pressAt time.Time
	pressX  int
	pressY  int
}

// handleMouse turns one terminal mouse event into interaction events.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	cw, bh := m.canvasSize()
	cx, cy := msg.X, msg.Y-headerRows
	inCanvas := cx >= 0 && cy >= 0 && cx < cw && cy < bh
	screen := screenOf(cx, cy)
	pos := m.session.Camera().ScreenToCanvas(screen)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			if !inCanvas {
				return nil
			}
			dy := wheelNotch
			if msg.Button == tea.MouseButtonWheelUp {
				dy = -wheelNotch
			}
			return m.zoomBy(dy)

		case tea.MouseButtonLeft:
			if !inCanvas {
				if m.docOpen && msg.X >= cw {
					m.focusDoc()
				}
				return nil
			}
			if m.area == areaDoc {
				m.blurDoc()
			}
			if key, ok := menuItemAt(m.session, cw, bh, cx, cy); ok {
				return m.runNodeAction(key, m.session.State().OpenMenuID)
			}
			hit := m.session.HitAt(screen)
			m.interruptTween()
			now := m.now()
			double := !m.pointer.down &&
				now.Sub(m.pointer.pressAt) <= doubleClickWindow &&
				cx == m.pointer.pressX && cy == m.pointer.pressY
			m.pointer = pointerState{last: screen, down: true, pressAt: now, pressX: cx, pressY: cy}
			cmd := m.dispatch(interact.PointerDown{Hit: hit, Pos: pos})
			if double {
				m.pointer.pressAt = time.Time{}
				cmd = m.dispatch(interact.DoubleClick{Hit: hit})
			}
			return cmd

		case tea.MouseButtonRight:
			if !inCanvas {
				return nil
			}
			return m.dispatch(interact.SecondaryDown{Hit: m.session.HitAt(screen), Pos: pos})
		}

	case tea.MouseActionMotion:
		if !m.pointer.down && !m.session.State().LinkPending() {
			m.pointer.last = screen
			return nil
		}
		delta := geometry.Vec{X: screen.X - m.pointer.last.X, Y: screen.Y - m.pointer.last.Y}
		m.pointer.last = screen
		if m.pointer.down {
			m.interruptTween()
		}
		return m.dispatch(interact.PointerMove{Delta: delta, Pos: pos})

	case tea.MouseActionRelease:
		m.pointer.down = false
		m.pointer.last = screen
		return m.dispatch(interact.PointerUp{})
	}
	return nil
}

// dispatch feeds ev to the session and animates any focus change it causes.
func (m *Model) dispatch(ev interact.Event) tea.Cmd {
	before := m.session.Camera()
	for _, a := range m.session.Dispatch(ev) {
		if _, ok := a.(interact.FocusOn); ok {
			return m.animateFrom(before)
		}
	}
	return nil
}

// zoomBy applies a wheel notch. Focus mode owns the camera, so the input
// is dropped there and a running focus animation keeps going.
func (m *Model) zoomBy(dy float64) tea.Cmd {
	if m.session.State().Focused() {
		return nil
	}
	m.interruptTween()
	return m.dispatch(interact.Wheel{DeltaY: dy, Sensitivity: m.cfg.Sensitivity()})
}

// interruptTween stops the camera animation. In focus mode nothing else
// may move the camera, so it lands on its target instead of freezing.
func (m *Model) interruptTween() {
	if m.tween == nil {
		return
	}
	if m.session.State().Focused() {
		m.session.SetCamera(m.tween.To)
	}
	m.tween = nil
}

// animateFrom tweens the camera from `from` to wherever the session put it.
func (m *Model) animateFrom(from geometry.Camera) tea.Cmd {
	to := m.session.Camera()
	if from == to {
		return nil
	}
	m.session.SetCamera(from)
	m.tween = geometry.NewTween(from, to, m.now())
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tweenTick()
}

// stepTween advances the running camera animation, if any.
func (m *Model) stepTween(now time.Time) tea.Cmd {
	if m.tween == nil {
		m.ticking = false
		return nil
	}
	if m.tween.Done(now) {
		m.session.SetCamera(m.tween.To)
		m.tween = nil
		m.ticking = false
		return nil
	}
	m.session.SetCamera(m.tween.At(now))
	return tweenTick()
}
