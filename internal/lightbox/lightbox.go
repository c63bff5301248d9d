// Package lightbox holds the navigation state of the gallery lightbox.
//
// The state is a tagged value: either Closed or Open at a valid index into an
// immutable image list. Background scrolling is suppressed through an
// injected ScrollLock while the lightbox is open.
package lightbox

import "strconv"

// State is Closed or Open(index). The zero value is Closed.
type State struct {
	open  bool
	index int
}

// Closed returns the closed state.
func Closed() State { return State{} }

// IsOpen reports whether the state is Open.
func (s State) IsOpen() bool { return s.open }

// Index returns the open index; ok is false when closed.
func (s State) Index() (i int, ok bool) {
	return s.index, s.open
}

// Next returns the state after moving forward over n images, wrapping to the
// first. Closed stays Closed, as does any state when n is zero.
func (s State) Next(n int) State {
	if !s.open || n <= 0 {
		return s
	}
	return State{open: true, index: (s.index + 1) % n}
}

// Prev returns the state after moving backward over n images, wrapping to the
// last.
func (s State) Prev(n int) State {
	if !s.open || n <= 0 {
		return s
	}
	return State{open: true, index: (s.index - 1 + n) % n}
}

func (s State) String() string {
	if !s.open {
		return "Closed"
	}
	return "Open(" + strconv.Itoa(s.index) + ")"
}

// ScrollLock is the host capability that stops the page behind the lightbox
// from scrolling.
type ScrollLock interface {
	Acquire()
	Release()
}

type noopLock struct{}

func (noopLock) Acquire() {}
func (noopLock) Release() {}

// Navigator drives a State over one image list. It is not safe for
// concurrent use; each page render owns its own navigator.
type Navigator struct {
	images []string
	state  State
	lock   ScrollLock
	held   bool
}

// New returns a closed navigator over images. A nil lock is allowed.
func New(images []string, lock ScrollLock) *Navigator {
	if lock == nil {
		lock = noopLock{}
	}
	return &Navigator{images: images, lock: lock}
}

// Len returns the number of images.
func (n *Navigator) Len() int { return len(n.images) }

// State returns the current state.
func (n *Navigator) State() State { return n.state }

// Current returns the locator of the open image.
func (n *Navigator) Current() (string, bool) {
	i, ok := n.state.Index()
	if !ok {
		return "", false
	}
	return n.images[i], true
}

// Open shows image i. An index outside [0, Len) leaves the navigator
// untouched and returns false.
func (n *Navigator) Open(i int) bool {
	if i < 0 || i >= len(n.images) {
		return false
	}
	n.state = State{open: true, index: i}
	if !n.held {
		n.lock.Acquire()
		n.held = true
	}
	return true
}

// Close returns to Closed from any state and gives scrolling back to the
// host.
func (n *Navigator) Close() {
	n.state = Closed()
	if n.held {
		n.lock.Release()
		n.held = false
	}
}

// Next advances with wraparound. It does nothing while closed.
func (n *Navigator) Next() {
	n.state = n.state.Next(len(n.images))
}

// Prev steps back with wraparound. It does nothing while closed.
func (n *Navigator) Prev() {
	n.state = n.state.Prev(len(n.images))
}
