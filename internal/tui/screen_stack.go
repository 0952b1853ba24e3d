package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/wooterm/internal/tui/components"
)

// Screen is one page of a tab: a paginated list, a detail view or the dashboard
type Screen interface {
	ID() uint64
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(spinner string) string
	SetSize(width, height int)
	SetFocused(focused bool)
	Selected() (components.Row, bool)
	// Capturing reports whether the screen's text input owns the keyboard
	Capturing() bool
	IsFiltering() bool
	StartFilter() tea.Cmd
	Refresh() tea.Cmd
	// Close releases the screen; results of its outstanding requests are dropped
	Close()
}

// retrier is implemented by screens that can retry a failed page
type retrier interface {
	Retry() tea.Cmd
}

// ScreenStack manages the drill-in stack of one tab. The root screen is
// never popped.
//
//	Products:  [Products]
//	Drilled:   [Products | Hoodie variations]
type ScreenStack struct {
	screens []Screen
}

// NewScreenStack creates a stack with root as its only screen
func NewScreenStack(root Screen) *ScreenStack {
	root.SetFocused(true)
	return &ScreenStack{screens: []Screen{root}}
}

// Len returns the number of screens in the stack
func (s *ScreenStack) Len() int {
	return len(s.screens)
}

// Top returns the focused screen
func (s *ScreenStack) Top() Screen {
	return s.screens[len(s.screens)-1]
}

// Root returns the bottom screen
func (s *ScreenStack) Root() Screen {
	return s.screens[0]
}

// Push focuses screen on top of the current one
func (s *ScreenStack) Push(screen Screen) {
	s.Top().SetFocused(false)
	screen.SetFocused(true)
	s.screens = append(s.screens, screen)
}

// Pop removes and closes the top screen. Returns false at the root.
func (s *ScreenStack) Pop() bool {
	if len(s.screens) <= 1 {
		return false
	}
	popped := s.Top()
	s.screens = s.screens[:len(s.screens)-1]
	popped.SetFocused(false)
	popped.Close()
	s.Top().SetFocused(true)
	return true
}

// CanGoBack returns true if the stack is above its root
func (s *ScreenStack) CanGoBack() bool {
	return len(s.screens) > 1
}

// Find returns the screen with id, or nil
func (s *ScreenStack) Find(id uint64) Screen {
	for _, screen := range s.screens {
		if screen.ID() == id {
			return screen
		}
	}
	return nil
}

// Breadcrumb returns the titles from root to top
func (s *ScreenStack) Breadcrumb() []string {
	titles := make([]string, len(s.screens))
	for i, screen := range s.screens {
		titles[i] = screen.Title()
	}
	return titles
}

// SetSizes updates the size of all screens
func (s *ScreenStack) SetSizes(width, height int) {
	for _, screen := range s.screens {
		screen.SetSize(width, height)
	}
}

// CloseAll closes every screen, root included
func (s *ScreenStack) CloseAll() {
	for _, screen := range s.screens {
		screen.Close()
	}
}
