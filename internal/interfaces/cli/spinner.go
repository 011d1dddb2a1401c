package cli

import (
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

type spinnerTickMsg time.Time

type spinnerDoneMsg struct{}

type spinnerModel struct {
	label string
	frame int
	done  bool
}

func (m spinnerModel) Init() tea.Cmd {
	return spinnerTick()
}

func spinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case spinnerTickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, spinnerTick()
	case spinnerDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return spinnerStyle.Render(spinnerFrames[m.frame%len(spinnerFrames)]) + " " + m.label
}

// Spinner renders a progress indicator on stderr while a run is in flight.
// It implements router.Progress; Start is a no-op when stderr is not a
// terminal, and Stop is idempotent so the router can fire it on every exit
// path.
type Spinner struct {
	out *os.File

	mu   sync.Mutex
	prog *tea.Program
	done chan struct{}
}

// NewSpinner creates a spinner bound to the given stream.
func NewSpinner(out *os.File) *Spinner {
	return &Spinner{out: out}
}

// Start begins rendering. Calling Start on a running spinner does nothing.
func (s *Spinner) Start(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prog != nil || !isTerminal(s.out) {
		return
	}

	prog := tea.NewProgram(spinnerModel{label: label},
		tea.WithOutput(s.out), tea.WithInput(nil))
	done := make(chan struct{})
	go func() {
		_, _ = prog.Run()
		close(done)
	}()
	s.prog = prog
	s.done = done
}

// Stop clears the spinner and waits for the render loop to exit.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prog == nil {
		return
	}
	s.prog.Send(spinnerDoneMsg{})
	<-s.done
	s.prog = nil
	s.done = nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
