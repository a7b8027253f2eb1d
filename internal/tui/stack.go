package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/internal/workflow"
	"github.com/jlbmaritime/hotspotctl/wifi"
)

// ToastDuration is how long a transient notice stays on screen.
const ToastDuration = 3 * time.Second

// Component is one screen on the stack.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Component, tea.Cmd)
	View() string
}

// Dispatcher submits workflow commands. It is satisfied by
// *workflow.Controller.
type Dispatcher interface {
	Dispatch(cmd workflow.Command) error
	Busy(slot string) bool
}

//- Messages for stack navigation ----------------------------------------------

// PushMsg is a message to push a new view onto the stack.
type PushMsg struct{ Component Component }

// PopMsg is a message to pop a view from the stack.
type PopMsg struct{}

// removeMsg drops a view wherever it sits on the stack.
type removeMsg struct{ Component Component }

// ShowErrorMsg is a message to show the error view.
type ShowErrorMsg struct{ Err error }

//- Messages from the core -----------------------------------------------------

// StateMsg carries a published reconciler snapshot.
type StateMsg struct{ State reconcile.State }

// EventMsg carries a workflow event.
type EventMsg struct{ Event workflow.Event }

// dispatchMsg asks the stack to submit a command.
type dispatchMsg struct{ cmd workflow.Command }

// dispatchErrMsg reports a command that was rejected before any request.
type dispatchErrMsg struct {
	cmd workflow.Command
	err error
}

type toastMsg string

type toastExpiredMsg struct{ id int }

func dispatch(cmd workflow.Command) tea.Cmd {
	return func() tea.Msg { return dispatchMsg{cmd} }
}

func push(c Component) tea.Cmd {
	return func() tea.Msg { return PushMsg{c} }
}

func pop() tea.Msg { return PopMsg{} }

//- The stack model ------------------------------------------------------------

// Stack is the root tea.Model. It owns navigation, the status line and
// transient notices, and forwards core updates to every view.
type Stack struct {
	views      []Component
	dispatcher Dispatcher
	state      reconcile.State

	spinner spinner.Model
	pending map[string]string // slot -> progress message
	toast   string
	toastID int

	width, height int
}

// NewStack creates a stack with an initial view.
func NewStack(d Dispatcher, initial Component) *Stack {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(CurrentTheme.Primary)

	return &Stack{
		views:      []Component{initial},
		dispatcher: d,
		spinner:    s,
		pending:    map[string]string{},
	}
}

// Init initializes the model at the top of the stack.
func (s *Stack) Init() tea.Cmd {
	cmds := []tea.Cmd{s.spinner.Tick}
	if top := s.Top(); top != nil {
		cmds = append(cmds, top.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles messages for the stack.
func (s *Stack) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return s, tea.Quit
		}
	case PopMsg:
		s.Pop()
		if s.Top() == nil {
			return s, tea.Quit
		}
		return s, nil
	case PushMsg:
		s.Push(msg.Component)
		cmds := []tea.Cmd{msg.Component.Init()}
		if s.width > 0 {
			cmds = append(cmds, s.updateTop(tea.WindowSizeMsg{Width: s.width, Height: s.height}))
		}
		return s, tea.Batch(cmds...)
	case removeMsg:
		s.Remove(msg.Component)
		if s.Top() == nil {
			return s, tea.Quit
		}
		return s, nil
	case ShowErrorMsg:
		s.Push(NewErrorModel(msg.Err))
		return s, nil
	case confirmRequestMsg:
		c := NewConfirmModel(msg.prompt, msg.reply)
		s.Push(c)
		return s, s.updateTop(tea.WindowSizeMsg{Width: s.width, Height: s.height})

	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		return s, s.broadcast(msg)
	case StateMsg:
		s.state = msg.State
		return s, s.broadcast(msg)
	case EventMsg:
		s.track(msg.Event)
		cmd := s.broadcast(msg)
		if msg.Event.Toast != "" {
			return s, tea.Batch(cmd, s.showToast(msg.Event.Toast))
		}
		return s, cmd

	case dispatchMsg:
		return s, s.submit(msg.cmd)
	case dispatchErrMsg:
		return s, s.broadcast(msg)
	case toastMsg:
		return s, s.showToast(string(msg))
	case toastExpiredMsg:
		if msg.id == s.toastID {
			s.toast = ""
		}
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}

	return s, s.updateTop(msg)
}

// submit hands cmd to the dispatcher. Rejections are shown as notices and
// forwarded to the views so a dialog can show them inline.
func (s *Stack) submit(cmd workflow.Command) tea.Cmd {
	err := s.dispatcher.Dispatch(cmd)
	if err == nil {
		return nil
	}
	if errors.Is(err, workflow.ErrClosed) {
		return func() tea.Msg { return ShowErrorMsg{err} }
	}
	return tea.Batch(
		s.broadcast(dispatchErrMsg{cmd: cmd, err: err}),
		s.showToast(rejection(err)),
	)
}

// rejection is the notice for a command refused before any request.
func rejection(err error) string {
	var verr *wifi.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Reason
	case errors.Is(err, workflow.ErrBusy):
		return "Already in progress"
	case errors.Is(err, wifi.ErrForgetActive):
		return "Cannot forget the active network"
	case errors.Is(err, wifi.ErrAlreadyConnected):
		return "Already connected"
	case errors.Is(err, wifi.ErrNotSaved):
		return "Network is not saved"
	}
	return err.Error()
}

func (s *Stack) track(e workflow.Event) {
	if e.Action.Status == workflow.StatusPending {
		s.pending[e.Slot] = e.Action.Message
		return
	}
	delete(s.pending, e.Slot)
}

func (s *Stack) showToast(text string) tea.Cmd {
	s.toastID++
	s.toast = text
	id := s.toastID
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{id} })
}

func (s *Stack) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, v := range s.views {
		next, cmd := v.Update(msg)
		s.views[i] = next
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (s *Stack) updateTop(msg tea.Msg) tea.Cmd {
	top := s.Top()
	if top == nil {
		return nil
	}
	next, cmd := top.Update(msg)
	s.views[len(s.views)-1] = next
	return cmd
}

// View renders the view at the top of the stack.
func (s *Stack) View() string {
	var view strings.Builder
	if top := s.Top(); top != nil {
		view.WriteString(top.View())
	}

	style := lipgloss.NewStyle().Foreground(CurrentTheme.Primary)
	if status := s.Status(); status != "" {
		view.WriteString(fmt.Sprintf("\n%s %s", s.spinner.View(), style.Render(status)))
	}
	if s.toast != "" {
		view.WriteString("\n" + style.Bold(true).Render(s.toast))
	}
	return lipgloss.NewStyle().Margin(0, 2).Render(view.String())
}

// Status joins the progress messages of running actions.
func (s *Stack) Status() string {
	slots := make([]string, 0, len(s.pending))
	for slot := range s.pending {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	msgs := make([]string, 0, len(slots))
	for _, slot := range slots {
		if m := s.pending[slot]; m != "" {
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, " · ")
}

// Toast returns the notice currently shown, if any.
func (s *Stack) Toast() string {
	return s.toast
}

// Push adds a view to the top of the stack.
func (s *Stack) Push(v Component) {
	s.views = append(s.views, v)
}

// Pop removes and returns the view from the top of the stack.
func (s *Stack) Pop() Component {
	if len(s.views) == 0 {
		return nil
	}
	v := s.views[len(s.views)-1]
	s.views = s.views[:len(s.views)-1]
	return v
}

// Remove drops v from the stack.
func (s *Stack) Remove(v Component) {
	for i := len(s.views) - 1; i >= 0; i-- {
		if s.views[i] == v {
			s.views = append(s.views[:i], s.views[i+1:]...)
			return
		}
	}
}

// Top returns the view at the top of the stack without removing it.
func (s *Stack) Top() Component {
	if len(s.views) == 0 {
		return nil
	}
	return s.views[len(s.views)-1]
}
