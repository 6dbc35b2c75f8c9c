// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/clock"
	"github.com/huddle-chat/huddle/lib/codec"
	"github.com/huddle-chat/huddle/lib/confirm"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/notify"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/route"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/tui"
)

// Stream is a channel or conversation screen. panel.ChannelView and
// panel.ConversationView both satisfy it.
type Stream interface {
	View() panel.StreamView
	Changed() []<-chan struct{}
	LoadMore(numItems int) error
	Send(ctx context.Context, body string) (ref.MessageID, error)
	Edit(ctx context.Context, id ref.MessageID, body string) error
	Delete(ctx context.Context, id ref.MessageID) error
	React(ctx context.Context, id ref.MessageID, value string) error
	Close()
}

// Target selects what the viewer opens. Set ChannelID, or
// ConversationID together with MemberID (the other participant).
type Target struct {
	ChannelID      ref.ChannelID
	ConversationID ref.ConversationID
	MemberID       ref.MemberID
}

// Config holds the viewer's collaborators.
type Config struct {
	// Env supplies the backend and the subscription registry. Its
	// Confirmer and Navigator are replaced by the viewer's own. A
	// Notifier already set keeps receiving every notification.
	Env panel.Env

	WorkspaceID ref.WorkspaceID
	Target      Target

	// Notes collects notifications for the status line. Nil creates
	// one. Pass the same Center to NewLogHandler to surface log
	// records there.
	Notes *notify.Center

	// Clock drives relative times and the arrival glow. Nil means the
	// real clock.
	Clock clock.Clock

	// Theme defaults to tui.DefaultTheme.
	Theme *tui.Theme

	// Profile is the color profile for message bodies.
	Profile termenv.Profile
}

// reactionChoices are the values offered by the reaction picker.
var reactionChoices = []string{"👍", "❤️", "😂", "🎉", "😮", "👀"}

const repliesUnavailable = "Replies cannot be posted from the viewer yet. Use 'huddle thread reply'."

type focusRegion int

const (
	focusMessages focusRegion = iota
	focusSide
)

type modalKind int

const (
	modalNone modalKind = iota
	modalComposer
	modalMenu
	modalFinder
)

type composePurpose int

const (
	composeSend composePurpose = iota
	composeEdit
	composeReply
)

type menuPurpose int

const (
	menuReaction menuPurpose = iota
	menuRole
)

// changedMsg reports that an input of the current screen changed.
// Messages from an older generation of watches are ignored.
type changedMsg struct {
	generation int
}

// confirmRequestMsg carries a prompt raised by a panel action.
type confirmRequestMsg struct {
	request *confirm.Request
}

// actionDoneMsg is sent when an asynchronous action finishes. Panels
// report their own failures as notifications, so err is only used to
// decide what the viewer does next.
type actionDoneMsg struct {
	err          error
	closeProfile bool
}

// conversationOpenedMsg replaces the current stream with a direct
// conversation.
type conversationOpenedMsg struct {
	view *panel.ConversationView
}

// tickMsg re-renders while something fades (the arrival glow or a
// notification).
type tickMsg struct{}

// Model is the top-level bubbletea model for huddle-viewer.
type Model struct {
	env         panel.Env
	workspaceID ref.WorkspaceID
	theme       tui.Theme
	keys        KeyMap
	clock       clock.Clock
	profile     termenv.Profile
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	queue   *confirm.Queue
	notes   *notify.Center
	history *route.History

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int

	stream       Stream
	conversation bool
	view         panel.StreamView

	// messages is the loaded stream, oldest first.
	messages []schema.MessageView
	selected ref.MessageID
	follow   bool
	offset   int

	seen    map[ref.MessageID]string
	newest  time.Time
	glow    *tui.GlowTracker
	ticking bool

	thread       *panel.ThreadPanel
	profilePanel *panel.ProfilePanel
	focus        focusRegion
	sideOffset   int

	modal       modalKind
	composer    tui.Composer
	composing   composePurpose
	editing     ref.MessageID
	menu        tui.Menu
	menuFor     menuPurpose
	menuMessage ref.MessageID

	finderQuery   string
	finderMenu    tui.Menu
	finderResults []schema.Member
	members       *live.Resource[[]schema.Member]

	pending *confirm.Request

	watchGeneration int
	watchCancel     context.CancelFunc

	left bool
}

// New creates the viewer model and opens config.Target. It panics
// when the backend or the registry is missing.
func New(config Config) (*Model, error) {
	if config.Env.Backend == nil {
		panic("chatui: Config.Env.Backend is required")
	}
	if config.Env.Registry == nil {
		panic("chatui: Config.Env.Registry is required")
	}
	if config.WorkspaceID.IsZero() {
		return nil, errors.New("chatui: workspace ID is required")
	}
	target := config.Target
	var start route.Route
	switch {
	case !target.ChannelID.IsZero():
		start = route.Channel(config.WorkspaceID, target.ChannelID)
	case !target.ConversationID.IsZero() && !target.MemberID.IsZero():
		start = route.Workspace(config.WorkspaceID)
	default:
		return nil, errors.New("chatui: target needs a channel, or a conversation and its other member")
	}

	model := &Model{
		env:         config.Env,
		workspaceID: config.WorkspaceID,
		theme:       tui.DefaultTheme,
		keys:        DefaultKeyMap,
		clock:       config.Clock,
		profile:     config.Profile,
		logger:      config.Env.Logger,
		queue:       confirm.NewQueue(),
		notes:       config.Notes,
		history:     route.NewHistory(start),
		glow:        tui.NewGlowTracker(),
	}
	if config.Theme != nil {
		model.theme = *config.Theme
	}
	if model.clock == nil {
		model.clock = clock.Real()
	}
	if model.logger == nil {
		model.logger = slog.New(slog.DiscardHandler)
	}
	if model.notes == nil {
		model.notes = notify.NewCenter(model.clock, 0)
	}

	var notifier notify.Notifier = model.notes
	if config.Env.Notifier != nil {
		notifier = notify.Tee(model.notes, config.Env.Notifier)
	}
	model.env.Notifier = notifier
	model.env.Confirmer = model.queue
	model.env.Navigator = model.history
	model.ctx, model.cancel = context.WithCancel(context.Background())

	if !target.ChannelID.IsZero() {
		model.open(panel.NewChannelView(model.env, model.workspaceID, target.ChannelID), false)
	} else {
		model.open(panel.NewConversationView(model.env, model.workspaceID, target.ConversationID, target.MemberID), true)
	}
	return model, nil
}

// open swaps in a new stream and forgets the previous one's state.
func (m *Model) open(stream Stream, conversation bool) {
	if m.stream != nil {
		m.stream.Close()
	}
	m.stream = stream
	m.conversation = conversation
	m.view = panel.StreamView{}
	m.messages = nil
	m.selected = ref.MessageID{}
	m.follow = true
	m.offset = 0
	m.seen = nil
	m.newest = time.Time{}
}

// Route is the viewer's current route. It is the root route after the
// viewer left the workspace.
func (m *Model) Route() route.Route { return m.history.Current() }

// Left reports whether the viewer quit because the user left the
// workspace.
func (m *Model) Left() bool { return m.left }

// Init starts watching the screen's inputs and the confirmation queue.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.arm(), m.awaitConfirmation(), m.refresh())
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scrollToSelection()
		return m, nil

	case changedMsg:
		if msg.generation != m.watchGeneration {
			return m, nil
		}
		return m, tea.Batch(m.arm(), m.refresh())

	case confirmRequestMsg:
		m.pending = msg.request
		return m, nil

	case actionDoneMsg:
		return m, m.finish(msg)

	case conversationOpenedMsg:
		m.closeSide()
		m.open(msg.view, true)
		return m, tea.Batch(m.arm(), m.refresh())

	case tickMsg:
		m.ticking = false
		return m, m.scheduleTick()

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}
	return m, nil
}

// inputs lists the channels whose closing means the screen is stale.
func (m *Model) inputs() []<-chan struct{} {
	channels := append([]<-chan struct{}{}, m.stream.Changed()...)
	if m.thread != nil {
		channels = append(channels, m.thread.Changed()...)
	}
	if m.profilePanel != nil {
		channels = append(channels, m.profilePanel.Changed()...)
	}
	if m.members != nil {
		channels = append(channels, m.members.Changed())
	}
	return append(channels, m.notes.Changed(), m.history.Changed())
}

// arm replaces the pending watch with one over the current inputs.
func (m *Model) arm() tea.Cmd {
	if m.watchCancel != nil {
		m.watchCancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.watchCancel = cancel
	m.watchGeneration++
	generation := m.watchGeneration
	inputs := m.inputs()
	return func() tea.Msg {
		if !waitAny(ctx, inputs) {
			return nil
		}
		return changedMsg{generation: generation}
	}
}

// waitAny blocks until one of channels closes (true) or ctx ends
// (false).
func waitAny(ctx context.Context, channels []<-chan struct{}) bool {
	cases := make([]reflect.SelectCase, 0, len(channels)+1)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
	for _, channel := range channels {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(channel)})
	}
	chosen, _, _ := reflect.Select(cases)
	return chosen != 0
}

func (m *Model) awaitConfirmation() tea.Cmd {
	requests := m.queue.Requests()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case request := <-requests:
			return confirmRequestMsg{request: request}
		case <-ctx.Done():
			return nil
		}
	}
}

// refresh pulls the current state of every panel.
func (m *Model) refresh() tea.Cmd {
	if m.history.Current().Kind == route.KindRoot {
		m.left = true
		return m.quit()
	}
	m.view = m.stream.View()
	if m.view.Status == live.StatusReady {
		m.absorb(m.view.Messages)
	}
	if m.modal == modalFinder {
		m.filterMembers()
	}
	m.scrollToSelection()
	return m.scheduleTick()
}

// absorb takes a newest-first page stream, lights messages that
// arrived or changed since the last refresh, and keeps the selection.
func (m *Model) absorb(newestFirst []schema.MessageView) {
	now := m.clock.Now()
	initial := m.seen == nil
	previous := m.seen
	m.seen = make(map[ref.MessageID]string, len(newestFirst))

	messages := make([]schema.MessageView, len(newestFirst))
	newest := m.newest
	selectedPresent := false
	for index, message := range newestFirst {
		messages[len(newestFirst)-1-index] = message
		fingerprint, err := codec.Fingerprint(message)
		if err != nil {
			m.logger.Debug("fingerprint failed", "message_id", message.ID, "error", err)
		}
		earlier, known := previous[message.ID]
		switch {
		case initial:
		case !known && !message.CreatedAt.Before(m.newest):
			// Older unknown messages come from load-more and stay unlit.
			m.glow.Light(message.ID.String(), now)
		case known && earlier != fingerprint:
			m.glow.Light(message.ID.String(), now)
		}
		m.seen[message.ID] = fingerprint
		if message.CreatedAt.After(newest) {
			newest = message.CreatedAt
		}
		if message.ID == m.selected {
			selectedPresent = true
		}
	}
	m.newest = newest
	m.messages = messages
	if (m.follow || !selectedPresent) && len(messages) > 0 {
		m.selected = messages[len(messages)-1].ID
		m.follow = true
	}
}

// scheduleTick keeps a single tick running while anything fades.
func (m *Model) scheduleTick() tea.Cmd {
	if m.ticking {
		return nil
	}
	now := m.clock.Now()
	interval := time.Duration(0)
	switch {
	case m.glow.Active(now):
		interval = tui.GlowTickInterval
	case len(m.notes.Active()) > 0:
		interval = time.Second
	default:
		return nil
	}
	m.ticking = true
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{} })
}

// run executes action off the update loop.
func (m *Model) run(action func(ctx context.Context) error, closeProfile bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: action(ctx), closeProfile: closeProfile}
	}
}

func (m *Model) finish(msg actionDoneMsg) tea.Cmd {
	switch err := msg.err; {
	case err == nil:
		if msg.closeProfile && m.profilePanel != nil {
			m.closeSide()
			return m.arm()
		}
	case errors.Is(err, panel.ErrDeclined),
		errors.Is(err, panel.ErrNotPermitted),
		errors.Is(err, panel.ErrNotReady),
		errors.Is(err, live.ErrCannotLoadMore),
		errors.Is(err, context.Canceled):
	case errors.Is(err, panel.ErrRepliesNotImplemented):
		m.env.Notifier.Notify(notify.Info, repliesUnavailable)
	default:
		m.logger.Debug("viewer action failed", "workspace_id", m.workspaceID, "error", err)
	}
	return nil
}

// quit releases every subscription and stops the program.
func (m *Model) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

// Close releases every subscription. It is safe to call more than
// once.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.cancel()
	m.closeSide()
	m.closeFinder()
	m.stream.Close()
}

// selectedIndex is the position of the selection in m.messages, or -1.
func (m *Model) selectedIndex() int {
	for index, message := range m.messages {
		if message.ID == m.selected {
			return index
		}
	}
	return -1
}

func (m *Model) selectedMessage() (schema.MessageView, bool) {
	index := m.selectedIndex()
	if index < 0 {
		return schema.MessageView{}, false
	}
	return m.messages[index], true
}

// isOwn reports whether the viewer wrote message. Edit and delete are
// only offered on the viewer's own messages.
func (m *Model) isOwn(message schema.MessageView) bool {
	return !m.view.Viewer.IsZero() && message.MemberID == m.view.Viewer
}

// move shifts the selection by delta messages. Moving up past the
// oldest loaded message asks for an older page.
func (m *Model) move(delta int) tea.Cmd {
	if len(m.messages) == 0 {
		return nil
	}
	index := m.selectedIndex()
	if index < 0 {
		index = len(m.messages) - 1
	}
	target := index + delta
	var cmd tea.Cmd
	if target < 0 {
		target = 0
		cmd = m.loadOlder()
	}
	if target >= len(m.messages) {
		target = len(m.messages) - 1
	}
	m.selected = m.messages[target].ID
	m.follow = target == len(m.messages)-1
	m.scrollToSelection()
	return cmd
}

func (m *Model) loadOlder() tea.Cmd {
	if m.view.Feed != live.CanLoadMore {
		return nil
	}
	if err := m.stream.LoadMore(m.pageSize()); err != nil && !errors.Is(err, live.ErrCannotLoadMore) {
		m.logger.Debug("load more failed", "error", err)
	}
	return nil
}

func (m *Model) pageSize() int {
	if m.env.PageSize <= 0 {
		return backend.DefaultPageSize
	}
	return m.env.PageSize
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	switch {
	case m.pending != nil:
		return m.handleConfirmKey(msg)
	case m.modal == modalComposer:
		return m.handleComposerKey(msg)
	case m.modal == modalMenu:
		return m.handleMenuKey(msg)
	case m.modal == modalFinder:
		return m.handleFinderKey(msg)
	}

	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}
	if key.Matches(msg, m.keys.FocusToggle) {
		if m.sideOpen() && m.focus == focusMessages {
			m.focus = focusSide
		} else {
			m.focus = focusMessages
		}
		return nil
	}
	if m.focus == focusSide && m.sideOpen() {
		return m.handleSideKey(msg)
	}
	return m.handleMessagesKey(msg)
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Accept):
		m.pending.Answer(true)
	case key.Matches(msg, m.keys.Decline):
		m.pending.Answer(false)
	default:
		return nil
	}
	m.pending = nil
	return m.awaitConfirmation()
}

func (m *Model) handleComposerKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.modal = modalNone
		return nil
	case key.Matches(msg, m.keys.Submit):
	default:
		m.composer.Update(msg)
		return nil
	}

	m.modal = modalNone
	if m.composer.Empty() {
		return nil
	}
	body := m.composer.Value()
	stream := m.stream
	switch m.composing {
	case composeEdit:
		id := m.editing
		return m.run(func(ctx context.Context) error {
			return stream.Edit(ctx, id, body)
		}, false)
	case composeReply:
		thread := m.thread
		if thread == nil {
			return nil
		}
		return m.run(func(ctx context.Context) error {
			return thread.Reply(ctx, body)
		}, false)
	default:
		m.follow = true
		return m.run(func(ctx context.Context) error {
			_, err := stream.Send(ctx, body)
			return err
		}, false)
	}
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.modal = modalNone
	case key.Matches(msg, m.keys.Up):
		m.menu.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.menu.MoveDown()
	case msg.Type == tea.KeyEnter:
		return m.pickMenu()
	}
	return nil
}

// pickMenu acts on the highlighted menu option.
func (m *Model) pickMenu() tea.Cmd {
	m.modal = modalNone
	option := m.menu.Selected()
	switch m.menuFor {
	case menuRole:
		profile := m.profilePanel
		if profile == nil {
			return nil
		}
		role := schema.Role(option.Value)
		return m.run(func(ctx context.Context) error {
			return profile.UpdateRole(ctx, role)
		}, true)
	default:
		stream := m.stream
		id := m.menuMessage
		return m.run(func(ctx context.Context) error {
			return stream.React(ctx, id, option.Value)
		}, false)
	}
}

func (m *Model) handleFinderKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeFinder()
		return m.arm()
	case tea.KeyUp:
		m.finderMenu.MoveUp()
		return nil
	case tea.KeyDown:
		m.finderMenu.MoveDown()
		return nil
	case tea.KeyBackspace:
		if query := []rune(m.finderQuery); len(query) > 0 {
			m.finderQuery = string(query[:len(query)-1])
		}
		m.filterMembers()
		return nil
	case tea.KeyRunes, tea.KeySpace:
		m.finderQuery += string(msg.Runes)
		m.filterMembers()
		return nil
	case tea.KeyEnter:
		if len(m.finderResults) == 0 {
			return nil
		}
		member := m.finderResults[m.finderMenu.Cursor]
		m.closeFinder()
		m.openProfile(member.ID)
		return m.arm()
	}
	return nil
}

func (m *Model) handleMessagesKey(msg tea.KeyMsg) tea.Cmd {
	page := max(1, m.bodyHeight()/4)
	switch {
	case key.Matches(msg, m.keys.Up):
		return m.move(-1)
	case key.Matches(msg, m.keys.Down):
		return m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		return m.move(-page)
	case key.Matches(msg, m.keys.PageDown):
		return m.move(page)
	case key.Matches(msg, m.keys.Home):
		return m.move(-len(m.messages))
	case key.Matches(msg, m.keys.End):
		return m.move(len(m.messages))
	case key.Matches(msg, m.keys.Older):
		return m.loadOlder()
	case key.Matches(msg, m.keys.Close):
		if m.sideOpen() {
			m.closeSide()
			return m.arm()
		}
		return nil
	case key.Matches(msg, m.keys.Find):
		return m.openFinder()
	}

	if m.view.Status != live.StatusReady {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Compose):
		m.composer = tui.NewComposer("Message "+m.streamName(), m.theme)
		m.composing = composeSend
		m.modal = modalComposer
		return nil
	}

	message, ok := m.selectedMessage()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Edit):
		if !m.isOwn(message) {
			return nil
		}
		m.composer = tui.NewEditComposer("Edit message", message.Body, m.theme)
		m.composing = composeEdit
		m.editing = message.ID
		m.modal = modalComposer
	case key.Matches(msg, m.keys.Delete):
		if !m.isOwn(message) {
			return nil
		}
		stream := m.stream
		id := message.ID
		return m.run(func(ctx context.Context) error {
			return stream.Delete(ctx, id)
		}, false)
	case key.Matches(msg, m.keys.React):
		options := make([]tui.MenuOption, len(reactionChoices))
		for index, value := range reactionChoices {
			options[index] = tui.MenuOption{Label: value, Value: value}
		}
		m.openMenu(menuReaction, options, message.ID)
	case key.Matches(msg, m.keys.Thread):
		m.openThread(message.ID)
		return m.arm()
	case key.Matches(msg, m.keys.Profile):
		m.openProfile(message.MemberID)
		return m.arm()
	}
	return nil
}

func (m *Model) handleSideKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.closeSide()
		return m.arm()
	case key.Matches(msg, m.keys.Up):
		m.sideOffset = max(0, m.sideOffset-1)
		return nil
	case key.Matches(msg, m.keys.Down):
		m.sideOffset++
		return nil
	}

	if m.thread != nil {
		if key.Matches(msg, m.keys.Reply) && m.thread.View().Status == live.StatusReady {
			m.composer = tui.NewComposer("Reply in thread", m.theme)
			m.composing = composeReply
			m.modal = modalComposer
		}
		return nil
	}

	profile := m.profilePanel
	view := profile.View()
	if view.Status != live.StatusReady {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Role) && view.Capabilities.Has(panel.ManageRole):
		options := []tui.MenuOption{
			{Label: "Admin", Value: string(schema.RoleAdmin)},
			{Label: "Member", Value: string(schema.RoleMember)},
		}
		m.openMenu(menuRole, options, ref.MessageID{})
		for index, option := range options {
			if option.Value == string(view.Role) {
				m.menu.Cursor = index
			}
		}
	case key.Matches(msg, m.keys.Remove) && view.Capabilities.Has(panel.Remove):
		return m.run(profile.Remove, true)
	case key.Matches(msg, m.keys.Leave) && view.Capabilities.Has(panel.Leave):
		return m.run(profile.Leave, false)
	case key.Matches(msg, m.keys.DirectMessage) && view.MemberID != m.view.Viewer:
		env := m.env
		workspaceID := m.workspaceID
		memberID := view.MemberID
		ctx := m.ctx
		return func() tea.Msg {
			conversation, err := panel.OpenConversation(ctx, env, workspaceID, memberID)
			if err != nil {
				env.Notifier.Notify(notify.Error, "Failed to open conversation")
				return actionDoneMsg{err: err}
			}
			return conversationOpenedMsg{view: conversation}
		}
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.modal == modalNone && m.pending == nil {
			return m.move(-1)
		}
	case tea.MouseButtonWheelDown:
		if m.modal == modalNone && m.pending == nil {
			return m.move(1)
		}
	case tea.MouseButtonLeft:
		if m.modal == modalMenu && m.menu.Contains(msg.X, msg.Y) {
			if index := m.menu.OptionAtY(msg.Y); index >= 0 {
				m.menu.Cursor = index
				return m.pickMenu()
			}
		}
	}
	return nil
}

func (m *Model) openMenu(purpose menuPurpose, options []tui.MenuOption, messageID ref.MessageID) {
	m.menu = tui.Menu{Options: options}
	m.menuFor = purpose
	m.menuMessage = messageID
	m.modal = modalMenu

	mainWidth, _ := m.widths()
	switch purpose {
	case menuRole:
		m.menu.AnchorX = max(0, m.width-m.menu.Width()-2)
		m.menu.AnchorY = 4
	default:
		m.menu.AnchorX = min(4, max(0, mainWidth-m.menu.Width()))
		m.menu.AnchorY = 1 + max(0, m.selectedLine()-m.offset+1)
	}
	if m.menu.AnchorY+len(options) > m.height-1 {
		m.menu.AnchorY = max(1, m.height-1-len(options))
	}
}

func (m *Model) openThread(id ref.MessageID) {
	m.closeSide()
	m.thread = panel.NewThreadPanel(m.env, m.workspaceID, id, nil)
	m.focus = focusSide
}

func (m *Model) openProfile(id ref.MemberID) {
	m.closeSide()
	m.profilePanel = panel.NewProfilePanel(m.env, m.workspaceID, id, panel.AllCapabilities, nil)
	m.focus = focusSide
}

func (m *Model) sideOpen() bool {
	return m.thread != nil || m.profilePanel != nil
}

func (m *Model) closeSide() {
	if m.thread != nil {
		m.thread.Close()
		m.thread = nil
	}
	if m.profilePanel != nil {
		m.profilePanel.Close()
		m.profilePanel = nil
	}
	m.focus = focusMessages
	m.sideOffset = 0
}

func (m *Model) openFinder() tea.Cmd {
	lister := m.env.Backend
	workspaceID := m.workspaceID
	m.members = live.Watch(m.env.Registry, "members:"+workspaceID.String(),
		[]backend.Topic{backend.TopicMembers, backend.TopicUsers},
		func(ctx context.Context) ([]schema.Member, error) {
			return lister.ListMembers(ctx, workspaceID)
		})
	m.finderQuery = ""
	m.modal = modalFinder
	m.filterMembers()
	return m.arm()
}

func (m *Model) closeFinder() {
	if m.members != nil {
		m.members.Close()
		m.members = nil
	}
	if m.modal == modalFinder {
		m.modal = modalNone
	}
}

// filterMembers ranks the workspace's members against the query.
func (m *Model) filterMembers() {
	members, _, _ := m.members.State()
	ranked := tui.FuzzyFilter(members, func(member schema.Member) string {
		return member.User.Name
	}, m.finderQuery)

	m.finderResults = m.finderResults[:0]
	options := make([]tui.MenuOption, 0, len(ranked))
	for _, result := range ranked {
		m.finderResults = append(m.finderResults, result.Item)
		options = append(options, tui.MenuOption{
			Label: fmt.Sprintf("%s (%s)", result.Item.User.Name, result.Item.Role),
			Value: result.Item.ID.String(),
		})
	}
	cursor := m.finderMenu.Cursor
	m.finderMenu = tui.Menu{Options: options}
	if cursor < len(options) {
		m.finderMenu.Cursor = cursor
	}
}

// streamName is the heading of the open stream: "# general" for a
// channel, "@ Ada" for a conversation.
func (m *Model) streamName() string {
	if m.conversation {
		return "@ " + m.view.Name
	}
	return m.view.Name
}
