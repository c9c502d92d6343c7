package login

import (
	"context"
	"fmt"
	"sync"

	"github.com/nbaobe/portal/core/info"
	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/user"
)

type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "idle"
	}
}

type Option func(*Screen)

// WithPostLoginHooks replaces the post quick-login hooks, keyed by username.
func WithPostLoginHooks(hooks map[string]PostLoginHook) Option {
	return func(s *Screen) { s.hooks = hooks }
}

// WithDefaultCollege sets the college selected when no college is loaded.
func WithDefaultCollege(id string) Option {
	return func(s *Screen) {
		if id != "" {
			s.defaultCollege = id
		}
	}
}

// WithQuickLoginCollege sets the college quick logins are made against.
func WithQuickLoginCollege(id string) Option {
	return func(s *Screen) {
		if id != "" {
			s.quickCollege = id
		}
	}
}

// Screen holds the state of one login page. It is not reused after navigation.
type Screen struct {
	app            App
	nav            Navigator
	hooks          map[string]PostLoginHook
	defaultCollege string
	quickCollege   string

	mu          sync.Mutex
	status      Status
	username    string
	password    string
	college     string
	err         string
	infoOpen    bool
	quickSelect string
}

func NewScreen(app App, nav Navigator, opts ...Option) *Screen {
	s := &Screen{
		app:            app,
		nav:            nav,
		hooks:          DefaultPostLoginHooks(DemoBatch),
		defaultCollege: DefaultCollege,
		quickCollege:   QuickLoginCollege,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.college = s.defaultCollege
	if colleges := app.Data().Colleges; len(colleges) > 0 {
		s.college = colleges[0].ID
	}
	return s
}

func (s *Screen) SetUsername(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
}

func (s *Screen) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = password
}

// SetCollege selects a college from the reference list.
func (s *Screen) SetCollege(id string) error {
	colleges := s.app.Data().Colleges
	if _, ok := refdata.FindCollege(colleges, id); !ok && !(len(colleges) == 0 && id == s.defaultCollege) {
		return ErrUnknownCollege
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.college = id
	return nil
}

// Submit logs in with the form's credentials.
func (s *Screen) Submit(ctx context.Context) Status {
	if !s.begin() {
		return StatusSubmitting
	}

	s.mu.Lock()
	username, password, college := s.username, s.password, s.college
	s.mu.Unlock()

	ok, err := s.app.Login(ctx, username, password, college)
	switch {
	case err != nil:
		return s.fail(MsgUnavailable)
	case !ok:
		return s.fail(MsgInvalidCredentials)
	}
	return s.succeed()
}

// QuickLogin logs usr in with its demo credential, against the quick login college.
func (s *Screen) QuickLogin(ctx context.Context, usr *user.User) Status {
	if !usr.HasQuickLogin() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.status == StatusSubmitting {
			return StatusSubmitting
		}
		s.err = MsgUserNotFound
		s.status = StatusFailure
		return StatusFailure
	}

	if !s.begin() {
		return StatusSubmitting
	}

	ok, err := s.app.Login(ctx, usr.Username, usr.Password, s.quickCollege)
	switch {
	case err != nil:
		return s.fail(MsgUnavailable)
	case !ok:
		return s.fail(fmt.Sprintf(MsgQuickLoginFailed, usr.Name))
	}

	if hook, found := s.hooks[usr.Username]; found && hook != nil {
		hook(ctx, s.app, usr)
	}
	return s.succeed()
}

// QuickLoginShortcut logs in the user behind one of the Shortcuts.
func (s *Screen) QuickLoginShortcut(ctx context.Context, sc Shortcut) Status {
	return s.QuickLogin(ctx, s.app.Data().FindUserByUsername(sc.Username))
}

// SelectQuickLoginUser logs in the user picked in the dropdown.
// An empty id (the placeholder) does nothing; the dropdown is reset after every attempt.
func (s *Screen) SelectQuickLoginUser(ctx context.Context, userID string) Status {
	if userID == "" {
		return s.State()
	}

	s.mu.Lock()
	s.quickSelect = userID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.quickSelect = ""
		s.mu.Unlock()
	}()
	return s.QuickLogin(ctx, s.app.Data().FindUserByID(userID))
}

// QuickLoginOptions returns the dropdown entries.
func (s *Screen) QuickLoginOptions() []user.QuickLoginOption {
	return SortedQuickLoginOptions(s.app.Data().Users)
}

func (s *Screen) OpenInfo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infoOpen = true
}

func (s *Screen) CloseInfo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infoOpen = false
}

// InfoModal returns the info modal while it is open, nil otherwise.
func (s *Screen) InfoModal() *info.Modal {
	if !s.InfoOpen() {
		return nil
	}
	return info.New(s.CloseInfo)
}

func (s *Screen) InfoOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoOpen
}

func (s *Screen) State() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Screen) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Screen) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *Screen) Password() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password
}

func (s *Screen) College() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.college
}

func (s *Screen) QuickSelect() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quickSelect
}

func (s *Screen) Colleges() []refdata.College {
	return s.app.Data().Colleges
}

// begin moves the screen to Submitting; false if an attempt is already running.
func (s *Screen) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitting {
		return false
	}
	s.status = StatusSubmitting
	s.err = ""
	return true
}

func (s *Screen) fail(msg string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
	s.status = StatusFailure
	return StatusFailure
}

func (s *Screen) succeed() Status {
	s.mu.Lock()
	s.status = StatusSuccess
	s.mu.Unlock()

	s.nav.Navigate(HomePath)
	return StatusSuccess
}
