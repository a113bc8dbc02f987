package entity

// Identity is the user a browser session acts as, with the privilege flags
// granted to that session.
type Identity struct {
	UserID       int64  `json:"uid"`
	Username     string `json:"name"`
	IsAdmin      bool   `json:"adm,omitempty"`
	IsAdvertiser bool   `json:"adv,omitempty"`
}

func (i Identity) Present() bool {
	return i.UserID != 0
}

// SessionState is NormalSession or ImpersonatingSession.
type SessionState interface {
	isSessionState()
}

type NormalSession struct{}

// ImpersonatingSession acts as the advertiser account and remembers the
// identity to go back to.
type ImpersonatingSession struct {
	Previous Identity
}

func (NormalSession) isSessionState()        {}
func (ImpersonatingSession) isSessionState() {}

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session is the per-browser state carried in the session cookie. Every
// mutation marks it dirty so the cookie is rewritten.
type Session struct {
	identity Identity
	state    SessionState
	flashes  []Flash
	dirty    bool
}

func NewSession(identity Identity, state SessionState, flashes []Flash) *Session {
	if state == nil {
		state = NormalSession{}
	}
	return &Session{identity: identity, state: state, flashes: flashes}
}

func (s *Session) Identity() Identity {
	return s.identity
}

func (s *Session) State() SessionState {
	return s.state
}

// Impersonating returns the stashed identity when the session is
// impersonating the advertiser account.
func (s *Session) Impersonating() (Identity, bool) {
	imp, ok := s.state.(ImpersonatingSession)
	return imp.Previous, ok
}

// SetIdentity replaces the active identity and keeps the session state.
func (s *Session) SetIdentity(identity Identity) {
	s.identity = identity
	s.dirty = true
}

// Impersonate switches to target. The current identity is stashed unless
// the session already impersonates, already is target, or has no identity.
func (s *Session) Impersonate(target Identity) {
	_, already := s.state.(ImpersonatingSession)
	if !already && s.identity.Present() && s.identity.UserID != target.UserID {
		s.state = ImpersonatingSession{Previous: s.identity}
	}
	s.identity = target
	s.dirty = true
}

// Restore ends impersonation and activates restored.
func (s *Session) Restore(restored Identity) {
	s.state = NormalSession{}
	s.identity = restored
	s.dirty = true
}

// Reset drops identity and state but keeps pending flashes.
func (s *Session) Reset() {
	s.identity = Identity{}
	s.state = NormalSession{}
	s.dirty = true
}

func (s *Session) AddFlash(category, message string) {
	s.flashes = append(s.flashes, Flash{Category: category, Message: message})
	s.dirty = true
}

// PopFlashes returns pending flashes and clears them.
func (s *Session) PopFlashes() []Flash {
	if len(s.flashes) == 0 {
		return []Flash{}
	}
	flashes := s.flashes
	s.flashes = nil
	s.dirty = true
	return flashes
}

func (s *Session) Flashes() []Flash {
	return s.flashes
}

func (s *Session) Dirty() bool {
	return s.dirty
}
