package service

import "sync"

// MiniCartState is the drawer state of the mini cart
type MiniCartState string

const (
	MiniCartClosed   MiniCartState = "closed"
	MiniCartMini     MiniCartState = "mini"
	MiniCartExpanded MiniCartState = "expanded"
)

// MiniCartService tracks the mini-cart drawer state per session
type MiniCartService struct {
	mu     sync.Mutex
	states map[string]MiniCartState
}

// NewMiniCartService creates a new mini-cart state tracker
func NewMiniCartService() *MiniCartService {
	return &MiniCartService{states: make(map[string]MiniCartState)}
}

// State returns the current drawer state for the session
func (s *MiniCartService) State(sessionID string) MiniCartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[sessionID]; ok {
		return state
	}
	return MiniCartClosed
}

// OpenMini opens the drawer in its compact form
func (s *MiniCartService) OpenMini(sessionID string) {
	s.set(sessionID, MiniCartMini)
}

// OpenExpanded opens the drawer fully
func (s *MiniCartService) OpenExpanded(sessionID string) {
	s.set(sessionID, MiniCartExpanded)
}

// Expand grows a compact drawer to its full form; any other state is left
// untouched
func (s *MiniCartService) Expand(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[sessionID] == MiniCartMini {
		s.states[sessionID] = MiniCartExpanded
	}
}

// Close closes the drawer
func (s *MiniCartService) Close(sessionID string) {
	s.set(sessionID, MiniCartClosed)
}

func (s *MiniCartService) set(sessionID string, state MiniCartState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = state
}
