package ranking

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Nav 翻页动作
type Nav string

const (
	NavFirst Nav = "first"
	NavPrev  Nav = "prev"
	NavNext  Nav = "next"
	NavLast  Nav = "last"

	DefaultSessionTimeout = 60 * time.Second
)

var (
	ErrSessionNotFound = errors.New("page session not found or expired")
	ErrNotOwner        = errors.New("only the requesting user can navigate this page session")
	ErrUnknownNav      = errors.New("unknown navigation action")
	ErrNoPages         = errors.New("no pages to show")
	ErrManagerClosed   = errors.New("page session manager closed")
)

// View 会话当前状态的快照
type View struct {
	SessionID string    `json:"session_id"`
	OwnerID   uint64    `json:"owner_id"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	ExpiresAt time.Time `json:"expires_at"`
	Page      Page      `json:"page"`
}

type session struct {
	id       string
	owner    uint64
	pages    []Page
	index    int
	deadline time.Time
	gen      uint64
	timer    *time.Timer
}

// SessionManager 翻页会话：按 (请求用户, 会话 id) 管理，空闲超时后自动销毁。
// 每次翻页都会把过期时间往后推。
type SessionManager struct {
	timeout  time.Duration
	onExpire func(id string)

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// NewSessionManager onExpire 可为 nil，在会话超时删除后调用
func NewSessionManager(timeout time.Duration, onExpire func(id string)) *SessionManager {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &SessionManager{
		timeout:  timeout,
		onExpire: onExpire,
		sessions: make(map[string]*session),
	}
}

// Open 新建会话，停在第一页
func (m *SessionManager) Open(owner uint64, pages []Page) (View, error) {
	if len(pages) == 0 {
		return View{}, ErrNoPages
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return View{}, ErrManagerClosed
	}
	s := &session{
		id:    uuid.NewString(),
		owner: owner,
		pages: pages,
	}
	m.sessions[s.id] = s
	m.armLocked(s)
	return s.view(), nil
}

// Navigate 只有会话所有者可以翻页；越界时停在首/尾页
func (m *SessionManager) Navigate(id string, user uint64, nav Nav) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return View{}, ErrSessionNotFound
	}
	if s.owner != user {
		return View{}, ErrNotOwner
	}
	switch nav {
	case NavFirst:
		s.index = 0
	case NavPrev:
		if s.index > 0 {
			s.index--
		}
	case NavNext:
		if s.index < len(s.pages)-1 {
			s.index++
		}
	case NavLast:
		s.index = len(s.pages) - 1
	default:
		return View{}, ErrUnknownNav
	}
	m.armLocked(s)
	return s.view(), nil
}

// Get 查看会话，不延长过期时间
func (m *SessionManager) Get(id string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return View{}, ErrSessionNotFound
	}
	return s.view(), nil
}

// Len 当前存活的会话数
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close 取消所有过期任务并清空会话
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, s := range m.sessions {
		s.timer.Stop()
		delete(m.sessions, id)
	}
}

// armLocked 取消旧的过期任务并按新的 deadline 重新调度
func (m *SessionManager) armLocked(s *session) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.deadline = time.Now().Add(m.timeout)
	s.timer = time.AfterFunc(m.timeout, func() { m.expire(s.id, gen) })
}

func (m *SessionManager) expire(id string, gen uint64) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	// 期间被翻页重新调度过，旧任务作废
	if !ok || s.gen != gen {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	if m.onExpire != nil {
		m.onExpire(id)
	}
}

func (s *session) view() View {
	return View{
		SessionID: s.id,
		OwnerID:   s.owner,
		Index:     s.index,
		Total:     len(s.pages),
		ExpiresAt: s.deadline,
		Page:      s.pages[s.index],
	}
}
