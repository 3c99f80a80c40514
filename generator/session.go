package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// FallbackErrorMessage 上游错误没有消息时展示给用户的文案。
const FallbackErrorMessage = "生成失败，请检查网络或重试。"

// State 是页面所处的四种状态之一。
type State string

const (
	StateIdle    State = "IDLE"
	StateLoading State = "LOADING"
	StateSuccess State = "SUCCESS"
	StateError   State = "ERROR"
)

// Snapshot is a read-only copy of a session, safe to serialise.
type Snapshot struct {
	SessionID        string     `json:"session_id"`
	State            State      `json:"state"`
	Topic            string     `json:"topic,omitempty"`
	Article          *Article   `json:"article,omitempty"`
	DisplayCitations []Citation `json:"display_citations,omitempty"`
	Diagram          *Diagram   `json:"diagram,omitempty"`
	Error            string     `json:"error,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Session 持有一个页面的搜索状态机：Idle → Loading → Success|Error → Idle。
type Session struct {
	ID string

	planner Planner

	mu        sync.Mutex
	state     State
	topic     string
	article   *Article
	diagram   *Diagram
	errMsg    string
	cycle     uint64
	updatedAt time.Time
}

// NewSession 创建 session，初始为 Idle。
func NewSession(id string, planner Planner) *Session {
	return &Session{
		ID:        id,
		planner:   planner,
		state:     StateIdle,
		updatedAt: time.Now(),
	}
}

// Submit runs one search cycle. Only a blank topic or a cycle already in flight are
// returned as errors; upstream failures end in StateError on the snapshot.
func (s *Session) Submit(ctx context.Context, topic string) (Snapshot, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return s.Snapshot(), ErrEmptyTopic
	}

	s.mu.Lock()
	if s.state == StateLoading {
		s.mu.Unlock()
		return s.Snapshot(), ErrBusy
	}
	s.cycle++
	cycle := s.cycle
	s.state = StateLoading
	s.topic = topic
	s.article = nil
	s.diagram = nil
	s.errMsg = ""
	s.updatedAt = time.Now()
	s.mu.Unlock()

	article, err := s.planner.GeneratePlan(ctx, topic)
	if err != nil {
		msg := userMessage(err)
		s.finish(cycle, func() {
			s.state = StateError
			s.errMsg = msg
		})
		return s.Snapshot(), nil
	}

	// 文本失败时不会走到这里：没有文章就不生成图。
	diagram, ok := s.planner.GenerateDiagram(ctx, topic)

	s.finish(cycle, func() {
		s.state = StateSuccess
		s.article = &article
		if ok {
			s.diagram = &diagram
		}
	})
	return s.Snapshot(), nil
}

// finish applies the result only if no Back or newer cycle superseded it.
func (s *Session) finish(cycle uint64, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cycle != cycle {
		return
	}
	apply()
	s.updatedAt = time.Now()
}

func userMessage(err error) string {
	var up *UpstreamError
	if errors.As(err, &up) && (up.Err == nil || up.Err.Error() == "") {
		return FallbackErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}

// Back 回到输入页，丢弃文章、示意图和错误信息。
func (s *Session) Back() Snapshot {
	s.mu.Lock()
	s.cycle++
	s.state = StateIdle
	s.topic = ""
	s.article = nil
	s.diagram = nil
	s.errMsg = ""
	s.updatedAt = time.Now()
	s.mu.Unlock()
	return s.Snapshot()
}

// Result returns the current article and diagram when the session is in StateSuccess.
func (s *Session) Result() (Article, *Diagram, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSuccess || s.article == nil {
		return Article{}, nil, false
	}
	var d *Diagram
	if s.diagram != nil {
		cp := *s.diagram
		d = &cp
	}
	return *s.article, d, true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		SessionID: s.ID,
		State:     s.state,
		Topic:     s.topic,
		Error:     s.errMsg,
		UpdatedAt: s.updatedAt,
	}
	if s.article != nil {
		a := *s.article
		snap.Article = &a
		snap.DisplayCitations = TopCitations(a.Citations, DisplayCitationLimit)
	}
	if s.diagram != nil {
		d := *s.diagram
		snap.Diagram = &d
	}
	return snap
}
