package server

import (
	"context"
	"errors"

	"minigolf/internal/course"
	"minigolf/internal/dice"
	"minigolf/internal/game"
	"minigolf/internal/network"
	"minigolf/internal/session"
)

func (s *Server) registerUDPHandlers() {
	s.udp.Handle(network.MessageNewSession, s.handleUDPNewSession)
	s.udp.Handle(network.MessageSessionState, s.handleUDPSessionState)
	s.udp.Handle(network.MessageHit, s.handleUDPHit)
	s.udp.Handle(network.MessagePutter, s.handleUDPPutter)
	s.udp.Handle(network.MessageRoll, s.handleUDPRoll)
	s.udp.Handle(network.MessageNextCourse, s.handleUDPNextCourse)
}

func (s *Server) handleUDPNewSession(ctx context.Context, req network.Request) network.Reply {
	var body network.NewSession
	if err := network.DecodePayload(req.Envelope, &body); err != nil {
		return errorReply("", err)
	}
	st, err := s.sessions.Create(body.Seed)
	if err != nil {
		return errorReply("", err)
	}
	return network.Reply{Type: network.MessageSessionState, Payload: stateMessage(st)}
}

func (s *Server) handleUDPSessionState(ctx context.Context, req network.Request) network.Reply {
	var ref network.SessionRef
	if err := network.DecodePayload(req.Envelope, &ref); err != nil {
		return errorReply("", err)
	}
	st, err := s.sessions.State(ref.SessionID)
	if err != nil {
		return errorReply(ref.SessionID, err)
	}
	return network.Reply{Type: network.MessageSessionState, Payload: stateMessage(st)}
}

func (s *Server) handleUDPHit(ctx context.Context, req network.Request) network.Reply {
	var body network.Hit
	if err := network.DecodePayload(req.Envelope, &body); err != nil {
		return errorReply("", err)
	}
	out, err := s.sessions.Hit(body.SessionID, course.Coord{X: body.X, Y: body.Y})
	if err != nil && !out.Accepted {
		return errorReply(body.SessionID, err)
	}
	msg := hitMessage(body.SessionID, out)
	if err != nil {
		msg.Error = err.Error()
	}
	if out.Accepted {
		s.udp.Broadcast(network.MessageHitResult, msg)
	}
	return network.Reply{Type: network.MessageHitResult, Payload: msg}
}

func (s *Server) handleUDPPutter(ctx context.Context, req network.Request) network.Reply {
	var ref network.SessionRef
	if err := network.DecodePayload(req.Envelope, &ref); err != nil {
		return errorReply("", err)
	}
	roll, err := s.sessions.Putter(ref.SessionID)
	if err != nil {
		return errorReply(ref.SessionID, err)
	}
	return network.Reply{Type: network.MessageRollResult, Payload: network.RollResult{SessionID: ref.SessionID, Roll: rollMessage(roll)}}
}

func (s *Server) handleUDPRoll(ctx context.Context, req network.Request) network.Reply {
	var ref network.SessionRef
	if err := network.DecodePayload(req.Envelope, &ref); err != nil {
		return errorReply("", err)
	}
	roll, stuck, err := s.sessions.Reroll(ref.SessionID)
	if err != nil {
		return errorReply(ref.SessionID, err)
	}
	return network.Reply{Type: network.MessageRollResult, Payload: network.RollResult{SessionID: ref.SessionID, Roll: rollMessage(roll), Stuck: stuck}}
}

func (s *Server) handleUDPNextCourse(ctx context.Context, req network.Request) network.Reply {
	var ref network.SessionRef
	if err := network.DecodePayload(req.Envelope, &ref); err != nil {
		return errorReply("", err)
	}
	st, err := s.sessions.NextCourse(ref.SessionID)
	if err != nil {
		return errorReply(ref.SessionID, err)
	}
	return network.Reply{Type: network.MessageSessionState, Payload: stateMessage(st)}
}

func errorReply(sessionID string, err error) network.Reply {
	return network.Reply{Type: network.MessageError, Payload: network.Error{
		SessionID: sessionID,
		Code:      errorCode(err),
		Message:   err.Error(),
	}}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return "not_found"
	case errors.Is(err, course.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, session.ErrTooManySessions):
		return "session_limit"
	case errors.Is(err, session.ErrGenerationExhausted):
		return "generation_failed"
	case errors.Is(err, game.ErrHoleComplete):
		return "hole_complete"
	case errors.Is(err, session.ErrHoleInProgress):
		return "hole_in_progress"
	default:
		return "bad_request"
	}
}

func point(c course.Coord) network.Point {
	return network.Point{X: c.X, Y: c.Y}
}

func rollMessage(r dice.Roll) network.Roll {
	return network.Roll{Base: r.Base, Modifier: r.Modifier, Final: r.Final, Putter: r.Putter}
}

func stateMessage(st session.State) network.SessionState {
	return network.SessionState{
		SessionID:   st.ID,
		CourseID:    st.CourseID,
		Seed:        st.Seed,
		Width:       st.Width,
		Height:      st.Height,
		TileSize:    st.TileSize,
		Par:         st.Par,
		Hole:        point(st.Hole),
		Ball:        point(st.Ball),
		Position:    point(st.Position),
		Lie:         st.Lie.String(),
		Strokes:     st.Strokes,
		State:       st.State.String(),
		Roll:        rollMessage(st.Roll),
		HolesPlayed: st.HolesPlayed,
		LastActive:  st.LastActive,
	}
}

func hitMessage(sessionID string, out session.HitOutcome) network.HitResult {
	msg := network.HitResult{
		SessionID:   sessionID,
		Accepted:    out.Accepted,
		Reason:      string(out.Reason),
		From:        point(out.From),
		Position:    point(out.Position),
		Strokes:     out.Strokes,
		Win:         out.Win,
		Reaction:    string(out.Reaction),
		Roll:        rollMessage(out.Roll),
		Rerolls:     out.Rerolls,
		Terrain:     out.Terrain.String(),
		HolesPlayed: out.HolesPlayed,
	}
	if out.NextCourse != nil {
		msg.NextCourse = out.NextCourse.ID
	}
	return msg
}

func courseStartedMessage(sessionID string, c *course.Course) network.CourseStarted {
	return network.CourseStarted{
		SessionID: sessionID,
		CourseID:  c.ID,
		Seed:      c.Seed,
		Width:     c.Grid.Width(),
		Height:    c.Grid.Height(),
		Hole:      point(c.Hole),
		Ball:      point(c.Ball),
	}
}
