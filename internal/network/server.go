package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Request is one decoded datagram.
type Request struct {
	From     *net.UDPAddr
	Envelope Envelope
}

// Reply is sent back to the requester. A zero Type sends nothing.
type Reply struct {
	Type    MessageType
	Payload any
}

// Handler answers a request. It runs on its own goroutine.
type Handler func(ctx context.Context, req Request) Reply

// Server routes golf commands arriving over UDP and pushes events to
// spectators. Each message type has at most one handler.
type Server struct {
	conn    *net.UDPConn
	logger  *log.Logger
	maxSize int
	seq     atomic.Uint64

	mu         sync.RWMutex
	routes     map[MessageType]Handler
	spectators []*net.UDPAddr
}

// Listen binds listenAddr. maxSize bounds both inbound and outbound
// datagrams and defaults to 64 KiB.
func Listen(listenAddr string, logger *log.Logger, maxSize int) (*Server, error) {
	if maxSize <= 0 {
		maxSize = 64 * 1024
	}
	addr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve udp addr %q: %w", listenAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen udp %s: %w", addr, err)
	}
	if logger == nil {
		logger = log.New(log.Writer(), "udp ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Server{
		conn:    conn,
		logger:  logger,
		maxSize: maxSize,
		routes:  make(map[MessageType]Handler),
	}, nil
}

func (s *Server) Close() error {
	return s.conn.Close()
}

// LocalAddr returns the bound UDP address.
func (s *Server) LocalAddr() *net.UDPAddr {
	addr, _ := s.conn.LocalAddr().(*net.UDPAddr)
	return addr
}

// Handle routes msgType to h, replacing any earlier handler.
func (s *Server) Handle(msgType MessageType, h Handler) {
	s.mu.Lock()
	s.routes[msgType] = h
	s.mu.Unlock()
}

func (s *Server) route(msgType MessageType) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.routes[msgType]
	return h, ok
}

// SetSpectators resolves the endpoints that receive Broadcast events.
// Unresolvable endpoints are skipped and reported in the returned error.
func (s *Server) SetSpectators(endpoints []string) error {
	resolved := make([]*net.UDPAddr, 0, len(endpoints))
	var errs []error
	for _, endpoint := range endpoints {
		addr, err := net.ResolveUDPAddr("udp", endpoint)
		if err != nil {
			errs = append(errs, fmt.Errorf("spectator %q: %w", endpoint, err))
			continue
		}
		resolved = append(resolved, addr)
	}
	s.mu.Lock()
	s.spectators = resolved
	s.mu.Unlock()
	return errors.Join(errs...)
}

// Serve reads datagrams until ctx is cancelled. Malformed datagrams and
// unknown message types are answered with an error message.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		// Unblocks the pending read.
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buffer := make([]byte, s.maxSize)
	for {
		n, from, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read datagram: %w", err)
		}

		env, err := Decode(buffer[:n])
		if err != nil {
			s.logger.Printf("malformed datagram from %s: %v", from, err)
			s.reply(from, Reply{Type: MessageError, Payload: Error{Code: "bad_request", Message: err.Error()}})
			continue
		}
		h, ok := s.route(env.Type)
		if !ok {
			s.reply(from, Reply{Type: MessageError, Payload: Error{Code: "unknown_type", Message: fmt.Sprintf("no route for %q", env.Type)}})
			continue
		}
		go s.reply(from, h(ctx, Request{From: from, Envelope: env}))
	}
}

func (s *Server) reply(to *net.UDPAddr, r Reply) {
	if r.Type == "" {
		return
	}
	if err := s.SendTo(to, r.Type, r.Payload); err != nil {
		s.logger.Printf("reply %s to %s: %v", r.Type, to, err)
	}
}

// SendTo writes one message to addr.
func (s *Server) SendTo(addr *net.UDPAddr, msg MessageType, payload any) error {
	data, err := s.encode(msg, payload)
	if err != nil {
		return err
	}
	_, err = s.conn.WriteToUDP(data, addr)
	return err
}

// Broadcast sends one message to every spectator, logging failures.
func (s *Server) Broadcast(msg MessageType, payload any) {
	s.mu.RLock()
	targets := s.spectators
	s.mu.RUnlock()
	if len(targets) == 0 {
		return
	}
	data, err := s.encode(msg, payload)
	if err != nil {
		s.logger.Printf("broadcast %s: %v", msg, err)
		return
	}
	for _, addr := range targets {
		if _, err := s.conn.WriteToUDP(data, addr); err != nil {
			s.logger.Printf("broadcast %s to %s: %v", msg, addr, err)
		}
	}
}

// encode wraps payload in a sequenced envelope and enforces the datagram
// limit.
func (s *Server) encode(msg MessageType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msg, err)
	}
	data, err := Encode(Envelope{
		Type:      msg,
		Timestamp: time.Now().UTC(),
		Seq:       s.seq.Add(1),
		Payload:   raw,
	})
	if err != nil {
		return nil, err
	}
	if len(data) > s.maxSize {
		return nil, fmt.Errorf("%s message of %d bytes exceeds datagram limit %d", msg, len(data), s.maxSize)
	}
	return data, nil
}
