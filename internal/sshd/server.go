// Package sshd is the SSH transport: it accepts connections, owns the
// handshake, and feeds channel events into the session lifecycle
// handler.
package sshd

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/remote-tui/termhost/internal/server"
)

// Server accepts SSH connections and serves one hosted application
// session per session channel.
type Server struct {
	addr    string
	cfg     *ssh.ServerConfig
	handler *server.Handler
	log     zerolog.Logger
}

// New creates an SSH server using hostKey for the handshake. Every
// connection is accepted without credentials; authentication policy is
// outside this server's scope.
func New(hostKey ssh.Signer, handler *server.Handler, addr string, log zerolog.Logger) *Server {
	cfg := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	cfg.AddHostKey(hostKey)

	return &Server{
		addr:    addr,
		cfg:     cfg,
		handler: handler,
		log:     log.With().Str("component", "sshd").Logger(),
	}
}

// ListenAndServe accepts connections until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info().Str("addr", s.addr).Msg("listening for ssh connections")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept failed: %w", err)
			}
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	log := s.log.With().
		Str("conn", uuid.NewString()[:8]).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	sconn, chans, reqs, err := ssh.NewServerConn(conn, s.cfg)
	if err != nil {
		log.Debug().Err(err).Msg("ssh handshake failed")
		conn.Close()
		return
	}
	defer sconn.Close()

	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			newCh.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}

		ch, requests, err := newCh.Accept()
		if err != nil {
			log.Debug().Err(err).Msg("failed to accept session channel")
			continue
		}
		go s.serveChannel(ch, requests, sconn.RemoteAddr().String(), log)
	}
}

// serveChannel registers a session for the channel, answers pty and
// resize requests, and pumps inbound data into the lifecycle handler
// until the channel closes.
func (s *Server) serveChannel(ch ssh.Channel, requests <-chan *ssh.Request, remoteAddr string, log zerolog.Logger) {
	id, err := s.handler.Open(ch, remoteAddr)
	if err != nil {
		log.Error().Err(err).Msg("failed to open session")
		ch.Close()
		return
	}

	go func() {
		for req := range requests {
			switch req.Type {
			case "pty-req":
				if w, h, ok := parsePtyRequest(req.Payload); ok {
					s.handler.Resize(id, w, h)
				}
				req.Reply(true, nil)
			case "window-change":
				if w, h, ok := parseWindowChange(req.Payload); ok {
					s.handler.Resize(id, w, h)
				}
				if req.WantReply {
					req.Reply(true, nil)
				}
			case "shell":
				req.Reply(len(req.Payload) == 0, nil)
			default:
				if req.WantReply {
					req.Reply(false, nil)
				}
			}
		}
	}()

	buf := make([]byte, 1024)
	for {
		n, err := ch.Read(buf)
		if n > 0 {
			s.handler.Data(id, buf[:n])
		}
		if err != nil {
			s.handler.Close(id)
			return
		}
	}
}

// parsePtyRequest decodes terminal dimensions from a pty-req payload:
// a length-prefixed TERM string followed by columns and rows as
// big-endian uint32.
func parsePtyRequest(payload []byte) (width, height int, ok bool) {
	if len(payload) < 4 {
		return 0, 0, false
	}
	termLen := binary.BigEndian.Uint32(payload)
	rest := payload[4:]
	if uint64(len(rest)) < uint64(termLen)+8 {
		return 0, 0, false
	}
	rest = rest[termLen:]
	return int(binary.BigEndian.Uint32(rest)), int(binary.BigEndian.Uint32(rest[4:])), true
}

// parseWindowChange decodes terminal dimensions from a window-change
// payload: columns and rows as big-endian uint32.
func parseWindowChange(payload []byte) (width, height int, ok bool) {
	if len(payload) < 8 {
		return 0, 0, false
	}
	return int(binary.BigEndian.Uint32(payload)), int(binary.BigEndian.Uint32(payload[4:])), true
}
