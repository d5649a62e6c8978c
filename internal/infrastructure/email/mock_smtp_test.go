// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// MockSMTPServer is a minimal SMTP server that records the messages it
// accepts. When rejectSender is set, MAIL FROM fails.
type MockSMTPServer struct {
	listener     net.Listener
	rejectSender bool

	mu       sync.Mutex
	messages []string
}

// NewMockSMTPServer starts a server on a random local port and closes it
// when the test ends.
func NewMockSMTPServer(t *testing.T, rejectSender bool) *MockSMTPServer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &MockSMTPServer{listener: listener, rejectSender: rejectSender}
	t.Cleanup(func() { _ = listener.Close() })

	go server.serve()
	return server
}

// Config returns an SMTPConfig pointing at the server.
func (s *MockSMTPServer) Config(t *testing.T) SMTPConfig {
	t.Helper()
	host, portStr, err := net.SplitHostPort(s.listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return SMTPConfig{Host: host, Port: port, From: "bookings@example.com"}
}

// Messages returns the DATA payloads received so far.
func (s *MockSMTPServer) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func (s *MockSMTPServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *MockSMTPServer) handleConnection(conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	reader := bufio.NewReader(conn)
	reply := func(line string) {
		_, _ = conn.Write([]byte(line + "\r\n"))
	}

	reply("220 localhost SMTP ready")
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		var verb string
		if fields := strings.Fields(line); len(fields) > 0 {
			verb = strings.ToUpper(fields[0])
		}

		switch verb {
		case "EHLO", "HELO":
			reply("250 localhost")
		case "MAIL":
			if s.rejectSender {
				reply("550 Mailbox unavailable")
				continue
			}
			reply("250 OK")
		case "DATA":
			reply("354 Start mail input")
			var body strings.Builder
			for {
				dataLine, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				if dataLine == ".\r\n" {
					break
				}
				body.WriteString(dataLine)
			}
			s.mu.Lock()
			s.messages = append(s.messages, body.String())
			s.mu.Unlock()
			reply("250 OK")
		case "QUIT":
			reply("221 Bye")
			return
		default:
			reply("250 OK")
		}
	}
}
