package ldapserver

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	evio "github.com/jursonmo/evio"
)

// Server runs the reactor and owns every connection's bookkeeping, per
// spec.md §4.1. It is single-threaded by construction (one evio loop),
// matching the Non-goal in spec.md §5 ruling out any other concurrency
// model: every Connection callback below runs on that one goroutine,
// except the rare per-connection goroutine spun up for a StartTLS
// handshake (Connection.runDetachedTLS), which evio itself detaches from
// the loop for exactly that purpose.
type Server struct {
	config Config

	mu      sync.Mutex
	started bool
	nextID  uint64
	conns   map[uint64]*Connection

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Init validates cfg and returns a Server ready to Start. Mirrors the
// original's ldap_server_init: it fails fast on missing required
// collaborators rather than discovering the problem on first connection.
func Init(cfg Config) (*Server, error) {
	if cfg.Accounts == nil {
		return nil, ErrNoHandlerConfigured
	}
	return &Server{
		config: cfg,
		conns:  make(map[uint64]*Connection),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Start begins serving in a background goroutine and returns
// immediately; dial errors and per-connection failures are logged, not
// returned.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	events := evio.Events{
		NumLoops: 1,

		Opened: func(evc evio.Conn) ([]byte, evio.Options, evio.Action) {
			id := atomic.AddUint64(&s.nextID, 1)
			conn := newConnection(s, id, evc)
			conn.localAddr = evc.LocalAddr()
			conn.remoteAddr = evc.RemoteAddr()
			evc.SetContext(conn)

			s.mu.Lock()
			s.conns[id] = conn
			s.mu.Unlock()

			return nil, evio.Options{}, evio.None
		},

		Data: func(evc evio.Conn, in []byte) ([]byte, evio.Action) {
			conn, _ := evc.Context().(*Connection)
			if conn == nil {
				return nil, evio.Close
			}
			return conn.onData(in)
		},

		Closed: func(evc evio.Conn, err error) evio.Action {
			conn, _ := evc.Context().(*Connection)
			if conn != nil {
				conn.cancelDelay()
				s.mu.Lock()
				delete(s.conns, conn.id)
				s.mu.Unlock()
			}
			return evio.None
		},

		Detached: func(evc evio.Conn, rwc io.ReadWriteCloser) evio.Action {
			conn, _ := evc.Context().(*Connection)
			if conn == nil {
				rwc.Close()
				return evio.None
			}
			conn.evc = nil
			go conn.runDetachedTLS(rwc)
			return evio.None
		},

		Tick: func() (time.Duration, evio.Action) {
			select {
			case <-s.stop:
				return 0, evio.Shutdown
			default:
				return time.Second, evio.None
			}
		},
	}

	go func() {
		defer close(s.done)
		if err := evio.Serve(events, "tcp://"+s.config.Addr); err != nil {
			s.logger().Printf("serve: %v", err)
		}
	}()

	go s.handleSignals()

	return nil
}

// Stop signals the reactor to shut down and waits for it to exit. It is
// safe to call more than once.
func (s *Server) Stop() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

// handleSignals mirrors the original's signal handling: SIGHUP is
// logged and otherwise ignored (a hook for config reload, not
// implemented here since nothing in this server's config is reloadable
// without rebinding), SIGINT/SIGTERM trigger an orderly Stop.
func (s *Server) handleSignals() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-s.stop:
			signal.Stop(sig)
			return
		case got := <-sig:
			switch got {
			case syscall.SIGHUP:
				s.logger().Println("received SIGHUP, no reloadable configuration, ignoring")
			default:
				s.logger().Printf("received %v, shutting down", got)
				go s.Stop()
				signal.Stop(sig)
				return
			}
		}
	}
}

func (s *Server) logger() Logger {
	return s.config.logger()
}
