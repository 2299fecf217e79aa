package session

import (
	"errors"
	"sort"

	"github.com/robotalks/serialcmd/pkg/proto"
)

// Handler builds the frame of a command.
// It must not block, and produces exactly one frame per call.
type Handler interface {
	Frame(s *Session, args ...string) (proto.Frame, error)
}

// HandlerFunc is the func form of Handler.
type HandlerFunc func(s *Session, args ...string) (proto.Frame, error)

// Frame implements Handler.
func (f HandlerFunc) Frame(s *Session, args ...string) (proto.Frame, error) {
	return f(s, args...)
}

// Registry maps command names to handlers. It's immutable once created.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates a Registry from handlers.
func NewRegistry(handlers map[string]Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for name, h := range handlers {
		r.handlers[name] = h
	}
	return r
}

// Lookup finds the handler of a command.
func (r *Registry) Lookup(name string) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns sorted command names.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Built-in command names.
const (
	CommandSyncTime = "sync_time"
	CommandSend     = "send"
)

var (
	errSyncTimeArgs = errors.New("sync_time takes no arguments")
	errSendArgs     = errors.New("send requires a command name")
)

var (
	// SyncTime sets the firmware clock to the session clock (Unix seconds, UTC).
	SyncTime Handler = HandlerFunc(func(s *Session, args ...string) (proto.Frame, error) {
		if len(args) > 0 {
			return proto.Frame{}, errSyncTimeArgs
		}
		return proto.NewFrame(proto.CmdSyncTime, s.Now().UTC().Unix()), nil
	})

	// Raw sends an arbitrary firmware command, args[0] is the name.
	Raw Handler = HandlerFunc(func(s *Session, args ...string) (proto.Frame, error) {
		if len(args) == 0 {
			return proto.Frame{}, errSendArgs
		}
		f := proto.Frame{Name: args[0]}
		if len(args) > 1 {
			f.Args = append([]string(nil), args[1:]...)
		}
		return f, nil
	})
)

// DefaultRegistry contains the built-in commands.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Handler{
		CommandSyncTime: SyncTime,
		CommandSend:     Raw,
	})
}
