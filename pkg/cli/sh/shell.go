package sh

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/serialcmd/pkg/env"
	fx "github.com/robotalks/serialcmd/pkg/framework"
	"github.com/robotalks/serialcmd/pkg/notify/mqtt"
	"github.com/robotalks/serialcmd/pkg/session"
	"github.com/robotalks/serialcmd/pkg/transport"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool

	Shell    *ishell.Shell
	Config   *env.Config
	Registry *session.Registry
	Reporter *session.ReporterMux

	// Port is the endpoint chosen by "use", it overrides Config.Port.
	Port string

	OpenTransport func(endpoint string, baud int) (transport.Transport, error)
	ListPorts     func() ([]transport.PortInfo, error)

	lastErr error
}

const (
	shellKey   = "$shell"
	basePrompt = "serialcmd"

	mqttConnectTimeout = 5 * time.Second
)

var (
	// flags

	evalOnly bool

	// commands
	builtinCmds = []*ishell.Cmd{
		&PortsCmd,
		&UseCmd,
		&PortCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// New creates a new shell exposing commands in reg.
func New(conf *env.Config, reg *session.Registry) *Shell {
	s := newShell(conf, reg)
	s.Interactive = !evalOnly
	s.Shell = ishell.New()
	s.Shell.Set(shellKey, s)
	s.updatePrompt()
	for _, cmd := range builtinCmds {
		s.Shell.AddCmd(cmd)
	}
	for _, name := range reg.Names() {
		s.Shell.AddCmd(commandCmd(name))
	}
	return s
}

func newShell(conf *env.Config, reg *session.Registry) *Shell {
	return &Shell{
		Config:        conf,
		Registry:      reg,
		Reporter:      (&session.ReporterMux{}).Add(session.NewConsoleReporter(os.Stdout), session.LogReporter{}),
		OpenTransport: transport.Open,
		ListPorts:     transport.ListPorts,
	}
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func (s *Shell) updatePrompt() {
	if s.Shell == nil {
		return
	}
	if s.Port != "" {
		s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", s.Port))
	} else {
		s.Shell.SetPrompt(basePrompt + " > ")
	}
}

// Endpoint resolves the endpoint to open.
func (s *Shell) Endpoint() (string, error) {
	want := s.Port
	if want == "" {
		want = s.Config.Port
	}
	if transport.IsNetworkEndpoint(want) || transport.IsDevicePath(want) {
		return want, nil
	}
	ports, err := s.ListPorts()
	if err != nil {
		return "", err
	}
	return transport.SelectPort(ports, want)
}

// Use selects the endpoint for later commands.
func (s *Shell) Use(want string) error {
	if !transport.IsNetworkEndpoint(want) && !transport.IsDevicePath(want) {
		ports, err := s.ListPorts()
		if err != nil {
			return err
		}
		if want, err = transport.SelectPort(ports, want); err != nil {
			return err
		}
	}
	s.Port = want
	s.updatePrompt()
	return nil
}

// RunCommand opens the endpoint and runs one session of command.
// CtrlC cancels the session.
func (s *Shell) RunCommand(command string, args ...string) error {
	if _, ok := s.Registry.Lookup(command); !ok {
		return &session.UnknownCommandError{Name: command}
	}
	endpoint, err := s.Endpoint()
	if err != nil {
		return err
	}
	t, err := s.OpenTransport(endpoint, s.Config.Baud)
	if err != nil {
		return fmt.Errorf("open %s: %w", endpoint, err)
	}
	sess := session.New(t, s.Registry, command, args...).
		WithConfig(s.Config.SessionConfig()).
		WithEndpoint(endpoint).
		WithReporter(s.Reporter)
	return fx.NewRunner().HandleSignals().Go(sess).Wait()
}

// ConnectMQTT publishes session events to the broker at brokerURL.
func (s *Shell) ConnectMQTT(brokerURL string) (io.Closer, error) {
	q, err := mqtt.NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), mqttConnectTimeout)
	defer cancel()
	if err = q.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect MQTT %s: %w", brokerURL, err)
	}
	s.Reporter.Add(mqtt.NewReporter(q))
	return q, nil
}

func (s *Shell) isCommand(name string) bool {
	for _, cmd := range builtinCmds {
		if cmd.Name == name {
			return true
		}
		for _, alias := range cmd.Aliases {
			if alias == name {
				return true
			}
		}
	}
	_, ok := s.Registry.Lookup(name)
	return ok
}

// Run runs the shell. With args, only that command is evaluated.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		if !s.isCommand(args[0]) {
			return &session.UnknownCommandError{Name: args[0]}
		}
		if err := s.Shell.Process(args...); err != nil {
			return err
		}
		return s.lastErr
	}
	if s.Interactive {
		s.Shell.Run()
		return nil
	}
	return errors.New("command expected")
}

func (s *Shell) fail(c *ishell.Context, err error) {
	s.lastErr = err
	c.Err(err)
}

func commandCmd(name string) *ishell.Cmd {
	help := "Run " + name + " on the device."
	switch name {
	case session.CommandSyncTime:
		help = "Synchronize the board clock with this computer."
	case session.CommandSend:
		help = "NAME [ARGS...] Send a raw firmware command."
	}
	return &ishell.Cmd{
		Name: name,
		Help: help,
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			s.lastErr = nil
			if err := s.RunCommand(name, c.Args...); err != nil {
				s.fail(c, err)
			}
		},
	}
}

var (
	// PortsCmd lists discovered serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "List serial ports.",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ports, err := s.ListPorts()
			if err != nil {
				s.fail(c, err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial port.")
				return
			}
			for _, port := range ports {
				mark := " "
				if port.Device == s.Port {
					mark = "*"
				}
				if port.Product != "" {
					c.Printf("%s %s (%s) %s\n", mark, port.Device, port.Name, port.Product)
				} else {
					c.Printf("%s %s (%s)\n", mark, port.Device, port.Name)
				}
			}
		},
	}

	// UseCmd selects the endpoint.
	UseCmd = ishell.Cmd{
		Name:    "use",
		Aliases: []string{"u"},
		Help:    "PORT Select serial port (device path or name) or ws:// tcp:// bridge.",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				ShellFrom(c).fail(c, fmt.Errorf("usage: use PORT"))
				return
			}
			if err := ShellFrom(c).Use(c.Args[0]); err != nil {
				ShellFrom(c).fail(c, err)
			}
		},
	}

	// PortCmd prints the endpoint commands will use.
	PortCmd = ishell.Cmd{
		Name: "port",
		Help: "Show the port commands will use.",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			endpoint, err := s.Endpoint()
			if err != nil {
				s.fail(c, err)
				return
			}
			c.Println(endpoint)
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	conf, err := env.Load()
	if err != nil {
		return err
	}
	s := New(conf, session.DefaultRegistry())
	if conf.MQTTURL != "" {
		q, err := s.ConnectMQTT(conf.MQTTURL)
		if err != nil {
			return err
		}
		defer q.Close()
	}
	return s.Run(flag.Args()...)
}
