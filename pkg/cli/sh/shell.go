package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/espfly/fclink/pkg/confcmd"
	"github.com/espfly/fclink/pkg/crtp"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Remote      string

	Shell  *ishell.Shell
	Conn   *Conn
	cancel func()
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	remote     = "192.168.43.42:2390"

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&PingCmd,
		&BatteryCmd,
		&SetpointCmd,
		&PIDSetCmd,
		&PIDQueryCmd,
		&TestCmd,
		&NameCmd,
		&SSIDCmd,
		&PasswordCmd,
		&FlightCmd,
	}
)

func init() {
	if val := os.Getenv("FCLINK_REMOTE"); val != "" {
		remote = val
	}
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&remote, "remote", remote, "UDP address of the flight controller.")
}

// New creates a new shell.
func New(remote string) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Remote:      remote,

		Shell: ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// SendConfig sends a config command and reports the result.
func SendConfig(c *ishell.Context, cmd confcmd.Command) error {
	return report(c, ShellFrom(c).Conn.SendConfig(cmd))
}

// SendPacket sends a control packet and reports the result.
func SendPacket(c *ishell.Context, pkt crtp.Packet) error {
	return report(c, ShellFrom(c).Conn.SendPacket(pkt))
}

func report(c *ishell.Context, err error) error {
	if err != nil {
		c.Err(err)
		return err
	}
	if ShellFrom(c).OutputJSON {
		c.Println(`{"ok":true}`)
		return nil
	}
	c.Println("OK")
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens a session with the flight controller at address.
func (s *Shell) Connect(address string) error {
	conn, err := Dial(address)
	if err != nil {
		return err
	}
	conn.OnConsole = func(line string) {
		s.Shell.Printf("[console] %s\n", line)
	}
	s.Disconnect()
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	s.Conn = conn
	go conn.Run(ctx)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", address))
	return nil
}

// Disconnect closes the current session.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.cancel()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Remote != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Remote)
		}
		if err := s.Connect(s.Remote); err != nil {
			log.Fatalf("connect %q failed: %v", s.Remote, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// BatteryJSON is the JSON form of a battery report.
type BatteryJSON struct {
	Voltage      float32 `json:"voltage"`
	VoltageMilli uint16  `json:"voltage_mv"`
	Level        uint8   `json:"level"`
	State        uint8   `json:"state"`
	Age          string  `json:"age"`
}

// FormatBattery prints a battery report for display.
func FormatBattery(status crtp.BatteryStatus, age time.Duration) string {
	return fmt.Sprintf("%.3fV (%dmV) level=%d state=%d, %v ago",
		status.Voltage, status.VoltageMilli, status.Level, status.State,
		age.Round(time.Millisecond))
}

var (
	// ConnectCmd connects a flight controller.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[HOST:PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			address := s.Remote
			if len(c.Args) > 0 {
				address = c.Args[0]
			}
			if err := s.Connect(address); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current flight controller.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// BatteryCmd prints the last battery report.
	BatteryCmd = ishell.Cmd{
		Name:    "battery",
		Aliases: []string{"bat"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			status, at, ok := s.Conn.Battery()
			if !ok {
				c.Err(fmt.Errorf("no battery report received"))
				return
			}
			age := time.Since(at)
			if !s.OutputJSON {
				c.Println(FormatBattery(status, age))
				return
			}
			out, err := json.Marshal(&BatteryJSON{
				Voltage:      status.Voltage,
				VoltageMilli: status.VoltageMilli,
				Level:        status.Level,
				State:        status.State,
				Age:          age.String(),
			})
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(string(out))
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(remote).WithAutoConnect(true).Run(flag.Args()...)
}
