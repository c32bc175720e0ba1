package hal

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the sensor MCU.
	DefaultBaudRate = 115200
)

// Ensure Serial implements the converter capability interface.
var _ Converter = (*Serial)(nil)

// Serial talks to the converter MCU over a serial line using a simple
// request/response protocol:
//
//	E <ch>   enable sensor rail        -> OK | ERR <msg>
//	D <ch>   disable sensor rail       -> OK | ERR <msg>
//	V 1|0    reference on/off          -> OK | ERR <msg>
//	S <ch>   start conversion          -> OK | ERR <msg>
//	B        busy query                -> 0 | 1 | ERR <msg>
//	R <ch>   read count                -> <0..4095> | ERR <msg>
//
// Channels are the numeric values of hal.Channel. Exactly one request
// is in flight at a time.
type Serial struct {
	port     string
	baudRate int

	mu        sync.Mutex
	conn      serial.Port
	reader    *bufio.Reader
	connected bool
}

// NewSerial creates a serial converter adapter for the given port.
func NewSerial(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Serial{
		port:     port,
		baudRate: baudRate,
	}
}

// Ports returns the names of available serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the serial port.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	conn, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	s.conn = conn
	s.reader = bufio.NewReader(conn)
	s.connected = true
	return nil
}

// Close closes the serial port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.reader = nil
	s.connected = false
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// IsConnected reports whether the port is open.
func (s *Serial) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// request sends one command line and returns the response line.
func (s *Serial) request(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return "", fmt.Errorf("not connected")
	}

	if _, err := s.conn.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("failed to send %q: %w", cmd, err)
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read response to %q: %w", cmd, err)
	}
	line = strings.TrimSpace(line)

	if msg, ok := strings.CutPrefix(line, "ERR"); ok {
		return "", fmt.Errorf("device error for %q: %s", cmd, strings.TrimSpace(msg))
	}
	return line, nil
}

// requestOK sends a command that must be acknowledged with OK.
func (s *Serial) requestOK(cmd string) error {
	resp, err := s.request(cmd)
	if err != nil {
		return err
	}
	if resp != "OK" {
		return fmt.Errorf("unexpected response to %q: %q", cmd, resp)
	}
	return nil
}

func (s *Serial) EnableSensor(ch Channel) error {
	return s.requestOK(fmt.Sprintf("E %d", ch))
}

func (s *Serial) DisableSensor(ch Channel) error {
	return s.requestOK(fmt.Sprintf("D %d", ch))
}

func (s *Serial) EnableReference() error {
	return s.requestOK("V 1")
}

func (s *Serial) DisableReference() error {
	return s.requestOK("V 0")
}

func (s *Serial) StartConversion(ch Channel) error {
	return s.requestOK(fmt.Sprintf("S %d", ch))
}

func (s *Serial) Busy() (bool, error) {
	resp, err := s.request("B")
	if err != nil {
		return false, err
	}
	switch resp {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("invalid busy response: %q", resp)
	}
}

func (s *Serial) ReadCount(ch Channel) (uint16, error) {
	resp, err := s.request(fmt.Sprintf("R %d", ch))
	if err != nil {
		return 0, err
	}
	count, err := strconv.ParseUint(resp, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid count response %q: %w", resp, err)
	}
	if count > 4095 {
		return 0, fmt.Errorf("count out of range: %d (max 4095)", count)
	}
	return uint16(count), nil
}
