package plant

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

const DefaultBaudRate = 115200

// SerialBus speaks the rig's line protocol over a serial port: one tilt
// command per line out, one "position velocity" frame per line back.
type SerialBus struct {
	port   serial.Port
	reader *bufio.Reader
}

func OpenSerialBus(device string, baudRate int) (*SerialBus, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(device, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return &SerialBus{
		port:   port,
		reader: bufio.NewReader(port),
	}, nil
}

func (b *SerialBus) WriteTilt(tiltRadians float64) error {
	_, err := fmt.Fprintf(b.port, "%.6f\n", tiltRadians)
	return err
}

func (b *SerialBus) ReadState() (State, error) {
	line, err := b.reader.ReadString('\n')
	if err != nil {
		return State{}, err
	}
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) != 2 {
		return State{}, fmt.Errorf("malformed sensor frame %q", line)
	}
	pos, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return State{}, fmt.Errorf("parse position: %w", err)
	}
	vel, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return State{}, fmt.Errorf("parse velocity: %w", err)
	}
	return State{Position: pos, Velocity: vel}, nil
}

func (b *SerialBus) Close() error {
	return b.port.Close()
}
