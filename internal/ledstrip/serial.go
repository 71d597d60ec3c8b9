package ledstrip

import (
	"time"

	"github.com/rotisserie/eris"
	"go.bug.st/serial"
)

// DefaultBaudRate is the bridge's default serial speed.
const DefaultBaudRate = 115200

// OpenSerial opens a serial bridge that forwards frames to the strip.
func OpenSerial(port string, baudRate int, latch time.Duration) (*Strip, error) {
	if port == "" {
		return nil, eris.New("serial port is not specified")
	}
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}

	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "open serial port %s", port)
	}

	return NewStrip(p, latch), nil
}

// SerialPorts lists the serial ports present on the host.
func SerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, eris.Wrap(err, "list serial ports")
	}
	return ports, nil
}
