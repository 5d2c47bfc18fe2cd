// Package gyro drives a 3-axis gyroscope attached to the L0 firmware.
//
// All operations are nested protothreads which send a single L0 command
// and wait for the reply without blocking the control loop.
package gyro

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/robotalks/pt.go/pkg/l0/comm"
)

// L0 command codes understood by the firmware.
const (
	CodeConfigure    byte = 0x02
	CodeReadRotation byte = 0x04
)

var (
	// ErrTimeout indicates no reply received in time.
	ErrTimeout = errors.New("gyro: timeout")
	// ErrShortReply indicates the reply doesn't carry enough data.
	ErrShortReply = errors.New("gyro: short reply")
)

// Scale is the measurement range.
type Scale byte

// Supported scales.
const (
	Dps250 Scale = iota
	Dps500
	Dps2000
)

var sensitivities = [...]float32{0.00875, 0.0175, 0.070}

// Sensitivity returns degrees per second of one digit.
func (s Scale) Sensitivity() float32 {
	if int(s) < len(sensitivities) {
		return sensitivities[s]
	}
	return 0
}

// IsValid checks if it's a supported scale.
func (s Scale) IsValid() bool {
	return int(s) < len(sensitivities)
}

// String implements fmt.Stringer.
func (s Scale) String() string {
	switch s {
	case Dps250:
		return "250dps"
	case Dps500:
		return "500dps"
	case Dps2000:
		return "2000dps"
	}
	return fmt.Sprintf("Scale(%d)", byte(s))
}

// ParseScale parses the string form of Scale.
func ParseScale(str string) (Scale, error) {
	for s := Dps250; s.IsValid(); s++ {
		if s.String() == str {
			return s, nil
		}
	}
	return 0, fmt.Errorf("gyro: unknown scale %q", str)
}

// Data is a rotation reading in degrees per second.
type Data struct {
	X, Y, Z float32
}

// Pending is a request waiting for the reply.
type Pending interface {
	// Poll returns the result once the reply arrives. It never blocks.
	Poll() (comm.Result, bool)
}

// Transport sends requests to the device.
type Transport interface {
	Request(code byte, data []byte) Pending
}

// ClientTransport sends requests using the L0 client.
type ClientTransport struct {
	Client *comm.Client
}

// Request implements Transport.
func (t *ClientTransport) Request(code byte, data []byte) Pending {
	return t.Client.Request(code, data)
}

func decodeAxis(data []byte) int16 {
	return int16(binary.LittleEndian.Uint16(data))
}

func encodeAxis(data []byte, v int16) {
	binary.LittleEndian.PutUint16(data, uint16(v))
}
