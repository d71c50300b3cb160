package ups

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"upsfw/core"
	"upsfw/protocol"
)

// Smart-protocol status register bits (command 'Q').
const (
	apcOnline         = 0x08
	apcOnBattery      = 0x10
	apcOverload       = 0x20
	apcBatteryLow     = 0x40
	apcReplaceBattery = 0x80
)

const echoPrefix = "v_bat: "

// LegacyClient polls a UPS over the smart protocol.
type LegacyClient struct {
	mu       sync.Mutex
	port     io.ReadWriteCloser
	rd       *bufio.Reader
	interval time.Duration
	polled   bool
	now      func() time.Time

	// Echo holds the most recent diagnostic telemetry line seen between
	// responses, if the firmware has echo enabled.
	echo     Reading
	echoSeen bool
}

// NewLegacyClient wraps an open port. interval paces Next.
func NewLegacyClient(port io.ReadWriteCloser, interval time.Duration) *LegacyClient {
	return &LegacyClient{
		port:     port,
		rd:       bufio.NewReader(port),
		interval: interval,
		now:      time.Now,
	}
}

// Query sends one command and returns its response line without the
// terminator.
func (c *LegacyClient) Query(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := io.WriteString(c.port, cmd); err != nil {
		return "", errors.Wrapf(err, "failed to send %q", cmd)
	}
	for {
		line, err := c.rd.ReadString('\n')
		if err != nil {
			return "", errors.Wrapf(err, "no response to %q", cmd)
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(line, echoPrefix) {
			if r, ok := ParseEchoLine(line); ok {
				c.echo, c.echoSeen = r, true
			}
			continue
		}
		return line, nil
	}
}

// Poll reads the status register, capacity and runtime.
func (c *LegacyClient) Poll() (Reading, error) {
	if _, err := c.Query("Y"); err != nil {
		return Reading{}, err
	}

	var r Reading
	q, err := c.Query("Q")
	if err != nil {
		return r, err
	}
	bits, err := strconv.ParseUint(q, 16, 8)
	if err != nil {
		return r, errors.Wrapf(err, "bad status register %q", q)
	}
	r.Status = StatusFromRegister(uint8(bits))

	f, err := c.queryFloat("f")
	if err != nil {
		return r, err
	}
	r.CapacityPercent = uint8(clampPercent(f))

	j, err := c.Query("j")
	if err != nil {
		return r, err
	}
	mins, err := strconv.Atoi(strings.TrimSuffix(j, ":"))
	if err != nil {
		return r, errors.Wrapf(err, "bad runtime %q", j)
	}
	r.RuntimeSeconds, r.RuntimeKnown = runtimeFromMinutes(mins)

	if r.BatteryVoltage, err = c.queryFloat("B"); err != nil {
		return r, err
	}
	if r.InputVoltage, err = c.queryFloat("L"); err != nil {
		return r, err
	}

	c.mu.Lock()
	if c.echoSeen {
		// Live telemetry beats the fixed table.
		r.BatteryVoltage = c.echo.BatteryVoltage
		r.InputVoltage = c.echo.InputVoltage
		r.Current = c.echo.Current
		r.RuntimeSeconds, r.RuntimeKnown = c.echo.RuntimeSeconds, c.echo.RuntimeKnown
	}
	c.mu.Unlock()

	r.Flags = r.Status.Names()
	r.Time = c.now()
	return r, nil
}

// Next waits one poll interval (none before the first poll) and polls.
func (c *LegacyClient) Next(ctx context.Context) (Reading, error) {
	if c.polled {
		t := time.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return Reading{}, ctx.Err()
		case <-t.C:
		}
	}
	c.polled = true
	return c.Poll()
}

// Close closes the port.
func (c *LegacyClient) Close() error {
	return c.port.Close()
}

func (c *LegacyClient) queryFloat(cmd string) (float32, error) {
	s, err := c.Query(cmd)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "bad response to %q: %q", cmd, s)
	}
	return float32(v), nil
}

// StatusFromRegister maps the smart-protocol status register onto the
// power-device status flags.
func StatusFromRegister(bits uint8) core.Status {
	var st core.Status
	if bits&apcOnline != 0 {
		st |= core.ACPresent
	}
	if bits&apcOnBattery != 0 {
		st |= core.BatteryPresent | core.Discharging
	}
	if bits&apcOverload != 0 {
		st |= core.Overload
	}
	if bits&apcBatteryLow != 0 {
		st |= core.ShutdownRequested
	}
	if bits&apcReplaceBattery != 0 {
		st |= core.NeedReplacement
	}
	return st
}

// ParseEchoLine parses the firmware's diagnostic telemetry line.
func ParseEchoLine(line string) (Reading, bool) {
	var r Reading
	fields := strings.Split(line, ", ")
	if len(fields) != 4 {
		return r, false
	}
	vals := make([]float64, 4)
	for i, f := range fields {
		k := strings.LastIndex(f, ": ")
		if k < 0 {
			return r, false
		}
		v, err := strconv.ParseFloat(f[k+2:], 64)
		if err != nil {
			logrus.Debugf("echo line field %q: %v", f, err)
			return r, false
		}
		vals[i] = v
	}
	r.BatteryVoltage = float32(vals[0])
	r.InputVoltage = float32(vals[1])
	r.Current = float32(vals[2])
	r.RuntimeSeconds, r.RuntimeKnown = runtimeFromSeconds(vals[3])
	return r, true
}

// Commands lists the smart-protocol command table.
func Commands() []protocol.SmartCommand {
	return protocol.SmartCommands
}

func clampPercent(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func runtimeFromSeconds(s float64) (uint16, bool) {
	if !(s >= 0) || s >= float64(core.RuntimeUnknown) {
		return core.RuntimeUnknown, false
	}
	return uint16(s), true
}

func runtimeFromMinutes(m int) (uint16, bool) {
	if m < 0 {
		return core.RuntimeUnknown, false
	}
	s := m * 60
	if s >= int(core.RuntimeUnknown) {
		return core.RuntimeUnknown, false
	}
	return uint16(s), true
}
