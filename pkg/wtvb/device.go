// SPDX-License-Identifier: Apache-2.0

package wtvb

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink receives the updated register snapshot for a device after each
// decoded frame. It runs on the polling goroutine and must return quickly.
type Sink func(address byte, values map[string]float64)

// Device is one polling session over one transport, serving one or more
// sensor addresses on the same bus. It owns the assembler and the pending
// read context; the register store may be read concurrently.
type Device struct {
	conn      io.ReadWriter
	assembler *Assembler
	store     *Store
	addresses []byte

	name         string
	settle       time.Duration
	pollInterval time.Duration
	verifyWrites bool
	sink         Sink
	observer     func(*Frame)
	log          zerolog.Logger

	// cmdMu serializes the command path: one in-flight request per bus,
	// and nothing else while an unlock/write/save sequence runs.
	cmdMu sync.Mutex

	// stateMu guards pending and inflight, shared between the command
	// path and the decode path.
	stateMu  sync.Mutex
	pending  ReadContext
	inflight bool
}

// Option configures a Device.
type Option func(*Device)

// WithName sets a human-readable session name used in log output.
func WithName(name string) Option {
	return func(d *Device) { d.name = name }
}

// WithSettleDelay overrides the pause between unlock, write, and save steps.
// The device ignores writes that arrive faster; shorten this only in tests.
func WithSettleDelay(delay time.Duration) Option {
	return func(d *Device) { d.settle = delay }
}

// WithPollInterval overrides the delay between periodic data block reads.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Device) { d.pollInterval = interval }
}

// WithVerifyWrites enables a read-back check after each write. The protocol
// carries no acknowledgment, so without this a write is assumed successful
// once the settle delays elapse.
func WithVerifyWrites(verify bool) Option {
	return func(d *Device) { d.verifyWrites = verify }
}

// WithSink sets the snapshot callback invoked after each decoded frame.
func WithSink(sink Sink) Option {
	return func(d *Device) { d.sink = sink }
}

// WithFrameObserver sets a callback invoked with every validated frame
// before decoding, decodable or not. Used for capture and tracing; runs on
// the polling goroutine.
func WithFrameObserver(observer func(*Frame)) Option {
	return func(d *Device) { d.observer = observer }
}

// WithLogger sets the session logger. Logging defaults to disabled.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Device) { d.log = log }
}

// NewDevice creates a session over an open transport for the given device
// addresses. The caller retains ownership of the transport.
func NewDevice(conn io.ReadWriter, addresses []byte, opts ...Option) *Device {
	d := &Device{
		conn:         conn,
		assembler:    NewAssembler(addresses),
		store:        NewStore(addresses),
		addresses:    append([]byte(nil), addresses...),
		name:         "wtvb",
		settle:       100 * time.Millisecond,
		pollInterval: 200 * time.Millisecond,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Store returns the device register store.
func (d *Device) Store() *Store {
	return d.store
}

// Stats returns the stream diagnostic counters.
func (d *Device) Stats() *Statistics {
	return d.assembler.Stats()
}

// Run reads the transport until it fails or ctx is canceled, feeding every
// arriving byte through the assembler and decoding completed frames into the
// store. Only transport errors terminate the loop; corrupted stream segments
// are resynchronized away silently.
//
// A blocked transport read is released by closing the transport or by its
// own read timeout, not by ctx.
func (d *Device) Run(ctx context.Context) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := d.conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("transport read: %w", err)
		}

		for _, frame := range d.assembler.FeedBytes(buf[:n]) {
			d.handleFrame(frame)
		}
	}
}

// handleFrame decodes one validated frame into the store and notifies the
// sink. Runs on the polling goroutine.
func (d *Device) handleFrame(f *Frame) {
	if d.observer != nil {
		d.observer(f)
	}

	d.stateMu.Lock()
	values, next := Decode(f, d.pending)
	d.pending = next
	// A validated response means the outstanding request round-trip is done.
	d.inflight = false
	d.stateMu.Unlock()

	if len(values) == 0 {
		d.log.Debug().
			Str("device", d.name).
			Uint8("addr", f.Address()).
			Int("payload", len(f.Payload())).
			Msg("frame decoded to nothing (no pending read)")
		return
	}

	d.store.SetAll(f.Address(), values)
	d.log.Debug().
		Str("device", d.name).
		Uint8("addr", f.Address()).
		Int("registers", len(values)).
		Msg("frame decoded")

	if d.sink != nil {
		d.sink(f.Address(), d.store.Snapshot(f.Address()))
	}
}

// ReadRegisters sends a read request for count registers starting at reg.
// The decoded response lands in the store and reaches the sink; this call
// does not wait for it. At most one read may be outstanding per session:
// responses carry no register address, so overlapping reads would make them
// unattributable.
func (d *Device) ReadRegisters(address byte, reg, count uint16) error {
	if !d.known(address) {
		return ErrUnknownAddress
	}

	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	d.stateMu.Lock()
	if d.inflight {
		d.stateMu.Unlock()
		return ErrReadPending
	}
	d.pending = NewReadContext(reg)
	d.inflight = true
	d.stateMu.Unlock()

	req := BuildReadRequest(address, reg, count)
	d.log.Debug().Str("device", d.name).Hex("tx", req).Msg("read request")
	if _, err := d.conn.Write(req); err != nil {
		d.stateMu.Lock()
		d.inflight = false
		d.stateMu.Unlock()
		return fmt.Errorf("send read request: %w", err)
	}
	return nil
}

// WriteRegister writes value to a register and persists it. The device class
// write-protects registers until unlocked and discards unsaved writes on
// power cycle, so the sequence is fixed: unlock, settle, write, settle, save.
// No acknowledgment exists for any step; with write verification enabled the
// register is read back afterwards and compared.
//
// The call blocks for at least two settle delays and holds the command lock
// throughout: no other command may be issued to the bus mid-sequence.
func (d *Device) WriteRegister(address byte, reg, value uint16) error {
	if !d.known(address) {
		return ErrUnknownAddress
	}

	d.cmdMu.Lock()

	steps := []struct {
		what string
		cmd  []byte
	}{
		{"unlock", BuildUnlock(address)},
		{"write", BuildWriteRequest(address, reg, value)},
		{"save", BuildSave(address)},
	}
	for i, step := range steps {
		if i > 0 {
			time.Sleep(d.settle)
		}
		d.log.Debug().Str("device", d.name).Str("step", step.what).Hex("tx", step.cmd).Msg("write sequence")
		if _, err := d.conn.Write(step.cmd); err != nil {
			d.cmdMu.Unlock()
			return fmt.Errorf("send %s command: %w", step.what, err)
		}
	}

	d.cmdMu.Unlock()

	if !d.verifyWrites {
		return nil
	}
	return d.verifyWrite(address, reg, value)
}

// verifyWrite reads the register back and compares against the value written.
// The comparison happens in decoded units: the generic policy scales raw
// register contents by 1/32768 and rounds to 3 decimals.
func (d *Device) verifyWrite(address byte, reg, value uint16) error {
	time.Sleep(d.settle)

	key := strconv.Itoa(int(reg))
	// Drop any stale value so the wait below only sees the read-back.
	d.store.Remove(address, key)

	if err := d.ReadRegisters(address, reg, 1); err != nil {
		return fmt.Errorf("verify read-back: %w", err)
	}

	want := round3(float64(int16(value)) * scaleGeneric)

	deadline := time.Now().Add(10 * d.settle)
	for time.Now().Before(deadline) {
		if got, ok := d.store.Get(address, key); ok {
			if got != want {
				return fmt.Errorf("%w: register 0x%02X reads %v, wrote %v", ErrVerifyMismatch, reg, got, want)
			}
			return nil
		}
		time.Sleep(d.settle / 10)
	}
	return ErrVerifyTimeout
}

// Poll issues periodic reads of the vibration data block for every
// configured address until ctx is canceled. Run must be active on another
// goroutine for the responses to be decoded.
func (d *Device) Poll(ctx context.Context) error {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		for _, addr := range d.addresses {
			switch err := d.ReadRegisters(addr, DataBlockReg, DataBlockCount); err {
			case nil:
			case ErrReadPending:
				// The sensor hasn't answered the previous request yet;
				// skip this cycle rather than pile requests up.
				d.log.Debug().Str("device", d.name).Uint8("addr", addr).Msg("poll skipped, read pending")
			default:
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

// known reports whether address was configured at construction.
func (d *Device) known(address byte) bool {
	for _, a := range d.addresses {
		if a == address {
			return true
		}
	}
	return false
}
