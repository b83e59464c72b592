// SPDX-License-Identifier: Apache-2.0

package wtvb

import "sync"

// Store holds the last decoded register values per device. It is written by
// the decode path of a single polling goroutine and may be read concurrently
// by any number of consumers.
//
// Addresses are fixed at construction; keys within an address come and go
// with decoded frames.
type Store struct {
	mu      sync.RWMutex
	devices map[byte]map[string]float64
}

// NewStore creates a store with one empty register map per address.
func NewStore(addresses []byte) *Store {
	devices := make(map[byte]map[string]float64, len(addresses))
	for _, a := range addresses {
		devices[a] = make(map[string]float64)
	}
	return &Store{devices: devices}
}

// Set records a register value for a device. Unknown addresses are ignored;
// the address set is fixed at construction.
func (s *Store) Set(address byte, key string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if regs, ok := s.devices[address]; ok {
		regs[key] = value
	}
}

// SetAll records a batch of decoded register values for a device.
func (s *Store) SetAll(address byte, values map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs, ok := s.devices[address]
	if !ok {
		return
	}
	for k, v := range values {
		regs[k] = v
	}
}

// Get returns the last value decoded for a device register.
func (s *Store) Get(address byte, key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	regs, ok := s.devices[address]
	if !ok {
		return 0, false
	}
	v, ok := regs[key]
	return v, ok
}

// Remove deletes one register key from a device. The device entry itself
// always remains.
func (s *Store) Remove(address byte, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if regs, ok := s.devices[address]; ok {
		delete(regs, key)
	}
}

// Snapshot returns a copy of a device's current register map, nil if the
// address is not configured.
func (s *Store) Snapshot(address byte) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	regs, ok := s.devices[address]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(regs))
	for k, v := range regs {
		out[k] = v
	}
	return out
}

// Addresses returns the configured device addresses.
func (s *Store) Addresses() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]byte, 0, len(s.devices))
	for a := range s.devices {
		out = append(out, a)
	}
	return out
}
