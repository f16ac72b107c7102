// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package listcache implements the file-backed allow/deny List Cache (spec
// §4.1): an in-memory set refreshed from disk every 5 minutes, with an
// atomically-swapped snapshot so readers never observe a partial reload.
// Grounded on the teacher's utils/cache.go pattern (periodic background
// refresh guarding an in-memory structure) and using
// github.com/deckarep/golang-set/v2 for the membership set itself, as
// luxfi/evm's go.mod already carries that dependency.
package listcache

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/luxfi/solsniper/log"
)

// ErrListReload is wrapped around any error encountered during a background
// reload (spec §7 "List-reload-error"). It is logged, never propagated: the
// previous snapshot remains in use.
var ErrListReload = errors.New("listcache: reload failed")

// ErrReadOnly is returned by Add on a cache constructed with AppendOnly(false)
// (the allow list is read-only per spec §4.1).
var ErrReadOnly = errors.New("listcache: cache is read-only")

const defaultReloadInterval = 5 * time.Minute

// entry is one parsed line: an address, optionally annotated with a note.
type entry struct {
	Address string
	Note    string
	HasNote bool
}

// Cache is a file-backed set of addresses, refreshed periodically.
type Cache struct {
	path           string
	appendOnly     bool
	reloadInterval time.Duration

	snapshot atomic.Pointer[map[string]entry]

	stop chan struct{}
	done chan struct{}
}

// Option configures a Cache at construction.
type Option func(*Cache)

// AppendOnly marks the cache as append-only (the deny list); Add is
// rejected with ErrReadOnly otherwise.
func AppendOnly(v bool) Option {
	return func(c *Cache) { c.appendOnly = v }
}

// ReloadInterval overrides the default 5-minute reload period.
func ReloadInterval(d time.Duration) Option {
	return func(c *Cache) { c.reloadInterval = d }
}

// New constructs a Cache over path. Call Init to populate it synchronously
// and start the periodic reload goroutine.
func New(path string, opts ...Option) *Cache {
	c := &Cache{
		path:           path,
		reloadInterval: defaultReloadInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	empty := map[string]entry{}
	c.snapshot.Store(&empty)
	return c
}

// Init synchronously reads the file, populates the set, and starts the
// periodic reload loop (spec §4.1 "On construction, start a 5-minute
// periodic reload").
func (c *Cache) Init() error {
	if err := c.reload(); err != nil {
		return err
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.reloadLoop()
	return nil
}

// Close stops the background reload goroutine.
func (c *Cache) Close() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	<-c.done
}

func (c *Cache) reloadLoop() {
	defer close(c.done)
	ticker := time.NewTicker(c.reloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.reload(); err != nil {
				log.Warn("listcache: reload failed, keeping previous snapshot", "path", c.path, "error", err)
			}
		}
	}
}

// reload re-reads the entire file and atomically replaces the in-memory
// set. If the file is missing, it is created empty (spec §4.1).
func (c *Cache) reload() error {
	f, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		if cerr := c.createEmpty(); cerr != nil {
			return fmt.Errorf("%w: %v", ErrListReload, cerr)
		}
		empty := map[string]entry{}
		c.snapshot.Store(&empty)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListReload, err)
	}
	defer f.Close()

	next := map[string]entry{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		e, perr := parseLine(line)
		if perr != nil {
			log.Warn("listcache: skipping malformed line", "path", c.path, "error", perr)
			continue
		}
		next[e.Address] = e
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrListReload, err)
	}

	c.snapshot.Store(&next)
	return nil
}

func (c *Cache) createEmpty() error {
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

func parseLine(line string) (entry, error) {
	address, rest, hasNote := strings.Cut(line, ",")
	address = strings.TrimSpace(address)
	if !hasNote {
		return entry{Address: address}, nil
	}
	var note string
	if err := json.Unmarshal([]byte(rest), &note); err != nil {
		return entry{}, fmt.Errorf("invalid note for %s: %w", address, err)
	}
	return entry{Address: address, Note: note, HasNote: true}, nil
}

// IsInList is a constant-time membership test against the current snapshot
// (spec §4.1).
func (c *Cache) IsInList(address string) bool {
	snap := *c.snapshot.Load()
	_, ok := snap[address]
	return ok
}

// Add appends address (with an optional note) to the backing file and
// inserts it into the in-memory set. A no-op if address is already present.
// Returns ErrReadOnly if the cache was not constructed with AppendOnly(true)
// (spec §4.1 "add(address, note?) (deny list only)").
func (c *Cache) Add(address string, note ...string) error {
	if !c.appendOnly {
		return ErrReadOnly
	}
	if c.IsInList(address) {
		log.Warn("listcache: address already present, skipping append", "path", c.path, "address", address)
		return nil
	}

	var (
		hasNote bool
		noteVal string
	)
	if len(note) > 0 && note[0] != "" {
		hasNote = true
		noteVal = note[0]
	}

	line := address
	if hasNote {
		encoded, err := json.Marshal(noteVal)
		if err != nil {
			return err
		}
		line = fmt.Sprintf("%s,%s", address, encoded)
	}

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListReload, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrListReload, err)
	}

	old := *c.snapshot.Load()
	next := make(map[string]entry, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[address] = entry{Address: address, Note: noteVal, HasNote: hasNote}
	c.snapshot.Store(&next)
	return nil
}

// Addresses returns a snapshot of every address currently cached, as a set.
// Useful for round-trip comparisons in tests (spec §8 "Round-trip laws").
func (c *Cache) Addresses() mapset.Set[string] {
	snap := *c.snapshot.Load()
	s := mapset.NewThreadUnsafeSet[string]()
	for addr := range snap {
		s.Add(addr)
	}
	return s
}
