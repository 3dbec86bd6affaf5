/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package logsink is a process-wide logging channel: producers push
// records and never block on the write; a single consumer goroutine
// formats each record as an RFC5424 message and writes it out. Unlike a
// direct writer, the channel is bounded and drops the oldest queued
// record on saturation, since log pressure must never back-propagate
// into request handling.
package logsink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crewjam/rfc5424"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	CRITICAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

func (l Level) priority() rfc5424.Priority {
	switch l {
	case DEBUG:
		return rfc5424.User | rfc5424.Debug
	case INFO:
		return rfc5424.User | rfc5424.Info
	case WARN:
		return rfc5424.User | rfc5424.Warning
	case ERROR:
		return rfc5424.User | rfc5424.Error
	case CRITICAL:
		return rfc5424.User | rfc5424.Crit
	}
	return rfc5424.User | rfc5424.Debug
}

// DefaultCapacity bounds the pending-record queue. Once full, the oldest
// queued record is dropped to make room for the new one -- producers
// never block and never observe an error from Debug/Info/Warn/Error/Critical.
const DefaultCapacity = 4096

type entry struct {
	ts    time.Time
	lvl   Level
	loc   string
	msg   string
	sds   []rfc5424.SDParam
}

// Sink is a bounded, drop-oldest logging channel with a single background
// consumer.
type Sink struct {
	w        io.Writer
	hostname string
	appname  string

	mu      sync.Mutex
	ring     []entry
	capacity int
	notEmpty chan struct{}

	dropped atomic.Uint64

	closed chan struct{}
	once   sync.Once
	done   chan struct{}
}

// New starts a Sink writing formatted records to w, with the given
// appname used as the RFC5424 APP-NAME field.
func New(w io.Writer, appname string) *Sink {
	return NewCapacity(w, appname, DefaultCapacity)
}

// NewCapacity is New with an explicit queue capacity, mainly for tests.
func NewCapacity(w io.Writer, appname string, capacity int) *Sink {
	hostname, _ := os.Hostname()
	s := &Sink{
		w:        w,
		hostname: hostname,
		appname:  appname,
		capacity: capacity,
		notEmpty: make(chan struct{}, 1),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.consume()
	return s
}

// Close stops the consumer once the currently queued records are drained.
func (s *Sink) Close() error {
	s.once.Do(func() { close(s.closed) })
	<-s.done
	return nil
}

// Dropped reports how many records have been evicted for capacity since
// startup.
func (s *Sink) Dropped() uint64 { return s.dropped.Load() }

func (s *Sink) push(e entry) {
	s.mu.Lock()
	if len(s.ring) >= s.capacity && len(s.ring) > 0 {
		s.ring = s.ring[1:]
		s.dropped.Add(1)
	}
	s.ring = append(s.ring, e)
	s.mu.Unlock()
	select {
	case s.notEmpty <- struct{}{}:
	default:
	}
}

func (s *Sink) consume() {
	defer close(s.done)
	for {
		s.drain()
		select {
		case <-s.closed:
			s.drain()
			return
		case <-s.notEmpty:
		}
	}
}

func (s *Sink) drain() {
	for {
		s.mu.Lock()
		if len(s.ring) == 0 {
			s.mu.Unlock()
			return
		}
		e := s.ring[0]
		s.ring = s.ring[1:]
		s.mu.Unlock()
		s.write(e)
	}
}

func (s *Sink) write(e entry) {
	b, err := rfc5424.Message{
		Priority:  e.lvl.priority(),
		Timestamp: e.ts,
		Hostname:  trimLength(255, s.hostname),
		AppName:   trimLength(48, s.appname),
		MessageID: trimPathLength(32, e.loc),
		Message:   []byte(e.msg),
		StructuredData: sdOf(e.sds),
	}.MarshalBinary()
	if err != nil {
		return
	}
	io.WriteString(s.w, string(b))
	io.WriteString(s.w, "\n")
}

func sdOf(sds []rfc5424.SDParam) []rfc5424.StructuredData {
	if len(sds) == 0 {
		return nil
	}
	return []rfc5424.StructuredData{{ID: "logrep@1", Parameters: sds}}
}

func (s *Sink) log(depth int, lvl Level, msg string, sds ...rfc5424.SDParam) {
	s.push(entry{ts: time.Now(), lvl: lvl, loc: callLoc(depth), msg: msg, sds: sds})
}

func (s *Sink) Debug(msg string, sds ...rfc5424.SDParam)    { s.log(3, DEBUG, msg, sds...) }
func (s *Sink) Info(msg string, sds ...rfc5424.SDParam)     { s.log(3, INFO, msg, sds...) }
func (s *Sink) Warn(msg string, sds ...rfc5424.SDParam)     { s.log(3, WARN, msg, sds...) }
func (s *Sink) Error(msg string, sds ...rfc5424.SDParam)    { s.log(3, ERROR, msg, sds...) }
func (s *Sink) Critical(msg string, sds ...rfc5424.SDParam) { s.log(3, CRITICAL, msg, sds...) }

// KV builds a single structured-data parameter, the logsink equivalent of
// the teacher's log.KV helper.
func KV(name string, v interface{}) rfc5424.SDParam {
	return rfc5424.SDParam{Name: name, Value: fmt.Sprint(v)}
}

// KVErr is KV("error", err).
func KVErr(err error) rfc5424.SDParam {
	return KV("error", err)
}

func callLoc(depth int) string {
	if _, file, line, ok := runtime.Caller(depth); ok {
		dir, file := filepath.Split(file)
		file = filepath.Join(filepath.Base(dir), file)
		return fmt.Sprintf("%s:%d", file, line)
	}
	return ""
}

func trimLength(n int, s string) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func trimPathLength(n int, s string) string {
	if len(s) <= n {
		return s
	}
	return trimLength(n, filepath.Base(s))
}
