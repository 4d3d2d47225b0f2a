package main

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"github.com/Hussein-Mazeh/shroombrella/internal/logger"
)

// clipboardSink copies revealed passwords and clears them again after ttl.
type clipboardSink struct {
	mu    sync.Mutex
	ttl   time.Duration
	log   *logger.Logger
	write func(string) error
	timer *time.Timer
}

func newClipboard(ttl time.Duration, log *logger.Logger) *clipboardSink {
	return &clipboardSink{ttl: ttl, log: log, write: writeSystemClipboard}
}

func writeSystemClipboard(text string) error {
	if clipboard.Unsupported {
		return userError{msg: "no clipboard available on this system"}
	}
	return clipboard.WriteAll(text)
}

// Copy places text on the system clipboard. The clipboard API takes a
// string, so one unwipeable copy of the secret is made here.
func (c *clipboardSink) Copy(text []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.write(string(text)); err != nil {
		return err
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.ttl > 0 {
		c.timer = time.AfterFunc(c.ttl, c.Clear)
	}
	return nil
}

// Clear empties the clipboard if this process put something there.
func (c *clipboardSink) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer == nil {
		return
	}
	c.timer.Stop()
	c.timer = nil
	if err := c.write(""); err != nil {
		c.log.Warn().Err(err).Msg("clear clipboard")
	}
}
