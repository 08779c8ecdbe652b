package base

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/product-page-extractor/config"
)

func lifecycle(frame, name string) *page.EventLifecycleEvent {
	return &page.EventLifecycleEvent{FrameID: cdp.FrameID(frame), Name: name}
}

func signalled(t *idleTracker) bool {
	select {
	case <-t.signal:
		return true
	default:
		return false
	}
}

func TestIdleTracker_MainFrameIdle(t *testing.T) {
	tr := newIdleTracker()
	tr.setMainFrame("MAIN")

	tr.handle(lifecycle("MAIN", "networkIdle"))
	assert.True(t, signalled(tr))
}

func TestIdleTracker_IgnoresIframes(t *testing.T) {
	tr := newIdleTracker()
	tr.setMainFrame("MAIN")

	tr.handle(lifecycle("AD-IFRAME", "networkIdle"))
	assert.False(t, signalled(tr))

	tr.handle(lifecycle("MAIN", "networkIdle"))
	tr.handle(lifecycle("AD-IFRAME", "init"))
	assert.True(t, signalled(tr))
}

func TestIdleTracker_InitClearsEarlierIdle(t *testing.T) {
	tr := newIdleTracker()
	tr.setMainFrame("MAIN")

	tr.handle(lifecycle("MAIN", "networkIdle"))
	tr.handle(lifecycle("MAIN", "init"))
	assert.False(t, signalled(tr))
}

func TestIdleTracker_NothingBeforeMainFrameKnown(t *testing.T) {
	tr := newIdleTracker()
	tr.handle(lifecycle("MAIN", "networkIdle"))
	tr.handle(&page.EventLoadEventFired{})
	assert.False(t, signalled(tr))
}

func TestWaitForIdle(t *testing.T) {
	c := NewChromeDP(config.BrowserConfig{IdleTimeout: 20 * time.Millisecond})

	// Timing out is not an error.
	require.NoError(t, c.waitForIdle(context.Background(), make(chan struct{})))

	ready := make(chan struct{}, 1)
	ready <- struct{}{}
	require.NoError(t, c.waitForIdle(context.Background(), ready))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewChromeDP(config.BrowserConfig{IdleTimeout: time.Minute})
	err := slow.waitForIdle(ctx, make(chan struct{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}
