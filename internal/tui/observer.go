package tui

import (
	"github.com/mmcdole/swipetrack/internal/search"
)

// ChannelObserver adapts debouncer callbacks to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan search.Ticket
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan search.Ticket, 1)}
}

// OnFire sends the ticket to the channel, replacing an unread one.
func (o *ChannelObserver) OnFire(t search.Ticket) {
	for {
		select {
		case o.ch <- t:
			return
		default:
		}
		select {
		case <-o.ch:
		default:
		}
	}
}

// C returns the receive side
func (o *ChannelObserver) C() <-chan search.Ticket {
	return o.ch
}
