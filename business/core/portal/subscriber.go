package portal

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardanlabs/waveportal/foundation/waveportal"
	"github.com/ethereum/go-ethereum/event"
)

// Subscription is the handle for the live NewWave listener. It must be
// closed to release the chain subscription.
type Subscription struct {
	sub  event.Subscription
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// Subscribe registers a live listener for NewWave events. Every event is
// appended to the wave log until the subscription is closed, the context is
// done or the chain subscription fails.
func (p *Portal) Subscribe(ctx context.Context) (*Subscription, error) {
	sink := make(chan waveportal.NewWave, 16)

	sub, err := p.contract.WatchNewWave(ctx, sink)
	if err != nil {
		p.evHandler("portal: Subscribe: ERROR: %s", err)
		return nil, fmt.Errorf("subscribing: %w", err)
	}

	s := Subscription{
		sub:  sub,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	p.evHandler("portal: Subscribe: listening for %s", waveportal.EventNewWave)

	go func() {
		defer close(s.done)
		defer p.evHandler("portal: Subscribe: stopped")

		for {
			select {
			case evt := <-sink:
				p.receive(evt)

			case err := <-sub.Err():
				if err != nil {
					p.evHandler("portal: Subscribe: ERROR: %s", err)
				}
				return

			case <-s.quit:
				return

			case <-ctx.Done():
				return
			}
		}
	}()

	return &s, nil
}

// Close releases the chain subscription and waits for the listener to
// return. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.sub.Unsubscribe()
		close(s.quit)
	})

	<-s.done
}

// Done is closed when the listener has returned.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// receive applies a NewWave event to the wave log.
func (p *Portal) receive(evt waveportal.NewWave) {
	if evt.Raw.Removed {
		p.evHandler("portal: NewWave: removed by reorg: tx[%s]", evt.Raw.TxHash)
		return
	}

	r := eventToRecord(evt)

	p.evHandler("portal: NewWave: from[%s]: timestamp[%d]: message[%s]", r.Address, r.Timestamp.Unix(), r.Message)

	if !p.appendRecord(r) {
		p.evHandler("portal: NewWave: duplicate dropped: tx[%s]", evt.Raw.TxHash)
	}
}
