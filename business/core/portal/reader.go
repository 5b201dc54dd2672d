package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/waveportal/foundation/retry"
	"github.com/ardanlabs/waveportal/foundation/waveportal"
	"github.com/ethereum/go-ethereum/common"
)

// Load reads the wave counter and then the full wave log from the contract.
// A failure leaves the state of the failing step untouched.
func (p *Portal) Load(ctx context.Context) error {
	total, err := p.readTotal(ctx)
	if err != nil {
		p.evHandler("portal: Load: ERROR: %s", err)
		return err
	}

	p.evHandler("portal: Load: retrieved total wave count: %d", total)
	p.setTotal(total)

	var waves []waveportal.Wave
	fn := func() error {
		var err error
		waves, err = p.contract.AllWaves(ctx)
		return err
	}

	if err := retry.Do(ctx, p.retry, fn, p.notify("AllWaves")); err != nil {
		p.evHandler("portal: Load: ERROR: %s", err)
		return fmt.Errorf("reading waves: %w", err)
	}

	records := make([]Record, len(waves))
	for i, w := range waves {
		records[i] = toRecord(w)
	}

	p.evHandler("portal: Load: retrieved waves: %d", len(records))
	p.replaceRecords(records)

	return nil
}

// =============================================================================

func (p *Portal) readTotal(ctx context.Context) (uint64, error) {
	var total uint64
	fn := func() error {
		var err error
		total, err = p.contract.TotalWaves(ctx)
		return err
	}

	if err := retry.Do(ctx, p.retry, fn, p.notify("TotalWaves")); err != nil {
		return 0, fmt.Errorf("reading total: %w", err)
	}

	return total, nil
}

func (p *Portal) notify(call string) func(error, time.Duration) {
	return func(err error, wait time.Duration) {
		p.evHandler("portal: %s: WARNING: %s: retrying in %v", call, err, wait)
	}
}

func (p *Portal) setTotal(total uint64) {
	p.mu.Lock()
	p.total = total
	p.mu.Unlock()

	p.publish(KindTotal, nil)
}

// replaceRecords installs the bulk read as the wave log. Records that came
// in through the subscription and are not part of the bulk read are kept
// after it, in arrival order.
func (p *Portal) replaceRecords(bulk []Record) {
	p.mu.Lock()

	keys := make(map[common.Hash]struct{}, len(bulk))
	list := make([]Record, 0, len(bulk))
	for _, r := range bulk {
		keys[r.Key()] = struct{}{}
		list = append(list, r)
	}

	for _, r := range p.records {
		if !r.Live() {
			continue
		}

		k := r.Key()
		if _, exists := keys[k]; exists {
			continue
		}

		keys[k] = struct{}{}
		list = append(list, r)
	}

	p.records = list
	p.keys = keys

	p.mu.Unlock()

	p.publish(KindLoad, nil)
}

// appendRecord adds a record to the end of the log unless an identical
// wave is already present.
func (p *Portal) appendRecord(r Record) bool {
	p.mu.Lock()

	k := r.Key()
	if _, exists := p.keys[k]; exists {
		p.mu.Unlock()
		return false
	}

	p.keys[k] = struct{}{}
	p.records = append(p.records, r)

	p.mu.Unlock()

	p.publish(KindWave, &r)

	return true
}
