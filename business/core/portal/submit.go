package portal

import (
	"context"
	"fmt"

	"github.com/ardanlabs/waveportal/foundation/waveportal"
	"github.com/ethereum/go-ethereum/common"
)

// PendingTx is the handle for a wave transaction that was accepted by the
// network and is waiting to be mined.
type PendingTx struct {
	hash common.Hash
	done chan struct{}
	err  error
}

// Hash returns the transaction hash.
func (pt *PendingTx) Hash() common.Hash {
	return pt.hash
}

// Done is closed once the confirmation has resolved.
func (pt *PendingTx) Done() <-chan struct{} {
	return pt.done
}

// Wait blocks until the transaction is mined and the counter refreshed, or
// the confirmation failed.
func (pt *PendingTx) Wait(ctx context.Context) error {
	select {
	case <-pt.done:
		return pt.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================

// Submit sends a wave with the specified message from the account in
// session. The portal is marked pending until the transaction is mined,
// which is tracked in the background. While pending no other wave
// is accepted. A send that fails restores the pending flag and the draft
// held before the call.
func (p *Portal) Submit(ctx context.Context, message string) (*PendingTx, error) {
	provider, err := p.wallet.Provider()
	if err != nil {
		p.evHandler("portal: Submit: ethereum provider doesn't exist")
		return nil, ErrProviderAbsent
	}

	p.mu.Lock()
	switch {
	case p.account == nil:
		p.mu.Unlock()
		return nil, ErrNotConnected

	case p.pending:
		p.mu.Unlock()
		return nil, ErrPending
	}

	account := *p.account
	prevDraft := p.draft
	p.pending = true
	p.draft = message
	p.mu.Unlock()

	p.publish(KindPending, nil)

	opts, err := provider.Transactor(ctx, account, p.chainID)
	if err != nil {
		p.evHandler("portal: Submit: ERROR: %s", err)
		p.revert(prevDraft)
		return nil, fmt.Errorf("building signer: %w", err)
	}
	opts.GasLimit = p.gasLimit

	tx, err := p.contract.Wave(ctx, opts, message)
	if err != nil {
		p.evHandler("portal: Submit: ERROR: %s", err)
		p.revert(prevDraft)
		return nil, fmt.Errorf("sending wave: %w", err)
	}

	p.evHandler("portal: Submit: mining: tx[%s]", tx.Hash())

	pt := PendingTx{
		hash: tx.Hash(),
		done: make(chan struct{}),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(pt.done)

		pt.err = p.confirm(tx)
	}()

	return &pt, nil
}

// Wave submits a wave and waits for it to be mined.
func (p *Portal) Wave(ctx context.Context, message string) (common.Hash, error) {
	pt, err := p.Submit(ctx, message)
	if err != nil {
		return common.Hash{}, err
	}

	if err := pt.Wait(ctx); err != nil {
		return pt.Hash(), err
	}

	return pt.Hash(), nil
}

// =============================================================================

// confirm waits for the transaction to be mined, then refreshes the counter
// and clears the draft.
func (p *Portal) confirm(tx waveportal.Transaction) error {
	_, err := tx.Wait(p.ctx)
	p.setPending(false)

	if err != nil {
		p.evHandler("portal: confirm: ERROR: tx[%s]: %s", tx.Hash(), err)
		return fmt.Errorf("confirming wave: %w", err)
	}

	p.evHandler("portal: confirm: mined: tx[%s]", tx.Hash())

	total, err := p.readTotal(p.ctx)
	if err != nil {
		p.evHandler("portal: confirm: ERROR: %s", err)
		return err
	}

	p.evHandler("portal: confirm: retrieved total wave count: %d", total)

	p.mu.Lock()
	p.total = total
	p.draft = ""
	p.mu.Unlock()

	p.publish(KindTotal, nil)

	return nil
}

func (p *Portal) setPending(pending bool) {
	p.mu.Lock()
	p.pending = pending
	p.mu.Unlock()

	p.publish(KindPending, nil)
}

// revert returns to idle with the draft held before a failed send.
func (p *Portal) revert(draft string) {
	p.mu.Lock()
	p.pending = false
	p.draft = draft
	p.mu.Unlock()

	p.publish(KindPending, nil)
}
