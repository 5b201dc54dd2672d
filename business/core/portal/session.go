package portal

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Mount performs the startup sequence. The counter and the wave log are
// read first, then an already authorized account is looked up without
// prompting the user.
func (p *Portal) Mount(ctx context.Context) error {
	p.evHandler("portal: Mount: started")
	defer p.evHandler("portal: Mount: completed")

	if err := p.Load(ctx); err != nil {
		return err
	}

	provider, err := p.wallet.Provider()
	if err != nil {
		p.evHandler("portal: Mount: make sure you have a wallet")
		return nil
	}

	accounts, err := provider.Accounts(ctx)
	if err != nil {
		p.evHandler("portal: Mount: ERROR: %s", err)
		return fmt.Errorf("querying accounts: %w", err)
	}

	if len(accounts) == 0 {
		p.evHandler("portal: Mount: no authorized account found")
		return nil
	}

	p.evHandler("portal: Mount: found an authorized account: %s", accounts[0])
	p.setAccount(accounts[0])

	return nil
}

// Connect asks the wallet to authorize accounts and places the first one
// in session.
func (p *Portal) Connect(ctx context.Context) (common.Address, error) {
	provider, err := p.wallet.Provider()
	if err != nil {
		p.evHandler("portal: Connect: get a wallet")
		return common.Address{}, ErrProviderAbsent
	}

	accounts, err := provider.RequestAccounts(ctx)
	if err != nil {
		p.evHandler("portal: Connect: ERROR: %s", err)
		return common.Address{}, fmt.Errorf("requesting accounts: %w", err)
	}

	if len(accounts) == 0 {
		p.evHandler("portal: Connect: ERROR: %s", ErrNoAccounts)
		return common.Address{}, ErrNoAccounts
	}

	p.evHandler("portal: Connect: connected: %s", accounts[0])
	p.setAccount(accounts[0])

	return accounts[0], nil
}

func (p *Portal) setAccount(account common.Address) {
	p.mu.Lock()
	p.account = &account
	p.mu.Unlock()

	p.publish(KindAccount, nil)
}
