package cinevault

import (
	"fmt"
)

// bpsDenominator is the basis-point scale for the settlement split.
const bpsDenominator = 10000

// settlementEngine plans fund movements for uploads and rentals. It is
// stateless: it validates the offered funds and produces the atomic ledger
// entry batch the repository applies. It never moves value itself.
type settlementEngine struct {
	creatorShareBps int64
}

// splitAmount divides amount into creator and platform shares at the given
// basis-point ratio. The integer-division remainder goes to the platform, so
// creator+platform always equals amount exactly. The two-step form avoids
// overflow for amounts where amount*bps would exceed int64.
func splitAmount(amount, bps int64) (creator, platform int64) {
	creator = (amount/bpsDenominator)*bps + (amount%bpsDenominator)*bps/bpsDenominator
	platform = amount - creator
	return creator, platform
}

// validateOffer checks the offered funds against the required amount for the
// given payment token and returns the refundable excess.
//
// Native path: the payer must offer at least the required amount; the excess
// is refunded. Token path: the payer must offer zero native currency; the
// required amount is later taken from the payer's token balance.
func (e *settlementEngine) validateOffer(offered, required int64, token string) (refund int64, err error) {
	if offered < 0 || required < 0 {
		return 0, fmt.Errorf("%w: negative amount", ErrInvalidInput)
	}
	if token == NativeToken {
		if offered < required {
			return 0, fmt.Errorf("%w: offered %d, required %d", ErrInsufficientFunds, offered, required)
		}
		return offered - required, nil
	}
	if offered != 0 {
		return 0, fmt.Errorf("%w: native currency sent with token payment", ErrInvalidInput)
	}
	return 0, nil
}

// planFee plans the collection of a flat fee into the platform escrow. Fees
// are always paid in native currency. The payer's full offer is debited and
// the excess credited back, so the refund is an explicit transfer that fails
// the batch if the payer's balance cannot cover the offer.
func (e *settlementEngine) planFee(payer string, offered, required int64) (*Settlement, error) {
	refund, err := e.validateOffer(offered, required, NativeToken)
	if err != nil {
		return nil, &SettlementError{Token: NativeToken, Op: "fee", Err: err}
	}

	s := &Settlement{PlatformShare: required, Refund: refund}
	if offered > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: NativeToken, Account: payer, Delta: -offered})
	}
	if refund > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: NativeToken, Account: payer, Delta: refund})
	}
	if required > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: NativeToken, Account: PlatformAccount, Delta: required})
	}
	return s, nil
}

// planSplit plans a rental payment settled locally: the required amount is
// taken from the payer and divided between the creator and platform escrow at
// the engine's basis-point ratio.
func (e *settlementEngine) planSplit(payer, creator string, offered, required int64, token string) (*Settlement, error) {
	refund, err := e.validateOffer(offered, required, token)
	if err != nil {
		return nil, &SettlementError{Token: token, Op: "split", Err: err}
	}

	creatorShare, platformShare := splitAmount(required, e.creatorShareBps)
	s := &Settlement{CreatorShare: creatorShare, PlatformShare: platformShare, Refund: refund}

	if token == NativeToken && offered > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: token, Account: payer, Delta: -offered})
		if refund > 0 {
			s.Entries = append(s.Entries, LedgerEntry{Token: token, Account: payer, Delta: refund})
		}
	} else if token != NativeToken && required > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: token, Account: payer, Delta: -required})
	}
	if creatorShare > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: token, Account: creator, Delta: creatorShare})
	}
	if platformShare > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: token, Account: PlatformAccount, Delta: platformShare})
	}
	return s, nil
}

// planForward plans a rental payment forwarded in full to the external
// registry's licensing entry point. The registry escrow account stands in for
// the funds handed to the registry.
func (e *settlementEngine) planForward(payer string, offered, required int64, token string) (*Settlement, error) {
	refund, err := e.validateOffer(offered, required, token)
	if err != nil {
		return nil, &SettlementError{Token: token, Op: "forward", Err: err}
	}

	s := &Settlement{Refund: refund}
	if token == NativeToken && offered > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: token, Account: payer, Delta: -offered})
		if refund > 0 {
			s.Entries = append(s.Entries, LedgerEntry{Token: token, Account: payer, Delta: refund})
		}
	} else if token != NativeToken && required > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: token, Account: payer, Delta: -required})
	}
	if required > 0 {
		s.Entries = append(s.Entries, LedgerEntry{Token: token, Account: RegistryAccount, Delta: required})
	}
	return s, nil
}

// planWithdrawal plans moving accumulated fees from escrow to the treasury.
// The caller must have verified the escrow balance; the repository still
// rejects the batch if the balance has shrunk since.
func (e *settlementEngine) planWithdrawal(token string, amount int64) (*Settlement, error) {
	if amount <= 0 {
		return nil, &SettlementError{Token: token, Op: "withdraw", Err: fmt.Errorf("%w: amount must be positive", ErrInvalidInput)}
	}
	return &Settlement{
		Entries: []LedgerEntry{
			{Token: token, Account: PlatformAccount, Delta: -amount},
			{Token: token, Account: TreasuryAccount, Delta: amount},
		},
	}, nil
}
