package core

// TransactionEffect returns the signed cent effect of tx on the given
// wallet. Income credits and expense debits the primary wallet; a transfer
// debits the source and credits the destination, so summed over both sides
// it conserves value exactly. Wallets the transaction does not touch get 0.
func TransactionEffect(tx Transaction, walletID string) int64 {
	var effect int64
	if tx.WalletID == walletID {
		switch tx.Type {
		case Income:
			effect += tx.Amount.Cents
		case Expense, Transfer:
			effect -= tx.Amount.Cents
		}
	}
	if tx.Type == Transfer && tx.ToWalletID == walletID {
		effect += tx.Amount.Cents
	}
	return effect
}

// DeriveBalance folds every transaction effect onto the wallet's stored
// baseline. Integer summation over a commutative set: the result does not
// depend on transaction order, and editing a transaction needs no inverse
// bookkeeping because nothing is mutated on write.
func DeriveBalance(w Wallet, txs []Transaction) Money {
	cents := w.Balance.Cents
	for _, tx := range txs {
		cents += TransactionEffect(tx, w.ID)
	}
	return Money{Cents: cents}
}
