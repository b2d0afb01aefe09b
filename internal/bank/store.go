// Package bank holds the account store: an ordered, capacity-bounded
// collection of accounts with lookups and balance mutations by account ID.
package bank

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/willfong/bankmgr/internal/config"
	"github.com/willfong/bankmgr/internal/models"
	"github.com/willfong/bankmgr/internal/utils"
)

// TransferResult reports both balances after a completed transfer
type TransferResult struct {
	Amount           decimal.Decimal
	NewSourceBalance decimal.Decimal
	NewDestBalance   decimal.Decimal
	SourceID         int
	DestID           int
}

// Store owns every account. Callers only ever see copies; all mutations go
// through the store by account ID.
type Store struct {
	mu       sync.Mutex
	accounts []*models.Account
	config   config.BankConfig
	rng      *utils.Random
}

// NewStore creates an empty store. Account IDs are drawn from rng.
func NewStore(cfg config.BankConfig, rng *utils.Random) *Store {
	return &Store{
		accounts: make([]*models.Account, 0, cfg.MaxAccounts),
		config:   cfg,
		rng:      rng,
	}
}

// Create opens a new account with a freshly drawn, unused ID and returns a copy of it.
func (s *Store) Create(username, password string, accountType models.AccountType, initialBalance decimal.Decimal) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.accounts) >= s.config.MaxAccounts {
		return models.Account{}, ErrCapacityExceeded
	}

	id, ok := s.rng.UniqueIntRange(s.config.IDMin, s.config.IDMax, s.config.IDDrawAttempts, s.idTaken)
	if !ok {
		return models.Account{}, ErrIDSpaceExhausted
	}

	a := &models.Account{
		ID:       id,
		Username: username,
		Password: password,
		Type:     accountType,
		Balance:  initialBalance,
	}
	s.accounts = append(s.accounts, a)
	return *a, nil
}

// FindByID returns the first account with the given ID.
func (s *Store) FindByID(id int) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.byID(id)
	if a == nil {
		return models.Account{}, ErrAccountNotFound
	}
	return *a, nil
}

// FindByCredentials returns the first account whose username and password both match.
func (s *Store) FindByCredentials(username, password string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.MatchesCredentials(username, password) {
			return *a, nil
		}
	}
	return models.Account{}, ErrAccountNotFound
}

// Deposit credits the account and returns its new balance.
func (s *Store) Deposit(id int, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.byID(id)
	if a == nil {
		return decimal.Zero, ErrAccountNotFound
	}
	return a.Deposit(amount), nil
}

// Withdraw debits the account and returns its new balance. The balance is
// left unchanged when amount exceeds it.
func (s *Store) Withdraw(id int, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.byID(id)
	if a == nil {
		return decimal.Zero, ErrAccountNotFound
	}
	return a.Withdraw(amount)
}

// Transfer moves amount from one account to another as a withdrawal followed
// by a deposit. It only proceeds when 0 < amount <= source balance; every
// check happens before the first mutation.
func (s *Store) Transfer(fromID, toID int, amount decimal.Decimal) (TransferResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.byID(fromID)
	if from == nil {
		return TransferResult{}, fmt.Errorf("source %d: %w", fromID, ErrAccountNotFound)
	}
	to := s.byID(toID)
	if to == nil {
		return TransferResult{}, fmt.Errorf("destination %d: %w", toID, ErrAccountNotFound)
	}
	if !amount.IsPositive() || !from.CanWithdraw(amount) {
		return TransferResult{}, ErrInvalidTransferAmount
	}

	srcBalance, err := from.Withdraw(amount)
	if err != nil {
		return TransferResult{}, fmt.Errorf("withdraw from %d: %w", fromID, err)
	}
	// Self-transfers read back the balance after both halves.
	destBalance := to.Deposit(amount)
	if fromID == toID {
		srcBalance = destBalance
	}

	return TransferResult{
		Amount:           amount,
		NewSourceBalance: srcBalance,
		NewDestBalance:   destBalance,
		SourceID:         fromID,
		DestID:           toID,
	}, nil
}

// UpdateCredentials replaces both username and password.
func (s *Store) UpdateCredentials(id int, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.byID(id)
	if a == nil {
		return ErrAccountNotFound
	}
	a.Username = username
	a.Password = password
	return nil
}

// Len returns the number of stored accounts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// Cap returns the configured maximum number of accounts.
func (s *Store) Cap() int {
	return s.config.MaxAccounts
}

// Accounts returns copies of all accounts in creation order.
func (s *Store) Accounts() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Account, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = *a
	}
	return out
}

// byID is a linear scan; the caller holds mu.
func (s *Store) byID(id int) *models.Account {
	for _, a := range s.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// idTaken is the collision check for new IDs; the caller holds mu.
func (s *Store) idTaken(id int) bool {
	return s.byID(id) != nil
}
