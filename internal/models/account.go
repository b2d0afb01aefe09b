package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType represents the type of bank account
type AccountType string

const (
	AccountTypeSaving  AccountType = "saving"
	AccountTypeCurrent AccountType = "current"
)

var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

// InsufficientFundsError carries the amounts involved in a rejected withdrawal.
// It matches ErrInsufficientFunds with errors.Is.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available=%s required=%s", e.Available, e.Required)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Label returns the display form, e.g. "Saving".
func (t AccountType) Label() string {
	switch t {
	case AccountTypeSaving:
		return "Saving"
	case AccountTypeCurrent:
		return "Current"
	default:
		return string(t)
	}
}

// ParseAccountType accepts "saving" or "current" in any letter case.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(strings.ToLower(strings.TrimSpace(s))) {
	case AccountTypeSaving:
		return AccountTypeSaving, nil
	case AccountTypeCurrent:
		return AccountTypeCurrent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
	}
}

// Account represents a bank account
type Account struct {
	// Four-digit account number, assigned by the store
	ID int `json:"id"`

	// Credentials, stored and compared as plain text
	Username string `json:"username"`
	Password string `json:"-"`

	Type    AccountType     `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

// Deposit adds amount to the balance and returns the new balance.
// Any amount is accepted, including zero and negatives.
func (a *Account) Deposit(amount decimal.Decimal) decimal.Decimal {
	a.Balance = a.Balance.Add(amount)
	return a.Balance
}

// Withdraw subtracts amount from the balance unless it exceeds the balance.
func (a *Account) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.GreaterThan(a.Balance) {
		return a.Balance, &InsufficientFundsError{Available: a.Balance, Required: amount}
	}
	a.Balance = a.Balance.Sub(amount)
	return a.Balance, nil
}

// CanWithdraw checks if the account can support a withdrawal of the given amount
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(a.Balance)
}

// MatchesCredentials reports whether both username and password are equal.
func (a *Account) MatchesCredentials(username, password string) bool {
	return a.Username == username && a.Password == password
}
