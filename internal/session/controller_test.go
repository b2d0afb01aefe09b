package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/willfong/bankmgr/internal/bank"
	"github.com/willfong/bankmgr/internal/config"
	"github.com/willfong/bankmgr/internal/models"
	"github.com/willfong/bankmgr/internal/observability"
	"github.com/willfong/bankmgr/internal/ui"
	"github.com/willfong/bankmgr/internal/utils"
	"go.uber.org/zap"
)

type harness struct {
	ctrl    *Controller
	store   *bank.Store
	metrics *observability.Metrics
	out     *bytes.Buffer
}

func newHarness(t *testing.T, cfg config.BankConfig, input string) *harness {
	t.Helper()

	out := &bytes.Buffer{}
	u := ui.New(out)
	store := bank.NewStore(cfg, utils.NewRandom(42))
	metrics := observability.NewMetrics()
	console := NewConsole(strings.NewReader(input), u)

	return &harness{
		ctrl:    NewController(store, console, u, metrics, zap.NewNop()),
		store:   store,
		metrics: metrics,
		out:     out,
	}
}

// withInput replaces the console input, keeping store and metrics.
func (h *harness) withInput(input string) {
	h.ctrl.console = NewConsole(strings.NewReader(input), h.ctrl.ui)
}

func (h *harness) create(t *testing.T, username, password string, balance string) models.Account {
	t.Helper()
	acct, err := h.store.Create(username, password, models.AccountTypeSaving, decimal.RequireFromString(balance))
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", username, err)
	}
	return acct
}

func (h *harness) balance(t *testing.T, id int) string {
	t.Helper()
	acct, err := h.store.FindByID(id)
	if err != nil {
		t.Fatalf("FindByID(%d) failed: %v", id, err)
	}
	return acct.Balance.String()
}

func (h *harness) expectOutput(t *testing.T, lines ...string) {
	t.Helper()
	out := h.out.String()
	for _, line := range lines {
		if !strings.Contains(out, line) {
			t.Errorf("Expected output to contain %q\n--- output ---\n%s", line, out)
		}
	}
}

func TestRunWorkedExample(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "")
	alice := h.create(t, "alice", "p1", "100")
	bob := h.create(t, "bob", "p2", "0")

	h.withInput(strings.Join([]string{
		"1", "alice", "p1",
		"1", "50",
		"2", "200",
		"3", fmt.Sprint(bob.ID), "100",
		"5",
		"1", "alice", "p1",
		"5",
		"1", "alice", "wrong",
		"3",
	}, "\n") + "\n")

	if err := h.ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	h.expectOutput(t,
		"\n1. Login\n2. Signup\n3. Exit\nEnter your choice: ",
		"\n1. Deposit\n2. Withdraw\n3. Transfer\n4. Account Settings\n5. Logout\nEnter your choice: ",
		"Login successful. Welcome, alice!",
		"Deposit of $50 successful. New balance: $150",
		"Insufficient funds. Withdrawal failed.",
		"Withdrawal of $100 successful. New balance: $50",
		"Deposit of $100 successful. New balance: $100",
		"Funds transferred successfully.",
		"Logging out. Goodbye, alice!",
		"Invalid username or password. Login failed.",
		"Exiting program. Have a nice day!",
	)

	if got := h.balance(t, alice.ID); got != "50" {
		t.Errorf("Expected alice balance 50, got %s", got)
	}
	if got := h.balance(t, bob.ID); got != "100" {
		t.Errorf("Expected bob balance 100, got %s", got)
	}

	if got := h.metrics.OperationCount(observability.OpLogin, observability.OutcomeSuccess); got != 2 {
		t.Errorf("Expected 2 successful logins, got %d", got)
	}
	if got := h.metrics.OperationCount(observability.OpLogin, observability.OutcomeFailure); got != 1 {
		t.Errorf("Expected 1 failed login, got %d", got)
	}
	if got := h.metrics.OperationCount(observability.OpWithdraw, observability.OutcomeFailure); got != 1 {
		t.Errorf("Expected 1 failed withdrawal, got %d", got)
	}
	if h.ctrl.State() != StateLoggedOut {
		t.Errorf("Expected LoggedOut after run, got %s", h.ctrl.State())
	}
}

func TestRunSignup(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "2\nalice\np1\nchecking\nSaving\n100\n3\n")

	if err := h.ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	accounts := h.store.Accounts()
	if len(accounts) != 1 {
		t.Fatalf("Expected 1 account, got %d", len(accounts))
	}
	acct := accounts[0]
	if acct.Type != models.AccountTypeSaving {
		t.Errorf("Expected saving account, got %s", acct.Type)
	}
	if acct.Balance.String() != "100" {
		t.Errorf("Expected balance 100, got %s", acct.Balance)
	}

	h.expectOutput(t,
		"Enter username: ",
		"Enter password: ",
		"Enter account type (Saving/Current): ",
		"You've entered the wrong option, try again with the correct option: ",
		"Enter initial balance: $",
		fmt.Sprintf("Account created successfully. Your account ID is: %d", acct.ID),
	)

	if h.ctrl.State() != StateLoggedOut {
		t.Error("Expected signup not to log the user in")
	}
	if got := h.metrics.Accounts(); got != 1 {
		t.Errorf("Expected accounts gauge 1, got %d", got)
	}
}

func TestSignupAtCapacity(t *testing.T) {
	cfg := config.DefaultConfig().Bank
	cfg.MaxAccounts = 1

	h := newHarness(t, cfg, "2\na\np\nsaving\n1\n2\nb\np\ncurrent\n2\n3\n")
	if err := h.ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	h.expectOutput(t, "Maximum number of accounts reached. Cannot create a new account.")
	if h.store.Len() != 1 {
		t.Errorf("Expected store size to stay 1, got %d", h.store.Len())
	}
	if got := h.metrics.OperationCount(observability.OpSignup, observability.OutcomeFailure); got != 1 {
		t.Errorf("Expected 1 failed signup, got %d", got)
	}
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "")
	h.create(t, "alice", "p1", "0")

	tests := []struct {
		name  string
		input string
	}{
		{"wrong password", "alice\nnope\n"},
		{"unknown user", "mallory\np1\n"},
	}

	var outputs []string
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h.out.Reset()
			h.withInput(test.input)
			if err := h.ctrl.Login(); err != nil {
				t.Fatalf("Login returned error: %v", err)
			}
			if h.ctrl.State() != StateLoggedOut {
				t.Error("Expected to stay logged out")
			}
			outputs = append(outputs, h.out.String())
		})
	}

	if len(outputs) == 2 && outputs[0] != outputs[1] {
		t.Errorf("Expected identical output, got %q and %q", outputs[0], outputs[1])
	}
}

func TestLoginSetsCurrentAccount(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "alice\np1\n")
	alice := h.create(t, "alice", "p1", "0")

	if _, ok := h.ctrl.CurrentAccountID(); ok {
		t.Error("Expected no current account before login")
	}
	if err := h.ctrl.Login(); err != nil {
		t.Fatal(err)
	}

	id, ok := h.ctrl.CurrentAccountID()
	if !ok || id != alice.ID {
		t.Errorf("Expected current account %d, got %d (ok=%v)", alice.ID, id, ok)
	}
	if h.ctrl.sessionID == "" {
		t.Error("Expected a session ID after login")
	}

	h.ctrl.Logout()
	if _, ok := h.ctrl.CurrentAccountID(); ok {
		t.Error("Expected current account cleared after logout")
	}
	h.expectOutput(t, "Logging out. Goodbye, alice!")
}

func TestPerformTransactionRequiresLogin(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "1\n")
	if err := h.ctrl.PerformTransaction(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("Expected ErrNotLoggedIn, got %v", err)
	}
}

func TestInvalidChoices(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "")
	h.create(t, "alice", "p1", "10")

	// "12" and "1x" must not be read as "1".
	h.withInput("9\n12\n1\nalice\np1\n7\n1x\n5\n3\n")
	if err := h.ctrl.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := strings.Count(h.out.String(), "Invalid choice. Please try again."); got != 4 {
		t.Errorf("Expected 4 invalid choice messages, got %d", got)
	}
}

func TestMalformedNumberReprompts(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "")
	alice := h.create(t, "alice", "p1", "10")

	h.withInput("1\nalice\np1\n1\nabc\n25.5\n5\n3\n")
	if err := h.ctrl.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.expectOutput(t,
		"Invalid number. Please try again.",
		"Deposit of $25.5 successful. New balance: $35.5",
	)
	if got := h.balance(t, alice.ID); got != "35.5" {
		t.Errorf("Expected balance 35.5, got %s", got)
	}
}

func TestTransferRejections(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "")
	alice := h.create(t, "alice", "p1", "100")
	bob := h.create(t, "bob", "p2", "5")

	h.withInput(strings.Join([]string{
		"1", "alice", "p1",
		"3", "1",
		"3", fmt.Sprint(bob.ID), "0",
		"3", fmt.Sprint(bob.ID), "-10",
		"3", fmt.Sprint(bob.ID), "100.01",
		"5", "3",
	}, "\n") + "\n")
	if err := h.ctrl.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.expectOutput(t, "Destination account not found.")
	if got := strings.Count(h.out.String(), "Invalid transfer amount or insufficient funds."); got != 3 {
		t.Errorf("Expected 3 rejected transfers, got %d", got)
	}
	if got := h.balance(t, alice.ID); got != "100" {
		t.Errorf("Expected alice balance unchanged at 100, got %s", got)
	}
	if got := h.balance(t, bob.ID); got != "5" {
		t.Errorf("Expected bob balance unchanged at 5, got %s", got)
	}
	if got := h.metrics.OperationCount(observability.OpTransfer, observability.OutcomeFailure); got != 4 {
		t.Errorf("Expected 4 failed transfers, got %d", got)
	}
}

func TestAccountSettings(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "")
	alice := h.create(t, "alice", "p1", "100")

	h.withInput(strings.Join([]string{
		"1", "alice", "p1",
		"4", "0",
		"4", "1", "alicia", "p9",
		"5",
		"1", "alice", "p1",
		"1", "alicia", "p9",
		"5", "3",
	}, "\n") + "\n")
	if err := h.ctrl.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.expectOutput(t,
		fmt.Sprintf("Account ID: %d", alice.ID),
		"Username: alice",
		"Account Type: Saving",
		"Balance: $100",
		"Do you want to change account settings?\n1. Yes\n0. No [EXIT]",
		"Enter your choice: \n\nAccount ID: ",
		"Exiting Safely...\n1. Deposit",
		"Enter a new username: ",
		"Enter a new password: ",
		"Account settings updated successfully.",
		"Logging out. Goodbye, alicia!",
		"Invalid username or password. Login failed.",
		"Login successful. Welcome, alicia!",
	)

	acct, err := h.store.FindByID(alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if acct.Username != "alicia" || acct.Password != "p9" {
		t.Errorf("Expected alicia/p9, got %s/%s", acct.Username, acct.Password)
	}
}

func TestRunEndOfInputExits(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "")
	h.create(t, "alice", "p1", "100")

	// Input ends mid-session
	h.withInput("1\nalice\np1\n1\n")
	if err := h.ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Expected nil at end of input, got %v", err)
	}
	h.expectOutput(t, "Exiting program. Have a nice day!", "=== Session Summary ===", "1/100")
}

func TestRunBlankLinesSkipped(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "\n\n  \n3\n")
	if err := h.ctrl.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(h.out.String(), "Invalid choice") {
		t.Error("Expected blank lines to be skipped, not treated as a choice")
	}
	h.expectOutput(t, "Exiting program. Have a nice day!")
}

func TestRunCancelledContext(t *testing.T) {
	h := newHarness(t, config.DefaultConfig().Bank, "3\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.ctrl.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSessionStateString(t *testing.T) {
	if StateLoggedOut.String() != "LoggedOut" || StateLoggedIn.String() != "LoggedIn" {
		t.Errorf("Unexpected state names %s, %s", StateLoggedOut, StateLoggedIn)
	}
	if SessionState(9).String() != "Unknown" {
		t.Errorf("Expected Unknown, got %s", SessionState(9))
	}
}
