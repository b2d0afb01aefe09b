package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/willfong/bankmgr/internal/bank"
	"github.com/willfong/bankmgr/internal/models"
	"github.com/willfong/bankmgr/internal/observability"
	"github.com/willfong/bankmgr/internal/ui"
	"github.com/willfong/bankmgr/internal/utils"
	"go.uber.org/zap"
)

const choicePrompt = "Enter your choice: "

var (
	mainMenu        = []string{"Login", "Signup", "Exit"}
	transactionMenu = []string{"Deposit", "Withdraw", "Transfer", "Account Settings", "Logout"}
)

// Controller runs the login/signup menu and, once logged in, the
// transaction menu. It holds the logged-in account by ID only; every
// balance or credential change goes through the store.
type Controller struct {
	store   *bank.Store
	console *Console
	ui      *ui.UI
	metrics *observability.Metrics
	logger  *zap.Logger

	state     SessionState
	currentID int
	sessionID string
	log       *zap.Logger
}

// NewController creates a controller in the logged-out state.
func NewController(store *bank.Store, console *Console, u *ui.UI, metrics *observability.Metrics, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:   store,
		console: console,
		ui:      u,
		metrics: metrics,
		logger:  logger,
		state:   StateLoggedOut,
		log:     logger,
	}
}

// State returns the current session state.
func (c *Controller) State() SessionState {
	return c.state
}

// CurrentAccountID returns the logged-in account ID, if any.
func (c *Controller) CurrentAccountID() (int, bool) {
	if c.state != StateLoggedIn {
		return 0, false
	}
	return c.currentID, true
}

// Run shows the main menu until the user exits or the input ends.
// End of input is handled like Exit. ctx is checked between menu rounds.
func (c *Controller) Run(ctx context.Context) error {
	c.metrics.SetAccounts(c.store.Len())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		choice, err := c.menu(mainMenu)
		if err != nil {
			return c.stop(err)
		}

		switch choice {
		case "1":
			err = c.Login()
			if err == nil && c.state == StateLoggedIn {
				err = c.PerformTransaction()
			}
		case "2":
			err = c.Signup()
		case "3":
			c.exit()
			return nil
		default:
			c.invalidChoice()
		}

		if err != nil {
			return c.stop(err)
		}
	}
}

// Signup collects the new account's details and creates it.
// The new account is not logged in.
func (c *Controller) Signup() error {
	username, err := c.console.Prompt("Enter username: ")
	if err != nil {
		return err
	}
	password, err := c.console.PromptSecret("Enter password: ")
	if err != nil {
		return err
	}
	accountType, err := c.promptAccountType()
	if err != nil {
		return err
	}
	balance, err := c.console.PromptAmount("Enter initial balance: $")
	if err != nil {
		return err
	}

	acct, err := c.store.Create(username, password, accountType, balance)
	if err != nil {
		c.metrics.RecordOperation(observability.OpSignup, false)
		c.log.Warn("signup rejected", zap.String("username", username), zap.Error(err))
		if errors.Is(err, bank.ErrCapacityExceeded) {
			c.ui.Println(c.ui.Error("Maximum number of accounts reached. Cannot create a new account."))
		} else {
			c.ui.Println(c.ui.Error("No free account ID. Cannot create a new account."))
		}
		return nil
	}

	c.metrics.RecordOperation(observability.OpSignup, true)
	c.metrics.SetAccounts(c.store.Len())
	c.log.Info("account created",
		zap.Int("account_id", acct.ID),
		zap.String("type", string(acct.Type)),
		zap.String("balance", acct.Balance.String()))
	c.ui.Println(c.ui.Success(fmt.Sprintf("Account created successfully. Your account ID is: %d", acct.ID)))
	return nil
}

func (c *Controller) promptAccountType() (models.AccountType, error) {
	for {
		s, err := c.console.Prompt("Enter account type (Saving/Current): ")
		if err != nil {
			return "", err
		}
		t, err := models.ParseAccountType(s)
		if err == nil {
			return t, nil
		}
		c.ui.Println(c.ui.Warning("You've entered the wrong option, try again with the correct option: "))
	}
}

// Login checks credentials and, on a match, starts a session.
// A failed login is not an error; the state stays logged out.
func (c *Controller) Login() error {
	username, err := c.console.Prompt("Enter username: ")
	if err != nil {
		return err
	}
	password, err := c.console.PromptSecret("Enter password: ")
	if err != nil {
		return err
	}

	acct, err := c.store.FindByCredentials(username, password)
	if err != nil {
		c.metrics.RecordOperation(observability.OpLogin, false)
		c.logger.Warn("login failed", zap.String("username", username))
		c.ui.Println(c.ui.Error("Invalid username or password. Login failed."))
		return nil
	}

	c.state = StateLoggedIn
	c.currentID = acct.ID
	c.sessionID = uuid.New().String()
	c.log = c.logger.With(zap.String("session_id", c.sessionID), zap.Int("account_id", acct.ID))

	c.metrics.RecordOperation(observability.OpLogin, true)
	c.log.Info("login")
	c.ui.Println(c.ui.Success(fmt.Sprintf("Login successful. Welcome, %s!", acct.Username)))
	return nil
}

// PerformTransaction shows the transaction menu until the user logs out.
func (c *Controller) PerformTransaction() error {
	if c.state != StateLoggedIn {
		return ErrNotLoggedIn
	}

	for {
		choice, err := c.menu(transactionMenu)
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = c.Deposit()
		case "2":
			err = c.Withdraw()
		case "3":
			err = c.TransferFunds()
		case "4":
			err = c.AccountSettings()
		case "5":
			c.Logout()
			return nil
		default:
			c.invalidChoice()
		}

		if err != nil {
			return err
		}
	}
}

// Deposit adds the entered amount to the current account.
func (c *Controller) Deposit() error {
	amount, err := c.console.PromptAmount("Enter deposit amount: $")
	if err != nil {
		return err
	}

	balance, err := c.store.Deposit(c.currentID, amount)
	if err != nil {
		return c.fail(observability.OpDeposit, err)
	}

	c.metrics.RecordOperation(observability.OpDeposit, true)
	c.log.Info("deposit", zap.String("amount", amount.String()), zap.String("balance", balance.String()))
	c.ui.Println(c.ui.Success(depositMessage(amount, balance)))
	return nil
}

// Withdraw removes the entered amount from the current account unless it
// exceeds the balance.
func (c *Controller) Withdraw() error {
	amount, err := c.console.PromptAmount("Enter withdrawal amount: $")
	if err != nil {
		return err
	}

	balance, err := c.store.Withdraw(c.currentID, amount)
	if errors.Is(err, models.ErrInsufficientFunds) {
		c.metrics.RecordOperation(observability.OpWithdraw, false)
		c.log.Warn("withdrawal rejected", zap.Error(err))
		c.ui.Println(c.ui.Error("Insufficient funds. Withdrawal failed."))
		return nil
	}
	if err != nil {
		return c.fail(observability.OpWithdraw, err)
	}

	c.metrics.RecordOperation(observability.OpWithdraw, true)
	c.log.Info("withdrawal", zap.String("amount", amount.String()), zap.String("balance", balance.String()))
	c.ui.Println(c.ui.Success(withdrawalMessage(amount, balance)))
	return nil
}

// TransferFunds moves money from the current account to another account.
func (c *Controller) TransferFunds() error {
	destID, err := c.console.PromptInt("Enter destination account ID: ")
	if err != nil {
		return err
	}
	if _, err := c.store.FindByID(destID); err != nil {
		c.metrics.RecordOperation(observability.OpTransfer, false)
		c.log.Warn("transfer destination not found", zap.Int("dest_id", destID))
		c.ui.Println(c.ui.Error("Destination account not found."))
		return nil
	}

	amount, err := c.console.PromptAmount("Enter transfer amount: $")
	if err != nil {
		return err
	}

	res, err := c.store.Transfer(c.currentID, destID, amount)
	if err != nil {
		c.metrics.RecordOperation(observability.OpTransfer, false)
		c.log.Warn("transfer rejected",
			zap.Int("dest_id", destID),
			zap.String("amount", amount.String()),
			zap.Error(err))
		c.ui.Println(c.ui.Error("Invalid transfer amount or insufficient funds."))
		return nil
	}

	c.metrics.RecordOperation(observability.OpTransfer, true)
	c.log.Info("transfer",
		zap.Int("source_id", res.SourceID),
		zap.Int("dest_id", res.DestID),
		zap.String("amount", res.Amount.String()),
		zap.String("balance", res.NewSourceBalance.String()))
	c.ui.Println(withdrawalMessage(res.Amount, res.NewSourceBalance))
	c.ui.Println(depositMessage(res.Amount, res.NewDestBalance))
	c.ui.Println(c.ui.Success("Funds transferred successfully."))
	return nil
}

// AccountSettings shows the current account and offers to change its
// credentials.
func (c *Controller) AccountSettings() error {
	acct, err := c.store.FindByID(c.currentID)
	if err != nil {
		return c.fail(observability.OpSettings, err)
	}

	c.ui.Println("")
	c.ui.Println("")
	c.ui.Println(c.ui.KeyValue("Account ID", fmt.Sprintf("%d", acct.ID)))
	c.ui.Println(c.ui.KeyValue("Username", acct.Username))
	c.ui.Println(c.ui.KeyValue("Account Type", acct.Type.Label()))
	c.ui.Println(c.ui.KeyValue("Balance", utils.FormatMoney(acct.Balance)))
	c.ui.Println("\nDo you want to change account settings?\n1. Yes\n0. No [EXIT]")

	option, err := c.console.PromptInt("")
	if err != nil {
		return err
	}
	if option == 1 {
		return c.ChangeAccountSettings()
	}

	// The next menu starts with its own newline
	c.ui.Print(c.ui.Muted("Exiting Safely..."))
	return nil
}

// ChangeAccountSettings replaces both username and password.
func (c *Controller) ChangeAccountSettings() error {
	username, err := c.console.Prompt("Enter a new username: ")
	if err != nil {
		return err
	}
	password, err := c.console.PromptSecret("Enter a new password: ")
	if err != nil {
		return err
	}

	if err := c.store.UpdateCredentials(c.currentID, username, password); err != nil {
		return c.fail(observability.OpSettings, err)
	}

	c.metrics.RecordOperation(observability.OpSettings, true)
	c.log.Info("credentials updated", zap.String("username", username))
	c.ui.Println(c.ui.Success("Account settings updated successfully."))
	return nil
}

// Logout says goodbye and ends the session.
func (c *Controller) Logout() {
	if c.state != StateLoggedIn {
		return
	}

	name := ""
	if acct, err := c.store.FindByID(c.currentID); err == nil {
		name = acct.Username
	}
	c.ui.Println(fmt.Sprintf("Logging out. Goodbye, %s!", name))

	c.metrics.RecordOperation(observability.OpLogout, true)
	c.log.Info("logout")

	c.state = StateLoggedOut
	c.currentID = 0
	c.sessionID = ""
	c.log = c.logger
}

func (c *Controller) menu(options []string) (string, error) {
	c.ui.Println("\n" + c.ui.Menu(options))
	return c.console.Prompt(choicePrompt)
}

func (c *Controller) invalidChoice() {
	c.ui.Println(c.ui.Warning("Invalid choice. Please try again."))
}

// fail handles a store error that should not happen for a logged-in account.
func (c *Controller) fail(op string, err error) error {
	c.metrics.RecordOperation(op, false)
	c.log.Error("store operation failed", zap.String("operation", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

// stop ends Run. End of input counts as Exit.
func (c *Controller) stop(err error) error {
	if errors.Is(err, io.EOF) {
		c.exit()
		return nil
	}
	c.logger.Error("session aborted", zap.Error(err))
	return err
}

func (c *Controller) exit() {
	c.ui.Println("Exiting program. Have a nice day!")

	items := []ui.KV{
		{Key: "Accounts", Value: c.ui.CapacityBar(c.store.Len(), c.store.Cap())},
	}
	for _, op := range observability.Operations {
		ok := c.metrics.OperationCount(op, observability.OutcomeSuccess)
		failed := c.metrics.OperationCount(op, observability.OutcomeFailure)
		if ok == 0 && failed == 0 {
			continue
		}
		items = append(items, ui.KV{
			Key:   strings.ToUpper(op[:1]) + op[1:],
			Value: fmt.Sprintf("%d ok / %d failed", ok, failed),
		})
	}
	c.ui.Println(c.ui.SummaryBox("Session Summary", items))
	c.logger.Info("exit", zap.Int("accounts", c.store.Len()))
}

func depositMessage(amount, balance decimal.Decimal) string {
	return fmt.Sprintf("Deposit of %s successful. New balance: %s", utils.FormatMoney(amount), utils.FormatMoney(balance))
}

func withdrawalMessage(amount, balance decimal.Decimal) string {
	return fmt.Sprintf("Withdrawal of %s successful. New balance: %s", utils.FormatMoney(amount), utils.FormatMoney(balance))
}
