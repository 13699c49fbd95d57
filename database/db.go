package database

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/trend/controller"
	"github.com/dnldd/trend/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createOutcomeTableSQL = "CREATE TABLE IF NOT EXISTS outcome (id INTEGER PRIMARY KEY AUTOINCREMENT, passid TEXT, marketindex INTEGER, market TEXT, holding TEXT, holdingamount TEXT, decision TEXT, direction TEXT, baseassetamount TEXT, orderid TEXT, errorkind TEXT, error TEXT, createdon INTEGER)"
	createOutcomeIndexSQL = "CREATE INDEX IF NOT EXISTS outcome_passid ON outcome (passid)"
	persistOutcomeSQL     = "INSERT INTO outcome(passid, marketindex, market, holding, holdingamount, decision, direction, baseassetamount, orderid, errorkind, error, createdon) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)"
)

// OutcomeStorer defines the requirements for storing pass outcomes.
type OutcomeStorer interface {
	// PersistOutcome stores the provided market outcome of a pass.
	PersistOutcome(ctx context.Context, passID string, outcome *controller.MarketOutcome) error
}

// JournalConfig is the configuration for the pass journal.
type JournalConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *JournalConfig) Validate() error {
	var errs error

	if cfg.Endpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("journal endpoint cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Journal represents the pass journal database connection. The journal is write-only, pass
// decisions never read from it.
type Journal struct {
	cfg    *JournalConfig
	client *rqlitehttp.Client
}

// Ensure the journal implements the OutcomeStorer interface.
var _ OutcomeStorer = (*Journal)(nil)

// NewJournal initializes a new pass journal connection.
func NewJournal(ctx context.Context, cfg *JournalConfig) (*Journal, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating journal config: %w", err)
	}

	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	if cfg.User != "" {
		client.SetBasicAuth(cfg.User, cfg.Pass)
	}

	j := &Journal{
		cfg:    cfg,
		client: client,
	}

	err = j.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return j, nil
}

// bootstrap initializes the database.
func (j *Journal) bootstrap(ctx context.Context) error {
	resp, err := j.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createOutcomeTableSQL},
		{SQL: createOutcomeIndexSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("creating outcome table: %d -> %s", idx, errStr)
	}

	return nil
}

// outcomeParams returns the positional parameters persisted for the provided outcome.
func outcomeParams(passID string, outcome *controller.MarketOutcome, createdOn time.Time) []any {
	var direction, amount, errStr string
	if outcome.Intent != nil {
		direction = outcome.Intent.Direction.String()
		amount = fmt.Sprintf("%d", outcome.Intent.BaseAssetAmount)
	}
	if outcome.Err != nil {
		errStr = outcome.Err.Error()
	}

	return []any{
		passID,
		outcome.Market.Index,
		outcome.Market.Name,
		outcome.Holding.State.String(),
		fmt.Sprintf("%d", outcome.Holding.Amount),
		outcome.Decision.String(),
		direction,
		amount,
		outcome.OrderID,
		outcome.ErrorKind().String(),
		errStr,
		createdOn.Unix(),
	}
}

// PersistOutcome stores the provided market outcome of a pass.
func (j *Journal) PersistOutcome(ctx context.Context, passID string, outcome *controller.MarketOutcome) error {
	if outcome == nil {
		return fmt.Errorf("outcome cannot be nil")
	}

	if outcome.ErrorKind() == shared.UnknownError {
		j.cfg.Logger.Debug().Msgf("persisting unclassified outcome: %s", spew.Sdump(outcome))
	}

	resp, err := j.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL:              persistOutcomeSQL,
			PositionalParams: outcomeParams(passID, outcome, time.Now().UTC()),
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("persisting outcome for %s: %d -> %s", outcome.Market.Name, idx, errStr)
	}

	return nil
}
