package provider

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/jayalath-jknr/GraphRisk/internal/domain"
)

// Postgres loads a snapshot from the reporting replica. Trades are ordered
// by execution time per client so the snapshot invariant (insertion order =
// chronological order) holds.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an existing connection.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres connects with the given DSN.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close releases the underlying connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}

type partnerRow struct {
	PartnerID      string         `db:"partner_id"`
	Name           string         `db:"name"`
	Type           string         `db:"type"`
	ParentID       sql.NullString `db:"parent_id"`
	CommissionRate float64        `db:"commission_rate"`
}

type clientRow struct {
	ClientID       string       `db:"client_id"`
	Name           string       `db:"name"`
	ReferredBy     string       `db:"referred_by"`
	SignupDate     time.Time    `db:"signup_date"`
	InitialDeposit float64      `db:"initial_deposit"`
	CurrentBalance float64      `db:"current_balance"`
	IsActive       sql.NullBool `db:"is_active"`
	WithdrawalDate sql.NullTime `db:"withdrawal_date"`
}

type tradeRow struct {
	TradeID    string    `db:"trade_id"`
	ClientID   string    `db:"client_id"`
	Timestamp  time.Time `db:"timestamp"`
	Instrument string    `db:"instrument"`
	Direction  string    `db:"direction"`
	Volume     float64   `db:"volume"`
	Price      float64   `db:"price"`
	ProfitLoss float64   `db:"profit_loss"`
}

// Load queries partners, clients, and trades and assembles the snapshot.
func (p *Postgres) Load(ctx context.Context) (*domain.Snapshot, error) {
	var partners []partnerRow
	if err := p.db.SelectContext(ctx, &partners,
		`SELECT partner_id, name, type, parent_id, commission_rate
		 FROM partners ORDER BY partner_id`); err != nil {
		return nil, fmt.Errorf("failed to load partners: %w", err)
	}

	var clients []clientRow
	if err := p.db.SelectContext(ctx, &clients,
		`SELECT client_id, name, referred_by, signup_date, initial_deposit,
		        current_balance, is_active, withdrawal_date
		 FROM clients ORDER BY client_id`); err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}

	var trades []tradeRow
	if err := p.db.SelectContext(ctx, &trades,
		`SELECT trade_id, client_id, timestamp, instrument, direction,
		        volume, price, profit_loss
		 FROM trades ORDER BY client_id, timestamp`); err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}

	tradesByClient := make(map[string][]domain.Trade, len(clients))
	for _, t := range trades {
		tradesByClient[t.ClientID] = append(tradesByClient[t.ClientID], domain.Trade{
			TradeID:    t.TradeID,
			ClientID:   t.ClientID,
			Timestamp:  t.Timestamp.UTC().Format(time.RFC3339),
			Instrument: t.Instrument,
			Direction:  domain.Direction(t.Direction),
			Volume:     t.Volume,
			Price:      t.Price,
			ProfitLoss: t.ProfitLoss,
		})
	}

	snap := &domain.Snapshot{
		Partners: make([]domain.Partner, 0, len(partners)),
		Clients:  make([]domain.Client, 0, len(clients)),
	}
	for _, r := range partners {
		snap.Partners = append(snap.Partners, domain.Partner{
			PartnerID:      r.PartnerID,
			Name:           r.Name,
			Type:           domain.PartnerType(r.Type),
			ParentID:       r.ParentID.String,
			CommissionRate: r.CommissionRate,
		})
	}
	for _, r := range clients {
		c := domain.Client{
			ClientID:       r.ClientID,
			Name:           r.Name,
			ReferredBy:     r.ReferredBy,
			SignupDate:     r.SignupDate.UTC().Format(time.RFC3339),
			InitialDeposit: r.InitialDeposit,
			CurrentBalance: r.CurrentBalance,
			Trades:         tradesByClient[r.ClientID],
		}
		if r.IsActive.Valid {
			active := r.IsActive.Bool
			c.IsActive = &active
		}
		if r.WithdrawalDate.Valid {
			c.WithdrawalDate = r.WithdrawalDate.Time.UTC().Format(time.RFC3339)
		}
		snap.Clients = append(snap.Clients, c)
	}

	log.Info().
		Int("partners", len(snap.Partners)).
		Int("clients", len(snap.Clients)).
		Int("trades", len(trades)).
		Msg("snapshot loaded from postgres")

	return snap, nil
}
