// Package domain holds the immutable partner/client/trade snapshot the
// detection engine operates on. The engine never mutates these records; it
// only reads them and produces findings.
package domain

import "time"

// PartnerType distinguishes master partners from their sub-affiliates.
type PartnerType string

const (
	PartnerTypeMaster       PartnerType = "master"
	PartnerTypeSubAffiliate PartnerType = "sub_affiliate"
)

// Direction is the side of a trade.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Partner is a referral entity. Sub-affiliates reference their master partner
// via ParentID, forming a two-level tree.
type Partner struct {
	PartnerID      string      `json:"partner_id" db:"partner_id"`
	Name           string      `json:"name" db:"name"`
	Type           PartnerType `json:"type" db:"type"`
	ParentID       string      `json:"parent_id,omitempty" db:"parent_id"`
	CommissionRate float64     `json:"commission_rate" db:"commission_rate"`
}

// Trade is a single executed trade belonging to a client. Timestamp is kept
// as the raw provider string; time-sensitive comparisons parse it on demand
// and fail soft when it is unparseable.
type Trade struct {
	TradeID    string    `json:"trade_id" db:"trade_id"`
	ClientID   string    `json:"client_id" db:"client_id"`
	Timestamp  string    `json:"timestamp" db:"timestamp"`
	Instrument string    `json:"instrument" db:"instrument"`
	Direction  Direction `json:"direction" db:"direction"`
	Volume     float64   `json:"volume" db:"volume"`
	Price      float64   `json:"price" db:"price"`
	ProfitLoss float64   `json:"profit_loss" db:"profit_loss"`
}

// Time parses the trade timestamp. The second return is false when the
// timestamp is missing or unparseable; callers exclude such trades from
// time-sensitive comparisons but still count them where time is irrelevant.
func (t *Trade) Time() (time.Time, bool) {
	return ParseTimestamp(t.Timestamp)
}

// Client is a referred trading account with its chronological trade history.
// ReferredBy is not enforced as a foreign key: it may name a partner absent
// from the snapshot. Trades are assumed to be in chronological order.
type Client struct {
	ClientID       string  `json:"client_id"`
	Name           string  `json:"name"`
	ReferredBy     string  `json:"referred_by"`
	SignupDate     string  `json:"signup_date"`
	InitialDeposit float64 `json:"initial_deposit"`
	CurrentBalance float64 `json:"current_balance"`
	// IsActive defaults to true when the provider omits it.
	IsActive       *bool   `json:"is_active,omitempty"`
	WithdrawalDate string  `json:"withdrawal_date,omitempty"`
	Trades         []Trade `json:"trades"`
}

// Active resolves the is_active default: a missing field means active.
func (c *Client) Active() bool {
	if c.IsActive == nil {
		return true
	}
	return *c.IsActive
}

// Snapshot is the closed batch the detectors analyze.
type Snapshot struct {
	Partners []Partner `json:"partners"`
	Clients  []Client  `json:"clients"`
}

// PartnerGroups is an ordered grouping of clients by referring partner id.
// Keys preserve first-appearance order so that scans over groups are
// deterministic regardless of map iteration order.
type PartnerGroups struct {
	Keys   []string
	Groups map[string][]*Client
}

// GroupClientsByPartner buckets clients under their referred_by id, keeping
// insertion order for both the partner keys and the clients within a group.
func GroupClientsByPartner(clients []Client) *PartnerGroups {
	pg := &PartnerGroups{Groups: make(map[string][]*Client)}
	for i := range clients {
		c := &clients[i]
		if _, seen := pg.Groups[c.ReferredBy]; !seen {
			pg.Keys = append(pg.Keys, c.ReferredBy)
		}
		pg.Groups[c.ReferredBy] = append(pg.Groups[c.ReferredBy], c)
	}
	return pg
}
