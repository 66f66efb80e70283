package domain

import (
	"errors"
	"fmt"
)

// Structural violations are fatal: fraud-value totals must not be computed on
// corrupted input, so a run aborts instead of producing a partial report.
var (
	ErrMissingClientID   = errors.New("client missing client_id")
	ErrMissingInstrument = errors.New("trade missing instrument")
	ErrMissingDirection  = errors.New("trade missing direction")
	ErrInvalidVolume     = errors.New("trade volume must be positive")
	ErrClientIDMismatch  = errors.New("trade client_id does not match owning client")
)

// Validate checks the snapshot for structural violations. Missing optional
// fields (deposit, balance, is_active, withdrawal_date, trades) are fine and
// resolve to documented defaults; a broken record is not.
func (s *Snapshot) Validate() error {
	for i := range s.Clients {
		c := &s.Clients[i]
		if c.ClientID == "" {
			return fmt.Errorf("client[%d]: %w", i, ErrMissingClientID)
		}
		for j := range c.Trades {
			t := &c.Trades[j]
			if t.Instrument == "" {
				return fmt.Errorf("client %s trade[%d]: %w", c.ClientID, j, ErrMissingInstrument)
			}
			if t.Direction != DirectionBuy && t.Direction != DirectionSell {
				return fmt.Errorf("client %s trade[%d]: %w", c.ClientID, j, ErrMissingDirection)
			}
			if t.Volume <= 0 {
				return fmt.Errorf("client %s trade[%d]: %w", c.ClientID, j, ErrInvalidVolume)
			}
			if t.ClientID != "" && t.ClientID != c.ClientID {
				return fmt.Errorf("client %s trade[%d] owned by %s: %w", c.ClientID, j, t.ClientID, ErrClientIDMismatch)
			}
		}
	}
	return nil
}
