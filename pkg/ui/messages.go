package ui

import (
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
)

// OpportunityMsg is sent when the engine publishes an opportunity.
type OpportunityMsg struct {
	Opportunity domain.Opportunity
}

// TickMsg drives the periodic stats refresh.
type TickMsg struct{}
