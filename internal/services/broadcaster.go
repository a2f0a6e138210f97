package services

import "mango-roulette-backend/internal/models"

// Broadcaster pushes round progress to connected clients. The engine
// treats it as optional; a nil broadcaster is fine.
type Broadcaster interface {
	BroadcastRoundUpdate(round *models.GameRound)
	BroadcastSettlement(round *models.GameRound, bets []*models.Bet)
}
