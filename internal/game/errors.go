package game

import "errors"

var (
	ErrEmptyPool          = errors.New("game: event pool is empty")
	ErrGameOver           = errors.New("game: game is over")
	ErrCardNotInHand      = errors.New("game: card is not in hand")
	ErrPositionOutOfRange = errors.New("game: position is out of range")
	ErrNoMove             = errors.New("game: opponent has no card to play")
)
