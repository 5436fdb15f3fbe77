package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/conorfennell/timeline/internal/ai"
	"github.com/conorfennell/timeline/internal/config"
	"github.com/conorfennell/timeline/internal/domain"
	"github.com/conorfennell/timeline/internal/game"
	"github.com/conorfennell/timeline/internal/storage"
)

// player runs an interactive match on a terminal.
type player struct {
	db    *storage.DB
	cfg   *config.Config
	rng   *rand.Rand
	in    io.Reader
	out   io.Writer
	pause bool
}

type commandKind int

const (
	cmdPlace commandKind = iota
	cmdHint
	cmdQuit
	cmdHelp
)

type command struct {
	kind     commandKind
	card     int // 1-based hand index
	position int // 0-based timeline slot
}

// parseCommand reads "<card> <slot>", "h <card>", "q" or "?".
func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{}, errors.New("empty command")
	}
	switch fields[0] {
	case "q", "quit":
		return command{kind: cmdQuit}, nil
	case "?", "help":
		return command{kind: cmdHelp}, nil
	case "h", "hint":
		if len(fields) != 2 {
			return command{}, errors.New("usage: h <card>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return command{}, fmt.Errorf("invalid card number %q", fields[1])
		}
		return command{kind: cmdHint, card: n}, nil
	}

	if len(fields) != 2 {
		return command{}, errors.New("usage: <card> <slot>")
	}
	card, err := strconv.Atoi(fields[0])
	if err != nil || card < 1 {
		return command{}, fmt.Errorf("invalid card number %q", fields[0])
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 0 {
		return command{}, fmt.Errorf("invalid slot %q", fields[1])
	}
	return command{kind: cmdPlace, card: card, position: pos}, nil
}

func (p *player) newOpponent() (*ai.Opponent, error) {
	profile, err := ai.LookupProfile(p.cfg.AI.Difficulty)
	if err != nil {
		return nil, err
	}
	memory, err := ai.NewMemory(p.cfg.AI.MemoryCapacity)
	if err != nil {
		return nil, err
	}
	records, err := p.db.LoadMemory(p.cfg.AI.Name)
	if err != nil {
		return nil, err
	}
	memory.Restore(records)
	slog.Debug("Loaded opponent memory", "opponent", p.cfg.AI.Name, "buckets", memory.Len())
	return ai.NewOpponent(profile, memory, ai.WithRand(p.rng))
}

func (p *player) play(ctx context.Context) error {
	pool, err := p.db.GetEventPool(p.cfg.Game.Categories)
	if err != nil {
		return err
	}
	opponent, err := p.newOpponent()
	if err != nil {
		return err
	}

	match, err := game.NewMatch(pool, p.cfg.Settings(), opponent,
		game.WithRand(p.rng), game.WithScoring(p.cfg.Scoring.Params()))
	if errors.Is(err, game.ErrEmptyPool) {
		return fmt.Errorf("no events to play with; add a source and run --sync: %w", err)
	}
	if err != nil {
		return err
	}
	defer p.finish(match)

	fmt.Fprintf(p.out, "New game against the %s opponent. Type ? for help.\n", opponent.Profile().Name)
	lines := bufio.NewScanner(p.in)
	turnStart := time.Now()

	for match.Session().Status == domain.Playing {
		if err := ctx.Err(); err != nil {
			match.Abandon()
			return nil
		}
		p.render(match)
		fmt.Fprint(p.out, "> ")
		if !lines.Scan() {
			match.Abandon()
			return lines.Err()
		}

		cmd, err := parseCommand(lines.Text())
		if err != nil {
			fmt.Fprintln(p.out, err)
			continue
		}
		hand := match.Session().PlayerHand

		switch cmd.kind {
		case cmdQuit:
			match.Abandon()
		case cmdHelp:
			fmt.Fprintln(p.out, "Place a card with '<card> <slot>', e.g. '2 0' puts card 2 before everything.")
			fmt.Fprintln(p.out, "'h <card>' asks for a hint, 'q' gives up.")
		case cmdHint:
			if cmd.card > len(hand) {
				fmt.Fprintln(p.out, "No such card.")
				continue
			}
			hint, err := match.UseHint(hand[cmd.card-1].ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(p.out, hint)
		case cmdPlace:
			if cmd.card > len(hand) {
				fmt.Fprintln(p.out, "No such card.")
				continue
			}
			turn, err := match.PlaceCard(hand[cmd.card-1].ID, cmd.position, time.Since(turnStart))
			if errors.Is(err, game.ErrPositionOutOfRange) {
				fmt.Fprintln(p.out, "No such slot.")
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(p.out, turn.Feedback)
			if turn.IsCorrect {
				fmt.Fprintf(p.out, "+%d points (total %d)\n", turn.Points, match.Session().Score)
			}
			p.save(match)

			if match.Session().Status == domain.Playing {
				if err := p.opponentTurn(ctx, match); err != nil {
					return err
				}
			}
			turnStart = time.Now()
		}
	}
	return nil
}

func (p *player) opponentTurn(ctx context.Context, match *game.Match) error {
	turn, err := match.PlayAITurn()
	if errors.Is(err, game.ErrNoMove) {
		return nil
	}
	if err != nil {
		return err
	}

	if p.pause {
		fmt.Fprintln(p.out, "Opponent is thinking...")
		select {
		case <-time.After(turn.ThinkingTime):
		case <-ctx.Done():
		}
	}
	fmt.Fprintln(p.out, turn.Selection.Reasoning)
	if turn.Result.IsCorrect {
		fmt.Fprintf(p.out, "Opponent placed %s correctly. +%d (opponent total %d)\n",
			turn.Selection.Card.Title, turn.Points, match.AIScore())
	} else {
		fmt.Fprintf(p.out, "Opponent misplaced %s and keeps it.\n", turn.Selection.Card.Title)
	}
	p.save(match)
	return nil
}

func (p *player) render(match *game.Match) {
	s := match.Session()
	fmt.Fprintln(p.out, "\nTimeline:")
	for i, c := range s.Timeline {
		fmt.Fprintf(p.out, "  [%d]\n  %s  %s\n", i, c.DateOccurred, c.Title)
	}
	fmt.Fprintf(p.out, "  [%d]\n", len(s.Timeline))
	fmt.Fprintf(p.out, "Your hand (score %d, opponent %d with %d cards left):\n", s.Score, match.AIScore(), len(match.AIHand()))
	for i, c := range s.PlayerHand {
		fmt.Fprintf(p.out, "  %d. %s (%s, difficulty %d)\n", i+1, c.Title, c.Category, c.Difficulty)
	}
}

// save stores the session after every turn. A failed save is logged, not
// fatal, so the game can go on.
func (p *player) save(match *game.Match) {
	if err := p.db.SaveSession(match.Session()); err != nil {
		slog.Warn("Failed to save session", "error", err)
	}
}

func (p *player) finish(match *game.Match) {
	p.save(match)

	result := match.Result()
	result.Opponent = p.cfg.AI.Name
	if err := p.db.RecordResult(result); err != nil {
		slog.Warn("Failed to record result", "error", err)
	}
	if err := p.db.SaveMemory(p.cfg.AI.Name, match.Opponent().Memory().Snapshot()); err != nil {
		slog.Warn("Failed to save opponent memory", "error", err)
	}

	switch result.Status {
	case domain.Won:
		fmt.Fprintf(p.out, "You won with %d points!\n", result.Score)
	case domain.Lost:
		fmt.Fprintf(p.out, "The opponent emptied its hand first. Score %d to %d.\n", result.Score, result.AIScore)
	default:
		fmt.Fprintln(p.out, "Game abandoned.")
	}
	fmt.Fprintf(p.out, "Game lasted %s.\n", result.FinishedAt.Sub(match.Session().Started()).Round(time.Second))
	st := match.Opponent().GetPerformanceStats()
	fmt.Fprintf(p.out, "Opponent accuracy this game: %.0f%% over %d placements.\n", st.Accuracy*100, st.TotalPlacements)
}
