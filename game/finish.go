package game

import (
	"context"
	"sort"
	"time"

	"adedonha/logger"
)

// Coin rewards written through the user registry when a game ends.
const (
	coinsVictory       = 50
	coinsParticipation = 5
)

// eliminateLowest prunes survival rooms after scoring: every player sitting
// at the minimum cumulative score goes, together. Ties are never broken
// one-at-a-time. Eliminated players stay connected as spectators and keep
// receiving room broadcasts.
func (r *Room) eliminateLowest() []RankedPlayer {
	if r.mode != ModeSurvival || len(r.players) <= 1 {
		return nil
	}

	minScore := r.players[0].score
	for _, p := range r.players[1:] {
		if p.score < minScore {
			minScore = p.score
		}
	}

	eliminatedNow := []RankedPlayer{}
	remaining := r.players[:0]
	for _, p := range r.players {
		if p.score == minScore {
			entry := RankedPlayer{UserId: p.UserId(), Name: p.Username(), Score: p.score}
			r.eliminated = append(r.eliminated, entry)
			eliminatedNow = append(eliminatedNow, entry)
			r.spectators = append(r.spectators, p)
			continue
		}
		remaining = append(remaining, p)
	}
	r.players = remaining

	logger.Infof("[Room %s] eliminated %d player(s) at %d points, %d remain",
		r.id, len(eliminatedNow), minScore, len(r.players))
	return eliminatedNow
}

// finalRanking orders finishers. Survival: the survivor (if any) first, then
// the elimination history most-recent-first. Other modes: remaining players
// by cumulative score, descending, join order breaking ties (stable).
func (r *Room) finalRanking() []RankedPlayer {
	if r.mode == ModeSurvival {
		ranking := make([]RankedPlayer, 0, len(r.players)+len(r.eliminated))
		for _, p := range r.players {
			ranking = append(ranking, RankedPlayer{UserId: p.UserId(), Name: p.Username(), Score: p.score})
		}
		for i := len(r.eliminated) - 1; i >= 0; i-- {
			ranking = append(ranking, r.eliminated[i])
		}
		return ranking
	}

	ranking := make([]RankedPlayer, 0, len(r.players))
	for _, p := range r.players {
		ranking = append(ranking, RankedPlayer{UserId: p.UserId(), Name: p.Username(), Score: p.score})
	}
	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Score > ranking[j].Score })
	return ranking
}

// finishGame closes the session: final ranking, coin rewards, one
// game.finished broadcast, then teardown.
func (r *Room) finishGame() {
	ranking := r.finalRanking()

	// A game nobody survived to the end of pays nothing, survival included:
	// the eliminated are ranked but there is no winner to anchor rewards on.
	hasWinner := len(r.players) >= 1 && len(ranking) >= 1
	if hasWinner {
		r.distributeRewards(ranking)
	}

	r.broadcast(ServerPacket(TypeGameFinished, map[string]any{
		"ranking": ranking,
		"mode":    r.mode,
	}))
	logger.Infof("[Room %s] game finished after %d round(s), %d ranked", r.id, r.round, len(ranking))
	r.finished = true
}

// distributeRewards writes coin deltas through the registry: victory bonus
// for rank 1, participation bonus for everyone else ranked. Best effort and
// non-transactional; a failed write is logged and the rest still pay out.
func (r *Room) distributeRewards(ranking []RankedPlayer) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	for i, entry := range ranking {
		bonus := coinsParticipation
		if i == 0 {
			bonus = coinsVictory
		}
		if err := r.registry.AddCoins(ctx, entry.UserId, bonus); err != nil {
			logger.Criticalf("[Room %s] reward write failed for %s: %v", r.id, entry.UserId, err)
		}
	}
}
