// Package gameclock tracks live game minutes: a 10-minute countdown, a real-time counter and
// each player's on-court stints and bench rest. State lives in memory only.
package gameclock

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// GameLength is the countdown start in seconds. Quarters are fixed at a quarter of it.
const GameLength = 600

var (
	ErrAlreadyPlaying    = errors.New("player is already on court")
	ErrNotPlaying        = errors.New("player is not on court")
	ErrResetNotConfirmed = errors.New("reset requires confirmation")
	ErrPlayerRequired    = errors.New("player id is required")
)

// QuarterFor derives the quarter from the remaining countdown seconds.
func QuarterFor(remaining int) int {
	switch {
	case remaining > 450:
		return 1
	case remaining > 300:
		return 2
	case remaining > 150:
		return 3
	default:
		return 4
	}
}

// FormatClock renders seconds as MM:SS. Negative values render as 00:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Stint is one stretch on court. Start and End are countdown values; End is nil while open.
type Stint struct {
	Start   int  `json:"start"`
	End     *int `json:"end,omitempty"`
	Quarter int  `json:"quarter"`
}

// Seconds is the time credited for a closed stint.
func (s Stint) Seconds() int {
	if s.End == nil {
		return 0
	}
	return s.Start - *s.End
}

type player struct {
	playing bool
	stints  []Stint
	played  int
	rest    int
}

// Clock is the state machine for one game. All methods are safe for concurrent use.
type Clock struct {
	mu        sync.Mutex
	started   bool
	running   bool
	remaining int
	real      int
	players   map[string]*player
}

func New() *Clock {
	return &Clock{remaining: GameLength, players: map[string]*player{}}
}

// AddPlayers puts ids on the bench if the clock does not know them yet.
func (c *Clock) AddPlayers(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.playerLocked(id)
	}
}

func (c *Clock) playerLocked(id string) *player {
	p, ok := c.players[id]
	if !ok {
		p = &player{}
		c.players[id] = p
	}
	return p
}

// Toggle starts the game on first use and afterwards flips between running and paused.
// It never clears the started latch.
func (c *Clock) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		c.started = true
		c.running = true
		return
	}
	c.running = !c.running
}

// TickGame advances the countdown by one second while running. Reaching zero pauses the game.
func (c *Clock) TickGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started || !c.running || c.remaining <= 0 {
		return
	}
	c.remaining--
	if c.remaining == 0 {
		c.running = false
	}
}

// TickReal advances the real-time counter and every benched player's rest counter.
func (c *Clock) TickReal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	c.real++
	for _, p := range c.players {
		if !p.playing {
			p.rest++
		}
	}
}

// PutIn opens a stint at the current countdown value.
func (c *Clock) PutIn(id string) error {
	if id == "" {
		return ErrPlayerRequired
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.playerLocked(id)
	if p.playing {
		return ErrAlreadyPlaying
	}
	p.playing = true
	p.rest = 0
	p.stints = append(p.stints, Stint{Start: c.remaining, Quarter: QuarterFor(c.remaining)})
	return nil
}

// TakeOut closes the open stint at the current countdown value and credits its seconds.
func (c *Clock) TakeOut(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[id]
	if !ok || !p.playing {
		return ErrNotPlaying
	}
	c.closeLocked(p)
	p.playing = false
	return nil
}

func (c *Clock) closeLocked(p *player) {
	last := &p.stints[len(p.stints)-1]
	end := c.remaining
	last.End = &end
	p.played += last.Seconds()
}

// HalfTimeReset closes every open stint at the current value, credits it, and reopens a fresh
// stint at the same value for each player still on court. Bench rest counters restart at zero.
func (c *Clock) HalfTimeReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.players {
		if !p.playing {
			p.rest = 0
			continue
		}
		c.closeLocked(p)
		p.stints = append(p.stints, Stint{Start: c.remaining, Quarter: QuarterFor(c.remaining)})
	}
}

// Reset returns the clock to its initial state. Roster membership is kept.
func (c *Clock) Reset(confirm bool) error {
	if !confirm {
		return ErrResetNotConfirmed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	c.running = false
	c.remaining = GameLength
	c.real = 0
	for id := range c.players {
		c.players[id] = &player{}
	}
	return nil
}

// PlayerSnapshot is one player's state at snapshot time.
type PlayerSnapshot struct {
	PlayerID      string  `json:"playerId"`
	Playing       bool    `json:"playing"`
	Stints        []Stint `json:"stints"`
	PlayedSeconds int     `json:"playedSeconds"`
	RestSeconds   int     `json:"restSeconds"`
}

// Minutes is the credited playing time in minutes.
func (p PlayerSnapshot) Minutes() float64 {
	return float64(p.PlayedSeconds) / 60
}

// Snapshot is a consistent copy of the clock.
type Snapshot struct {
	Started     bool             `json:"gameStarted"`
	Running     bool             `json:"isRunning"`
	Remaining   int              `json:"remaining"`
	Display     string           `json:"display"`
	Quarter     int              `json:"quarter"`
	RealSeconds int              `json:"realSeconds"`
	Players     []PlayerSnapshot `json:"players"`
}

func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Started:     c.started,
		Running:     c.running,
		Remaining:   c.remaining,
		Display:     FormatClock(c.remaining),
		Quarter:     QuarterFor(c.remaining),
		RealSeconds: c.real,
		Players:     make([]PlayerSnapshot, 0, len(c.players)),
	}
	for id, p := range c.players {
		stints := make([]Stint, len(p.stints))
		for i, st := range p.stints {
			if st.End != nil {
				end := *st.End
				st.End = &end
			}
			stints[i] = st
		}
		s.Players = append(s.Players, PlayerSnapshot{
			PlayerID:      id,
			Playing:       p.playing,
			Stints:        stints,
			PlayedSeconds: p.played,
			RestSeconds:   p.rest,
		})
	}
	sort.Slice(s.Players, func(i, j int) bool { return s.Players[i].PlayerID < s.Players[j].PlayerID })
	return s
}

// Started reports the latch without taking a full snapshot.
func (c *Clock) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}
