package entity

import (
	"fmt"
	"strings"
)

// GameState is the lifecycle state of a game.
type GameState string

const (
	StateNotStarted GameState = "not_started"
	StateActive     GameState = "active"
	StateTie        GameState = "tie"
	StateWon        GameState = "won"
)

func (that GameState) IsTerminal() bool {
	return that == StateWon || that == StateTie
}

// Mark is the sign a player places on a square.
type Mark string

const (
	MarkX     Mark = "X"
	MarkO     Mark = "O"
	EmptyCell Mark = ""
)

const BoardSize = 3

// Board is indexed as Board[row][column].
type Board [BoardSize][BoardSize]Mark

// Square addresses one board cell.
type Square struct {
	Row    uint8 `json:"row"`
	Column uint8 `json:"column"`
}

func (that Square) OnBoard() bool {
	return that.Row < BoardSize && that.Column < BoardSize
}

func (that Square) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Column)
}

type Game struct {
	ID      uint64    `json:"id"`
	PlayerX Identity  `json:"player_x"`
	PlayerO *Identity `json:"player_o"`
	Board   Board     `json:"board"`
	State   GameState `json:"state"`
	Turn    uint8     `json:"turn"`
	Bump    uint8     `json:"bump"`
	Winner  *Identity `json:"winner"`
}

func (that *Game) IsNotStarted() bool {
	return that.State == StateNotStarted
}

func (that *Game) IsActive() bool {
	return that.State == StateActive
}

func (that *Game) IsWon() bool {
	return that.State == StateWon
}

func (that *Game) IsTie() bool {
	return that.State == StateTie
}

// IsJoined reports whether the second player has taken the O seat.
func (that *Game) IsJoined() bool {
	return that.PlayerO != nil
}

// HasPlayer reports whether id sits at this game.
func (that *Game) HasPlayer(id Identity) bool {
	return that.PlayerX == id || (that.PlayerO != nil && *that.PlayerO == id)
}

func (that *Game) IsWinner(id Identity) bool {
	return that.Winner != nil && *that.Winner == id
}

// Filled reports whether every cell holds a mark.
func (that *Game) Filled() bool {
	for _, row := range that.Board {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}

// String renders the board one row per line, "_" for empty cells.
func (that *Game) String() string {
	var builder strings.Builder

	for i, row := range that.Board {
		cells := make([]string, 0, BoardSize)
		for _, cell := range row {
			if cell == EmptyCell {
				cells = append(cells, "_")
				continue
			}
			cells = append(cells, string(cell))
		}

		builder.WriteString(strings.Join(cells, " "))
		if i < BoardSize-1 {
			builder.WriteByte('\n')
		}
	}

	return builder.String()
}
