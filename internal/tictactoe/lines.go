package tictactoe

import "github.com/rocketscienceinc/quicktactoe/internal/entity"

// Line is one of the eight trios that end the game when uniformly marked.
type Line struct {
	Name    string
	Squares [3]entity.Square
}

// WinLines are checked in order: rows, columns, diagonals.
var WinLines = [8]Line{
	{Name: "row 0", Squares: [3]entity.Square{{Row: 0, Column: 0}, {Row: 0, Column: 1}, {Row: 0, Column: 2}}},
	{Name: "row 1", Squares: [3]entity.Square{{Row: 1, Column: 0}, {Row: 1, Column: 1}, {Row: 1, Column: 2}}},
	{Name: "row 2", Squares: [3]entity.Square{{Row: 2, Column: 0}, {Row: 2, Column: 1}, {Row: 2, Column: 2}}},
	{Name: "column 0", Squares: [3]entity.Square{{Row: 0, Column: 0}, {Row: 1, Column: 0}, {Row: 2, Column: 0}}},
	{Name: "column 1", Squares: [3]entity.Square{{Row: 0, Column: 1}, {Row: 1, Column: 1}, {Row: 2, Column: 1}}},
	{Name: "column 2", Squares: [3]entity.Square{{Row: 0, Column: 2}, {Row: 1, Column: 2}, {Row: 2, Column: 2}}},
	{Name: "diagonal", Squares: [3]entity.Square{{Row: 0, Column: 0}, {Row: 1, Column: 1}, {Row: 2, Column: 2}}},
	{Name: "anti-diagonal", Squares: [3]entity.Square{{Row: 0, Column: 2}, {Row: 1, Column: 1}, {Row: 2, Column: 0}}},
}

func (that Line) completedBy(board *entity.Board) (entity.Mark, bool) {
	a := board[that.Squares[0].Row][that.Squares[0].Column]
	b := board[that.Squares[1].Row][that.Squares[1].Column]
	c := board[that.Squares[2].Row][that.Squares[2].Column]

	if a != entity.EmptyCell && a == b && b == c {
		return a, true
	}

	return entity.EmptyCell, false
}

// Outcome evaluates the board. It returns StateWon with the first completed
// line, StateTie for a full board without a line, StateActive otherwise.
func Outcome(board entity.Board) (entity.GameState, *Line) {
	for i := range WinLines {
		if _, ok := WinLines[i].completedBy(&board); ok {
			line := WinLines[i]
			return entity.StateWon, &line
		}
	}

	for _, row := range board {
		for _, cell := range row {
			if cell == entity.EmptyCell {
				return entity.StateActive, nil
			}
		}
	}

	return entity.StateTie, nil
}
