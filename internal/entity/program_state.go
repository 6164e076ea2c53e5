package entity

// ProgramState is the singleton record holding the game id sequence.
type ProgramState struct {
	Version    uint64 `json:"version"`
	NextGameID uint64 `json:"next_game_id"`
	Bump       uint8  `json:"bump"`
}

func (that *ProgramState) Init(bump uint8) {
	that.Version = 1
	that.NextGameID = 1
	that.Bump = bump
}

// Allocate returns the next game id and advances the sequence.
func (that *ProgramState) Allocate() uint64 {
	id := that.NextGameID
	that.NextGameID++

	return id
}

func (that *ProgramState) IncrementVersion() {
	that.Version++
}
