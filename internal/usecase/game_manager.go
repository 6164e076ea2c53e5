package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/rocketscienceinc/quicktactoe/internal/entity"
	"github.com/rocketscienceinc/quicktactoe/internal/repository"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
	"github.com/rocketscienceinc/quicktactoe/internal/tictactoe"
	"github.com/rocketscienceinc/quicktactoe/internal/token"
)

const tracerName = "github.com/rocketscienceinc/quicktactoe/internal/usecase"

type stateRepo interface {
	Create(ctx context.Context, tx storage.Tx, state *entity.ProgramState) error
	Get(ctx context.Context, tx storage.Tx) (*entity.ProgramState, error)
	Update(ctx context.Context, tx storage.Tx, state *entity.ProgramState) error
}

type playerRepo interface {
	Create(ctx context.Context, tx storage.Tx, player *entity.Player) error
	GetByID(ctx context.Context, tx storage.Tx, id entity.Identity) (*entity.Player, error)
	Update(ctx context.Context, tx storage.Tx, player *entity.Player) error
}

type gameRepo interface {
	Create(ctx context.Context, tx storage.Tx, game *entity.Game) error
	GetByID(ctx context.Context, tx storage.Tx, id uint64) (*entity.Game, error)
	Update(ctx context.Context, tx storage.Tx, game *entity.Game) error
}

// Economy sets the token amounts moved by RegisterPlayer, CreateGame and ClaimReward.
type Economy struct {
	StarterGrant uint64
	EntryFee     uint64
	Reward       uint64
}

func DefaultEconomy() Economy {
	return Economy{StarterGrant: 10, EntryFee: 1, Reward: 1}
}

// GameManager runs every game operation as one storage transaction: either
// all of its record and token changes commit or none do.
type GameManager struct {
	logger *slog.Logger
	tracer trace.Tracer

	store      storage.Store
	stateRepo  stateRepo
	playerRepo playerRepo
	gameRepo   gameRepo

	tokens    token.Service
	authority token.MintAuthority
	economy   Economy
}

func NewGameManager(
	logger *slog.Logger,
	store storage.Store,
	stateRepo stateRepo,
	playerRepo playerRepo,
	gameRepo gameRepo,
	tokens token.Service,
	authority token.MintAuthority,
	economy Economy,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),
		tracer: otel.Tracer(tracerName),

		store:      store,
		stateRepo:  stateRepo,
		playerRepo: playerRepo,
		gameRepo:   gameRepo,

		tokens:    tokens,
		authority: authority,
		economy:   economy,
	}
}

// Initialize creates the program state and the play token mint. It can succeed only once.
func (that *GameManager) Initialize(ctx context.Context, auth token.MintAuthority) (*entity.ProgramState, error) {
	var state *entity.ProgramState

	err := that.update(ctx, "Initialize", []attribute.KeyValue{attribute.String("authority", auth.String())},
		func(ctx context.Context, tx storage.Tx, log *slog.Logger) error {
			if auth != that.authority {
				return apperror.ErrUnauthorized
			}

			state = &entity.ProgramState{}
			state.Init(repository.ProgramStateAddress().Bump)

			if err := that.stateRepo.Create(ctx, tx, state); err != nil {
				return err
			}

			if err := that.tokens.CreateMint(ctx, tx, auth); err != nil {
				return fmt.Errorf("failed to create play token mint: %w", err)
			}

			log.Info("program initialized", "version", state.Version, "next_game_id", state.NextGameID)

			return nil
		})
	if err != nil {
		return nil, err
	}

	return state, nil
}

// UpgradeVersion bumps the program state version.
func (that *GameManager) UpgradeVersion(ctx context.Context, auth token.MintAuthority) (*entity.ProgramState, error) {
	var state *entity.ProgramState

	err := that.update(ctx, "UpgradeVersion", nil, func(ctx context.Context, tx storage.Tx, log *slog.Logger) error {
		if auth != that.authority {
			return apperror.ErrUnauthorized
		}

		var err error
		state, err = that.stateRepo.Get(ctx, tx)
		if err != nil {
			return err
		}

		state.IncrementVersion()

		if err = that.stateRepo.Update(ctx, tx, state); err != nil {
			return err
		}

		log.Info("program version upgraded", "version", state.Version)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}

// RegisterPlayer creates the caller's player record and mints the starter grant.
func (that *GameManager) RegisterPlayer(ctx context.Context, caller entity.Identity) (*entity.Player, error) {
	var player *entity.Player

	err := that.update(ctx, "RegisterPlayer", callerAttrs(caller), func(ctx context.Context, tx storage.Tx, log *slog.Logger) error {
		if err := caller.Validate(); err != nil {
			return err
		}

		player = entity.NewPlayer(caller, repository.PlayerAddress(caller).Bump)
		player.GrantStarterTokens()

		if err := that.playerRepo.Create(ctx, tx, player); err != nil {
			return err
		}

		if err := that.mint(ctx, tx, that.economy.StarterGrant, caller); err != nil {
			return fmt.Errorf("failed to mint starter grant: %w", err)
		}

		log.Info("player registered", "player", caller, "starter_grant", that.economy.StarterGrant)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return player, nil
}

// CreateGame burns the entry fee and opens game requestedID, which must be the next id in sequence.
func (that *GameManager) CreateGame(ctx context.Context, caller entity.Identity, requestedID uint64) (*entity.Game, error) {
	var game *entity.Game

	attrs := append(callerAttrs(caller), gameAttr(requestedID))

	err := that.update(ctx, "CreateGame", attrs, func(ctx context.Context, tx storage.Tx, log *slog.Logger) error {
		if err := caller.Validate(); err != nil {
			return err
		}

		state, err := that.stateRepo.Get(ctx, tx)
		if err != nil {
			return err
		}

		if _, err = that.playerRepo.GetByID(ctx, tx, caller); err != nil {
			return err
		}

		if requestedID != state.NextGameID {
			return fmt.Errorf("%w: requested %d, next %d", apperror.ErrGameIDMismatch, requestedID, state.NextGameID)
		}

		if err = that.burn(ctx, tx, that.economy.EntryFee, caller); err != nil {
			return fmt.Errorf("failed to burn entry fee: %w", err)
		}

		id := state.Allocate()
		game = tictactoe.Create(caller, id, repository.GameAddress(id).Bump)

		if err = that.gameRepo.Create(ctx, tx, game); err != nil {
			return err
		}

		if err = that.stateRepo.Update(ctx, tx, state); err != nil {
			return err
		}

		log.Info("game created", "game_id", game.ID, "player", caller, "entry_fee", that.economy.EntryFee)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return game, nil
}

// JoinGame seats the caller as player O and starts the game.
func (that *GameManager) JoinGame(ctx context.Context, caller entity.Identity, gameID uint64) (*entity.Game, error) {
	var game *entity.Game

	attrs := append(callerAttrs(caller), gameAttr(gameID))

	err := that.update(ctx, "JoinGame", attrs, func(ctx context.Context, tx storage.Tx, log *slog.Logger) error {
		if err := caller.Validate(); err != nil {
			return err
		}

		var err error
		game, err = that.gameRepo.GetByID(ctx, tx, gameID)
		if err != nil {
			return err
		}

		if _, err = that.playerRepo.GetByID(ctx, tx, caller); err != nil {
			return err
		}

		if err = tictactoe.Start(game, caller); err != nil {
			return err
		}

		if err = that.gameRepo.Update(ctx, tx, game); err != nil {
			return err
		}

		log.Info("game started", "game_id", game.ID, "player_x", game.PlayerX, "player_o", caller)
		log.Debug("board", "game_id", game.ID, "board", game.String())

		return nil
	})
	if err != nil {
		return nil, err
	}

	return game, nil
}

// Play places the caller's mark. A finished game reports ErrGameNotActive to
// everybody, before any turn check.
func (that *GameManager) Play(ctx context.Context, caller entity.Identity, gameID uint64, square entity.Square) (*entity.Game, error) {
	var game *entity.Game

	attrs := append(callerAttrs(caller), gameAttr(gameID), attribute.String("square", square.String()))

	err := that.update(ctx, "Play", attrs, func(ctx context.Context, tx storage.Tx, log *slog.Logger) error {
		var err error
		game, err = that.gameRepo.GetByID(ctx, tx, gameID)
		if err != nil {
			return err
		}

		if !game.IsActive() {
			return fmt.Errorf("%w: game %d is %s", apperror.ErrGameNotActive, game.ID, game.State)
		}

		if !game.HasPlayer(caller) {
			return apperror.ErrNotYourTurn
		}

		playerX, err := that.playerRepo.GetByID(ctx, tx, game.PlayerX)
		if err != nil {
			return err
		}

		playerO, err := that.playerRepo.GetByID(ctx, tx, *game.PlayerO)
		if err != nil {
			return err
		}

		acting, other := playerX, playerO
		if caller != game.PlayerX {
			acting, other = playerO, playerX
		}

		if err = tictactoe.Play(game, square, acting, other); err != nil {
			return err
		}

		if err = that.gameRepo.Update(ctx, tx, game); err != nil {
			return err
		}

		log.Debug("board", "game_id", game.ID, "board", game.String())

		if !game.State.IsTerminal() {
			return nil
		}

		if err = that.playerRepo.Update(ctx, tx, playerX); err != nil {
			return err
		}

		if err = that.playerRepo.Update(ctx, tx, playerO); err != nil {
			return err
		}

		if game.IsWon() {
			_, line := tictactoe.Outcome(game.Board)
			log.Info("game won", "game_id", game.ID, "winner", *game.Winner, "line", line.Name)
		} else {
			log.Info("game tied", "game_id", game.ID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return game, nil
}

// ClaimReward mints the reward to the winner of gameID. The claim flag lives
// on the player, so an identity is rewarded at most once overall.
func (that *GameManager) ClaimReward(ctx context.Context, caller entity.Identity, gameID uint64) (*entity.Player, error) {
	var player *entity.Player

	attrs := append(callerAttrs(caller), gameAttr(gameID))

	err := that.update(ctx, "ClaimReward", attrs, func(ctx context.Context, tx storage.Tx, log *slog.Logger) error {
		game, err := that.gameRepo.GetByID(ctx, tx, gameID)
		if err != nil {
			return err
		}

		if !game.IsWon() {
			return fmt.Errorf("%w: game %d is %s", apperror.ErrGameNotWon, game.ID, game.State)
		}

		if !game.IsWinner(caller) {
			return apperror.ErrNotWinner
		}

		player, err = that.playerRepo.GetByID(ctx, tx, caller)
		if err != nil {
			return err
		}

		if err = player.ClaimReward(); err != nil {
			return err
		}

		if err = that.mint(ctx, tx, that.economy.Reward, caller); err != nil {
			return fmt.Errorf("failed to mint reward: %w", err)
		}

		if err = that.playerRepo.Update(ctx, tx, player); err != nil {
			return err
		}

		log.Info("reward claimed", "game_id", game.ID, "player", caller, "reward", that.economy.Reward)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return player, nil
}

func (that *GameManager) GetProgramState(ctx context.Context) (*entity.ProgramState, error) {
	var state *entity.ProgramState

	err := that.store.View(ctx, func(tx storage.Tx) error {
		var err error
		state, err = that.stateRepo.Get(ctx, tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get program state: %w", err)
	}

	return state, nil
}

func (that *GameManager) GetPlayer(ctx context.Context, id entity.Identity) (*entity.Player, error) {
	var player *entity.Player

	err := that.store.View(ctx, func(tx storage.Tx) error {
		var err error
		player, err = that.playerRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) GetGame(ctx context.Context, id uint64) (*entity.Game, error) {
	var game *entity.Game

	err := that.store.View(ctx, func(tx storage.Tx) error {
		var err error
		game, err = that.gameRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// Balance returns the play token balance of id.
func (that *GameManager) Balance(ctx context.Context, id entity.Identity) (uint64, error) {
	var amount uint64

	err := that.store.View(ctx, func(tx storage.Tx) error {
		var err error
		amount, err = that.tokens.Balance(ctx, tx, id)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return amount, nil
}

// update runs fn in one read-write transaction under its own span and tx_id.
func (that *GameManager) update(
	ctx context.Context,
	method string,
	attrs []attribute.KeyValue,
	fn func(ctx context.Context, tx storage.Tx, log *slog.Logger) error,
) error {
	txID := uuid.NewString()

	ctx, span := that.tracer.Start(ctx, "GameManager."+method,
		trace.WithAttributes(append(attrs, attribute.String("tx_id", txID))...))
	defer span.End()

	log := that.logger.With("method", method, "tx_id", txID)

	err := that.store.Update(ctx, func(tx storage.Tx) error {
		return fn(ctx, tx, log)
	})
	if err == nil {
		return nil
	}

	kind := apperror.KindOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.kind", string(kind)))

	if kind == apperror.KindUnknown && !errors.Is(err, storage.ErrConflict) {
		log.Error("operation failed", "error", err)
	} else {
		log.Warn("operation rejected", "error", err, "kind", kind)
	}

	return fmt.Errorf("%s: %w", method, err)
}

func (that *GameManager) mint(ctx context.Context, tx storage.Tx, amount uint64, to entity.Identity) error {
	if amount == 0 {
		return nil
	}

	return that.tokens.Mint(ctx, tx, that.authority, amount, to)
}

func (that *GameManager) burn(ctx context.Context, tx storage.Tx, amount uint64, from entity.Identity) error {
	if amount == 0 {
		return nil
	}

	return that.tokens.Burn(ctx, tx, that.authority, amount, from)
}

func callerAttrs(caller entity.Identity) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("caller", caller.String())}
}

func gameAttr(id uint64) attribute.KeyValue {
	return attribute.Int64("game_id", int64(id))
}
