package handlers

import (
	"errors"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-engine/internal/board"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

var errPartialParams = errors.New("size and mine_count must be given together")

// ParamsDTO carries optional board parameters. Missing values fall back to
// whatever the caller considers current.
type ParamsDTO struct {
	Size      *int `schema:"size"`
	MineCount *int `schema:"mine_count"`
}

func ParseParamsDTO(src map[string][]string) (ParamsDTO, error) {
	var dto ParamsDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

func (dto ParamsDTO) Empty() bool {
	return dto.Size == nil && dto.MineCount == nil
}

func (dto ParamsDTO) Params(fallback board.Params) board.Params {
	p := fallback
	if dto.Size != nil {
		p.Size = *dto.Size
	}
	if dto.MineCount != nil {
		p.MineCount = *dto.MineCount
	}
	return p
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	X    int    `schema:"x,required"`
	Y    int    `schema:"y,required"`
}

func ParseMoveDTO(src map[string][]string) (session.Action, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return session.Action{}, err
	}
	kind, err := session.ParseMove(dto.Move)
	if err != nil {
		return session.Action{}, err
	}
	return session.Action{Kind: kind, Point: board.Point{X: dto.X, Y: dto.Y}}, nil
}

type HighscoresDTO struct {
	ParamsDTO
	Limit int `schema:"limit"`
}

func ParseHighscoresDTO(src map[string][]string) (HighscoresDTO, error) {
	var dto HighscoresDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if (dto.Size == nil) != (dto.MineCount == nil) {
		return dto, errPartialParams
	}
	return dto, nil
}

type GameSessionDTO struct {
	session.View
	Token string `json:"token,omitempty"`
}

type MoveResultDTO struct {
	session.View
	Result session.Result `json:"result"`
}

type CommandReplyDTO struct {
	session.View
	Results []session.Result `json:"results"`
	Error   string           `json:"error,omitempty"`
}
