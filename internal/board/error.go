package board

import "errors"

var (
	// ErrInvalidConfiguration is returned when a board cannot be laid out
	// with the requested size and mine count.
	ErrInvalidConfiguration = errors.New("invalid board configuration")
	// ErrInvalidCoordinate is returned for a cell outside the grid.
	ErrInvalidCoordinate = errors.New("invalid cell coordinate")
)
