// Package board holds the bitboard representation of a connection game
// position: conversion to and from a human-readable grid, single piece
// drops and undos, and win/draw detection.
package board

import (
	"errors"
	"fmt"
)

const (
	DefaultRows    = 6
	DefaultColumns = 7
	DefaultInARow  = 4

	// MaxBits is the width of one player mask.
	MaxBits = 64
)

var (
	ErrBadDimensions    = errors.New("bad board dimensions")
	ErrInvalidCellValue = errors.New("invalid cell value")
	ErrFloatingPiece    = errors.New("piece with an empty cell below it")
)

// Dims describes the shape of a board and the number of pieces in a row
// needed to win.
type Dims struct {
	Rows    int
	Columns int
	InARow  int
}

// DefaultDims is the classic 6x7, 4-in-a-row board.
var DefaultDims = Dims{Rows: DefaultRows, Columns: DefaultColumns, InARow: DefaultInARow}

// Stride is the number of bits reserved per column. Every column gets one
// padding bit above its top row so that shifted masks never bleed from one
// column into the next. For the default board this is 7.
func (d Dims) Stride() int {
	return d.Rows + 1
}

// Cells is the number of playable cells.
func (d Dims) Cells() int {
	return d.Rows * d.Columns
}

// Bit returns the bit index addressing (row, col). Row 0 is the top row.
func (d Dims) Bit(row, col int) uint {
	return uint((d.Rows - 1 - row) + col*d.Stride())
}

// Validate makes sure the dimensions fit in a single 64-bit mask per player.
func (d Dims) Validate() error {
	if d.Rows < 1 || d.Columns < 1 {
		return fmt.Errorf("%w: %dx%d", ErrBadDimensions, d.Rows, d.Columns)
	}
	if d.InARow < 2 || (d.InARow > d.Rows && d.InARow > d.Columns) {
		return fmt.Errorf("%w: cannot connect %d on a %dx%d board",
			ErrBadDimensions, d.InARow, d.Rows, d.Columns)
	}
	if d.Stride()*d.Columns > MaxBits {
		return fmt.Errorf("%w: %dx%d needs %d bits, only %d available",
			ErrBadDimensions, d.Rows, d.Columns, d.Stride()*d.Columns, MaxBits)
	}
	return nil
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%d/%d", d.Rows, d.Columns, d.InARow)
}
