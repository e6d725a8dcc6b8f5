package auth

import (
	"strings"

	"bihar-bazaar/internal/model"
)

// OTPLength is the number of digit cells.
const OTPLength = 6

// OTPEntry models the six single-digit input cells and which one has focus.
type OTPEntry struct {
	cells [OTPLength]byte
	focus int
}

// Set writes digit into cell index and moves focus to the next cell.
// An empty digit clears the cell and leaves focus on it.
func (e *OTPEntry) Set(index int, digit string) error {
	if index < 0 || index >= OTPLength {
		return model.ErrInvalidOTPDigit
	}
	if digit == "" {
		e.cells[index] = 0
		e.focus = index
		return nil
	}
	if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
		return model.ErrInvalidOTPDigit
	}

	e.cells[index] = digit[0]
	if index < OTPLength-1 {
		e.focus = index + 1
	} else {
		e.focus = index
	}
	return nil
}

// Fill replaces every cell from a pasted code. The code must be exactly six digits.
func (e *OTPEntry) Fill(code string) error {
	code = strings.TrimSpace(code)
	if !isOTP(code) {
		return model.ErrIncompleteOTP
	}
	for i := 0; i < OTPLength; i++ {
		e.cells[i] = code[i]
	}
	e.focus = OTPLength - 1
	return nil
}

// Code returns the entered code and whether all cells are filled.
func (e *OTPEntry) Code() (string, bool) {
	var b strings.Builder
	for _, c := range e.cells {
		if c == 0 {
			return "", false
		}
		b.WriteByte(c)
	}
	return b.String(), true
}

// Clear empties every cell and focuses the first.
func (e *OTPEntry) Clear() {
	e.cells = [OTPLength]byte{}
	e.focus = 0
}

func (e *OTPEntry) Focus() int {
	return e.focus
}

// Cells returns the cell contents, "" for empty cells.
func (e *OTPEntry) Cells() []string {
	out := make([]string, OTPLength)
	for i, c := range e.cells {
		if c != 0 {
			out[i] = string(c)
		}
	}
	return out
}

func isOTP(code string) bool {
	if len(code) != OTPLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
