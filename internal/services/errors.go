package services

import "errors"

// Service errors
var (
	ErrNilWorkbook = errors.New("no workbook provided")
)
