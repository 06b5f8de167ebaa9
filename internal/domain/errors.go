package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyDataset = errors.New("value dataset is empty")
)
