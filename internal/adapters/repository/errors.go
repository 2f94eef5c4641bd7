package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("curator not ranked")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrInvalidItemID = errors.New("invalid item id")
	ErrUnknownItem   = errors.New("unknown item")
	ErrInvalidLike   = errors.New("invalid like event")
	ErrInvalidForest = errors.New("invalid forest")
	ErrArchive       = errors.New("archive failed")
)
