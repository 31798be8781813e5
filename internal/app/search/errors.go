package search

import "errors"

var (
	ErrNoSearch    = errors.New("search_not_found")
	ErrOwnerBanned = errors.New("owner_banned")
)
