// Package service holds the business rules. Every operation takes the
// caller explicitly; handlers never decide authorization themselves.
package service

import (
	"crafthub/internal/models"
	"crafthub/internal/repository"
)

func requireCaller(caller models.Caller) error {
	if !caller.Authenticated() {
		return models.NewUnauthenticatedError()
	}
	return nil
}

// Page is a limit/offset window. Zero values mean the defaults.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = repository.DefaultPageSize
	}
	if p.Limit > repository.MaxPageSize {
		p.Limit = repository.MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
