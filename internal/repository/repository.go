package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (sqlite, postgres) inside this directory.

// PageQuery holds limit/offset pagination parameters.
// A Limit of zero or less returns every row; the dashboard lists all
// comments, pagination is opt-in.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
