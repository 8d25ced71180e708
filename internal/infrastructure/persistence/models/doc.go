// Package models contains the GORM persistence models. They carry all ORM
// tags so the domain packages stay free of storage concerns.
package models
