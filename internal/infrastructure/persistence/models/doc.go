// Package models contains the GORM persistence models. They are the single
// canonical schema for every entity; the firestore documents mirror them.
// Domain types stay free of ORM tags and are converted with ToDomain and
// FromDomain.
package models
