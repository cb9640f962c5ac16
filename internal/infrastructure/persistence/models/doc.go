// Package models holds the gorm persistence models. Each model maps one
// aggregate (or one child table of an aggregate) and converts with
// ToDomain / FromDomain so that domain types carry no gorm tags.
package models
