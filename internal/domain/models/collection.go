// internal/domain/models/collection.go
package models

// CollectionInfo describes the observed state of a collection.
type CollectionInfo struct {
	Name         string `json:"name"`
	Exists       bool   `json:"exists"`
	Documents    int64  `json:"documents"`
	HasValidator bool   `json:"has_validator"`
}
