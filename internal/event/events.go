package event

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
)

// ProductChangedEvent is published on product.created and product.updated.
// Product carries the wire representation of the entity after the change.
type ProductChangedEvent struct {
	ProductID  string         `json:"product_id"`
	LocationID string         `json:"location_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	Product    map[string]any `json:"product"`
}

// ProductDeletedEvent is published on product.deleted. Hard reports whether
// the row was removed or only marked as deleted.
type ProductDeletedEvent struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	ActorID    string `json:"actor_id,omitempty"`
	Hard       bool   `json:"hard"`
}
