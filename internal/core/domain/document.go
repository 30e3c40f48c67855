package domain

// Document is the store-level shape of an entity: a flat field-to-string
// map plus a type tag. It is the unit of atomic read/write in the store.
type Document map[string]string

// TypeTagField identifies the concrete entity type inside a Document.
const TypeTagField = "_type"
