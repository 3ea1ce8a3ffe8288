// Package number provides the number entities of an adaptive cover entry.
//
// The only entity is the shaded-area distance override: the distance from
// the window, in metres, that the cover keeps out of direct sunlight. It is
// a view over the entry's coordinator. Reading it never has side effects;
// setting it stores the override on the coordinator and triggers a refresh.
// On attach the last persisted value is restored, falling back to the
// configured distance.
package number
