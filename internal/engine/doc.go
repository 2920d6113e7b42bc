// Package engine contains the game loop and simulation logic.
// This is the heartbeat of DevLearn Academy.
//
// ARCHITECTURAL RULE: systems never publish while holding the store lock.
// Every mutation runs inside state.Store.Update; the resulting events are
// published once the new state is committed, so handlers always observe it.
package engine
