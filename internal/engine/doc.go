// Package engine contains the stage sequencer and the mini-game state machines
// of a Gift Quest session.
//
// ARCHITECTURAL RULE: engines never render anything and never sleep. They drive
// the Presenter and Feedback ports and schedule their own follow-ups through a
// Scheduler. All handlers of one session run on a single goroutine (see Loop),
// so no engine state is guarded by a mutex; the boolean gates (locked,
// inputEnabled) are the only locking.
package engine
