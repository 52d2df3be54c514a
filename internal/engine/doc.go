// Package engine drives a [dynamo.Model] forward at a fixed step size and
// logs every advanced state into a [series.Log].
//
// The engine is a two-state machine, Paused (initial) and Running. Start and
// Pause hand the periodic tick to a [Scheduler]; the engine itself owns no
// timer. [Manual] fires ticks on demand, [Ticker] fires them from a goroutine
// at a fixed wall-clock cadence.
//
//	model := physics.NewMassSpringDamper()
//	sched := engine.NewManual()
//	eng := engine.New(model, series.New(), sched)
//	if err := eng.Reset(params); err != nil {
//	    return err
//	}
//	eng.SetStepSize(0.01)
//	eng.Start()
//	sched.FireN(100)
//	eng.Pause()
//
// # Thread Safety
//
// Reset, SetStepSize, Start, Pause, StepOnce and the scheduled tick are
// serialized by a single mutex. Snapshot reads the last logged sample under a
// separate lock and never waits for a tick.
package engine
