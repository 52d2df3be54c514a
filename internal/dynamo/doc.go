// Package dynamo defines the contract between physical models and the
// stepping engine.
//
//   - [Model]: reset / step / snapshot / render capability
//   - [Snapshot]: derived kinematics and energetics at one instant
//   - [Params]: numeric parameter map consumed by Reset
//   - [ParameterError]: the only domain error, matched by [ErrInvalidParameter]
//
// # Example
//
//	model := physics.NewMassSpringDamper()
//	if err := model.Reset(dynamo.Params{"m": 1, "k": 20}); err != nil {
//	    if errors.Is(err, dynamo.ErrInvalidParameter) {
//	        // revert to the last good parameters
//	    }
//	}
//	model.Step(0.01)
//	s := model.Snapshot()
//
// # Thread Safety
//
// Model implementations are NOT thread-safe. The engine serializes every
// call that reaches a model.
package dynamo
