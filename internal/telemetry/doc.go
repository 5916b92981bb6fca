// Package telemetry contains the core domain types for sondebridge.
//
// This package represents the innermost layer of the application. It has
// no dependencies on infrastructure concerns (radio, serialization,
// logging) and contains only the logical data model.
//
// # Types
//
//   - [Value]: A tagged variant holding one logical telemetry value
//     (boolean, integer, float, string, bytes, list, or map)
//   - [Record]: A named-field telemetry record as produced by a
//     radiosonde decoder
//
// Records arrive as loosely typed JSON documents. All dynamic type
// dispatch happens once, at the parse boundary ([ParseRecord] and
// [FromNative]); inside the pipeline a value always carries its kind
// explicitly, so transforms switch on [Value.Kind] instead of runtime
// type assertions.
package telemetry
