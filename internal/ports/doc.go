// Package ports defines the interfaces that connect the bridge core to
// the components living outside this repository.
//
// The datagram listener feeding raw records, the long-range radio
// transport, and the uplink that republishes decoded records are external
// collaborators; this package specifies them only at their interface
// boundary so the core can be composed and tested without them.
//
// # Port Interfaces
//
//   - [RecordSource]: supplies raw telemetry records to the bridge
//   - [FrameTransmitter]: carries encoded frames over the radio link
//   - [Rebooter]: periodic radio housekeeping hook
//   - [UplinkPublisher]: republishes decoded records to an aggregation service
//   - [Logger]: structured logging abstraction
package ports
