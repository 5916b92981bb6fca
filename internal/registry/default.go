package registry

// defaultFields is the radiosonde field table carried over the LoRa link.
// Keys are assigned once and must never be reused for a different field:
// receivers with an older table keep unknown keys verbatim, so reassigning
// a key silently corrupts decoded records on old receivers.
var defaultFields = []Descriptor{
	{Name: "type", Key: 0, Scale: 1},
	{Name: "station", Key: 1, Scale: 1},
	{Name: "callsign", Key: 2, Scale: 1},
	{Name: "latitude", Key: 3, Scale: 1e5},
	{Name: "longitude", Key: 4, Scale: 1e5},
	{Name: "altitude", Key: 5, Scale: 1},
	{Name: "speed", Key: 6, Scale: 1e2},
	{Name: "heading", Key: 7, Scale: 1e5},
	{Name: "time", Key: 8, Scale: 1},
	{Name: "comment", Key: 9, Scale: 1},
	{Name: "model", Key: 10, Scale: 1},
	{Name: "freq", Key: 11, Scale: 1e3},
	{Name: "temp", Key: 12, Scale: 10},
	{Name: "frame", Key: 13, Scale: 1},
	{Name: "humidity", Key: 14, Scale: 10},
	{Name: "pressure", Key: 15, Scale: 10},
	{Name: "sats", Key: 16, Scale: 1},
	{Name: "batt", Key: 17, Scale: 10},
	{Name: "sdr_device_idx", Key: 18, Scale: 1},
	{Name: "vel_v", Key: 19, Scale: 10},
	{Name: "vel_h", Key: 20, Scale: 10},
	{Name: "bt", Key: 21, Scale: 1},
	{Name: "snr", Key: 22, Scale: 10},
	{Name: "subtype", Key: 23, Scale: 1},
	{Name: "manufacturer", Key: 24, Scale: 1},
}

// Default returns the built-in radiosonde field registry.
func Default() *Registry {
	r, err := New(defaultFields)
	if err != nil {
		// The built-in table is validated by tests; reaching this is a bug.
		panic(err)
	}
	return r
}
