// Package stream provides a RecordSource that reads newline-delimited
// record payloads from an io.Reader. It exists for the CLI and for tests;
// the production datagram listener is an external collaborator.
package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// maxRecordBytes bounds one record line. Radiosonde summary records are a
// few hundred bytes; anything near this limit is garbage input.
const maxRecordBytes = 64 * 1024

// Source reads record payloads line by line.
type Source struct {
	r io.Reader
}

// NewSource creates a source reading from r.
func NewSource(r io.Reader) *Source {
	return &Source{r: r}
}

// Listen delivers each non-empty line to handle until EOF or context
// cancellation. The payload slice is only valid for the duration of the
// call, matching the RecordSource contract.
func (s *Source) Listen(ctx context.Context, handle func(data []byte)) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 4096), maxRecordBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		handle(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	return nil
}
