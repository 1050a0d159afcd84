package publish

import (
	"fmt"
	"io"
	"os"
)

// DryRunPublisher prints what would be published without writing anything
type DryRunPublisher struct {
	out     io.Writer
	content bool
}

// NewDryRunPublisher creates a dry-run publisher writing to out (stdout when
// nil). With content set, each artifact's body is printed as well.
func NewDryRunPublisher(out io.Writer, content bool) *DryRunPublisher {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunPublisher{out: out, content: content}
}

// Publish prints the artifact name and size
func (p *DryRunPublisher) Publish(name string, data []byte) error {
	fmt.Fprintf(p.out, "--- %s (%d bytes) ---\n", name, len(data))
	if p.content {
		if _, err := p.out.Write(data); err != nil {
			return err
		}
		fmt.Fprintln(p.out)
	}
	return nil
}
