package merge

import (
	"fmt"
	"io"
)

// Stats summarizes a merge run. Every decoded record lands in exactly one of
// UUIDDupes, ContentDupes or Kept, so their sum is Total. Malformed counts
// lines skipped under the skip policy and is not part of Total.
type Stats struct {
	Total        int
	UUIDDupes    int
	ContentDupes int
	Kept         int
	Malformed    int
}

func (s Stats) String() string {
	return fmt.Sprintf("total=%d uuid_dupes=%d content_dupes=%d kept=%d malformed=%d",
		s.Total, s.UUIDDupes, s.ContentDupes, s.Kept, s.Malformed)
}

// WriteSummary prints the human-readable report for the diagnostics channel.
func (s Stats) WriteSummary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Merge stats:\n  Total records: %d\n  UUID duplicates: %d\n  Content duplicates: %d\n  Kept: %d\n",
		s.Total, s.UUIDDupes, s.ContentDupes, s.Kept)
	if err != nil {
		return err
	}
	if s.Malformed > 0 {
		_, err = fmt.Fprintf(w, "  Malformed lines skipped: %d\n", s.Malformed)
	}
	return err
}
