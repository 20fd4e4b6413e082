package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// output is the record destination of one run. A named file is written to a
// temp file next to it and only renamed into place by Commit, so a failed
// run leaves any previous file untouched.
type output struct {
	*bufio.Writer
	path string
	tmp  *os.File
	done bool
}

func createOutput(path string, stdout io.Writer) (*output, error) {
	if path == "" {
		return &output{Writer: bufio.NewWriter(stdout)}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".aisd_out_*")
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return &output{Writer: bufio.NewWriter(tmp), path: path, tmp: tmp}, nil
}

// Commit flushes buffered records and moves the file into place.
func (o *output) Commit() error {
	if o.done {
		return nil
	}
	o.done = true

	if err := o.Flush(); err != nil {
		o.discard()
		return fmt.Errorf("flush output: %w", err)
	}
	if o.tmp == nil {
		return nil
	}
	if err := o.tmp.Close(); err != nil {
		_ = os.Remove(o.tmp.Name())
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(o.tmp.Name(), o.path); err != nil {
		_ = os.Remove(o.tmp.Name())
		return fmt.Errorf("write output %s: %w", o.path, err)
	}
	return nil
}

// Abort drops the output unless it was committed. Safe to defer.
func (o *output) Abort() {
	if o.done {
		return
	}
	o.done = true
	if o.tmp == nil {
		// records already handed to stdout stay there
		_ = o.Flush()
		return
	}
	o.discard()
}

func (o *output) discard() {
	if o.tmp == nil {
		return
	}
	_ = o.tmp.Close()
	_ = os.Remove(o.tmp.Name())
}
