// Package merge combines line-delimited record streams into one stream with
// duplicate turns removed.
//
// A record is a duplicate when its uuid was seen before, or when its
// fingerprint (timestamp, role and the first 500 characters of content) was.
// The uuid check runs first; a record with a new uuid still goes through the
// fingerprint check so the same turn exported from two machines under
// different uuids is only kept once.
package merge

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/Zuo-Peng/ai-session-dataset/internal/jsonl"
	"github.com/tidwall/gjson"
)

const (
	defaultPrefixLen = 500
	fingerprintLen   = 12
)

type Verdict int

const (
	VerdictKept Verdict = iota
	VerdictUUIDDuplicate
	VerdictContentDuplicate
)

func (v Verdict) String() string {
	switch v {
	case VerdictKept:
		return "kept"
	case VerdictUUIDDuplicate:
		return "uuid_duplicate"
	case VerdictContentDuplicate:
		return "content_duplicate"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Merger holds the dedup state of one merge run. It is not safe for
// concurrent use.
type Merger struct {
	policy     jsonl.Policy
	logger     *slog.Logger
	prefixLen  int
	seenUUIDs  map[string]struct{}
	seenHashes map[string]struct{}
	stats      Stats
}

type Option func(*Merger)

// WithPolicy sets how malformed lines are treated. The default aborts.
func WithPolicy(p jsonl.Policy) Option {
	return func(m *Merger) {
		m.policy = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) {
		m.logger = logger
	}
}

// WithPrefixLen changes how many leading characters of content feed the
// fingerprint.
func WithPrefixLen(n int) Option {
	return func(m *Merger) {
		if n > 0 {
			m.prefixLen = n
		}
	}
}

func New(opts ...Option) *Merger {
	m := &Merger{
		policy:     jsonl.PolicyAbort,
		logger:     slog.Default(),
		prefixLen:  defaultPrefixLen,
		seenUUIDs:  make(map[string]struct{}),
		seenHashes: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stats returns the counters accumulated so far.
func (m *Merger) Stats() Stats {
	return m.stats
}

// Classify runs one encoded record through both dedup checks and updates the
// counters. Lines that are not UTF-8 encoded JSON objects return an error
// and are not counted.
func (m *Merger) Classify(line []byte) (Verdict, error) {
	if !utf8.Valid(line) {
		return 0, jsonl.ErrInvalidUTF8
	}
	if !gjson.ValidBytes(line) {
		return 0, fmt.Errorf("invalid JSON")
	}
	if !gjson.ParseBytes(line).IsObject() {
		return 0, fmt.Errorf("not a JSON object")
	}

	m.stats.Total++

	fields := gjson.GetManyBytes(line, "uuid", "timestamp", "role", "content")
	uuid, ts, role, content := fields[0], fields[1], fields[2], fields[3]

	if key := primaryKey(uuid); key != "" {
		if _, dup := m.seenUUIDs[key]; dup {
			m.stats.UUIDDupes++
			return VerdictUUIDDuplicate, nil
		}
		m.seenUUIDs[key] = struct{}{}
	}

	h := fingerprint(text(ts), text(role), text(content), m.prefixLen)
	if _, dup := m.seenHashes[h]; dup {
		m.stats.ContentDupes++
		return VerdictContentDuplicate, nil
	}
	m.seenHashes[h] = struct{}{}

	m.stats.Kept++
	return VerdictKept, nil
}

// MergeReader classifies every line of r and writes the kept ones to w
// unchanged, one per line. name identifies r in errors.
func (m *Merger) MergeReader(name string, r io.Reader, w io.Writer) error {
	for line, err := range jsonl.Lines(r) {
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		verdict, err := m.Classify(line.Data)
		if err != nil {
			derr := &jsonl.DecodeError{Path: name, Line: line.Number, Err: err}
			if herr := m.policy.Handle(m.logger, derr); herr != nil {
				return herr
			}
			m.stats.Malformed++
			continue
		}
		if verdict != VerdictKept {
			continue
		}

		if _, err := w.Write(line.Data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// MergeFiles merges the files in the given order into w. Output is buffered
// and flushed before returning, including on error.
func (m *Merger) MergeFiles(paths []string, w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	defer func() {
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flush output: %w", ferr)
		}
	}()

	for _, path := range paths {
		if err := m.mergeFile(path, bw); err != nil {
			return err
		}
	}
	return nil
}

func (m *Merger) mergeFile(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m.logger.Debug("merging file", "path", path)
	return m.MergeReader(path, f, w)
}

// Fingerprint is the content key used for the secondary dedup check: the
// first 12 hex digits of md5("timestamp|role|content[:500]"), where the
// prefix is counted in characters.
func Fingerprint(timestamp, role, content string) string {
	return fingerprint(timestamp, role, content, defaultPrefixLen)
}

func fingerprint(timestamp, role, content string, prefixLen int) string {
	key := timestamp + "|" + role + "|" + runePrefix(content, prefixLen)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

func runePrefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// primaryKey is the uuid as text. Missing, null and empty uuids disable the
// uuid check for the record.
func primaryKey(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw
	default:
		return ""
	}
}

// text renders a field for fingerprinting. Strings contribute their value,
// other JSON values their encoded form, absent or null fields nothing.
func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}
