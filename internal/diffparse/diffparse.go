// Package diffparse converts the zero-context unified diff text a
// HistoryProvider emits for one file at one revision into an ordered list
// of Hunk records. It never computes a diff itself — internal/contentdiff
// does that for callers that only have content snapshots.
package diffparse

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"contextpilot/internal/errs"
)

// Hunk is one contiguous change region of a unified diff, parsed at zero
// context lines: -a,b +c,d followed only by "-" and "+" lines.
type Hunk struct {
	DeletedStart   int
	DeletedCount   int
	AddedStart     int
	AddedCount     int
	DeletedContent []string
	AddedContent   []string
}

// headerPattern matches "@@ -a,b +c,d @@", with b and d optional (default 1).
var headerPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseDiff parses the unified diff text for one file at one revision.
// file names the file, used only to annotate MalformedDiffError.
func ParseDiff(file, diffText string) ([]Hunk, error) {
	var hunks []Hunk
	var current *Hunk

	flush := func() error {
		if current == nil {
			return nil
		}
		if len(current.DeletedContent) != current.DeletedCount {
			return &errs.MalformedDiffError{File: file, Detail: "hunk body has " +
				strconv.Itoa(len(current.DeletedContent)) + " deleted lines, header promised " +
				strconv.Itoa(current.DeletedCount)}
		}
		if len(current.AddedContent) != current.AddedCount {
			return &errs.MalformedDiffError{File: file, Detail: "hunk body has " +
				strconv.Itoa(len(current.AddedContent)) + " added lines, header promised " +
				strconv.Itoa(current.AddedCount)}
		}
		hunks = append(hunks, *current)
		current = nil
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(diffText))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "@@") {
			if err := flush(); err != nil {
				return nil, err
			}
			h, err := parseHeader(file, line)
			if err != nil {
				return nil, err
			}
			if h.DeletedCount == 0 && h.AddedCount == 0 {
				return nil, &errs.MalformedDiffError{File: file, Detail: "empty hunk header"}
			}
			current = h
			continue
		}
		if current == nil {
			// Lines before the first hunk header (diff --git, ---/+++ paths,
			// index, mode and rename lines) are not part of any hunk body;
			// ignore them. Any other text there is not a unified diff.
			known := line == ""
			for _, p := range []string{"diff ", "index ", "--- ", "+++ ", "old mode ", "new mode ",
				"new file mode ", "deleted file mode ", "similarity index ", "dissimilarity index ",
				"rename from ", "rename to ", "copy from ", "copy to ", "Binary files "} {
				known = known || strings.HasPrefix(line, p)
			}
			if !known {
				return nil, &errs.MalformedDiffError{File: file, Detail: "unexpected line before first hunk header: " + line}
			}
			continue
		}
		switch {
		case strings.HasPrefix(line, "-"):
			current.DeletedContent = append(current.DeletedContent, line[1:])
		case strings.HasPrefix(line, "+"):
			current.AddedContent = append(current.AddedContent, line[1:])
		default:
			// Context lines are not expected at zero context; ignored rather
			// than rejected so providers that emit a trailing "\ No newline"
			// marker or similar noise don't abort the whole file.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &errs.MalformedDiffError{File: file, Detail: "scan diff text: " + err.Error()}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return hunks, nil
}

func parseHeader(file, line string) (*Hunk, error) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, &errs.MalformedDiffError{File: file, Detail: "unparsable hunk header: " + line}
	}
	deletedStart, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, &errs.MalformedDiffError{File: file, Detail: "bad deleted_start in header: " + line}
	}
	deletedCount := 1
	if m[2] != "" {
		deletedCount, err = strconv.Atoi(m[2])
		if err != nil {
			return nil, &errs.MalformedDiffError{File: file, Detail: "bad deleted_count in header: " + line}
		}
	}
	addedStart, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, &errs.MalformedDiffError{File: file, Detail: "bad added_start in header: " + line}
	}
	addedCount := 1
	if m[4] != "" {
		addedCount, err = strconv.Atoi(m[4])
		if err != nil {
			return nil, &errs.MalformedDiffError{File: file, Detail: "bad added_count in header: " + line}
		}
	}
	return &Hunk{
		DeletedStart: deletedStart,
		DeletedCount: deletedCount,
		AddedStart:   addedStart,
		AddedCount:   addedCount,
	}, nil
}
</content>
