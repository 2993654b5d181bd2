package wayback

import (
	"sort"
	"strconv"

	"github.com/davgn/waymeta/internal/core/domain"
)

// cdxFieldCount is the number of columns requested via fl: timestamp,
// original, mimetype, statuscode, digest, length.
const cdxFieldCount = 6

// redirectSentinel marks revisit/redirect rows in the statuscode column.
const redirectSentinel = "-"

// FilterRows turns raw CDX rows into usable snapshots, sorted descending by
// timestamp. The first row is the column header. Rows are dropped when they
// are short, carry the redirect sentinel, fail numeric parsing, or are not a
// 200 HTML capture above the content-size floor. Archived error and removal
// pages are smaller than any real watch page.
func FilterRows(rows [][]string, minContentLength int64) (snapshots []*domain.Snapshot, rawCount int) {
	if len(rows) <= 1 {
		return nil, 0
	}

	data := rows[1:]
	rawCount = len(data)

	for _, row := range data {
		if len(row) < cdxFieldCount {
			continue
		}

		timestamp, original, mimetype := row[0], row[1], row[2]
		if row[3] == redirectSentinel {
			continue
		}

		status, err := strconv.Atoi(row[3])
		if err != nil {
			continue
		}
		length, err := strconv.ParseInt(row[5], 10, 64)
		if err != nil {
			continue
		}

		if status != 200 || mimetype != "text/html" || length <= minContentLength {
			continue
		}

		snap, err := domain.NewSnapshot(timestamp, original, mimetype, status, row[4], length)
		if err != nil {
			continue
		}
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp > snapshots[j].Timestamp
	})

	return snapshots, rawCount
}
