package store

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/openkvlab/boltdb"
)

// Stats contains store statistics. All counters are cumulative since the
// store was opened (or since the last ResetStats call).
//
// Stats is safe for concurrent access - call db.Stats() to get a snapshot.
type Stats struct {
	// OpenedAt is when the store was opened.
	OpenedAt time.Time

	// Transaction counts
	ReadTxTotal  int64 // Total read-only transactions started
	WriteTxTotal int64 // Total write transactions started

	// Document counts
	DocsWritten int64 // Puts, inserts and updates alike
	DocsDeleted int64 // Successful removes
	DocsRead    int64 // Documents returned by Get and Find

	// Query counts
	QueriesTotal    int64 // Total Find calls
	IndexScansTotal int64 // Finds served by a secondary index
	FullScansTotal  int64 // Finds that walked _all_docs
	IndexesCreated  int64 // CreateIndex calls that defined a new index

	// Collection counts
	CollectionsDropped int64

	// Timing (cumulative durations)
	QueryDuration time.Duration // Total time spent in Find
	WriteDuration time.Duration // Total time spent in Put and Remove

	// BoltDB is the underlying BoltDB statistics (passthrough).
	BoltDB boltdb.Stats
}

// String returns a human-readable multi-line summary of the statistics.
func (s Stats) String() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("thunderdoc store stats (opened %s)\n", s.OpenedAt.Format(time.RFC3339)))
	b.WriteString(strings.Repeat("-", 50) + "\n")

	b.WriteString("Transactions:\n")
	b.WriteString(fmt.Sprintf("  Read:       %s    Write:      %s\n",
		formatCount(s.ReadTxTotal), formatCount(s.WriteTxTotal)))

	b.WriteString("\nDocuments:\n")
	b.WriteString(fmt.Sprintf("  Written:    %s    (total: %s)\n",
		formatCount(s.DocsWritten), formatDuration(s.WriteDuration)))
	b.WriteString(fmt.Sprintf("  Deleted:    %s\n", formatCount(s.DocsDeleted)))
	b.WriteString(fmt.Sprintf("  Read:       %s\n", formatCount(s.DocsRead)))

	b.WriteString("\nQueries:\n")
	b.WriteString(fmt.Sprintf("  Total:      %s    (total: %s)\n",
		formatCount(s.QueriesTotal), formatDuration(s.QueryDuration)))
	b.WriteString(fmt.Sprintf("  Index Scans: %s   Full Scans: %s\n",
		formatCount(s.IndexScansTotal), formatCount(s.FullScansTotal)))
	b.WriteString(fmt.Sprintf("  Indexes Created: %s\n", formatCount(s.IndexesCreated)))

	b.WriteString("\nCollections:\n")
	b.WriteString(fmt.Sprintf("  Dropped:    %s\n", formatCount(s.CollectionsDropped)))

	b.WriteString("\nBoltDB:\n")
	b.WriteString(fmt.Sprintf("  Free Pages:    %d    Pending Pages: %d\n",
		s.BoltDB.FreePageN, s.BoltDB.PendingPageN))
	b.WriteString(fmt.Sprintf("  Free Alloc:    %s    Freelist Size: %s\n",
		formatBytes(s.BoltDB.FreeAlloc), formatBytes(s.BoltDB.FreelistInuse)))
	b.WriteString(fmt.Sprintf("  Open Read Tx:  %d    Total Tx:      %d\n",
		s.BoltDB.OpenTxN, s.BoltDB.TxN))

	return b.String()
}

// internalStats holds atomic counters for thread-safe statistics tracking.
// Durations are stored as int64 nanoseconds for atomic operations.
type internalStats struct {
	readTx  int64
	writeTx int64

	written int64
	deleted int64
	reads   int64

	queries        int64
	indexScans     int64
	fullScans      int64
	indexesCreated int64

	dropped int64

	queryDuration int64
	writeDuration int64
}

func (s *internalStats) snapshot(openedAt time.Time, boltStats boltdb.Stats) Stats {
	return Stats{
		OpenedAt: openedAt,

		ReadTxTotal:  atomic.LoadInt64(&s.readTx),
		WriteTxTotal: atomic.LoadInt64(&s.writeTx),

		DocsWritten: atomic.LoadInt64(&s.written),
		DocsDeleted: atomic.LoadInt64(&s.deleted),
		DocsRead:    atomic.LoadInt64(&s.reads),

		QueriesTotal:    atomic.LoadInt64(&s.queries),
		IndexScansTotal: atomic.LoadInt64(&s.indexScans),
		FullScansTotal:  atomic.LoadInt64(&s.fullScans),
		IndexesCreated:  atomic.LoadInt64(&s.indexesCreated),

		CollectionsDropped: atomic.LoadInt64(&s.dropped),

		QueryDuration: time.Duration(atomic.LoadInt64(&s.queryDuration)),
		WriteDuration: time.Duration(atomic.LoadInt64(&s.writeDuration)),

		BoltDB: boltStats,
	}
}

func (s *internalStats) reset() {
	atomic.StoreInt64(&s.readTx, 0)
	atomic.StoreInt64(&s.writeTx, 0)

	atomic.StoreInt64(&s.written, 0)
	atomic.StoreInt64(&s.deleted, 0)
	atomic.StoreInt64(&s.reads, 0)

	atomic.StoreInt64(&s.queries, 0)
	atomic.StoreInt64(&s.indexScans, 0)
	atomic.StoreInt64(&s.fullScans, 0)
	atomic.StoreInt64(&s.indexesCreated, 0)

	atomic.StoreInt64(&s.dropped, 0)

	atomic.StoreInt64(&s.queryDuration, 0)
	atomic.StoreInt64(&s.writeDuration, 0)
}

// formatCount formats an integer with comma separators for readability.
func formatCount(n int64) string {
	if n < 0 {
		return "-" + formatCount(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	var result strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fus", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	case d < time.Minute:
		return fmt.Sprintf("%.3fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.2fm", d.Minutes())
	}
	return fmt.Sprintf("%.2fh", d.Hours())
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(b int) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/GB)
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/MB)
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/KB)
	default:
		return fmt.Sprintf("%d B", b)
	}
}
