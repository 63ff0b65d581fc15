// Package export writes accepted profiles to downstream artifacts.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/soclens/profile-scout/internal/scout"
)

var csvHeader = []string{
	"username", "profile_url", "follower_count", "following_count",
	"post_count", "engagement_rate", "bio", "location", "language",
	"demographic", "source", "reason", "discovered_at",
}

var _ scout.Exporter = (*CSVWriter)(nil)

// CSVWriter writes accepted profiles to a CSV file, header first.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates the output file and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{file: f, writer: writer}, nil
}

// Export appends the profiles in order.
func (cw *CSVWriter) Export(profiles []scout.QualifiedProfile) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, p := range profiles {
		record := []string{
			p.Username,
			p.ProfileURL,
			strconv.Itoa(p.FollowerCount),
			strconv.Itoa(p.FollowingCount),
			strconv.Itoa(p.PostCount),
			strconv.FormatFloat(p.EngagementRate, 'f', 2, 64),
			p.Bio,
			p.Location,
			p.Language,
			p.Demographic,
			p.Source,
			p.Reason,
			p.DiscoveredAt.Format(time.RFC3339),
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
