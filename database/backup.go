package database

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	backupPrefix = "weatherboard_"
	backupSuffix = ".db.zip"
	backupLayout = "20060102_150405"
)

type BackupFile struct {
	Name    string
	Created time.Time
	Size    int64
}

func (d *Database) BackupDir() string {
	return filepath.Join(filepath.Dir(d.path), "backups")
}

// Backup writes a compacted copy of the database into a zip archive in
// BackupDir.
func (d *Database) Backup(ctx context.Context) (BackupFile, error) {
	dir := d.BackupDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return BackupFile{}, fmt.Errorf("create backup directory: %w", err)
	}

	now := time.Now()
	name := backupPrefix + now.Format(backupLayout)
	snapshot := filepath.Join(dir, name+".db")
	if _, err := d.write.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return BackupFile{}, fmt.Errorf("vacuuming database into '%s': %w", snapshot, err)
	}
	defer func() {
		if err := os.Remove(snapshot); err != nil && !errors.Is(err, fs.ErrNotExist) {
			d.logger.Warn("could not remove uncompressed backup", slog.String("path", snapshot), slog.Any("error", err))
		}
	}()

	archive := filepath.Join(dir, name+backupSuffix)
	size, err := compress(snapshot, archive, filepath.Base(d.path))
	if err != nil {
		_ = os.Remove(archive)
		return BackupFile{}, err
	}

	d.logger.Info("database backup complete", slog.String("filename", archive), slog.Int64("bytes", size))
	return BackupFile{Name: filepath.Base(archive), Created: now, Size: size}, nil
}

// compress stores src as entry in a new zip archive at dst and returns
// the archive size.
func compress(src string, dst string, entry string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open database backup for compression: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("get file info: %w", err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, fmt.Errorf("create zip header: %w", err)
	}
	header.Name = entry
	header.Method = zip.Deflate

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("create zip file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	w, err := zw.CreateHeader(header)
	if err != nil {
		return 0, fmt.Errorf("create zip file entry: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return 0, fmt.Errorf("write database to zip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalize zip file: %w", err)
	}

	stat, err := out.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat zip file: %w", err)
	}
	return stat.Size(), nil
}

// ListBackups returns the archives in BackupDir, newest first. A missing
// directory means no backups.
func (d *Database) ListBackups() ([]BackupFile, error) {
	entries, err := os.ReadDir(d.BackupDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []BackupFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix)
		created, err := time.ParseInLocation(backupLayout, stamp, time.Local)
		if err != nil {
			d.logger.Debug("not a backup file", slog.String("filename", name))
			continue
		}
		b := BackupFile{Name: name, Created: created}
		if info, err := e.Info(); err == nil {
			b.Size = info.Size()
		}
		backups = append(backups, b)
	}

	slices.SortFunc(backups, func(a, b BackupFile) int {
		return b.Created.Compare(a.Created)
	})
	return backups, nil
}

// PurgeBackups deletes archives older than retentionDays and reports how
// many were removed. retentionDays < 1 keeps everything.
func (d *Database) PurgeBackups(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays < 1 {
		return 0, nil
	}

	backups, err := d.ListBackups()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	removed := 0
	for _, b := range backups {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !b.Created.Before(cutoff) {
			continue
		}
		path := filepath.Join(d.BackupDir(), b.Name)
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove old backup '%s': %w", path, err)
		}
		d.logger.Debug("deleted old backup", slog.String("path", path))
		removed++
	}

	return removed, nil
}
