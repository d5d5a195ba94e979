package db

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"
)

// AttachAdminRoutes mounts the catalogue debug console on mux under
// /debug/: a live SQL browser and a gzipped backup download.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://catalogue.db", db.DB, &tailsql.DBOptions{
		Label: "SSL catalogue",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the catalogue now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=catalogue-%d.db.gz", time.Now().Unix()))
		w.Header().Set("Content-Type", "application/gzip")
		if err := db.Backup(w); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
		}
	}))
	return nil
}

// Backup writes a gzip-compressed, consistent copy of the catalogue to w.
func (db *DB) Backup(w io.Writer) error {
	dir, err := os.MkdirTemp("", "catalogue-backup-")
	if err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logf("failed to remove backup dir: %v", err)
		}
	}()

	backupPath := filepath.Join(dir, "catalogue.db")
	if _, err := db.Exec("VACUUM INTO ?", backupPath); err != nil {
		return fmt.Errorf("vacuum into backup: %w", err)
	}

	f, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(w)
	if _, err := io.Copy(gz, f); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return gz.Close()
}
