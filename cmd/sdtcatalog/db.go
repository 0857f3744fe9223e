package main

import (
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mrjoshuak/go-sdt/sdtutil"
)

type catalogDB struct {
	db *sql.DB
}

func openCatalog(file string) (*catalogDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS file (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, width INTEGER NOT NULL, height INTEGER NOT NULL, channels INTEGER NOT NULL, time_bins INTEGER NOT NULL, planes INTEGER NOT NULL, time_base_ns REAL NOT NULL, module TEXT, acquired TEXT, size INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &catalogDB{
		db: db,
	}, nil
}

func (c *catalogDB) Close() error {
	return c.db.Close()
}

// Scan walks dir for .sdt files and upserts their header summaries.
// Files that fail to decode are logged and skipped so one corrupt file
// cannot abort a whole tree.
func (c *catalogDB) Scan(dir string, logger *log.Logger) error {
	ins, err := c.db.Prepare("INSERT INTO file (path, width, height, channels, time_bins, planes, time_base_ns, module, acquired, size) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(path) DO UPDATE SET width = excluded.width, height = excluded.height, channels = excluded.channels, time_bins = excluded.time_bins, planes = excluded.planes, time_base_ns = excluded.time_base_ns, module = excluded.module, acquired = excluded.acquired, size = excluded.size")
	if err != nil {
		return err
	}
	defer ins.Close()

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".sdt") {
			return nil
		}

		info, err := sdtutil.GetFileInfo(path)
		if err != nil {
			logger.Printf("skipping %s: %v", path, err)
			return nil
		}

		logger.Printf("indexing %s", path)
		_, err = ins.Exec(info.Path, info.Width, info.Height, info.Channels,
			info.TimeBins, info.Planes, info.TimeBaseNS, info.Module,
			info.Acquired, info.FileSize)
		return err
	})
}

// List prints every indexed file ordered by path.
func (c *catalogDB) List(w io.Writer) error {
	rows, err := c.db.Query("SELECT path, width, height, channels, time_bins, time_base_ns, size FROM file ORDER BY path")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			path               string
			width, height      int
			channels, timeBins int
			timeBase           float64
			size               int64
		)
		if err := rows.Scan(&path, &width, &height, &channels, &timeBins, &timeBase, &size); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%d ch\t%d bins\t%g ns\t%d bytes\n",
			path, width, height, channels, timeBins, timeBase, size)
	}
	return rows.Err()
}
