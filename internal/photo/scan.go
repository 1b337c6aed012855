package photo

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-places/internal/geo"
)

// CaptureTimeLayout is the EXIF DateTime format, "YYYY:MM:DD HH:MM:SS".
const CaptureTimeLayout = "2006:01:02 15:04:05"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".heic": true,
	".png":  true,
	".dng":  true,
	".nef":  true,
	".cr2":  true,
	".arw":  true,
}

func init() {
	exif.RegisterParsers(mknote.All...)
}

// ScanProgress is reported once per file during Scan.
type ScanProgress struct {
	Current int
	Total   int
	Path    string
}

// ParseCaptureTime parses an EXIF DateTime value. EXIF carries no zone, the result is UTC.
func ParseCaptureTime(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	t, err := time.Parse(CaptureTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid capture time %q: %w", s, err)
	}
	return t, nil
}

// Scan walks root and returns a record for every image file, in lexical path order.
// Files without readable EXIF are kept as records with no attributes.
func Scan(ctx context.Context, root string, onProgress func(ScanProgress)) ([]*Record, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.WithError(err).WithField("path", path).Warn("skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && imageExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	records := make([]*Record, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, ReadRecord(path))
		if onProgress != nil {
			onProgress(ScanProgress{Current: i + 1, Total: len(paths), Path: path})
		}
	}
	return records, nil
}

// ReadRecord builds a record from the EXIF data of a single file.
func ReadRecord(path string) *Record {
	f, err := os.Open(path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Debug("cannot open photo")
		return NewRecord(path, nil, nil)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// Plenty of images carry no EXIF at all.
		logrus.WithField("path", path).Debug("no EXIF data")
		return NewRecord(path, nil, nil)
	}

	return NewRecord(path, captureTime(x), gpsLocation(x))
}

func captureTime(x *exif.Exif) *time.Time {
	for _, field := range []exif.FieldName{exif.DateTime, exif.DateTimeOriginal} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		val, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, err := ParseCaptureTime(val); err == nil {
			return &t
		}
	}
	return nil
}

func gpsLocation(x *exif.Exif) *geo.Point {
	lat, lon, err := x.LatLong()
	if err != nil {
		return nil
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil
	}
	return &geo.Point{Lon: lon, Lat: lat}
}
