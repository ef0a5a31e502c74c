package snotel

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// parseArchive decompresses the bulk archive and concatenates the
// per-station CSV entries into one table, tagging every row with the
// station identifier taken from the entry's base filename. Entries
// that are not CSV files or decode to zero bytes are skipped.
func parseArchive(data []byte) (*Table, error) {
	stream, err := newDecompressor(data)
	if err != nil {
		return nil, fmt.Errorf("decompress bulk archive: %w", err)
	}

	var tables []*Table
	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bulk archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, ".csv") {
			continue
		}
		stationID := strings.TrimSuffix(path.Base(hdr.Name), ".csv")

		raw, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read archive entry %s: %w", hdr.Name, err)
		}
		if len(raw) == 0 {
			continue
		}

		t, err := parseCSV(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		ids := make([]any, t.NumRows())
		for i := range ids {
			ids[i] = stationID
		}
		if err := t.AddColumn("station_id", TypeString, ids); err != nil {
			return nil, &SchemaValidationError{Column: "station_id", Reason: err.Error()}
		}
		tables = append(tables, t)
	}

	if len(tables) == 0 {
		return nil, &SchemaValidationError{Reason: "bulk archive contained no station data"}
	}
	return concatRelaxed(tables)
}

// newDecompressor sniffs the compression container: the upstream
// archive has shipped both as XZ and as the older LZMA-alone format.
func newDecompressor(data []byte) (io.Reader, error) {
	if bytes.HasPrefix(data, xzMagic) {
		return xz.NewReader(bytes.NewReader(data))
	}
	return lzma.NewReader(bytes.NewReader(data))
}
