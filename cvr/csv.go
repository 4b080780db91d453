package cvr

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/kouellette/rcv/ballot"
)

// LoadBallotsCSV parses a cast-vote-record export where each row is one
// ballot: an id column, a precinct column, then one column per rank
// position in ascending order. A cell may hold multiple candidate IDs
// separated by "|" to encode an overvote, or be empty to encode a
// skipped rank. This is encoding/csv (stdlib): none of the example
// repos import a third-party CSV library, and the format here is a
// flat rectangular grid with no quoting needs beyond what encoding/csv
// already handles.
func LoadBallotsCSV(r io.Reader) ([]ballot.Ballot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cvr: read csv header: %w", err)
	}
	if len(header) < 3 || header[0] != "id" || header[1] != "precinct" {
		return nil, fmt.Errorf("cvr: csv header must start with id,precinct,rank1,rank2,...")
	}
	numRanks := len(header) - 2

	var out []ballot.Ballot
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cvr: read csv row: %w", err)
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("cvr: row %v missing id/precinct columns", row)
		}

		ranks := make(map[int][]string, numRanks)
		for i := 0; i < numRanks && 2+i < len(row); i++ {
			cell := strings.TrimSpace(row[2+i])
			if cell == "" {
				continue
			}
			ranks[i+1] = strings.Split(cell, "|")
		}
		out = append(out, ballot.Ballot{ID: row[0], Precinct: row[1], Ranks: ranks})
	}
	return out, nil
}
