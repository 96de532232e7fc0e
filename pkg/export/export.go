package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"iter"
	"strconv"

	"github.com/kilianp07/cwire/core/station"
)

// Header is the first line of an exported station file.
const Header = "Station_ID:Capacity:Load"

// WriteRecords writes the header followed by one id:capacity:load line per
// station, in the order produced by seq.
func WriteRecords(w io.Writer, seq iter.Seq[station.Station]) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}
	buf := make([]byte, 0, 64)
	for s := range seq {
		buf = appendRecord(buf[:0], s, ':')
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func appendRecord(buf []byte, s station.Station, sep byte) []byte {
	buf = strconv.AppendInt(buf, int64(s.ID), 10)
	buf = append(buf, sep)
	buf = strconv.AppendInt(buf, s.Capacity, 10)
	buf = append(buf, sep)
	return strconv.AppendInt(buf, s.Load, 10)
}

// WriteJSON writes the stations as a JSON array.
func WriteJSON(w io.Writer, seq iter.Seq[station.Station]) error {
	out := []station.Station{}
	for s := range seq {
		out = append(out, s)
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// WriteCSV writes the stations in CSV format with a header row.
func WriteCSV(w io.Writer, seq iter.Seq[station.Station]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"station_id", "capacity", "load"}); err != nil {
		return err
	}
	for s := range seq {
		rec := []string{
			strconv.FormatInt(int64(s.ID), 10),
			strconv.FormatInt(s.Capacity, 10),
			strconv.FormatInt(s.Load, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
