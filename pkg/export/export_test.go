package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/cwire/core/station"
)

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	recs := []station.Station{{ID: 5, Capacity: 50, Load: 1}, {ID: 10, Capacity: 100, Load: -3}}
	require.NoError(t, WriteRecords(&buf, slices.Values(recs)))
	assert.Equal(t, "Station_ID:Capacity:Load\n5:50:1\n10:100:-3\n", buf.String())
}

func TestWriteRecordsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, slices.Values([]station.Station(nil))))
	assert.Equal(t, Header+"\n", buf.String())
}

func TestRoundTripFromTree(t *testing.T) {
	tree := station.NewTree()
	for _, s := range []station.Station{
		{ID: 30, Capacity: 300, Load: 2},
		{ID: -4, Capacity: 7, Load: 9_000_000_000},
		{ID: 12, Capacity: 0, Load: 0},
		{ID: 30, Capacity: 0, Load: 8},
	} {
		_, err := tree.InsertOrMerge(s)
		require.NoError(t, err)
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, tree.All()))

	got, err := ReadRecords(&buf)
	require.NoError(t, err)
	assert.Equal(t, tree.Stations(), got)
}

func TestDecoderStreamFormat(t *testing.T) {
	in := "1;100;5\n\n 2 ; 0 ; 7 \n1;0;3\n"
	d := NewDecoder(strings.NewReader(in), WithDelimiter(";"), WithoutHeader())
	var got []station.Station
	for {
		s, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, s)
	}
	assert.Equal(t, []station.Station{
		{ID: 1, Capacity: 100, Load: 5},
		{ID: 2, Capacity: 0, Load: 7},
		{ID: 1, Capacity: 0, Load: 3},
	}, got)
}

func TestDecoderMalformedIsRecoverable(t *testing.T) {
	in := Header + "\n1:2:3\n1:2\nx:2:3\n99999999999:1:1\n4:5:6\n"
	d := NewDecoder(strings.NewReader(in))

	var good []int32
	var bad []int
	for {
		s, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			require.ErrorIs(t, err, ErrMalformedRecord)
			var mr *MalformedRecordError
			require.ErrorAs(t, err, &mr)
			bad = append(bad, mr.Line)
			continue
		}
		good = append(good, s.ID)
	}
	assert.Equal(t, []int32{1, 4}, good)
	assert.Equal(t, []int{3, 4, 5}, bad)
}

func TestDecoderSkipsOverlongLine(t *testing.T) {
	in := "1;1;1\n" + strings.Repeat("9", 70_000) + "\n2;2;2\n"
	d := NewDecoder(strings.NewReader(in), WithDelimiter(";"), WithoutHeader())

	s, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, int32(1), s.ID)

	_, err = d.Next()
	require.ErrorIs(t, err, ErrMalformedRecord)
	require.ErrorIs(t, err, ErrLineTooLong)
	var mr *MalformedRecordError
	require.ErrorAs(t, err, &mr)
	assert.Equal(t, 2, mr.Line)
	assert.Less(t, len(mr.Text), 64)

	s, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, station.Station{ID: 2, Capacity: 2, Load: 2}, s)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderOverlongLastLine(t *testing.T) {
	in := "1;1;1\n" + strings.Repeat("9", 2*MaxLineLength)
	d := NewDecoder(strings.NewReader(in), WithDelimiter(";"), WithoutHeader())

	_, err := d.Next()
	require.NoError(t, err)
	_, err = d.Next()
	require.ErrorIs(t, err, ErrLineTooLong)
	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderLastLineWithoutNewline(t *testing.T) {
	recs, err := ReadRecords(strings.NewReader("1;1;1\r\n2;2;2"), WithDelimiter(";"), WithoutHeader())
	require.NoError(t, err)
	assert.Equal(t, []station.Station{{ID: 1, Capacity: 1, Load: 1}, {ID: 2, Capacity: 2, Load: 2}}, recs)
}

func TestReadRecordsAbortsOnMalformed(t *testing.T) {
	recs, err := ReadRecords(strings.NewReader(Header + "\n1:2:3\nbad\n4:5:6\n"))
	require.ErrorIs(t, err, ErrMalformedRecord)
	assert.Equal(t, []station.Station{{ID: 1, Capacity: 2, Load: 3}}, recs)
	assert.Contains(t, err.Error(), "line 3")
}

func TestWriteCSVAndJSON(t *testing.T) {
	recs := []station.Station{{ID: 1, Capacity: 2, Load: 3}}

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSV(&csvBuf, slices.Values(recs)))
	assert.Equal(t, "station_id,capacity,load\n1,2,3\n", csvBuf.String())

	var jsonBuf bytes.Buffer
	require.NoError(t, WriteJSON(&jsonBuf, slices.Values(recs)))
	var decoded []station.Station
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Equal(t, recs, decoded)
}
