package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"flight-tracker/models"
)

type fareParquetRecord struct {
	CollectionDate   string  `parquet:"name=collection_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Airline          string  `parquet:"name=airline, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price            float64 `parquet:"name=price, type=DOUBLE"`
	DepartureAirport string  `parquet:"name=departure_airport, type=BYTE_ARRAY, convertedtype=UTF8"`
	ArrivalAirport   string  `parquet:"name=arrival_airport, type=BYTE_ARRAY, convertedtype=UTF8"`
	DepartureTime    string  `parquet:"name=departure_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	ArrivalTime      string  `parquet:"name=arrival_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	Duration         string  `parquet:"name=duration, type=BYTE_ARRAY, convertedtype=UTF8"`
	FlightNumber     string  `parquet:"name=flight_number, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// memFile buffers parquet output; the writer only ever appends.
type memFile struct {
	buffer *bytes.Buffer
}

func newMemFile() *memFile {
	return &memFile{buffer: &bytes.Buffer{}}
}

func (m *memFile) Create(string) (source.ParquetFile, error) { return m, nil }
func (m *memFile) Open(string) (source.ParquetFile, error)   { return m, nil }
func (m *memFile) Seek(int64, int) (int64, error)            { return int64(m.buffer.Len()), nil }
func (m *memFile) Read([]byte) (int, error)                  { return 0, fmt.Errorf("read not supported") }
func (m *memFile) Write(b []byte) (int, error)               { return m.buffer.Write(b) }
func (m *memFile) Close() error                              { return nil }
func (m *memFile) Bytes() []byte                             { return m.buffer.Bytes() }

// EncodeParquet encodes the normalized table as a snappy-compressed parquet file.
func EncodeParquet(rows []models.NormalizedFareRow) ([]byte, error) {
	mem := newMemFile()
	pw, err := writer.NewParquetWriter(mem, new(fareParquetRecord), 1)
	if err != nil {
		return nil, fmt.Errorf("parquet: new writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range rows {
		rec := fareParquetRecord{
			CollectionDate:   r.CollectionDate.Format(models.DateLayout),
			Airline:          r.Airline,
			Price:            r.Price,
			DepartureAirport: r.DepartureAirport,
			ArrivalAirport:   r.ArrivalAirport,
			DepartureTime:    r.DepartureTime,
			ArrivalTime:      r.ArrivalTime,
			Duration:         r.Duration,
			FlightNumber:     r.FlightNumber,
		}
		if err := pw.Write(rec); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("parquet: write record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("parquet: finalize: %w", err)
	}
	return mem.Bytes(), nil
}

// WriteParquetFile encodes rows and writes them to path.
func WriteParquetFile(path string, rows []models.NormalizedFareRow) error {
	data, err := EncodeParquet(rows)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("parquet: create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("parquet: write %q: %w", path, err)
	}
	return nil
}
